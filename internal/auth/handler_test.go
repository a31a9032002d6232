package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"calculator-saas/internal/logging"
	"calculator-saas/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(w.Body).Decode(v))
}

func TestRegisterAndLoginHandlers(t *testing.T) {
	store := newTestStore(t)
	tokens := NewTokenService(testSecret, 24*time.Hour)
	register := RegisterHandler(store, tokens, logging.Discard())
	login := LoginHandler(store, tokens, logging.Discard())

	w := post(t, register, `{"username":"testuser","email":"test@example.com","password":"secret123"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var registered AuthResponse
	decodeBody(t, w, &registered)
	assert.Equal(t, "User created successfully", registered.Message)
	assert.Equal(t, "testuser", registered.User.Username)
	assert.Equal(t, "test@example.com", registered.User.Email)

	identity, err := tokens.Verify(registered.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, identity.UserID)

	for _, identifier := range []string{"testuser", "test@example.com"} {
		w = post(t, login, `{"username":"`+identifier+`","password":"secret123"}`)
		require.Equal(t, http.StatusOK, w.Code, identifier)

		var loggedIn AuthResponse
		decodeBody(t, w, &loggedIn)
		assert.Equal(t, "Login successful", loggedIn.Message)
		assert.Equal(t, registered.User, loggedIn.User)

		identity, err := tokens.Verify(loggedIn.Token)
		require.NoError(t, err)
		assert.Equal(t, Identity{UserID: registered.User.ID, Username: "testuser"}, *identity)
	}
}

func TestRegisterHandler_Failures(t *testing.T) {
	store := newTestStore(t)
	register := RegisterHandler(store, NewTokenService(testSecret, time.Hour), logging.Discard())

	w := post(t, register, `{"username":"taken","email":"taken@example.com","password":"secret123"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing fields", `{"username":"x"}`, "All fields are required"},
		{"short password", `{"username":"x","email":"x@example.com","password":"123"}`, "Password must be at least 6 characters"},
		{"duplicate username", `{"username":"taken","email":"new@example.com","password":"secret123"}`, "Username or email already exists"},
		{"duplicate email", `{"username":"new","email":"taken@example.com","password":"secret123"}`, "Username or email already exists"},
		{"malformed json", `{"username":`, "Invalid JSON body"},
		{"empty body", ``, "Request body is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(t, register, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			var body map[string]string
			decodeBody(t, w, &body)
			assert.Equal(t, tt.want, body["error"])
		})
	}
}

func TestLoginHandler_Failures(t *testing.T) {
	store := newTestStore(t)
	login := LoginHandler(store, NewTokenService(testSecret, time.Hour), logging.Discard())

	_, err := store.CreateUser(context.Background(), "known", "known@example.com", "secret123")
	require.NoError(t, err)

	tests := []struct {
		name   string
		body   string
		status int
		want   string
	}{
		{"missing password", `{"username":"known"}`, http.StatusBadRequest, "Username and password are required"},
		{"missing username", `{"password":"secret123"}`, http.StatusBadRequest, "Username and password are required"},
		{"wrong password", `{"username":"known","password":"nope-nope"}`, http.StatusUnauthorized, "Invalid credentials"},
		{"unknown user", `{"username":"ghost","password":"secret123"}`, http.StatusUnauthorized, "Invalid credentials"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(t, login, tt.body)
			assert.Equal(t, tt.status, w.Code)

			var body map[string]string
			decodeBody(t, w, &body)
			assert.Equal(t, tt.want, body["error"])
		})
	}
}

func TestHandlers_PersistenceFailureIsGeneric(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db, bcrypt.MinCost)
	tokens := NewTokenService(testSecret, time.Hour)
	require.NoError(t, storage.Close(db))

	for name, h := range map[string]http.Handler{
		"register": RegisterHandler(store, tokens, logging.Discard()),
		"login":    LoginHandler(store, tokens, logging.Discard()),
	} {
		w := post(t, h, `{"username":"u","email":"u@example.com","password":"secret123"}`)
		assert.Equal(t, http.StatusInternalServerError, w.Code, name)

		var body map[string]string
		decodeBody(t, w, &body)
		assert.Equal(t, "Server error", body["error"], name)
	}
}

func TestRegisterHandler_LongPassword(t *testing.T) {
	store := newTestStore(t)
	tokens := NewTokenService(testSecret, time.Hour)
	long := strings.Repeat("p", 100)

	w := post(t, RegisterHandler(store, tokens, logging.Discard()),
		`{"username":"long","email":"long@example.com","password":"`+long+`"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = post(t, LoginHandler(store, tokens, logging.Discard()), `{"username":"long","password":"`+long+`"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}
