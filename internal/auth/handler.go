package auth

import (
	"errors"
	"net/http"

	"calculator-saas/internal/httputil"
	"calculator-saas/internal/logging"
	"calculator-saas/internal/models"

	"github.com/sirupsen/logrus"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest.Username may also hold an email address.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type AuthResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    UserResponse `json:"user"`
}

func RegisterHandler(store *Store, tokens *TokenService, log *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := httputil.DecodeJSON(w, r, &req); err != nil {
			httputil.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}

		user, err := store.CreateUser(r.Context(), req.Username, req.Email, req.Password)
		if err != nil {
			if ve, ok := httputil.IsValidation(err); ok {
				httputil.WriteError(w, http.StatusBadRequest, ve.Message)
				return
			}
			if errors.Is(err, ErrDuplicateIdentity) {
				httputil.WriteError(w, http.StatusBadRequest, "Username or email already exists")
				return
			}
			logging.FromContext(r.Context(), log).WithError(err).Error("registration failed")
			httputil.WriteError(w, http.StatusInternalServerError, httputil.MsgServerError)
			return
		}

		respondWithToken(w, r, tokens, log, http.StatusCreated, "User created successfully", user)
	}
}

func LoginHandler(store *Store, tokens *TokenService, log *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := httputil.DecodeJSON(w, r, &req); err != nil {
			httputil.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.Username == "" || req.Password == "" {
			httputil.WriteError(w, http.StatusBadRequest, "Username and password are required")
			return
		}

		user, err := store.Authenticate(r.Context(), req.Username, req.Password)
		if err != nil {
			if errors.Is(err, ErrInvalidCredentials) {
				httputil.WriteError(w, http.StatusUnauthorized, "Invalid credentials")
				return
			}
			logging.FromContext(r.Context(), log).WithError(err).Error("login lookup failed")
			httputil.WriteError(w, http.StatusInternalServerError, httputil.MsgServerError)
			return
		}

		respondWithToken(w, r, tokens, log, http.StatusOK, "Login successful", user)
	}
}

func respondWithToken(w http.ResponseWriter, r *http.Request, tokens *TokenService, log *logrus.Logger, status int, message string, user *models.User) {
	token, err := tokens.Issue(user.ID, user.Username)
	if err != nil {
		logging.FromContext(r.Context(), log).WithError(err).Error("token issue failed")
		httputil.WriteError(w, http.StatusInternalServerError, httputil.MsgServerError)
		return
	}

	httputil.WriteJSON(w, status, AuthResponse{
		Message: message,
		Token:   token,
		User: UserResponse{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
		},
	})
}
