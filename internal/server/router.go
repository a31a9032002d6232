// Package server assembles the API gateway: routes, authentication and the
// middleware chain.
package server

import (
	"context"
	"net/http"

	"calculator-saas/internal/auth"
	"calculator-saas/internal/calculator"
	"calculator-saas/internal/config"
	"calculator-saas/internal/history"
	"calculator-saas/internal/httputil"
	"calculator-saas/internal/metrics"
	"calculator-saas/internal/middleware"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Deps are the components the gateway routes to.
type Deps struct {
	Config  *config.Config
	Log     *logrus.Logger
	Users   *auth.Store
	Tokens  *auth.TokenService
	Ledger  *history.Ledger
	Limiter *middleware.RateLimiter // nil disables auth rate limiting
}

// discardHistory keeps /api/calculate authenticated when no ledger is wired.
type discardHistory struct{}

func (discardHistory) AppendAsync(context.Context, int64, string, string) {}

// NewRouter returns the complete HTTP handler of the service.
func NewRouter(d Deps) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(httputil.NotFound)
	// Unsupported methods on known paths are unmatched routes as well.
	r.MethodNotAllowedHandler = http.HandlerFunc(httputil.NotFound)
	r.Use(middleware.Metrics())

	requireAuth := auth.Middleware(d.Tokens, d.Log)
	limit := func(h http.Handler) http.Handler {
		if d.Limiter == nil {
			return h
		}
		return d.Limiter.Handler(h)
	}
	limits := history.Limits{
		Default: d.Config.HistoryDefaultLimit,
		Max:     d.Config.HistoryMaxLimit,
	}

	r.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, httputil.MessageResponse{Message: "Calculator SaaS API is running!"})
	}).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Handle("/register", limit(auth.RegisterHandler(d.Users, d.Tokens, d.Log))).Methods(http.MethodPost)
	api.Handle("/login", limit(auth.LoginHandler(d.Users, d.Tokens, d.Log))).Methods(http.MethodPost)

	// A nil *Ledger must not become a non-nil HistoryRecorder.
	var recorder calculator.HistoryRecorder = discardHistory{}
	if d.Ledger != nil {
		recorder = d.Ledger
	}
	api.Handle("/calculate", requireAuth(calculator.CalculateHandler(recorder, d.Log))).Methods(http.MethodPost)
	api.Handle("/calculate/public", calculator.CalculateHandler(nil, d.Log)).Methods(http.MethodPost)

	api.Handle("/history", requireAuth(history.ListHandler(d.Ledger, limits, d.Log))).Methods(http.MethodGet)
	api.Handle("/history", requireAuth(history.ClearHandler(d.Ledger, d.Log))).Methods(http.MethodDelete)

	var h http.Handler = r
	h = middleware.CORS(d.Config.AllowedOrigins)(h)
	h = middleware.Recovery(d.Log)(h)
	h = middleware.RequestLogger(d.Log)(h)
	return h
}
