// Package middleware provides the HTTP middleware chain of the API gateway.
package middleware

import (
	"net/http"
	"runtime/debug"

	"calculator-saas/internal/httputil"
	"calculator-saas/internal/logging"

	"github.com/sirupsen/logrus"
)

// Recovery turns a panic anywhere below it into a generic 500.
func Recovery(log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := wrap(w)
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logging.FromContext(r.Context(), log).WithFields(logrus.Fields{
					"panic": rec,
					"stack": string(debug.Stack()),
				}).Error("handler panicked")
				if !rw.written {
					httputil.WriteError(rw, http.StatusInternalServerError, "Something went wrong!")
				}
			}()
			next.ServeHTTP(rw, r)
		})
	}
}
