package history

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"calculator-saas/internal/auth"
	"calculator-saas/internal/httputil"
	"calculator-saas/internal/logging"

	"github.com/sirupsen/logrus"
)

// Limits bounds the ?limit= query parameter.
type Limits struct {
	Default int
	Max     int
}

// Resolve turns the raw query value into a usable limit. Like parseInt, only
// the leading integer is read, so "10abc" is 10 and "3.9" is 3. Missing,
// malformed or non-positive values fall back to Default, and anything above
// Max is clamped.
func (l Limits) Resolve(raw string) int {
	n, ok := leadingInt(raw)
	if !ok || n <= 0 {
		return l.Default
	}
	if l.Max > 0 && n > l.Max {
		return l.Max
	}
	return n
}

// leadingInt parses optional leading whitespace, an optional sign and the
// digits after it, ignoring whatever follows.
func leadingInt(raw string) (int, bool) {
	s := strings.TrimLeft(raw, " \t\n\r\v\f")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if errors.Is(err, strconv.ErrRange) && s[0] != '-' {
		return math.MaxInt, true
	}
	if err != nil {
		return 0, false
	}
	return n, true
}

// ListHandler serves GET /api/history for the authenticated user.
func ListHandler(ledger *Ledger, limits Limits, log *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := auth.IdentityFromContext(r.Context())
		if !ok {
			httputil.WriteError(w, http.StatusUnauthorized, auth.MsgTokenRequired)
			return
		}

		limit := limits.Resolve(r.URL.Query().Get("limit"))
		records, err := ledger.List(r.Context(), identity.UserID, limit)
		if err != nil {
			logging.FromContext(r.Context(), log).WithError(err).Error("history read failed")
			httputil.WriteError(w, http.StatusInternalServerError, httputil.MsgServerError)
			return
		}

		httputil.WriteJSON(w, http.StatusOK, records)
	}
}

// ClearHandler serves DELETE /api/history for the authenticated user.
func ClearHandler(ledger *Ledger, log *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := auth.IdentityFromContext(r.Context())
		if !ok {
			httputil.WriteError(w, http.StatusUnauthorized, auth.MsgTokenRequired)
			return
		}

		if err := ledger.Clear(r.Context(), identity.UserID); err != nil {
			logging.FromContext(r.Context(), log).WithError(err).Error("history clear failed")
			httputil.WriteError(w, http.StatusInternalServerError, httputil.MsgServerError)
			return
		}

		httputil.WriteJSON(w, http.StatusOK, httputil.MessageResponse{Message: "History cleared successfully"})
	}
}
