package calculator

import (
	"context"
	"errors"
	"net/http"
	"time"

	"calculator-saas/internal/auth"
	"calculator-saas/internal/httputil"
	"calculator-saas/internal/logging"
	"calculator-saas/internal/metrics"

	"github.com/sirupsen/logrus"
)

const (
	msgExpressionRequired = "Expression is required"
	msgInvalidExpression  = "Invalid mathematical expression"
)

// TimestampLayout is ISO-8601 UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// HistoryRecorder receives successful calculations for an authenticated user.
// Implementations must not block the caller.
type HistoryRecorder interface {
	AppendAsync(ctx context.Context, userID int64, expression, result string)
}

type CalculateRequest struct {
	Expression string `json:"expression"`
}

type CalculateResponse struct {
	Expression string `json:"expression"`
	Result     string `json:"result"`
	Timestamp  string `json:"timestamp"`
}

// CalculateHandler evaluates {"expression": ...}. With a nil history it serves
// the public endpoint and never persists anything. With a history it requires
// an identity in the request context (see auth.Middleware) and dispatches a
// history append after the response is decided.
func CalculateHandler(history HistoryRecorder, log *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var identity *auth.Identity
		if history != nil {
			id, ok := auth.IdentityFromContext(r.Context())
			if !ok {
				httputil.WriteError(w, http.StatusUnauthorized, auth.MsgTokenRequired)
				return
			}
			identity = id
		}

		var req CalculateRequest
		if err := httputil.DecodeJSON(w, r, &req); err != nil {
			httputil.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.Expression == "" {
			httputil.WriteError(w, http.StatusBadRequest, msgExpressionRequired)
			return
		}

		value, err := Evaluate(req.Expression)
		metrics.RecordEvaluation(err == nil)
		if err != nil {
			if !errors.Is(err, ErrInvalidExpression) {
				logging.FromContext(r.Context(), log).WithError(err).Error("evaluator failed unexpectedly")
			}
			logging.FromContext(r.Context(), log).WithError(err).Debug("rejected expression")
			httputil.WriteError(w, http.StatusBadRequest, msgInvalidExpression)
			return
		}
		result := FormatResult(value)

		if identity != nil {
			history.AppendAsync(r.Context(), identity.UserID, req.Expression, result)
		}

		httputil.WriteJSON(w, http.StatusOK, CalculateResponse{
			Expression: req.Expression,
			Result:     result,
			Timestamp:  time.Now().UTC().Format(TimestampLayout),
		})
	}
}
