// Package history stores each user's evaluated expressions.
package history

import (
	"context"
	"fmt"
	"sync"
	"time"

	"calculator-saas/internal/logging"
	"calculator-saas/internal/metrics"
	"calculator-saas/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Ledger is the append-only per-user calculation log.
type Ledger struct {
	db           *gorm.DB
	log          *logrus.Logger
	writeTimeout time.Duration

	pending sync.WaitGroup
}

func NewLedger(db *gorm.DB, log *logrus.Logger, writeTimeout time.Duration) *Ledger {
	return &Ledger{
		db:           db,
		log:          log,
		writeTimeout: writeTimeout,
	}
}

// Append inserts one record for userID.
func (l *Ledger) Append(ctx context.Context, userID int64, expression, result string) error {
	record := models.Calculation{
		UserID:     &userID,
		Expression: expression,
		Result:     result,
	}
	if err := l.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("append calculation for user %d: %w", userID, err)
	}
	return nil
}

// AppendAsync runs Append in the background and returns immediately. The
// write outlives ctx's cancellation but keeps its values for logging. A
// failure is logged and counted, never retried.
func (l *Ledger) AppendAsync(ctx context.Context, userID int64, expression, result string) {
	detached := context.WithoutCancel(ctx)

	l.pending.Add(1)
	go func() {
		defer l.pending.Done()

		writeCtx, cancel := context.WithTimeout(detached, l.writeTimeout)
		defer cancel()

		err := l.Append(writeCtx, userID, expression, result)
		metrics.RecordHistoryAppend(err == nil)
		if err != nil {
			logging.FromContext(detached, l.log).WithError(err).Error("error saving calculation")
		}
	}()
}

// Wait blocks until every AppendAsync started so far has finished.
func (l *Ledger) Wait() {
	l.pending.Wait()
}

// List returns at most limit records for userID, newest first. Records created
// in the same instant come back in reverse insertion order.
func (l *Ledger) List(ctx context.Context, userID int64, limit int) ([]models.Calculation, error) {
	records := make([]models.Calculation, 0)
	err := l.db.WithContext(ctx).
		Select("expression", "result", "created_at").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list calculations for user %d: %w", userID, err)
	}
	return records, nil
}

// Clear deletes every record owned by userID. Clearing an empty history is
// not an error.
func (l *Ledger) Clear(ctx context.Context, userID int64) error {
	err := l.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.Calculation{}).Error
	if err != nil {
		return fmt.Errorf("clear calculations for user %d: %w", userID, err)
	}
	return nil
}
