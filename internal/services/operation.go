package services

import (
	"context"
	"time"

	"github.com/baharkarakas/ledger-core/internal/events"
	"github.com/baharkarakas/ledger-core/internal/metrics"
	"github.com/baharkarakas/ledger-core/internal/models"
	repo "github.com/baharkarakas/ledger-core/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	resultOK       = "ok"
	resultRejected = "rejected"
	resultFailed   = "failed"
)

type operation struct {
	id        uuid.UUID
	kind      events.Kind
	userID    int64
	relatedID *int64
	amount    decimal.Decimal
	started   time.Time
}

func newOperation(kind events.Kind, userID int64, relatedID *int64, amount decimal.Decimal) operation {
	return operation{id: uuid.New(), kind: kind, userID: userID, relatedID: relatedID, amount: amount, started: time.Now()}
}

// apply runs check, then write inside one write group. Business rejections
// come back unchanged; anything else is reported as a persistence failure.
func (s *LedgerService) apply(ctx context.Context, op operation, check func() error, write func(repo.Writer) ([]models.Transaction, error)) ([]models.Transaction, error) {
	var recs []models.Transaction
	err := check()
	if err == nil {
		err = s.atomic.WithTx(ctx, func(w repo.Writer) error {
			var werr error
			recs, werr = write(w)
			return werr
		})
	}

	result := resultOK
	switch {
	case err == nil:
	case models.IsBusiness(err):
		result = resultRejected
	default:
		result = resultFailed
		err = &models.PersistenceError{Op: string(op.kind), Err: err}
	}

	metrics.OperationsTotal.WithLabelValues(string(op.kind), result).Inc()
	metrics.OperationDuration.WithLabelValues(string(op.kind)).Observe(time.Since(op.started).Seconds())
	s.logOutcome(op, result, err)
	s.afterCommit(op, result, recs, err)

	if err != nil {
		return nil, err
	}
	return recs, nil
}

func (s *LedgerService) logOutcome(op operation, result string, err error) {
	args := []any{"operation_id", op.id, "kind", op.kind, "user_id", op.userID, "amount", op.amount.String()}
	if op.relatedID != nil {
		args = append(args, "related_user_id", *op.relatedID)
	}
	switch result {
	case resultOK:
		s.log.Info("ledger operation committed", args...)
	case resultRejected:
		s.log.Info("ledger operation rejected", append(args, "reason", err.Error())...)
	default:
		s.log.Error("ledger operation failed", append(args, "err", err)...)
	}
}

// afterCommit records the audit entry and, for committed operations,
// publishes the event. Failures here are logged and never reach the caller.
func (s *LedgerService) afterCommit(op operation, result string, recs []models.Transaction, opErr error) {
	details := map[string]any{
		"kind":    string(op.kind),
		"user_id": op.userID,
		"amount":  op.amount.String(),
	}
	if op.relatedID != nil {
		details["related_user_id"] = *op.relatedID
	}
	if opErr != nil {
		details["error"] = opErr.Error()
	}
	entry := models.AuditLog{
		EntityType: "operation",
		EntityID:   op.id.String(),
		Action:     auditAction(result),
		Details:    details,
	}

	task := func() {
		ctx, cancel := context.WithTimeout(context.Background(), postCommitTimeout)
		defer cancel()
		if s.audit != nil {
			if err := s.audit.Create(ctx, entry); err != nil {
				s.log.Warn("audit log write failed", "operation_id", op.id, "err", err)
			}
		}
		if result != resultOK {
			return
		}
		ev := events.Event{OperationID: op.id, Kind: op.kind, Records: recs, CommittedAt: recs[0].Timestamp}
		if err := s.events.Publish(ctx, ev); err != nil {
			metrics.EventsPublishFailed.Inc()
			s.log.Warn("event publish failed", "operation_id", op.id, "err", err)
		}
	}
	if s.wp == nil {
		task()
		return
	}
	s.wp.Submit(task)
}

func auditAction(result string) string {
	switch result {
	case resultOK:
		return "committed"
	case resultRejected:
		return "rejected"
	}
	return "failed"
}
