package services

import (
	"context"

	"github.com/baharkarakas/ledger-core/internal/models"
	repo "github.com/baharkarakas/ledger-core/internal/repository"
)

// QueryService reads transaction history. It never writes.
type QueryService struct{ trx repo.Transactions }

func NewQueryService(t repo.Transactions) *QueryService { return &QueryService{trx: t} }

// ListTransactions returns the user's records matching f ordered by
// timestamp, then id. An unknown user yields an empty list.
func (s *QueryService) ListTransactions(ctx context.Context, userID int64, f models.HistoryFilter) ([]models.Transaction, error) {
	txns, err := s.trx.ListByUser(ctx, userID, f)
	if err != nil {
		return nil, &models.PersistenceError{Op: "list_transactions", Err: err}
	}
	if txns == nil {
		txns = []models.Transaction{}
	}
	return txns, nil
}
