package services

import (
	"context"
	"log/slog"

	"github.com/baharkarakas/ledger-core/internal/models"
	repo "github.com/baharkarakas/ledger-core/internal/repository"
)

type AccountService struct {
	r   repo.Accounts
	log *slog.Logger
}

func NewAccountService(r repo.Accounts, log *slog.Logger) *AccountService {
	if log == nil {
		log = slog.Default()
	}
	return &AccountService{r: r, log: log}
}

// Open provisions an account with a zero balance.
func (s *AccountService) Open(ctx context.Context) (models.Account, error) {
	a, err := s.r.Create(ctx)
	if err != nil {
		return models.Account{}, &models.PersistenceError{Op: "open_account", Err: err}
	}
	s.log.Info("account opened", "user_id", a.UserID)
	return a, nil
}
