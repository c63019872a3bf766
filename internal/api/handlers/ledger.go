package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/baharkarakas/ledger-core/internal/api/httpx"
	"github.com/baharkarakas/ledger-core/internal/api/validate"
	"github.com/baharkarakas/ledger-core/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

const maxBodyBytes = 1 << 20

type Ledger interface {
	GetBalance(ctx context.Context, userID int64) (decimal.Decimal, error)
	Deposit(ctx context.Context, userID int64, amount decimal.Decimal) (models.Transaction, error)
	Withdraw(ctx context.Context, userID int64, amount decimal.Decimal) (models.Transaction, error)
	Transfer(ctx context.Context, senderID, receiverID int64, amount decimal.Decimal) (models.Transfer, error)
}

type History interface {
	ListTransactions(ctx context.Context, userID int64, f models.HistoryFilter) ([]models.Transaction, error)
}

type Accounts interface {
	Open(ctx context.Context) (models.Account, error)
}

type LedgerHandler struct {
	ledger   Ledger
	history  History
	accounts Accounts
	log      *slog.Logger
}

func NewLedgerHandler(l Ledger, h History, a Accounts, log *slog.Logger) *LedgerHandler {
	if log == nil {
		log = slog.Default()
	}
	return &LedgerHandler{ledger: l, history: h, accounts: a, log: log}
}

type amountReq struct {
	UserID int64           `json:"user_id" validate:"required,gt=0"`
	Amount decimal.Decimal `json:"amount"`
}

type transferReq struct {
	FromUserID int64           `json:"from_user_id" validate:"required,gt=0"`
	ToUserID   int64           `json:"to_user_id" validate:"required,gt=0"`
	Amount     decimal.Decimal `json:"amount"`
}

type balanceResp struct {
	UserID  int64           `json:"user_id"`
	Balance decimal.Decimal `json:"balance"`
}

func (h *LedgerHandler) OpenAccount(w http.ResponseWriter, r *http.Request) {
	a, err := h.accounts.Open(r.Context())
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, a)
}

func (h *LedgerHandler) Balance(w http.ResponseWriter, r *http.Request) {
	uid, err := pathUserID(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	bal, err := h.ledger.GetBalance(r.Context(), uid)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, balanceResp{UserID: uid, Balance: bal})
}

func (h *LedgerHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req amountReq
	if err := decode(w, r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}
	tx, err := h.ledger.Deposit(r.Context(), req.UserID, req.Amount)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tx)
}

func (h *LedgerHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req amountReq
	if err := decode(w, r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}
	tx, err := h.ledger.Withdraw(r.Context(), req.UserID, req.Amount)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tx)
}

func (h *LedgerHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req transferReq
	if err := decode(w, r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}
	tr, err := h.ledger.Transfer(r.Context(), req.FromUserID, req.ToUserID, req.Amount)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tr)
}

// Transactions lists history. start and end are optional RFC 3339 times.
func (h *LedgerHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	uid, err := pathUserID(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	var f models.HistoryFilter
	if f.Start, err = queryTime(r, "start"); err != nil {
		h.writeErr(w, r, err)
		return
	}
	if f.End, err = queryTime(r, "end"); err != nil {
		h.writeErr(w, r, err)
		return
	}
	txs, err := h.history.ListTransactions(r.Context(), uid, f)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, txs)
}

func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return validate.Field("body", "invalid JSON")
	}
	return validate.Struct(dst)
}

func pathUserID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, validate.Field("user_id", "must be a positive integer")
	}
	return id, nil
}

func queryTime(r *http.Request, key string) (*time.Time, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil, validate.Field(key, "must be an RFC 3339 timestamp")
	}
	return &t, nil
}

func (h *LedgerHandler) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verrs validate.Errs
		nf    *models.NotFoundError
	)
	switch {
	case errors.As(err, &verrs):
		httpx.WriteError(w, http.StatusBadRequest, httpx.CodeBadRequest, "invalid request", verrs)
	case errors.Is(err, models.ErrInvalidAmount):
		httpx.WriteError(w, http.StatusBadRequest, httpx.CodeInvalidAmount, err.Error(), nil)
	case errors.As(err, &nf):
		httpx.WriteError(w, http.StatusNotFound, httpx.CodeNotFound, err.Error(), map[string]any{"role": nf.Role, "user_id": nf.UserID})
	case errors.Is(err, models.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, httpx.CodeNotFound, err.Error(), nil)
	case errors.Is(err, models.ErrInsufficientFunds):
		httpx.WriteError(w, http.StatusBadRequest, httpx.CodeInsufficientFunds, err.Error(), nil)
	default:
		h.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, httpx.CodeInternal, "internal error", nil)
	}
}
