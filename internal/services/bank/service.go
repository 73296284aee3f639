package bank

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/dojosmash/dojo-smash/internal/dependencies/clock"
	"github.com/dojosmash/dojo-smash/internal/dependencies/ids"
	"github.com/dojosmash/dojo-smash/internal/events"
	"github.com/dojosmash/dojo-smash/internal/model"
	"github.com/dojosmash/dojo-smash/internal/storage"
)

const (
	// DefaultHistoryLimit is how many payments ListPayments returns by default
	DefaultHistoryLimit = 50
	// MaxHistoryLimit caps the limit callers can ask for
	MaxHistoryLimit = 500
)

// Service records debt payments into the shared bank
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	ids     ids.Generator
	events  events.Publisher
	logger  *slog.Logger
}

// New creates a new bank Service
func New(
	storage storage.Storage,
	clock clock.Clock,
	ids ids.Generator,
	events events.Publisher,
	logger *slog.Logger,
) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		ids:     ids,
		events:  events,
		logger:  logger.With(slog.String("service", "bank")),
	}
}

// Receipt is everything a payment changed
type Receipt struct {
	Transaction *model.Transaction
	Bank        *model.BankAccount
	User        *model.User
}

// PaymentRow is a transaction joined with its user's name
type PaymentRow struct {
	Transaction *model.Transaction
	UserName    string
}

// DebtRow is one user's outstanding debt
type DebtRow struct {
	UserID model.UserID
	Name   string
	Debt   float64
}

// RecordPayment appends a payment, adds it to the bank and lowers the user's
// debt (never below zero), all in one transaction
func (s *Service) RecordPayment(ctx context.Context, userID model.UserID, amount float64, description string) (*Receipt, error) {
	if !(amount > 0) || math.IsInf(amount, 0) {
		return nil, model.ErrInvalidAmount
	}

	var receipt *Receipt
	err := s.storage.Update(ctx, func(ctx context.Context, tx storage.Tx) error {
		user, err := tx.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		bank, err := tx.GetBank(ctx)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		txn := &model.Transaction{
			ID:          model.TransactionID(s.ids.NewID()),
			UserID:      userID,
			Amount:      amount,
			Kind:        model.TransactionPayment,
			Description: strings.TrimSpace(description),
			Timestamp:   now,
			Seq:         bank.NextSeq(),
		}
		if err := tx.SaveTransaction(ctx, txn); err != nil {
			return err
		}

		bank.Deposit(amount, now)
		if err := tx.SaveBank(ctx, bank); err != nil {
			return err
		}

		user.PayDebt(amount)
		user.UpdatedAt = now
		if err := tx.SaveUser(ctx, user); err != nil {
			return err
		}

		receipt = &Receipt{Transaction: txn, Bank: bank, User: user}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment recorded",
		slog.String("user_id", string(userID)),
		slog.Float64("amount", amount),
		slog.Float64("bank_total", receipt.Bank.Total))
	s.events.Publish(ctx, model.Event{
		Type:      model.EventPaymentRecorded,
		Timestamp: s.clock.Now(),
		UserIDs:   []model.UserID{userID},
		Payload: model.PaymentPayload{
			TransactionID: receipt.Transaction.ID,
			UserID:        userID,
			Amount:        amount,
			BankTotal:     receipt.Bank.Total,
		},
	})
	return receipt, nil
}

// Status returns the bank account
func (s *Service) Status(ctx context.Context) (*model.BankAccount, error) {
	return s.storage.GetBank(ctx)
}

// ClampLimit maps a requested page size onto [1, MaxHistoryLimit]. Zero or
// negative means the default.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		return MaxHistoryLimit
	default:
		return limit
	}
}

// ListPayments returns the newest payments with the payer's name
func (s *Service) ListPayments(ctx context.Context, limit int) ([]PaymentRow, error) {
	txns, err := s.storage.ListTransactions(ctx, ClampLimit(limit))
	if err != nil {
		return nil, err
	}
	users, err := s.storage.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	dir := model.NewUserDirectory(users)

	rows := make([]PaymentRow, len(txns))
	for i, t := range txns {
		rows[i] = PaymentRow{Transaction: t, UserName: dir.Name(t.UserID)}
	}
	return rows, nil
}

// ListDebts returns every user's debt, largest first
func (s *Service) ListDebts(ctx context.Context) ([]DebtRow, error) {
	users, err := s.storage.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]DebtRow, len(users))
	for i, u := range users {
		rows[i] = DebtRow{UserID: u.ID, Name: u.Name, Debt: u.Debt}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Debt != rows[j].Debt {
			return rows[i].Debt > rows[j].Debt
		}
		return rows[i].Name < rows[j].Name
	})
	return rows, nil
}
