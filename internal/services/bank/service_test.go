package bank

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/dojosmash/dojo-smash/internal/dependencies/mocks"
	"github.com/dojosmash/dojo-smash/internal/events"
	"github.com/dojosmash/dojo-smash/internal/model"
	"github.com/dojosmash/dojo-smash/internal/storage"
	"github.com/dojosmash/dojo-smash/internal/storage/memory"
	"github.com/dojosmash/dojo-smash/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage  *memory.Storage
	clock    *mocks.MockClock
	recorder *events.Recorder
	service  *Service
	ctx      context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2025, time.February, 5, 12, 0, 0, 0, time.UTC))
	s.recorder = events.NewRecorder()
	s.service = New(s.storage, s.clock, mocks.NewMockIDs("t"), s.recorder, testutil.NopLogger())
	s.ctx = context.Background()

	s.saveUser(&model.User{ID: "ana", Name: "Ana", Debt: 20})
	s.saveUser(&model.User{ID: "beto", Name: "Beto", Debt: 5})
	s.saveUser(&model.User{ID: "carla", Name: "Carla", Debt: 20})
}

func (s *ServiceSuite) saveUser(u *model.User) {
	s.Require().NoError(s.storage.Update(s.ctx, func(ctx context.Context, tx storage.Tx) error {
		return tx.SaveUser(ctx, u)
	}))
}

func (s *ServiceSuite) debt(id model.UserID) float64 {
	u, err := s.storage.GetUser(s.ctx, id)
	s.Require().NoError(err)
	return u.Debt
}

func (s *ServiceSuite) TestPaymentSequence() {
	r, err := s.service.RecordPayment(s.ctx, "ana", 15, "efectivo")
	s.Require().NoError(err)
	s.Equal(5.0, r.User.Debt)
	s.Equal(15.0, r.Bank.Total)
	s.Equal(model.TransactionPayment, r.Transaction.Kind)
	s.Equal("efectivo", r.Transaction.Description)

	s.clock.Advance(time.Minute)
	r, err = s.service.RecordPayment(s.ctx, "ana", 15, "")
	s.Require().NoError(err)
	s.Equal(0.0, r.User.Debt, "debt floors at zero")
	s.Equal(30.0, r.Bank.Total, "the bank keeps the whole amount")

	s.Equal(0.0, s.debt("ana"))
	bank, _ := s.service.Status(s.ctx)
	s.Equal(30.0, bank.Total)

	s.Equal([]model.EventType{model.EventPaymentRecorded, model.EventPaymentRecorded}, s.recorder.Types())
}

func (s *ServiceSuite) TestPaymentValidation() {
	_, err := s.service.RecordPayment(s.ctx, "ana", 0, "")
	s.ErrorIs(err, model.ErrInvalidAmount)

	_, err = s.service.RecordPayment(s.ctx, "ana", -3, "")
	s.ErrorIs(err, model.ErrInvalidAmount)

	_, err = s.service.RecordPayment(s.ctx, "ghost", 3, "")
	s.ErrorIs(err, model.ErrUserNotFound)

	bank, _ := s.service.Status(s.ctx)
	s.Equal(0.0, bank.Total)
	payments, _ := s.service.ListPayments(s.ctx, 0)
	s.Empty(payments)
}

func (s *ServiceSuite) TestConcurrentPaymentsAllCount() {
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.service.RecordPayment(context.Background(), "carla", 0.5, "")
			s.NoError(err)
		}()
	}
	wg.Wait()

	bank, _ := s.service.Status(s.ctx)
	s.Equal(10.0, bank.Total)
	s.Equal(10.0, s.debt("carla"))
}

func (s *ServiceSuite) TestListPaymentsNewestFirstWithNames() {
	_, _ = s.service.RecordPayment(s.ctx, "ana", 1, "")
	s.clock.Advance(time.Minute)
	_, _ = s.service.RecordPayment(s.ctx, "beto", 2, "")
	s.clock.Advance(time.Minute)
	_, _ = s.service.RecordPayment(s.ctx, "carla", 3, "")

	s.Require().NoError(s.storage.Update(s.ctx, func(ctx context.Context, tx storage.Tx) error {
		return tx.DeleteUser(ctx, "carla")
	}))

	rows, err := s.service.ListPayments(s.ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(rows, 2)
	s.Equal(model.DeletedUserName, rows[0].UserName)
	s.Equal(3.0, rows[0].Transaction.Amount)
	s.Equal("Beto", rows[1].UserName)
}

func (s *ServiceSuite) TestListPaymentsOrderedWithinOneInstant() {
	// the clock never advances, so only the sequence separates payments
	var last *Receipt
	for i := 0; i < 12; i++ {
		r, err := s.service.RecordPayment(s.ctx, "beto", 1, "")
		s.Require().NoError(err)
		last = r
	}
	s.Equal(int64(12), last.Transaction.Seq)
	s.Equal(int64(12), last.Bank.Seq)

	rows, err := s.service.ListPayments(s.ctx, 1)
	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	s.Equal(last.Transaction.ID, rows[0].Transaction.ID)

	rows, err = s.service.ListPayments(s.ctx, 0)
	s.Require().NoError(err)
	s.Require().Len(rows, 12)
	for i, row := range rows {
		s.Equal(int64(12-i), row.Transaction.Seq)
	}
}

func (s *ServiceSuite) TestListDebtsSorted() {
	rows, err := s.service.ListDebts(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(rows, 3)
	s.Equal("Ana", rows[0].Name)
	s.Equal("Carla", rows[1].Name)
	s.Equal("Beto", rows[2].Name)
	s.Equal(5.0, rows[2].Debt)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultHistoryLimit, ClampLimit(0))
	assert.Equal(t, DefaultHistoryLimit, ClampLimit(-1))
	assert.Equal(t, 7, ClampLimit(7))
	assert.Equal(t, MaxHistoryLimit, ClampLimit(10_000))
}
