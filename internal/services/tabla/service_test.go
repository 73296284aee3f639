package tabla

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/xuri/excelize/v2"

	"github.com/dojosmash/dojo-smash/internal/dependencies/mocks"
	"github.com/dojosmash/dojo-smash/internal/model"
	"github.com/dojosmash/dojo-smash/internal/storage"
	"github.com/dojosmash/dojo-smash/internal/storage/memory"
	"github.com/dojosmash/dojo-smash/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2025, time.February, 5, 12, 0, 0, 0, time.UTC))
	s.service = New(s.storage, s.clock, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) seed() {
	s.Require().NoError(s.storage.Update(s.ctx, func(ctx context.Context, tx storage.Tx) error {
		users := []*model.User{
			{ID: "ana", Name: "Ana", Points: model.Points{Dojos: 5, Pendejos: 1, Chescos: 9}},
			{ID: "beto", Name: "Beto", Points: model.Points{Dojos: 6}},
			{ID: "carla", Name: "Carla", Points: model.Points{Dojos: 4}},
		}
		for _, u := range users {
			if err := tx.SaveUser(ctx, u); err != nil {
				return err
			}
		}
		regs := []*model.WeeklyRegistration{
			{ID: "r1", UserID: "ana", Week: "2025-W05", Deltas: model.Points{Dojos: 3}},
			{ID: "r2", UserID: "ana", Week: "2025-W06", Deltas: model.Points{Dojos: 2}},
			{ID: "r3", UserID: "ana", Week: "2025-W06", Deltas: model.Points{Pendejos: 1}},
			{ID: "r4", UserID: "beto", Week: "2025-W06", Deltas: model.Points{Dojos: 1}},
		}
		for _, r := range regs {
			if err := tx.SaveRegistration(ctx, r); err != nil {
				return err
			}
		}
		return nil
	}))
}

func (s *ServiceSuite) TestTableRanksByTotal() {
	s.seed()

	t, err := s.service.Table(s.ctx)
	s.Require().NoError(err)
	s.Equal(model.Week("2025-W06"), t.Week)
	s.Require().Len(t.Rows, 3)

	s.Equal("Beto", t.Rows[0].User.Name)
	s.Equal("Ana", t.Rows[1].User.Name, "ties break by name")
	s.Equal("Carla", t.Rows[2].User.Name)

	s.Equal(4.0, t.Rows[1].Total, "chescos never count")
	s.Equal(model.Points{Dojos: 2, Pendejos: 1}, t.Rows[1].Actual)
	s.Equal(model.Points{}, t.Rows[2].Actual)
}

func (s *ServiceSuite) TestEmptyTableUsesCurrentWeek() {
	t, err := s.service.Table(s.ctx)
	s.Require().NoError(err)
	s.Equal(model.WeekOf(s.clock.Now()), t.Week)
	s.Empty(t.Rows)

	sum, err := s.service.Summary(s.ctx)
	s.Require().NoError(err)
	s.Nil(sum.Leader)
	s.Equal(0, sum.Users)
}

func (s *ServiceSuite) TestSummary() {
	s.seed()

	sum, err := s.service.Summary(s.ctx)
	s.Require().NoError(err)
	s.Equal(3, sum.Users)
	s.Equal(model.Points{Dojos: 15, Pendejos: 1, Chescos: 9}, sum.Points)
	s.Equal(14.0, sum.Total)
	s.Require().NotNil(sum.Leader)
	s.Equal("Beto", sum.Leader.User.Name)
}

func (s *ServiceSuite) TestExportLayout() {
	s.seed()

	data, week, err := s.service.Export(s.ctx)
	s.Require().NoError(err)
	s.Equal(model.Week("2025-W06"), week)
	s.Equal("tabla-global-2025-W06.xlsx", FileName(week))

	f, err := excelize.OpenReader(bytes.NewReader(data))
	s.Require().NoError(err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	s.Require().NoError(err)
	s.Require().GreaterOrEqual(len(rows), 8)

	s.Equal("DOJO SMASH - Tabla Global", rows[0][0])
	s.Equal("Semana: 2025-W06", rows[1][0])

	head := rows[2]
	s.Require().Len(head, 12)
	s.Equal("Nombre", head[0])
	s.Equal("dojos (actual)", head[1])
	s.Equal("dojos (total)", head[2])
	s.Equal("Total", head[11])

	s.Equal("Beto", rows[3][0])
	s.Equal("Ana", rows[4][0])
	s.Equal("Carla", rows[5][0])
	s.Empty(rows[6])

	totals := rows[7]
	s.Equal("TOTAL", totals[0])
	s.Equal("3", totals[1])
	s.Equal("15", totals[2])
	s.Equal("14", totals[11])
}
