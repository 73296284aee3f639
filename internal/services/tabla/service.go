package tabla

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/dojosmash/dojo-smash/internal/dependencies/clock"
	"github.com/dojosmash/dojo-smash/internal/model"
	"github.com/dojosmash/dojo-smash/internal/storage"
)

const (
	// SheetName is the name of the exported worksheet
	SheetName = "Tabla Global"
	// ContentType is the MIME type of an exported table
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	exportTitle = "DOJO SMASH - Tabla Global"
)

// Service builds the global standings table
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new tabla Service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger.With(slog.String("service", "tabla")),
	}
}

// Row is one user's line in the table
type Row struct {
	User   *model.User
	Actual model.Points // deltas registered in the latest week
	Total  float64
}

// Table is the full standings for a week
type Table struct {
	Week model.Week
	Rows []Row
}

// Summary aggregates the table
type Summary struct {
	Users  int
	Points model.Points
	Total  float64
	Week   model.Week
	Leader *Row
}

// Table returns every user ranked by total, highest first
func (s *Service) Table(ctx context.Context) (*Table, error) {
	users, err := s.storage.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	regs, err := s.storage.ListRegistrations(ctx, storage.RegistrationFilter{})
	if err != nil {
		return nil, err
	}

	week := s.latestWeek(regs)
	actual := make(map[model.UserID]model.Points)
	for _, r := range regs {
		if r.Week == week {
			actual[r.UserID] = actual[r.UserID].Plus(r.Deltas)
		}
	}

	rows := make([]Row, len(users))
	for i, u := range users {
		rows[i] = Row{User: u, Actual: actual[u.ID], Total: u.Total()}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Total != rows[j].Total {
			return rows[i].Total > rows[j].Total
		}
		if rows[i].User.Name != rows[j].User.Name {
			return rows[i].User.Name < rows[j].User.Name
		}
		return rows[i].User.ID < rows[j].User.ID
	})
	return &Table{Week: week, Rows: rows}, nil
}

// Summary returns category sums and the current leader
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	t, err := s.Table(ctx)
	if err != nil {
		return nil, err
	}

	sum := &Summary{Users: len(t.Rows), Week: t.Week}
	for _, r := range t.Rows {
		sum.Points = sum.Points.Plus(r.User.Points)
	}
	sum.Total = sum.Points.Total()
	if len(t.Rows) > 0 {
		sum.Leader = &t.Rows[0]
	}
	return sum, nil
}

// latestWeek is the newest week with registrations, or the current week
func (s *Service) latestWeek(regs []*model.WeeklyRegistration) model.Week {
	var latest model.Week
	for _, r := range regs {
		if r.Week > latest {
			latest = r.Week
		}
	}
	if latest == "" {
		return model.WeekOf(s.clock.Now())
	}
	return latest
}

// FileName returns the download name of an export for week
func FileName(week model.Week) string {
	return fmt.Sprintf("tabla-global-%s.xlsx", week)
}

// Export renders the table as an xlsx workbook
func (s *Service) Export(ctx context.Context) ([]byte, model.Week, error) {
	t, err := s.Table(ctx)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("failed to close workbook", slog.String("error", err.Error()))
		}
	}()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, "", err
	}
	if err := writeTable(f, t); err != nil {
		return nil, "", fmt.Errorf("failed to write table: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode workbook: %w", err)
	}
	s.logger.Info("table exported", slog.String("week", string(t.Week)), slog.Int("rows", len(t.Rows)))
	return buf.Bytes(), t.Week, nil
}

func header() []any {
	cols := []any{"Nombre"}
	for _, c := range model.Categories {
		cols = append(cols, fmt.Sprintf("%s (actual)", c), fmt.Sprintf("%s (total)", c))
	}
	return append(cols, "Total")
}

func line(name string, actual, total model.Points, sum float64) []any {
	cols := []any{name}
	for _, c := range model.Categories {
		cols = append(cols, actual.Get(c), total.Get(c))
	}
	return append(cols, sum)
}

func writeTable(f *excelize.File, t *Table) error {
	head := header()
	last, err := excelize.CoordinatesToCellName(len(head), 1)
	if err != nil {
		return err
	}

	if err := f.SetCellValue(SheetName, "A1", exportTitle); err != nil {
		return err
	}
	if err := f.MergeCell(SheetName, "A1", last); err != nil {
		return err
	}
	if err := f.SetCellValue(SheetName, "A2", "Semana: "+string(t.Week)); err != nil {
		return err
	}
	if err := f.SetSheetRow(SheetName, "A3", &head); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	headEnd, _ := excelize.CoordinatesToCellName(len(head), 3)
	if err := f.SetCellStyle(SheetName, "A1", headEnd, bold); err != nil {
		return err
	}

	var actualSum, totalSum model.Points
	row := 4
	for _, r := range t.Rows {
		cells := line(r.User.Name, r.Actual, r.User.Points, r.Total)
		if err := f.SetSheetRow(SheetName, fmt.Sprintf("A%d", row), &cells); err != nil {
			return err
		}
		actualSum = actualSum.Plus(r.Actual)
		totalSum = totalSum.Plus(r.User.Points)
		row++
	}

	// one blank row before the totals
	row++
	totals := line("TOTAL", actualSum, totalSum, totalSum.Total())
	totalsCell := fmt.Sprintf("A%d", row)
	if err := f.SetSheetRow(SheetName, totalsCell, &totals); err != nil {
		return err
	}
	totalsEnd, _ := excelize.CoordinatesToCellName(len(totals), row)
	if err := f.SetCellStyle(SheetName, totalsCell, totalsEnd, bold); err != nil {
		return err
	}
	return f.SetColWidth(SheetName, "A", "A", 24)
}
