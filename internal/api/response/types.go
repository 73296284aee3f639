package response

import (
	"time"

	"github.com/dojosmash/dojo-smash/internal/model"
	"github.com/dojosmash/dojo-smash/internal/services/auth"
	"github.com/dojosmash/dojo-smash/internal/services/bank"
	"github.com/dojosmash/dojo-smash/internal/services/highscore"
	"github.com/dojosmash/dojo-smash/internal/services/tabla"
	"github.com/dojosmash/dojo-smash/internal/services/wager"
	"github.com/dojosmash/dojo-smash/internal/services/weekly"
)

// Health is the response of the health check
type Health struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Storage   string    `json:"storage"`
}

// Login is the response of a successful admin login
type Login struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// LoginFromSession creates a Login from a session
func LoginFromSession(s *auth.Session) Login {
	return Login{Token: s.Token, ExpiresAt: s.ExpiresAt}
}

// Points is the five counters of a user or a delta
type Points struct {
	Dojos       float64 `json:"dojos"`
	Pendejos    float64 `json:"pendejos"`
	Mimidos     float64 `json:"mimidos"`
	Castitontos float64 `json:"castitontos"`
	Chescos     float64 `json:"chescos"`
}

// PointsFromModel converts model.Points
func PointsFromModel(p model.Points) Points {
	return Points{
		Dojos:       p.Dojos,
		Pendejos:    p.Pendejos,
		Mimidos:     p.Mimidos,
		Castitontos: p.Castitontos,
		Chescos:     p.Chescos,
	}
}

// User represents a user in API responses. Total is derived on every read.
type User struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
	Points
	Total     float64   `json:"total"`
	Deuda     float64   `json:"deuda"`
	Avatar    string    `json:"avatar"`
	FotoURL   string    `json:"fotoUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserFromModel converts a model.User
func UserFromModel(u *model.User) User {
	return User{
		ID:        string(u.ID),
		Nombre:    u.Name,
		Points:    PointsFromModel(u.Points),
		Total:     u.Total(),
		Deuda:     u.Debt,
		Avatar:    string(u.Avatar),
		FotoURL:   u.PhotoURL,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// UsersFromModel converts a slice of users
func UsersFromModel(us []*model.User) []User {
	out := make([]User, len(us))
	for i, u := range us {
		out[i] = UserFromModel(u)
	}
	return out
}

// Modification is one edit of a registration
type Modification struct {
	Fecha    time.Time `json:"fecha"`
	Anterior Points    `json:"anterior"`
	Nuevo    Points    `json:"nuevo"`
}

// Registration represents a weekly registration
type Registration struct {
	ID        string `json:"id"`
	UsuarioID string `json:"usuarioId"`
	Semana    string `json:"semana"`
	Points
	Modificaciones []Modification `json:"modificaciones"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// RegistrationFromModel converts a model.WeeklyRegistration
func RegistrationFromModel(r *model.WeeklyRegistration) Registration {
	mods := make([]Modification, len(r.Modifications))
	for i, m := range r.Modifications {
		mods[i] = Modification{
			Fecha:    m.At,
			Anterior: PointsFromModel(m.Previous),
			Nuevo:    PointsFromModel(m.New),
		}
	}
	return Registration{
		ID:             string(r.ID),
		UsuarioID:      string(r.UserID),
		Semana:         string(r.Week),
		Points:         PointsFromModel(r.Deltas),
		Modificaciones: mods,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// RegistrationsFromModel converts a slice of registrations
func RegistrationsFromModel(rs []*model.WeeklyRegistration) []Registration {
	out := make([]Registration, len(rs))
	for i, r := range rs {
		out[i] = RegistrationFromModel(r)
	}
	return out
}

// WeekGroup is a week with its registrations
type WeekGroup struct {
	Semana    string         `json:"semana"`
	Registros []Registration `json:"registros"`
}

// WeekGroupsFromService converts weekly groups
func WeekGroupsFromService(gs []weekly.WeekGroup) []WeekGroup {
	out := make([]WeekGroup, len(gs))
	for i, g := range gs {
		out[i] = WeekGroup{Semana: string(g.Week), Registros: RegistrationsFromModel(g.Registrations)}
	}
	return out
}

// Wager represents a wager
type Wager struct {
	ID            string     `json:"id"`
	Participantes []string   `json:"participantes"`
	TipoPunto     string     `json:"tipoPunto"`
	Cantidad      float64    `json:"cantidad"`
	Estado        string     `json:"estado"`
	Ganador       string     `json:"ganador,omitempty"`
	Descripcion   string     `json:"descripcion,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	ResueltaAt    *time.Time `json:"resueltaAt,omitempty"`
	CanceladaAt   *time.Time `json:"canceladaAt,omitempty"`
}

// WagerFromModel converts a model.Wager
func WagerFromModel(w *model.Wager) Wager {
	participants := make([]string, len(w.Participants))
	for i, p := range w.Participants {
		participants[i] = string(p)
	}
	return Wager{
		ID:            string(w.ID),
		Participantes: participants,
		TipoPunto:     string(w.Category),
		Cantidad:      w.Stake,
		Estado:        string(w.State),
		Ganador:       string(w.Winner),
		Descripcion:   w.Description,
		CreatedAt:     w.CreatedAt,
		ResueltaAt:    w.ResolvedAt,
		CanceladaAt:   w.CancelledAt,
	}
}

// WagersFromModel converts a slice of wagers
func WagersFromModel(ws []*model.Wager) []Wager {
	out := make([]Wager, len(ws))
	for i, w := range ws {
		out[i] = WagerFromModel(w)
	}
	return out
}

// Resolution is the response of resolving a wager
type Resolution struct {
	Apuesta        Wager              `json:"apuesta"`
	Transferencias map[string]float64 `json:"transferencias"`
}

// ResolutionFromService converts a wager resolution
func ResolutionFromService(r *wager.Resolution) Resolution {
	transfers := make(map[string]float64, len(r.Transfers))
	for id, v := range r.Transfers {
		transfers[string(id)] = v
	}
	return Resolution{Apuesta: WagerFromModel(r.Wager), Transferencias: transfers}
}

// Bank represents the bank account
type Bank struct {
	Total     float64   `json:"total"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BankFromModel converts a model.BankAccount
func BankFromModel(b *model.BankAccount) Bank {
	return Bank{Total: b.Total, UpdatedAt: b.UpdatedAt}
}

// Transaction represents a bank transaction
type Transaction struct {
	ID            string    `json:"id"`
	UsuarioID     string    `json:"usuarioId"`
	UsuarioNombre string    `json:"usuarioNombre,omitempty"`
	Monto         float64   `json:"monto"`
	Tipo          string    `json:"tipo"`
	Descripcion   string    `json:"descripcion,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// TransactionFromModel converts a model.Transaction
func TransactionFromModel(t *model.Transaction, userName string) Transaction {
	return Transaction{
		ID:            string(t.ID),
		UsuarioID:     string(t.UserID),
		UsuarioNombre: userName,
		Monto:         t.Amount,
		Tipo:          string(t.Kind),
		Descripcion:   t.Description,
		Timestamp:     t.Timestamp,
	}
}

// PaymentsFromService converts payment history rows
func PaymentsFromService(rows []bank.PaymentRow) []Transaction {
	out := make([]Transaction, len(rows))
	for i, r := range rows {
		out[i] = TransactionFromModel(r.Transaction, r.UserName)
	}
	return out
}

// Receipt is the response of a payment
type Receipt struct {
	Transaccion Transaction `json:"transaccion"`
	Banco       Bank        `json:"banco"`
	Usuario     User        `json:"usuario"`
}

// ReceiptFromService converts a payment receipt
func ReceiptFromService(r *bank.Receipt) Receipt {
	return Receipt{
		Transaccion: TransactionFromModel(r.Transaction, r.User.Name),
		Banco:       BankFromModel(r.Bank),
		Usuario:     UserFromModel(r.User),
	}
}

// Debt is one user's outstanding debt
type Debt struct {
	ID     string  `json:"id"`
	Nombre string  `json:"nombre"`
	Deuda  float64 `json:"deuda"`
}

// DebtsFromService converts debt rows
func DebtsFromService(rows []bank.DebtRow) []Debt {
	out := make([]Debt, len(rows))
	for i, r := range rows {
		out[i] = Debt{ID: string(r.UserID), Nombre: r.Name, Deuda: r.Debt}
	}
	return out
}

// Highscore represents a board entry
type Highscore struct {
	Juego         string    `json:"juego"`
	UsuarioID     string    `json:"usuarioId"`
	UsuarioNombre string    `json:"usuarioNombre"`
	Puntuacion    int       `json:"puntuacion"`
	Fecha         time.Time `json:"fecha"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// HighscoreFromService converts a highscore entry
func HighscoreFromService(e highscore.Entry) Highscore {
	return Highscore{
		Juego:         string(e.Game),
		UsuarioID:     string(e.UserID),
		UsuarioNombre: e.UserName,
		Puntuacion:    e.Score,
		Fecha:         e.AchievedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

// HighscoresFromService converts a board
func HighscoresFromService(es []highscore.Entry) []Highscore {
	out := make([]Highscore, len(es))
	for i, e := range es {
		out[i] = HighscoreFromService(e)
	}
	return out
}

// Submission is the response of a score submission
type Submission struct {
	Highscore
	NuevoRecord bool `json:"nuevoRecord"`
}

// TableRow is one line of the global table
type TableRow struct {
	Posicion int    `json:"posicion"`
	ID       string `json:"id"`
	Nombre   string `json:"nombre"`
	Avatar   string `json:"avatar"`
	FotoURL  string `json:"fotoUrl,omitempty"`
	Points
	Actual Points  `json:"actual"`
	Total  float64 `json:"total"`
}

// Table is the global table
type Table struct {
	Semana   string     `json:"semana"`
	Usuarios []TableRow `json:"usuarios"`
}

func tableRow(pos int, r tabla.Row) TableRow {
	return TableRow{
		Posicion: pos,
		ID:       string(r.User.ID),
		Nombre:   r.User.Name,
		Avatar:   string(r.User.Avatar),
		FotoURL:  r.User.PhotoURL,
		Points:   PointsFromModel(r.User.Points),
		Actual:   PointsFromModel(r.Actual),
		Total:    r.Total,
	}
}

// TableFromService converts the global table
func TableFromService(t *tabla.Table) Table {
	rows := make([]TableRow, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = tableRow(i+1, r)
	}
	return Table{Semana: string(t.Week), Usuarios: rows}
}

// Summary is the aggregate of the global table
type Summary struct {
	Semana   string `json:"semana"`
	Usuarios int    `json:"usuarios"`
	Points
	Total float64   `json:"total"`
	Lider *TableRow `json:"lider"`
}

// SummaryFromService converts a table summary
func SummaryFromService(s *tabla.Summary) Summary {
	out := Summary{
		Semana:   string(s.Week),
		Usuarios: s.Users,
		Points:   PointsFromModel(s.Points),
		Total:    s.Total,
	}
	if s.Leader != nil {
		row := tableRow(1, *s.Leader)
		out.Lider = &row
	}
	return out
}
