package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
	errW   io.Writer
}

// NewOutput creates a new Output formatter writing to w and errW
func NewOutput(format string, w, errW io.Writer) *Output {
	return &Output{format: format, w: w, errW: errW}
}

// outputFor builds an Output bound to the command's writers
func outputFor(cmd *cobra.Command) *Output {
	return NewOutput(cfg.Output, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": err.Error()})
		_, _ = fmt.Fprintln(o.errW, string(data))
	} else {
		_, _ = fmt.Fprintf(o.errW, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case HealthResult:
		o.printf("Status: %s\nStorage: %s\n", v.Status, v.Storage)
	case LoginResult:
		o.printf("Logged in, session expires %s\n", v.ExpiresAt.Format(time.RFC3339))
	case User:
		o.printUser(v)
	case []User:
		o.printUsers(v)
	case Registration:
		o.printRegistrations([]Registration{v})
	case []Registration:
		o.printRegistrations(v)
	case Wager:
		o.printWagers([]Wager{v})
	case []Wager:
		o.printWagers(v)
	case Resolution:
		o.printResolution(v)
	case Bank:
		o.printf("Banco: %s\n", num(v.Total))
	case Receipt:
		o.printf("Pago %s de %s registrado\n", num(v.Transaccion.Monto), v.Usuario.Nombre)
		o.printf("Deuda restante: %s\nBanco: %s\n", num(v.Usuario.Deuda), num(v.Banco.Total))
	case []Transaction:
		o.printTransactions(v)
	case []Debt:
		o.printDebts(v)
	case Submission:
		o.printHighscores([]Highscore{v.Highscore})
		if v.NuevoRecord {
			o.printf("Nuevo record!\n")
		}
	case []Highscore:
		o.printHighscores(v)
	case Table:
		o.printTable(v)
	case Rifa:
		o.printRifa(v)
	case []Rifa:
		for _, r := range v {
			o.printf("%s  %s  (%d)  %s\n", r.ID, r.Nombre, r.Cantidad, r.CreatedAt.Format("2006-01-02"))
		}
	case SpinResult:
		o.printAssignments(v.Asignaciones)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(o.w, format, args...)
}

func (o *Output) table() *tabwriter.Writer {
	return tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)
}

// num prints a counter without trailing zeros
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Points is the five counters of a user or a delta
type Points struct {
	Dojos       float64 `json:"dojos"`
	Pendejos    float64 `json:"pendejos"`
	Mimidos     float64 `json:"mimidos"`
	Castitontos float64 `json:"castitontos"`
	Chescos     float64 `json:"chescos"`
}

// HealthResult response type
type HealthResult struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Storage   string    `json:"storage"`
}

// LoginResult response type
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// User response type
type User struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
	Points
	Total   float64 `json:"total"`
	Deuda   float64 `json:"deuda"`
	Avatar  string  `json:"avatar"`
	FotoURL string  `json:"fotoUrl,omitempty"`
}

// Registration response type
type Registration struct {
	ID        string `json:"id"`
	UsuarioID string `json:"usuarioId"`
	Semana    string `json:"semana"`
	Points
	CreatedAt time.Time `json:"createdAt"`
}

// Wager response type
type Wager struct {
	ID            string   `json:"id"`
	Participantes []string `json:"participantes"`
	TipoPunto     string   `json:"tipoPunto"`
	Cantidad      float64  `json:"cantidad"`
	Estado        string   `json:"estado"`
	Ganador       string   `json:"ganador,omitempty"`
	Descripcion   string   `json:"descripcion,omitempty"`
}

// Resolution response type
type Resolution struct {
	Apuesta        Wager              `json:"apuesta"`
	Transferencias map[string]float64 `json:"transferencias"`
}

// Bank response type
type Bank struct {
	Total float64 `json:"total"`
}

// Transaction response type
type Transaction struct {
	ID            string    `json:"id"`
	UsuarioID     string    `json:"usuarioId"`
	UsuarioNombre string    `json:"usuarioNombre,omitempty"`
	Monto         float64   `json:"monto"`
	Tipo          string    `json:"tipo"`
	Descripcion   string    `json:"descripcion,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// Receipt response type
type Receipt struct {
	Transaccion Transaction `json:"transaccion"`
	Banco       Bank        `json:"banco"`
	Usuario     User        `json:"usuario"`
}

// Debt response type
type Debt struct {
	ID     string  `json:"id"`
	Nombre string  `json:"nombre"`
	Deuda  float64 `json:"deuda"`
}

// Highscore response type
type Highscore struct {
	Juego         string    `json:"juego"`
	UsuarioID     string    `json:"usuarioId"`
	UsuarioNombre string    `json:"usuarioNombre"`
	Puntuacion    int       `json:"puntuacion"`
	Fecha         time.Time `json:"fecha"`
}

// Submission response type
type Submission struct {
	Highscore
	NuevoRecord bool `json:"nuevoRecord"`
}

// TableRow response type
type TableRow struct {
	Posicion int    `json:"posicion"`
	ID       string `json:"id"`
	Nombre   string `json:"nombre"`
	Points
	Actual Points  `json:"actual"`
	Total  float64 `json:"total"`
}

// Table response type
type Table struct {
	Semana   string     `json:"semana"`
	Usuarios []TableRow `json:"usuarios"`
}

// Assignment pairs a raffle item with the player who drew it
type Assignment struct {
	Item    string `json:"item"`
	Jugador string `json:"jugador"`
}

// Rifa response type
type Rifa struct {
	ID           string       `json:"id"`
	Nombre       string       `json:"nombre"`
	Asignaciones []Assignment `json:"asignaciones"`
	Cantidad     int          `json:"cantidad"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// SpinResult response type
type SpinResult struct {
	Asignaciones []Assignment `json:"asignaciones"`
}

func (o *Output) printUser(u User) {
	o.printf("Usuario: %s (%s)\n", u.Nombre, u.ID)
	o.printf("Avatar: %s\n", u.Avatar)
	o.printf("Dojos: %s  Pendejos: %s  Mimidos: %s  Castitontos: %s  Chescos: %s\n",
		num(u.Dojos), num(u.Pendejos), num(u.Mimidos), num(u.Castitontos), num(u.Chescos))
	o.printf("Total: %s\n", num(u.Total))
	if u.Deuda > 0 {
		o.printf("Deuda: %s\n", num(u.Deuda))
	}
}

func (o *Output) printUsers(us []User) {
	tw := o.table()
	_, _ = fmt.Fprintln(tw, "ID\tNOMBRE\tDOJOS\tPENDEJOS\tMIMIDOS\tCASTITONTOS\tCHESCOS\tTOTAL\tDEUDA")
	for _, u := range us {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n", u.ID, u.Nombre,
			num(u.Dojos), num(u.Pendejos), num(u.Mimidos), num(u.Castitontos), num(u.Chescos),
			num(u.Total), num(u.Deuda))
	}
	_ = tw.Flush()
}

func (o *Output) printRegistrations(rs []Registration) {
	tw := o.table()
	_, _ = fmt.Fprintln(tw, "ID\tSEMANA\tUSUARIO\tDOJOS\tPENDEJOS\tMIMIDOS\tCASTITONTOS\tCHESCOS")
	for _, r := range rs {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n", r.ID, r.Semana, r.UsuarioID,
			num(r.Dojos), num(r.Pendejos), num(r.Mimidos), num(r.Castitontos), num(r.Chescos))
	}
	_ = tw.Flush()
}

func (o *Output) printWagers(ws []Wager) {
	tw := o.table()
	_, _ = fmt.Fprintln(tw, "ID\tESTADO\tTIPO\tCANTIDAD\tPARTICIPANTES\tGANADOR")
	for _, w := range ws {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n", w.ID, w.Estado, w.TipoPunto, num(w.Cantidad),
			len(w.Participantes), w.Ganador)
	}
	_ = tw.Flush()
}

func (o *Output) printResolution(r Resolution) {
	o.printf("Apuesta %s resuelta, ganador %s\n", r.Apuesta.ID, r.Apuesta.Ganador)
	ids := make([]string, 0, len(r.Transferencias))
	for id := range r.Transferencias {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		o.printf("  %s: %+g %s\n", id, r.Transferencias[id], r.Apuesta.TipoPunto)
	}
}

func (o *Output) printTransactions(ts []Transaction) {
	tw := o.table()
	_, _ = fmt.Fprintln(tw, "FECHA\tUSUARIO\tMONTO\tDESCRIPCION")
	for _, t := range ts {
		name := t.UsuarioNombre
		if name == "" {
			name = t.UsuarioID
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.Timestamp.Format("2006-01-02 15:04"), name, num(t.Monto), t.Descripcion)
	}
	_ = tw.Flush()
}

func (o *Output) printDebts(ds []Debt) {
	tw := o.table()
	_, _ = fmt.Fprintln(tw, "ID\tNOMBRE\tDEUDA")
	for _, d := range ds {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", d.ID, d.Nombre, num(d.Deuda))
	}
	_ = tw.Flush()
}

func (o *Output) printHighscores(hs []Highscore) {
	tw := o.table()
	_, _ = fmt.Fprintln(tw, "#\tJUEGO\tUSUARIO\tPUNTUACION")
	for i, h := range hs {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", i+1, h.Juego, h.UsuarioNombre, h.Puntuacion)
	}
	_ = tw.Flush()
}

func (o *Output) printTable(t Table) {
	o.printf("Semana: %s\n", t.Semana)
	tw := o.table()
	_, _ = fmt.Fprintln(tw, "#\tNOMBRE\tDOJOS\tPENDEJOS\tMIMIDOS\tCASTITONTOS\tCHESCOS\tTOTAL")
	for _, r := range t.Usuarios {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n", r.Posicion, r.Nombre,
			num(r.Dojos), num(r.Pendejos), num(r.Mimidos), num(r.Castitontos), num(r.Chescos), num(r.Total))
	}
	_ = tw.Flush()
}

func (o *Output) printRifa(r Rifa) {
	o.printf("%s (%s)\n", r.Nombre, r.ID)
	o.printAssignments(r.Asignaciones)
}

func (o *Output) printAssignments(as []Assignment) {
	tw := o.table()
	_, _ = fmt.Fprintln(tw, "ITEM\tJUGADOR")
	for _, a := range as {
		_, _ = fmt.Fprintf(tw, "%s\t%s\n", a.Item, a.Jugador)
	}
	_ = tw.Flush()
}
