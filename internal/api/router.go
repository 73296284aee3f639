package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dojosmash/dojo-smash/internal/api/apierr"
	"github.com/dojosmash/dojo-smash/internal/api/handler"
	"github.com/dojosmash/dojo-smash/internal/api/middleware"
	"github.com/dojosmash/dojo-smash/internal/dependencies/clock"
	"github.com/dojosmash/dojo-smash/internal/services/auth"
	"github.com/dojosmash/dojo-smash/internal/services/bank"
	"github.com/dojosmash/dojo-smash/internal/services/highscore"
	"github.com/dojosmash/dojo-smash/internal/services/rifa"
	"github.com/dojosmash/dojo-smash/internal/services/tabla"
	"github.com/dojosmash/dojo-smash/internal/services/users"
	"github.com/dojosmash/dojo-smash/internal/services/wager"
	"github.com/dojosmash/dojo-smash/internal/services/weekly"
	shared "github.com/dojosmash/dojo-smash/internal/middleware"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger           *slog.Logger
	Clock            clock.Clock
	Storage          handler.Pinger
	Events           http.Handler
	AllowedOrigins   []string
	AuthService      *auth.Service
	UserService      *users.Service
	WeeklyService    *weekly.Service
	WagerService     *wager.Service
	BankService      *bank.Service
	HighscoreService *highscore.Service
	RifaService      *rifa.Service
	TablaService     *tabla.Service
}

type handlers struct {
	system     *handler.SystemHandler
	users      *handler.UserHandler
	weekly     *handler.WeeklyHandler
	wagers     *handler.WagerHandler
	bank       *handler.BankHandler
	highscores *handler.HighscoreHandler
	rifa       *handler.RifaHandler
	tabla      *handler.TablaHandler
	events     http.Handler
	admin      func(http.Handler) http.Handler
}

// NewRouter creates a new API router with all routes configured.
// Every route is served both at the root and under /api.
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(shared.Logging(cfg.Logger))

	h := handlers{
		system:     handler.NewSystemHandler(cfg.AuthService, cfg.Storage, cfg.Clock),
		users:      handler.NewUserHandler(cfg.UserService),
		weekly:     handler.NewWeeklyHandler(cfg.WeeklyService),
		wagers:     handler.NewWagerHandler(cfg.WagerService),
		bank:       handler.NewBankHandler(cfg.BankService),
		highscores: handler.NewHighscoreHandler(cfg.HighscoreService),
		rifa:       handler.NewRifaHandler(cfg.RifaService),
		tabla:      handler.NewTablaHandler(cfg.TablaService),
		events:     cfg.Events,
		admin:      middleware.RequireAdmin(cfg.AuthService),
	}

	h.mount(r.PathPrefix("/api").Subrouter())
	h.mount(r)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		apierr.WriteError(w, req, apierr.NewNotFoundError())
	})

	// CORS sits outside mux so preflights never hit route matching
	return shared.CORS(cfg.AllowedOrigins)(r)
}

func (h handlers) mount(r *mux.Router) {
	gate := func(fn http.HandlerFunc) http.Handler { return h.admin(fn) }

	r.HandleFunc("/health", h.system.Health).Methods(http.MethodGet)
	r.HandleFunc("/auth/login", h.system.Login).Methods(http.MethodPost)
	r.Handle("/auth/logout", gate(h.system.Logout)).Methods(http.MethodPost)

	// Users
	r.HandleFunc("/usuarios", h.users.List).Methods(http.MethodGet)
	r.Handle("/usuarios", gate(h.users.Create)).Methods(http.MethodPost)
	r.HandleFunc("/usuarios/{id}", h.users.Get).Methods(http.MethodGet)
	r.Handle("/usuarios/{id}", gate(h.users.Update)).Methods(http.MethodPut)
	r.Handle("/usuarios/{id}", gate(h.users.Delete)).Methods(http.MethodDelete)
	r.Handle("/usuarios/{id}/puntos", gate(h.users.ApplyPoints)).Methods(http.MethodPut)
	r.HandleFunc("/usuarios/{id}/historial", h.users.History).Methods(http.MethodGet)

	// Weekly registration
	r.HandleFunc("/conteo-semanal", h.weekly.List).Methods(http.MethodGet)
	r.Handle("/conteo-semanal", gate(h.weekly.Register)).Methods(http.MethodPost)
	r.HandleFunc("/conteo-semanal/ultimas-dos-semanas", h.weekly.LastTwoWeeks).Methods(http.MethodGet)
	r.Handle("/conteo-semanal/batch", gate(h.weekly.RegisterBatch)).Methods(http.MethodPost)
	r.Handle("/conteo-semanal/{id}", gate(h.weekly.Edit)).Methods(http.MethodPut)

	// Bank
	r.HandleFunc("/banco", h.bank.Status).Methods(http.MethodGet)
	r.Handle("/banco/pago", gate(h.bank.Pay)).Methods(http.MethodPost)
	r.HandleFunc("/banco/historial", h.bank.History).Methods(http.MethodGet)
	r.HandleFunc("/banco/usuarios", h.bank.Debts).Methods(http.MethodGet)

	// Wagers
	r.HandleFunc("/apuestas", h.wagers.ListPending).Methods(http.MethodGet)
	r.Handle("/apuestas", gate(h.wagers.Create)).Methods(http.MethodPost)
	r.HandleFunc("/apuestas/historial", h.wagers.ListHistory).Methods(http.MethodGet)
	r.HandleFunc("/apuestas/{id}", h.wagers.Get).Methods(http.MethodGet)
	r.Handle("/apuestas/{id}", gate(h.wagers.Cancel)).Methods(http.MethodDelete)
	r.Handle("/apuestas/{id}/resolver", gate(h.wagers.Resolve)).Methods(http.MethodPost)

	// Global table
	r.HandleFunc("/tabla-global", h.tabla.Table).Methods(http.MethodGet)
	r.HandleFunc("/tabla-global/resumen", h.tabla.Summary).Methods(http.MethodGet)
	r.HandleFunc("/tabla-global/exportar", h.tabla.Export).Methods(http.MethodGet)

	// Arcade highscores (open)
	r.HandleFunc("/highscores", h.highscores.All).Methods(http.MethodGet)
	r.HandleFunc("/highscores", h.highscores.Submit).Methods(http.MethodPost)
	r.HandleFunc("/highscores/{juego}", h.highscores.Top).Methods(http.MethodGet)
	r.HandleFunc("/highscores/{juego}/global", h.highscores.GlobalBest).Methods(http.MethodGet)
	r.HandleFunc("/highscores/{juego}/usuario/{id}", h.highscores.ForUser).Methods(http.MethodGet)

	// Raffle (open)
	r.HandleFunc("/dojo-rifa", h.rifa.List).Methods(http.MethodGet)
	r.HandleFunc("/dojo-rifa", h.rifa.Save).Methods(http.MethodPost)
	r.HandleFunc("/dojo-rifa", h.rifa.Clear).Methods(http.MethodDelete)
	r.HandleFunc("/dojo-rifa/ultima", h.rifa.Latest).Methods(http.MethodGet)
	r.HandleFunc("/dojo-rifa/girar", h.rifa.Spin).Methods(http.MethodPost)
	r.HandleFunc("/dojo-rifa/{id}", h.rifa.Delete).Methods(http.MethodDelete)

	if h.events != nil {
		r.Handle("/eventos", h.events).Methods(http.MethodGet)
	}
}
