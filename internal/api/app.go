package api

import (
	"log/slog"

	"github.com/dojosmash/dojo-smash/internal/factory"
)

// ConfigForApp builds a RouterConfig from a wired App
func ConfigForApp(app *factory.App, logger *slog.Logger, allowedOrigins []string) RouterConfig {
	cfg := RouterConfig{
		Logger:           logger,
		Clock:            app.Clock,
		Storage:          app.Storage,
		AllowedOrigins:   allowedOrigins,
		AuthService:      app.AuthService,
		UserService:      app.UserService,
		WeeklyService:    app.WeeklyService,
		WagerService:     app.WagerService,
		BankService:      app.BankService,
		HighscoreService: app.HighscoreService,
		RifaService:      app.RifaService,
		TablaService:     app.TablaService,
	}
	if app.Hub != nil {
		cfg.Events = app.Hub.Handler()
	}
	return cfg
}
