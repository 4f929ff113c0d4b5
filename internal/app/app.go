package app

import (
	"context"
	nethttp "net/http"
	"time"

	"github.com/vantrack/server/internal/auth"
	"github.com/vantrack/server/internal/config"
	"github.com/vantrack/server/internal/fleet"
	"github.com/vantrack/server/internal/http"
	"github.com/vantrack/server/internal/http/handlers"
	"github.com/vantrack/server/internal/logging"
	"github.com/vantrack/server/internal/middleware"
	"github.com/vantrack/server/internal/notify"
)

const loginWindow = 10 * time.Minute

// Services are the domain services built over a set of stores
type Services struct {
	Resolver    *fleet.Resolver
	Recorder    *fleet.Recorder
	Roster      *fleet.Roster
	Regenerator *auth.CodeRegenerator
	Auth        *auth.Service
	Tokens      *auth.TokenService
}

// NewServices builds the domain services
func NewServices(cfg *config.Config, stores *Stores, publisher notify.Publisher, log logging.Logger) *Services {
	tokens := auth.NewTokenService(cfg.SessionSecret)
	return &Services{
		Resolver:    fleet.NewResolver(stores.Vehicles, log.With("component", "search")),
		Recorder:    fleet.NewRecorder(stores.Vehicles, publisher, time.Now, log.With("component", "sighting")),
		Roster:      fleet.NewRoster(stores.Vehicles, log.With("component", "roster")),
		Regenerator: auth.NewCodeRegenerator(stores.Codes, cfg.Location, log.With("component", "daily_code")),
		Auth: auth.NewService(
			cfg.AdminCode, cfg.SessionTTL, cfg.Location,
			stores.Codes, stores.AccessLog, tokens, log.With("component", "auth"),
		),
		Tokens: tokens,
	}
}

// OpenPublisher connects to MQTT when a broker is configured and falls back
// to a no-op publisher otherwise.
func OpenPublisher(ctx context.Context, cfg *config.Config, log logging.Logger) (notify.Publisher, error) {
	if cfg.MQTTBrokerURL == "" {
		return notify.Nop{}, nil
	}
	pub, err := notify.NewMQTTPublisher(notify.MQTTConfig{
		BrokerURL: cfg.MQTTBrokerURL,
		ClientID:  cfg.MQTTClientID,
		Topic:     cfg.MQTTTopic,
	}, log.With("component", "mqtt"))
	if err != nil {
		return nil, err
	}
	log.Info(ctx, "publishing sightings over mqtt", "topic", cfg.MQTTTopic)
	return pub, nil
}

// NewHandler assembles the HTTP handler. The returned stop func releases the
// login rate limiter.
func NewHandler(cfg *config.Config, stores *Stores, svc *Services, log logging.Logger) (nethttp.Handler, func()) {
	var verifier *auth.TokenService
	if cfg.SessionVerify {
		verifier = svc.Tokens
	}
	limiter := middleware.NewRateLimiter(loginWindow, cfg.LoginRateLimit)

	var pinger handlers.Pinger
	if stores.DB != nil {
		pinger = stores.DB
	}

	router := http.NewRouter(http.Handlers{
		Health:   handlers.NewHealthHandler(pinger),
		Auth:     handlers.NewAuthHandler(svc.Auth, cfg.CookieSecure, log.With("component", "http")),
		Vehicles: handlers.NewVehicleHandler(svc.Resolver, svc.Recorder, svc.Roster, log.With("component", "http")),
		Admin:    handlers.NewAdminHandler(svc.Roster, svc.Regenerator, stores.AccessLog, log.With("component", "http")),
	}, http.Options{
		Gate:         middleware.NewGate(verifier, cfg.CookieSecure, log.With("component", "gate")),
		LoginLimiter: limiter,
		StaticDir:    cfg.StaticDir,
		TrustProxy:   cfg.TrustProxy,
	})
	return router, limiter.Stop
}
