package router

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"amzhub/internal/config"
	"amzhub/internal/expander"
	"amzhub/internal/handler"
	"amzhub/internal/middleware"
	"amzhub/internal/paapi"
	"amzhub/internal/secrets"
	"amzhub/internal/service"
)

// New builds the HTTP router. cache may be nil, which disables the expansion
// memo.
func New(cfg *config.Config, db *sql.DB, cipher *secrets.Cipher, cache *redis.Client) http.Handler {
	settingSvc := service.NewSettingService(db)
	credsSvc := service.NewCredentialService(db, cipher)
	secretSvc := service.NewSecretService(db, cipher)
	logSvc := service.NewLogService(db)
	expandSvc := service.NewExpandService(expander.New(), cache, cfg.CacheTTL())

	healthH := handler.NewHealthHandler("0.3.0")
	settingH := handler.NewSettingHandler(settingSvc)
	secretH := handler.NewSecretHandler(secretSvc)
	logH := handler.NewLogHandler(logSvc)
	paapiH := handler.NewPaapiHandler(credsSvc, logSvc, paapi.NewClient(
		paapi.WithHTTPClient(&http.Client{Timeout: 15 * time.Second}),
	))
	expandH := handler.NewExpandHandler(expandSvc, logSvc)

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Trace)
	r.Use(middleware.CORS)

	r.Get("/v1/health", healthH.Health)
	r.Get("/v1/version", healthH.Version)

	r.Get("/v1/settings", settingH.List)
	r.Get("/v1/settings/{key}", settingH.Get)
	r.Put("/v1/settings/{key}", settingH.Put)
	r.Delete("/v1/settings/{key}", settingH.Delete)

	r.Get("/v1/secrets", secretH.List)
	r.Get("/v1/secrets/{name}", secretH.Get)
	r.Put("/v1/secrets/{name}", secretH.Put)
	r.Delete("/v1/secrets/{name}", secretH.Delete)

	r.Get("/v1/logs", logH.List)
	r.Post("/v1/logs", logH.Append)
	r.Delete("/v1/logs", logH.Clear)

	r.Get("/v1/paapi/config", paapiH.GetConfig)
	r.Put("/v1/paapi/config", paapiH.PutConfig)
	r.Delete("/v1/paapi/config", paapiH.DeleteConfig)
	r.Post("/v1/paapi/lookup", paapiH.Lookup)

	r.Post("/v1/expand", expandH.Expand)

	return r
}
