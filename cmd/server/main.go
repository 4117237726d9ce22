package main

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/aneedalie/meili/internal/api"
	"github.com/aneedalie/meili/internal/config"
	"github.com/aneedalie/meili/internal/routers"
	"github.com/aneedalie/meili/internal/session"
	"github.com/aneedalie/meili/internal/storage"
	"github.com/aneedalie/meili/internal/utils"
)

const snapshotCacheTTL = 30 * time.Second

func main() {
	cfg := config.Load()
	logger := utils.NewLogger()
	defer logger.Sync()

	var (
		db  *gorm.DB
		err error
	)
	if cfg.DatabaseURL != "" {
		db, err = gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	} else {
		// Development fallback: a local sqlite file.
		db, err = gorm.Open(sqlite.Open("meili.db"), &gorm.Config{})
	}
	if err != nil {
		log.Fatalf("open database: %v", err)
	}

	gateway := storage.NewGormGateway(db)
	if err := gateway.Migrate(); err != nil {
		log.Fatalf("migrate schema: %v", err)
	}

	var store storage.Store = gateway
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		store = storage.NewCachedStore(gateway, rdb, snapshotCacheTTL, logger)
		logger.Info("trip snapshot cache enabled", "addr", cfg.RedisAddr)
	}

	hub := session.NewHub(store, logger)
	h := api.NewHandlers(logger, hub, store, []byte(cfg.JWTSecret))

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
	)
	r.Mount("/", routers.New(h))

	addr := ":" + cfg.Port
	log.Printf("meili server listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, r))
}
