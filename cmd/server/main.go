package main

import (
	"context"
	"net/http"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	webAdapter "github.com/fahmi-blip/data-barang-sub000/internal/adapters/web"
	"github.com/fahmi-blip/data-barang-sub000/internal/ai"
	"github.com/fahmi-blip/data-barang-sub000/internal/app"
	"github.com/fahmi-blip/data-barang-sub000/internal/cache"
	"github.com/fahmi-blip/data-barang-sub000/internal/core"
	"github.com/fahmi-blip/data-barang-sub000/internal/db"
)

func main() {
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.WithError(err).Fatal("database")
	}
	defer pool.Close()

	c := newCache(ctx, log)
	defer c.Close()

	ledger := core.NewStockLedger(pool)
	catalogService := core.NewCatalogService(pool)
	pricingService := core.NewPricingService(pool)
	procurementService := core.NewProcurementService(pool)
	receivingService := core.NewReceivingService(pool, ledger)
	salesService := core.NewSalesService(pool, ledger)

	var agent ai.AgentService
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		agent = ai.NewAgent(apiKey)
	} else {
		log.Warn("OPENAI_API_KEY is not set; assistant endpoint disabled")
	}

	svc := app.NewAppService(catalogService, pricingService, procurementService,
		receivingService, salesService, ledger, c, agent, log)

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	handler := webAdapter.NewHandler(svc, allowedOrigins, log)

	log.WithField("port", port).Info("server starting")
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.WithError(err).Fatal("server")
	}
}

// newCache connects to Redis when REDIS_ADDR is set, otherwise falls back
// to a no-op cache so the service runs without Redis in development.
func newCache(ctx context.Context, log *logrus.Logger) cache.Cache {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		log.Info("REDIS_ADDR is not set; caching disabled")
		return cache.NewNoop()
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			log.WithField("value", v).Fatal("invalid REDIS_DB")
		}
		redisDB = n
	}

	c, err := cache.NewRedis(ctx, addr, os.Getenv("REDIS_PASSWORD"), redisDB)
	if err != nil {
		log.WithError(err).Fatal("redis")
	}
	return c
}
