package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/warelogic/ims-backend/api/controllers"
	"github.com/warelogic/ims-backend/api/middleware"
	"github.com/warelogic/ims-backend/internal/backorders"
	"github.com/warelogic/ims-backend/internal/bins"
	"github.com/warelogic/ims-backend/internal/cyclecount"
	"github.com/warelogic/ims-backend/internal/inbound"
	"github.com/warelogic/ims-backend/internal/stockops"
	"github.com/warelogic/ims-backend/pkg/config"
	"github.com/warelogic/ims-backend/pkg/db"
	"github.com/warelogic/ims-backend/pkg/logger"
	"github.com/warelogic/ims-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	stockService stockops.Service,
	binService bins.Service,
	cycleCountService cyclecount.Service,
	inboundService inbound.Service,
	backorderService backorders.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	writePolicy := middleware.NewRateLimitPolicy(
		"writes",
		cfg.RateLimit.WriteWindow,
		cfg.RateLimit.WriteIPLimit,
		cfg.RateLimit.WriteActorLimit,
	)

	var cachePinger redis.Pinger
	if redisClient != nil {
		cachePinger = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, cachePinger))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Get("/api/public/ping", controllers.PublicPing())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.ActorContext(logg))
		r.Use(middleware.Idempotency(idempotencyStore(redisClient), logg))
		r.Use(middleware.RateLimit(writePolicy, rateLimiterStore(redisClient), logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/stock", func(r chi.Router) {
			r.Post("/add", controllers.StockAdd(stockService, logg))
			r.Post("/remove", controllers.StockRemove(stockService, logg))
			r.Post("/move", controllers.StockMove(stockService, logg))
			r.Post("/transfer", controllers.StockTransfer(stockService, logg))
			r.Post("/staging-putaway", controllers.StockStagingPutaway(stockService, logg))
			r.Post("/shipment", controllers.StockShipment(stockService, logg))
		})

		r.Route("/bins", func(r chi.Router) {
			r.Get("/search", controllers.BinSearch(binService, logg))
			r.Get("/scan/{code}", controllers.BinScan(binService, logg))
			r.Get("/{binCode}", controllers.BinDetails(binService, logg))
			r.Get("/{binCode}/history", controllers.BinHistory(binService, logg))
		})

		r.Route("/cycle-counts", func(r chi.Router) {
			r.Post("/", controllers.CycleCountCreate(cycleCountService, logg))
			r.Get("/report", controllers.CycleCountReport(cycleCountService, logg))
			r.Get("/{batchId}", controllers.CycleCountDetail(cycleCountService, logg))
			r.Post("/{batchId}/submit", controllers.CycleCountSubmit(cycleCountService, logg))
			r.Post("/{batchId}/cancel-line", controllers.CycleCountCancelLine(cycleCountService, logg))
		})

		r.Route("/inbound", func(r chi.Router) {
			r.Post("/receive", controllers.InboundReceive(inboundService, logg))
			r.Get("/receipts/{transactionId}", controllers.InboundReceiptDetail(inboundService, logg))
		})

		r.Post("/backorders", controllers.BackorderCreate(backorderService, logg))
	})

	return r
}

// A nil *redis.Client must become a nil interface so the middleware can
// detect the cache being absent and pass requests through.
func idempotencyStore(client *redis.Client) redis.IdempotencyStore {
	if client == nil {
		return nil
	}
	return client
}

func rateLimiterStore(client *redis.Client) middleware.RateLimiterStore {
	if client == nil {
		return nil
	}
	return client
}
