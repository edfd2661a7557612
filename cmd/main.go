package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/trip-ledger/internal/auth"
	"github.com/ukydev/trip-ledger/internal/cache"
	"github.com/ukydev/trip-ledger/internal/config"
	"github.com/ukydev/trip-ledger/internal/db"
	"github.com/ukydev/trip-ledger/internal/handlers"
	"github.com/ukydev/trip-ledger/internal/middleware"
	"github.com/ukydev/trip-ledger/internal/models"
	"github.com/ukydev/trip-ledger/internal/receipts"
	"github.com/ukydev/trip-ledger/internal/sensor"
)

// server bundles the handlers behind the HTTP routes.
type server struct {
	auth     *handlers.AuthHandler
	vehicles *handlers.VehicleHandler
	trips    *handlers.TripHandler
	ledger   *handlers.LedgerHandler
	receipts *handlers.ReceiptHandler
	authMW   *middleware.AuthMiddleware
	limiter  *middleware.RateLimitMiddleware
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// routes wires handlers, permissions and middleware into one handler.
func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	perm := func(p string, h http.HandlerFunc) http.Handler {
		return s.authMW.RequirePermission(p)(h)
	}

	mux.HandleFunc("/health", healthHandler)
	mux.Handle("POST /api/auth/login", s.limiter.RateLimit(10, time.Minute)(http.HandlerFunc(s.auth.Login)))
	mux.HandleFunc("GET /api/auth/profile", s.auth.GetProfile)

	mux.Handle("GET /api/vehicles", perm(models.PermViewLedger, s.vehicles.List))
	mux.Handle("GET /api/vehicles/{id}", perm(models.PermViewLedger, s.vehicles.Get))
	mux.Handle("PUT /api/vehicles/{id}", perm(models.PermManageVehicles, s.vehicles.Update))
	mux.Handle("DELETE /api/vehicles/{id}", perm(models.PermManageVehicles, s.vehicles.Delete))

	mux.Handle("GET /api/vehicles/{id}/trips", perm(models.PermViewLedger, s.trips.List))
	mux.Handle("POST /api/vehicles/{id}/trips", perm(models.PermManageTrips, s.trips.Create))
	mux.Handle("PUT /api/vehicles/{id}/trips/{tripId}", perm(models.PermManageTrips, s.trips.Update))
	mux.Handle("DELETE /api/vehicles/{id}/trips/{tripId}", perm(models.PermManageTrips, s.trips.Delete))
	mux.Handle("PUT /api/vehicles/{id}/trips/{tripId}/order", perm(models.PermManageTrips, s.trips.Reorder))

	mux.Handle("GET /api/vehicles/{id}/summary", perm(models.PermViewLedger, s.ledger.Summary))
	mux.Handle("GET /api/vehicles/{id}/grid", perm(models.PermViewLedger, s.ledger.Grid))
	mux.Handle("POST /api/vehicles/{id}/preview", perm(models.PermViewLedger, s.ledger.Preview))
	mux.Handle("GET /api/vehicles/{id}/receipts/verify", perm(models.PermViewLedger, s.ledger.VerifyReceipts))

	mux.Handle("GET /api/receipts/{id}/candidates", perm(models.PermManageReceipts, s.receipts.Candidates))
	mux.Handle("POST /api/receipts/{id}/assign", perm(models.PermManageReceipts, s.receipts.Assign))
	mux.Handle("PUT /api/receipts/{id}/override", perm(models.PermManageReceipts, s.receipts.SetOverride))

	return middleware.RequestLogger(s.authMW.Authenticate(mux))
}

// connectRedis returns nil when Redis is not configured or unreachable; the
// summary cache then runs disabled.
func connectRedis(ctx context.Context, cfg *config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		log.Info("REDIS_ADDR not set, summary cache disabled")
		return nil
	}
	client, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, summary cache disabled")
		return nil
	}
	log.WithField("addr", cfg.RedisAddr).Info("Connected to Redis")
	return client
}

func connectSensor(cfg *config.Config) sensor.Publisher {
	if cfg.MQTTBroker == "" {
		return sensor.NoopPublisher{}
	}
	pub, err := sensor.NewMQTTPublisher(sensor.MQTTOptions{
		Broker:   cfg.MQTTBroker,
		ClientID: cfg.MQTTClientID,
		Username: cfg.MQTTUsername,
		Password: cfg.MQTTPassword,
		Topic:    cfg.SensorTopic,
	})
	if err != nil {
		log.WithError(err).Warn("MQTT broker unavailable, sensor push disabled")
		return sensor.NoopPublisher{}
	}
	log.WithFields(log.Fields{"broker": cfg.MQTTBroker, "topic": cfg.SensorTopic}).Info("Connected to MQTT broker")
	return pub
}

func main() {
	log.SetFormatter(&log.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := db.ConnectMongo(ctx, cfg.MongoURI)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())
	log.Info("Connected to MongoDB successfully")

	database := client.Database(cfg.MongoDB)
	if err := db.EnsureIndexes(ctx, database); err != nil {
		log.WithError(err).Warn("Failed to create indexes")
	}

	vehicles := &db.MongoCollection{Collection: database.Collection(db.VehiclesCollection)}
	trips := &db.MongoCollection{Collection: database.Collection(db.TripsCollection)}
	receiptStore := &db.MongoCollection{Collection: database.Collection(db.ReceiptsCollection)}
	operators := &db.MongoOperatorCollection{Collection: database.Collection(db.OperatorsCollection)}

	redisClient := connectRedis(ctx, cfg)
	if redisClient != nil {
		defer redisClient.Close()
	}
	summaries := cache.NewSummaryCache(redisClient, cfg.SummaryTTL)

	publisher := connectSensor(cfg)
	if mqttPub, ok := publisher.(*sensor.MQTTPublisher); ok {
		defer mqttPub.Close()
	}
	pusher := sensor.NewPusher(publisher)

	authService, err := auth.NewService(cfg.JWTSecret, cfg.JWTExpiry)
	if err != nil {
		log.WithError(err).Fatal("Failed to create auth service")
	}
	matcher := receipts.NewMatcher(cfg.Policy.ReceiptTolerance)

	s := &server{
		auth:     handlers.NewAuthHandler(authService, operators),
		vehicles: handlers.NewVehicleHandler(vehicles, trips, summaries),
		trips:    handlers.NewTripHandler(vehicles, trips, receiptStore, summaries),
		ledger: handlers.NewLedgerHandler(handlers.LedgerDeps{
			Vehicles: vehicles,
			Trips:    trips,
			Receipts: receiptStore,
			Cache:    summaries,
			Pusher:   pusher,
			Policy:   cfg.Policy.Margin,
			Matcher:  matcher,
		}),
		receipts: handlers.NewReceiptHandler(receiptStore, trips, summaries, matcher),
		authMW:   middleware.NewAuthMiddleware(authService),
		limiter:  middleware.NewRateLimitMiddleware(),
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.WithField("port", cfg.Port).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
	pusher.Wait()
}
