package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/coach-call-booking/internal/config"
	"github.com/iliyamo/coach-call-booking/internal/database"
	"github.com/iliyamo/coach-call-booking/internal/handler"
	"github.com/iliyamo/coach-call-booking/internal/middleware"
	"github.com/iliyamo/coach-call-booking/internal/notify"
	"github.com/iliyamo/coach-call-booking/internal/queue"
	"github.com/iliyamo/coach-call-booking/internal/repository"
	"github.com/iliyamo/coach-call-booking/internal/router"
)

func main() {
	// Local development reads a .env file; in deployment the variables
	// come from the environment and the file is simply absent.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Repositories over the single connection pool.
	slots := repository.NewSlotRepo(db)
	bookings := repository.NewBookingRepo(db)
	programs := repository.NewProgramRepo(db)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)

	// Seed the admin account so a fresh deployment has a way in.
	seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := users.EnsureAdmin(seedCtx, cfg.AdminEmail, cfg.AdminPassword, cfg.BcryptCost); err != nil {
		log.Fatalf("admin seed: %v", err)
	}
	cancel()

	relay := notify.NewRelay(cfg.RelayURL, cfg.RelayAccessKey, cfg.RelayTimeout)

	slotH := handler.NewSlotHandler(slots)
	programH := handler.NewProgramHandler(programs)
	bookingH := handler.NewBookingHandler(slots, bookings, relay, cfg.RelayTimeout)
	authH := handler.NewAuthHandler(cfg, users, tokens)

	e := echo.New()

	// Redis-backed rate limiting on the public surface, plus a response
	// cache restricted to the program catalog (slot availability is
	// time-sensitive and must never be served stale).  Both degrade to
	// pass-through when Redis is unavailable.
	var public router.PublicMiddleware
	if rdb := config.NewRedisClient(); rdb != nil {
		public.RateLimit = middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
		public.Cache = middleware.NewResponseCache(config.LoadCacheConfig(), rdb)
	}

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, slotH, programH, bookingH, public)
	router.RegisterAdmin(e, slotH, programH, bookingH, cfg.JWTSecret)

	// Booking events land on RabbitMQ; the consumer appends them to the
	// audit log and reconnects on broker failure.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
