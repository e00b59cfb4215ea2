package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/cinebook-web/internal/booking"
	"github.com/iliyamo/cinebook-web/internal/config"
	"github.com/iliyamo/cinebook-web/internal/database"
	"github.com/iliyamo/cinebook-web/internal/errmsg"
	"github.com/iliyamo/cinebook-web/internal/gateway"
	"github.com/iliyamo/cinebook-web/internal/handler"
	"github.com/iliyamo/cinebook-web/internal/queue"
	"github.com/iliyamo/cinebook-web/internal/repository"
	"github.com/iliyamo/cinebook-web/internal/router"
	"github.com/iliyamo/cinebook-web/internal/service"
	"github.com/iliyamo/cinebook-web/internal/session"
)

const sweepInterval = 10 * time.Minute

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	eps, err := config.LoadEndpoints(cfg.Gateway.EndpointsFile)
	if err != nil {
		log.Fatal(err)
	}
	msgs := errmsg.New(cfg.Locale)

	// Redis is optional unless it backs the sessions.
	rdb, err := config.NewRedisClient(ctx)
	if err != nil {
		if cfg.Session.Store == "redis" {
			log.Fatal(err)
		}
		log.Warnf("redis unavailable, cache and rate limiting disabled: %v", err)
	} else {
		defer rdb.Close()
	}

	store, closeStore, err := sessionStore(ctx, cfg, rdb)
	if err != nil {
		log.Fatal(err)
	}
	sessions := session.NewManager(store, cfg.Session)

	client := gateway.New(cfg.Gateway, eps)

	var events booking.Publisher
	if cfg.Booking.EventsEnabled {
		events = service.NewAMQPPublisher(cfg.AMQPURL)
	}
	bookings := booking.NewService(client.Movies(), client.Bookings(), booking.Options{
		DedupeByHold: cfg.Booking.DedupeByHold,
		Events:       events,
		Payments:     client.Payments(),
	})
	if cfg.Booking.ConsumerEnabled {
		go func() {
			if err := queue.StartBookingConsumer(ctx, cfg.AMQPURL, queue.DefaultLogPath); err != nil && !errors.Is(err, context.Canceled) {
				log.Errorf("booking consumer stopped: %v", err)
			}
		}()
	}

	e := router.New(router.Deps{
		Sessions:  sessions,
		Msgs:      msgs,
		Redis:     rdb,
		Cache:     config.LoadCacheConfig(),
		RateLimit: config.LoadRateLimitConfig(),
	}, router.Handlers{
		Auth:          handler.NewAuthHandler(service.NewAuthService(client.Auth()), msgs),
		Browse:        handler.NewBrowseHandler(service.NewBrowseService(client.Movies()), msgs),
		Booking:       handler.NewBookingHandler(bookings, msgs),
		Notifications: handler.NewNotificationHandler(client.Notifications(), msgs),
	})

	addr := ":" + cfg.Port
	go func() {
		log.Infof("listening on %s (env=%s, sessions=%s)", addr, cfg.Env, cfg.Session.Store)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Errorf("shutdown: %v", err)
	}
	closeStore()
}

// sessionStore builds the store named by SESSION_STORE and starts its
// expiry sweeper where the backend does not expire keys itself. The
// returned close func releases the store's connections.
func sessionStore(ctx context.Context, cfg config.Config, rdb *redis.Client) (session.Store, func(), error) {
	switch cfg.Session.Store {
	case "redis":
		return session.NewRedisStore(rdb, "cinebook:session"), func() {}, nil
	case "mysql":
		db, err := database.Open(ctx, cfg.DB)
		if err != nil {
			return nil, nil, err
		}
		if err := database.EnsureSessionSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		repo := repository.NewSessionRepo(db)
		go repo.Run(ctx, sweepInterval)
		return repo, func() { _ = db.Close() }, nil
	default:
		mem := session.NewMemoryStore()
		go mem.Run(ctx, sweepInterval)
		return mem, func() {}, nil
	}
}
