package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/travelbooking/config"
	"github.com/Domenick1991/travelbooking/internal/auth"
	"github.com/Domenick1991/travelbooking/internal/bootstrap"
	"github.com/Domenick1991/travelbooking/internal/cache"
	"github.com/Domenick1991/travelbooking/internal/kafka"
	"github.com/Domenick1991/travelbooking/internal/lock"
	"github.com/Domenick1991/travelbooking/internal/repository"
	"github.com/Domenick1991/travelbooking/internal/service/booking"
	"github.com/Domenick1991/travelbooking/internal/service/flights"
	"github.com/Domenick1991/travelbooking/internal/service/rooms"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("load .env: %v", err)
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Printf("config %s not found, using defaults", cfgPath)
		cfg = config.Default()
	case err != nil:
		log.Fatalf("load config: %v", err)
	}
	if cfg.Auth.JWTSecret == "" {
		log.Fatalf("auth.jwt_secret (or JWT_SECRET) must be set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		catalog  repository.CatalogRepository
		bookings repository.BookingRepository
	)
	if cfg.Database.Enabled() {
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Fatalf("connect postgres: %v", err)
		}
		defer pool.Close()

		if err := repository.Migrate(ctx, pool); err != nil {
			log.Fatalf("migrate: %v", err)
		}
		catalog = repository.NewCatalogRepository(pool)
		bookings = repository.NewBookingRepository(pool)
	} else {
		log.Printf("database not configured, using in-memory store with the sample catalog")
		store := repository.NewMemory()
		if err := store.Load(repository.SampleCatalog()); err != nil {
			log.Fatalf("load sample catalog: %v", err)
		}
		catalog, bookings = store, store
	}

	var locker lock.Locker = lock.NewLocal(cfg.Booking.LockWait())
	if cfg.Redis.Enabled() {
		client := cache.NewRedisClient(cfg.Redis)
		defer client.Close()

		redisCache := cache.NewRedisCache(client)
		if err := redisCache.Ping(ctx); err != nil {
			log.Fatalf("connect redis: %v", err)
		}
		locker = lock.NewRedis(client, cfg.Booking.LockTTL(), cfg.Booking.LockWait())
		catalog = cache.NewCachedCatalog(catalog, redisCache, cfg.Booking.CatalogCacheTTL())
	}

	var producer booking.Producer
	if cfg.Kafka.Enabled() {
		p := kafka.NewProducer(cfg.Kafka.Brokers)
		defer p.Close()
		if err := p.CheckConnection(ctx); err != nil {
			log.Printf("WARNING: kafka unreachable, events will be dropped until it recovers: %v", err)
		}
		producer = p
	}

	services := bootstrap.Services{
		Rooms: rooms.NewRoomService(catalog, bookings, rooms.WithMaxStayDays(cfg.Booking.MaxStayDays)),
		Flights: flights.NewFlightService(catalog, bookings,
			flights.WithConnectionWindow(cfg.Booking.MinConnection(), cfg.Booking.MaxLayover()),
		),
		Bookings: booking.NewBookingService(
			bookings,
			catalog,
			locker,
			producer,
			cfg.Kafka.BookingEventsTopic,
			booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
			booking.WithLimits(booking.Limits{
				MaxStayDays:   cfg.Booking.MaxStayDays,
				MaxPassengers: cfg.Booking.MaxPassengers,
				MinConnection: cfg.Booking.MinConnection(),
			}),
		),
		Tokens: auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL()),
	}

	if err := bootstrap.Run(ctx, cfg, services); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
