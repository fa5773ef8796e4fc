package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/Domenick1991/travelbooking/api"
	"github.com/Domenick1991/travelbooking/config"
	reservationsapi "github.com/Domenick1991/travelbooking/internal/api/reservations_service_api"
	"github.com/Domenick1991/travelbooking/internal/auth"
	"github.com/Domenick1991/travelbooking/internal/service/booking"
	"github.com/Domenick1991/travelbooking/internal/service/flights"
	"github.com/Domenick1991/travelbooking/internal/service/rooms"
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

const shutdownTimeout = 5 * time.Second

type Services struct {
	Rooms    rooms.RoomUseCase
	Flights  flights.FlightUseCase
	Bookings booking.BookingUseCase
	Tokens   *auth.Tokens
}

type Servers struct {
	grpcServer *grpc.Server
	httpServer *http.Server
}

// Run starts the gRPC and REST servers and blocks until ctx is cancelled or a server fails.
func Run(ctx context.Context, cfg *config.Config, svc Services) error {
	s := newServers(cfg, svc)

	lis, err := net.Listen("tcp", cfg.GRPC.Address)
	if err != nil {
		return fmt.Errorf("listen gRPC %s: %w", cfg.GRPC.Address, err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("gRPC listening on %s", cfg.GRPC.Address)
		return s.grpcServer.Serve(lis)
	})

	g.Go(func() error {
		log.Printf("HTTP listening on %s", cfg.HTTP.Address)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.grpcServer.GracefulStop()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func newServers(cfg *config.Config, svc Services) *Servers {
	grpcSrv := grpc.NewServer()
	reservationsapi.RegisterReservationsServer(grpcSrv, reservationsapi.NewServer(svc.Rooms, svc.Flights, svc.Bookings, svc.Tokens))

	router := api.NewRouter(
		api.NewRoomHandler(svc.Rooms),
		api.NewFlightHandler(svc.Flights),
		api.NewBookingHandler(svc.Bookings),
		svc.Tokens,
	)

	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           withCORS(cfg.HTTP.AllowedOrigins, router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &Servers{
		grpcServer: grpcSrv,
		httpServer: httpSrv,
	}
}

func withCORS(origins []string, next http.Handler) http.Handler {
	if len(origins) == 0 {
		return next
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})(next)
}
