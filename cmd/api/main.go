package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fitgrid/classbooking/internal/app"
	"github.com/fitgrid/classbooking/internal/auth"
	"github.com/fitgrid/classbooking/internal/clock"
	"github.com/fitgrid/classbooking/internal/config"
	"github.com/fitgrid/classbooking/internal/storage/postgres"
	transporthttp "github.com/fitgrid/classbooking/internal/transport/http"
	"github.com/fitgrid/classbooking/migrations"
)

func main() {
	logger := log.Default()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	policy, err := cfg.SchedulePolicy()
	if err != nil {
		log.Fatalf("booking policy: %v", err)
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect to db: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		log.Fatalf("db ping: %v", err)
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	clk := clock.NewSystem()
	enrollmentRepo := postgres.NewEnrollmentRepository(pool)
	enrollmentSvc := app.NewEnrollmentService(enrollmentRepo, clk, app.WithSchedulePolicy(policy))
	scheduleSvc := app.NewScheduleService(postgres.NewScheduleRepository(pool), clk)
	rosterSvc := app.NewRosterService(postgres.NewRosterRepository(pool))
	entitlementSvc := app.NewEntitlementService(postgres.NewEntitlementRepository(pool))

	parser := auth.NewTokenParser(cfg.JWTSecret)
	handler := transporthttp.NewHandler(scheduleSvc, enrollmentSvc, rosterSvc, entitlementSvc, parser, logger)
	router := transporthttp.NewRouter(handler, cfg.CORSOrigins)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	log.Printf("api listening on :%s", cfg.Port)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("server error: %v", err)
		}
	case <-stopCtx.Done():
		log.Printf("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("server shutdown error: %v", err)
	}
	log.Printf("server stopped")
}
