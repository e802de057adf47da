// reconcile revisa las RFQ cuyas ofertas no concuerdan con su estado (adjudicaciones a medias)
// y las repara. Pensado para ejecutarse periódicamente (cron) contra PostgreSQL.
//
// Uso: go run ./cmd/reconcile
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jhoicas/Cotizaciones-api/internal/application/award"
	"github.com/jhoicas/Cotizaciones-api/internal/application/ports"
	"github.com/jhoicas/Cotizaciones-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Cotizaciones-api/pkg/config"
	"github.com/jhoicas/Cotizaciones-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: cfg.App.Name})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	coordinator := award.NewCoordinator(
		postgres.NewTxRunner(pool),
		postgres.NewRfqRepository(pool),
		postgres.NewBidRepository(pool),
		ports.NopObserver{},
		log,
	)

	reports, err := coordinator.ReconcileAll(ctx)
	repaired := 0
	for _, r := range reports {
		if r.Repaired {
			repaired++
		}
		log.Info().
			Str("rfq_id", r.RfqID).
			Bool("repaired", r.Repaired).
			Strs("rejected_bid_ids", r.RejectedBidIDs).
			Strs("issues", r.Issues).
			Msg("rfq revisada")
	}
	log.Info().Int("revisadas", len(reports)).Int("reparadas", repaired).Msg("reconciliación terminada")
	if err != nil {
		log.Error().Err(err).Msg("reconciliación con errores")
		os.Exit(1)
	}
}
