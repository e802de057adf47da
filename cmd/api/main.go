// @title        Cotizaciones API
// @version      1.0
// @description  Solicitudes de cotización, ofertas de proveedores y adjudicación.
// @BasePath     /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
// @description                 Bearer <token>
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	_ "github.com/jhoicas/Cotizaciones-api/docs"
	"github.com/jhoicas/Cotizaciones-api/internal/application/auth"
	"github.com/jhoicas/Cotizaciones-api/internal/application/award"
	"github.com/jhoicas/Cotizaciones-api/internal/application/bid"
	"github.com/jhoicas/Cotizaciones-api/internal/application/draft"
	"github.com/jhoicas/Cotizaciones-api/internal/application/notification"
	"github.com/jhoicas/Cotizaciones-api/internal/application/ports"
	"github.com/jhoicas/Cotizaciones-api/internal/application/rfq"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/repository"
	"github.com/jhoicas/Cotizaciones-api/internal/infrastructure/memory"
	"github.com/jhoicas/Cotizaciones-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/Cotizaciones-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Cotizaciones-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Cotizaciones-api/internal/interfaces/http"
	"github.com/jhoicas/Cotizaciones-api/pkg/config"
	"github.com/jhoicas/Cotizaciones-api/pkg/logger"
)

// storage repositorios de lectura y el ejecutor de transacciones del backend elegido.
type storage struct {
	tx        ports.TxRunner
	rfqRepo   repository.RfqRepository
	bidRepo   repository.BidRepository
	notifRepo repository.NotificationRepository
	close     func()
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) storage {
	if cfg.Storage.Driver == config.StorageMemory {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		store := memory.NewStore()
		return storage{
			tx:        store,
			rfqRepo:   memory.NewRfqRepository(store),
			bidRepo:   memory.NewBidRepository(store),
			notifRepo: memory.NewNotificationRepository(store),
			close:     func() {},
		}
	}

	if cfg.Migrations.Auto {
		version, err := postgres.RunMigrations(cfg.Migrations.URL, cfg.DB.ConnectionString())
		if err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		log.Info().Uint("version", version).Msg("migraciones aplicadas")
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	return storage{
		tx:        postgres.NewTxRunner(pool),
		rfqRepo:   postgres.NewRfqRepository(pool),
		bidRepo:   postgres.NewBidRepository(pool),
		notifRepo: postgres.NewNotificationRepository(pool),
		close:     pool.Close,
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	st := openStorage(ctx, cfg, log)
	defer st.close()

	var observer ports.AwardObserver = ports.NopObserver{}
	var mtr *metrics.Metrics
	txRunner := st.tx
	if cfg.Metrics.Enabled {
		mtr = metrics.New(cfg.Metrics.Namespace)
		observer = mtr
		txRunner = mtr.InstrumentTx(txRunner)
	}

	rfqUC := rfq.NewUseCase(txRunner, st.rfqRepo)
	bidUC := bid.NewUseCase(txRunner, st.rfqRepo, st.bidRepo, observer, bid.Config{EnforceDeadline: cfg.Bidding.EnforceDeadline})
	coordinator := award.NewCoordinator(txRunner, st.rfqRepo, st.bidRepo, observer, log)
	letters := award.NewLetterUseCase(st.rfqRepo, st.bidRepo, infrapdf.NewAwardLetterGenerator())
	notificationUC := notification.NewUseCase(st.notifRepo)
	drafts := draft.NewStore(time.Duration(cfg.Drafts.TTLMinutes) * time.Minute)

	var tokenUC *auth.TokenUseCase
	if cfg.App.IsDevelopment() {
		tokenUC = auth.NewTokenUseCase(auth.JWTConfig{
			Secret:     cfg.JWT.Secret,
			ExpMinutes: cfg.JWT.Expiration,
			Issuer:     cfg.JWT.Issuer,
		})
		log.Warn().Msg("POST /api/auth/token habilitado (solo desarrollo)")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestID())
	app.Use(httpRouter.RequestLogger(log))
	if mtr != nil {
		app.Use(mtr.Middleware())
		app.Get("/metrics", mtr.Handler())
	}

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Cotizaciones API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		RfqUC:          rfqUC,
		BidUC:          bidUC,
		Coordinator:    coordinator,
		Letters:        letters,
		NotificationUC: notificationUC,
		Drafts:         drafts,
		TokenUC:        tokenUC,
		JWTSecret:      cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
