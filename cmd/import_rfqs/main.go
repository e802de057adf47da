// import_rfqs carga en PostgreSQL las RFQ de una planilla CSV heredada.
//
// Uso: go run ./cmd/import_rfqs [ruta/rfqs.csv]
// Por defecto busca rfqs.csv en el directorio actual. Las filas inválidas se informan y se omiten.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jhoicas/Cotizaciones-api/internal/application/rfq"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
	"github.com/jhoicas/Cotizaciones-api/internal/infrastructure/csvimport"
	"github.com/jhoicas/Cotizaciones-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Cotizaciones-api/pkg/config"
	"github.com/jhoicas/Cotizaciones-api/pkg/logger"
)

func main() {
	csvPath := "rfqs.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: cfg.App.Name})

	f, err := os.Open(csvPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", csvPath).Msg("abrir csv")
	}
	defer f.Close()

	rows, bad, err := csvimport.Read(f)
	if err != nil {
		log.Fatal().Err(err).Msg("leer csv")
	}
	for _, b := range bad {
		log.Warn().Int("line", b.Line).Err(b.Err).Msg("fila omitida")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	uc := rfq.NewUseCase(postgres.NewTxRunner(pool), postgres.NewRfqRepository(pool))
	created := 0
	for _, row := range rows {
		actor := entity.Actor{UserID: "import", CompanyID: row.CompanyID, Role: entity.RoleCompany}
		out, err := uc.Create(ctx, actor, row.Request)
		if err != nil {
			log.Warn().Int("line", row.Line).Err(err).Msg("rfq rechazada")
			continue
		}
		created++
		log.Debug().Int("line", row.Line).Str("rfq_id", out.ID).Msg("rfq creada")
	}

	fmt.Printf("Importadas %d de %d filas (%d con errores de formato)\n", created, len(rows)+len(bad), len(bad))
}
