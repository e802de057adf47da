package metrics

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Cotizaciones-api/internal/domain/repository"
)

func scrape(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMiddleware_CuentaPeticionesYErrores(t *testing.T) {
	m := New("cotizaciones")
	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/metrics", m.Handler())
	app.Get("/api/rfqs/:id", func(c *fiber.Ctx) error {
		if c.Params("id") == "missing" {
			return c.Status(fiber.StatusNotFound).SendString("no")
		}
		return c.SendString("ok")
	})

	for _, id := range []string{"a", "b", "missing"} {
		resp, err := app.Test(httptest.NewRequest("GET", "/api/rfqs/"+id, nil), -1)
		require.NoError(t, err)
		_ = resp.Body.Close()
	}

	out := scrape(t, app)
	assert.Contains(t, out, `cotizaciones_api_requests_total{method="GET",path="/api/rfqs/:id"} 3`)
	assert.Contains(t, out, `cotizaciones_api_errors_total{method="GET",path="/api/rfqs/:id",status="404"} 1`)
}

func TestObserver_CuentaAdjudicaciones(t *testing.T) {
	m := New("cotizaciones")
	m.ObserveAward("accepted")
	m.ObserveAward("conflict")
	m.ObserveAward("conflict")
	m.ObserveBidSubmitted(true)
	m.ObserveReconcile(false)

	app := fiber.New()
	app.Get("/metrics", m.Handler())
	out := scrape(t, app)
	assert.Contains(t, out, `cotizaciones_award_attempts_total{outcome="conflict"} 2`)
	assert.Contains(t, out, `cotizaciones_award_attempts_total{outcome="accepted"} 1`)
	assert.Contains(t, out, `cotizaciones_bids_submitted_total{created="true"} 1`)
	assert.Contains(t, out, `cotizaciones_rfq_reconciled_total{repaired="false"} 1`)
}

type stubTx struct{}

func (stubTx) Run(_ context.Context, fn func(repository.RfqRepository, repository.BidRepository, repository.NotificationRepository) error) error {
	return fn(nil, nil, nil)
}

func TestInstrumentTx_PropagaErrorYMide(t *testing.T) {
	m := New("cotizaciones")
	tx := m.InstrumentTx(stubTx{})
	boom := errors.New("boom")

	err := tx.Run(context.Background(), func(repository.RfqRepository, repository.BidRepository, repository.NotificationRepository) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	require.NoError(t, tx.Run(context.Background(), func(repository.RfqRepository, repository.BidRepository, repository.NotificationRepository) error {
		return nil
	}))

	app := fiber.New()
	app.Get("/metrics", m.Handler())
	out := scrape(t, app)
	assert.Contains(t, out, `cotizaciones_db_transaction_duration_seconds_count{result="rollback"} 1`)
	assert.Contains(t, out, `cotizaciones_db_transaction_duration_seconds_count{result="commit"} 1`)
}

func TestNew_RegistrosIndependientes(t *testing.T) {
	assert.NotPanics(t, func() {
		New("cotizaciones")
		New("cotizaciones")
	})
}
