package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Cotizaciones-api/internal/application/auth"
	"github.com/jhoicas/Cotizaciones-api/internal/application/award"
	"github.com/jhoicas/Cotizaciones-api/internal/application/bid"
	"github.com/jhoicas/Cotizaciones-api/internal/application/draft"
	"github.com/jhoicas/Cotizaciones-api/internal/application/dto"
	"github.com/jhoicas/Cotizaciones-api/internal/application/notification"
	"github.com/jhoicas/Cotizaciones-api/internal/application/ports"
	"github.com/jhoicas/Cotizaciones-api/internal/application/rfq"
	"github.com/jhoicas/Cotizaciones-api/internal/infrastructure/memory"
	"github.com/jhoicas/Cotizaciones-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/Cotizaciones-api/internal/interfaces/http"
	"github.com/jhoicas/Cotizaciones-api/pkg/logger"
)

// buildAPI monta la API completa sobre el almacenamiento en memoria.
func buildAPI(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.NewStore()
	rfqRepo := memory.NewRfqRepository(store)
	bidRepo := memory.NewBidRepository(store)
	notifRepo := memory.NewNotificationRepository(store)
	log := logger.Nop()

	app := fiber.New()
	app.Use(apphttp.RequestID(), apphttp.RequestLogger(log))
	apphttp.Router(app, apphttp.RouterDeps{
		RfqUC:          rfq.NewUseCase(store, rfqRepo),
		BidUC:          bid.NewUseCase(store, rfqRepo, bidRepo, ports.NopObserver{}, bid.Config{EnforceDeadline: true}),
		Coordinator:    award.NewCoordinator(store, rfqRepo, bidRepo, ports.NopObserver{}, log),
		Letters:        award.NewLetterUseCase(rfqRepo, bidRepo, pdf.NewAwardLetterGenerator()),
		NotificationUC: notification.NewUseCase(notifRepo),
		Drafts:         draft.NewStore(30 * time.Minute),
		TokenUC:        auth.NewTokenUseCase(auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer}),
		JWTSecret:      testJWTSecret,
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path, token string, body any) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return out
}

func issue(t *testing.T, app *fiber.App, userID, companyID, role string) string {
	t.Helper()
	status, raw := call(t, app, http.MethodPost, "/api/auth/token", "", dto.TokenRequest{UserID: userID, CompanyID: companyID, Role: role})
	require.Equal(t, http.StatusOK, status, string(raw))
	return decode[dto.TokenResponse](t, raw).Token
}

func createRfq(t *testing.T, app *fiber.App, token string) dto.RfqResponse {
	t.Helper()
	status, raw := call(t, app, http.MethodPost, "/api/rfqs", token, fiber.Map{
		"item_name": "Steel Rods", "quantity": 100, "delivery_location": "Plant A", "bid_deadline": "2099-12-31",
	})
	require.Equal(t, http.StatusCreated, status, string(raw))
	return decode[dto.RfqResponse](t, raw)
}

func submitBid(t *testing.T, app *fiber.App, token, rfqID string, price int) dto.SubmitBidResponse {
	t.Helper()
	status, raw := call(t, app, http.MethodPost, "/api/rfqs/"+rfqID+"/bids", token, fiber.Map{
		"price": price, "delivery_date": "2099-11-15", "terms": "pago a 30 días",
	})
	require.Contains(t, []int{http.StatusCreated, http.StatusOK}, status, string(raw))
	return decode[dto.SubmitBidResponse](t, raw)
}

func TestAPI_FlujoCompletoDeAdjudicacion(t *testing.T) {
	app := buildAPI(t)
	c1 := issue(t, app, "u-c1", "C1", "company")
	s1 := issue(t, app, "S1", "", "supplier")
	s2 := issue(t, app, "S2", "", "supplier")

	r := createRfq(t, app, c1)
	assert.Equal(t, "Posted", r.Status)

	b1 := submitBid(t, app, s1, r.ID, 1000)
	assert.True(t, b1.Created)
	b2 := submitBid(t, app, s2, r.ID, 950)

	status, raw := call(t, app, http.MethodGet, "/api/rfqs/"+r.ID+"/bids?order=price", c1, nil)
	require.Equal(t, http.StatusOK, status)
	list := decode[dto.BidListResponse](t, raw)
	require.Len(t, list.Items, 2)
	assert.Equal(t, b2.Bid.ID, list.Items[0].ID)

	status, raw = call(t, app, http.MethodPost, "/api/bids/"+b2.Bid.ID+"/accept", c1, nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	awarded := decode[dto.AwardResponse](t, raw)
	assert.Equal(t, "Accepted", awarded.Accepted.Status)
	assert.Equal(t, "Awarded", awarded.Rfq.Status)
	require.Len(t, awarded.Rejected, 1)
	assert.Equal(t, b1.Bid.ID, awarded.Rejected[0].ID)

	// Segunda aceptación sobre la RFQ ya adjudicada.
	status, raw = call(t, app, http.MethodPost, "/api/bids/"+b1.Bid.ID+"/accept", c1, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", decode[dto.ErrorResponse](t, raw).Code)

	status, raw = call(t, app, http.MethodGet, "/api/notifications", s1, nil)
	require.Equal(t, http.StatusOK, status)
	notes := decode[dto.NotificationListResponse](t, raw)
	require.NotEmpty(t, notes.Items)
	kinds := make([]string, 0, len(notes.Items))
	for _, n := range notes.Items {
		kinds = append(kinds, n.Kind)
	}
	assert.Contains(t, kinds, "bid_rejected")

	req := httptest.NewRequest(http.MethodGet, "/api/rfqs/"+r.ID+"/award-letter", nil)
	req.Header.Set("Authorization", "Bearer "+s2)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "adjudicacion-"+r.ID+".pdf")

	// El proveedor perdedor no descarga la carta.
	status, _ = call(t, app, http.MethodGet, "/api/rfqs/"+r.ID+"/award-letter", s1, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestAPI_CodigosDeError(t *testing.T) {
	app := buildAPI(t)
	c1 := issue(t, app, "u-c1", "C1", "company")
	c2 := issue(t, app, "u-c2", "C2", "company")
	s1 := issue(t, app, "S1", "", "supplier")

	status, raw := call(t, app, http.MethodPost, "/api/rfqs", c1, fiber.Map{"quantity": 0})
	require.Equal(t, http.StatusBadRequest, status)
	verr := decode[dto.ErrorResponse](t, raw)
	assert.Equal(t, "VALIDATION", verr.Code)
	assert.Contains(t, verr.Fields, "item_name")
	assert.Contains(t, verr.Fields, "bid_deadline")

	status, _ = call(t, app, http.MethodPost, "/api/rfqs", s1, fiber.Map{"item_name": "x"})
	assert.Equal(t, http.StatusForbidden, status)

	status, raw = call(t, app, http.MethodGet, "/api/rfqs/no-existe", c1, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", decode[dto.ErrorResponse](t, raw).Code)

	r := createRfq(t, app, c1)
	b := submitBid(t, app, s1, r.ID, 500)

	status, _ = call(t, app, http.MethodPost, "/api/bids/"+b.Bid.ID+"/accept", c2, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, raw = call(t, app, http.MethodPost, "/api/rfqs/"+r.ID+"/close", c1, nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	assert.Equal(t, "Closed", decode[dto.RfqResponse](t, raw).Status)

	status, raw = call(t, app, http.MethodPost, "/api/rfqs/"+r.ID+"/bids", s1, fiber.Map{"price": 400, "delivery_date": "2099-11-15"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "RFQ_CLOSED", decode[dto.ErrorResponse](t, raw).Code)

	status, raw = call(t, app, http.MethodPatch, "/api/rfqs/"+r.ID+"/status", c1, dto.UpdateRfqStatusRequest{Status: "Posted"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INVALID_TRANSITION", decode[dto.ErrorResponse](t, raw).Code)

	status, _ = call(t, app, http.MethodGet, "/api/rfqs", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAPI_ReofertaActualizaLaExistente(t *testing.T) {
	app := buildAPI(t)
	c1 := issue(t, app, "u-c1", "C1", "company")
	s1 := issue(t, app, "S1", "", "supplier")
	r := createRfq(t, app, c1)

	first := submitBid(t, app, s1, r.ID, 800)
	second := submitBid(t, app, s1, r.ID, 780)
	assert.False(t, second.Created)
	assert.Equal(t, first.Bid.ID, second.Bid.ID)
	assert.Equal(t, "780", second.Bid.Price.String())

	status, raw := call(t, app, http.MethodGet, "/api/suppliers/S1/bids", s1, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[dto.BidListResponse](t, raw).Items, 1)

	status, _ = call(t, app, http.MethodGet, "/api/suppliers/S2/bids", s1, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestAPI_BorradorSeDescartaAlPublicar(t *testing.T) {
	app := buildAPI(t)
	c1 := issue(t, app, "u-c1", "C1", "company")

	status, raw := call(t, app, http.MethodPut, "/api/drafts/form-1", c1, fiber.Map{
		"kind": "rfq", "payload": fiber.Map{"item_name": "Steel"},
	})
	require.Equal(t, http.StatusOK, status, string(raw))
	assert.Equal(t, "form-1", decode[dto.DraftResponse](t, raw).Session)

	status, _ = call(t, app, http.MethodGet, "/api/drafts/form-1", c1, nil)
	assert.Equal(t, http.StatusOK, status)

	status, raw = call(t, app, http.MethodPost, "/api/rfqs?draft=form-1", c1, fiber.Map{
		"item_name": "Steel", "quantity": 1, "delivery_location": "Plant A", "bid_deadline": "2099-12-31",
	})
	require.Equal(t, http.StatusCreated, status, string(raw))

	status, _ = call(t, app, http.MethodGet, "/api/drafts/form-1", c1, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = call(t, app, http.MethodDelete, "/api/drafts/form-1", c1, nil)
	assert.Equal(t, http.StatusNotFound, status)
}
