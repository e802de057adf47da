package bid_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Cotizaciones-api/internal/application/bid"
	"github.com/jhoicas/Cotizaciones-api/internal/application/dto"
	"github.com/jhoicas/Cotizaciones-api/internal/domain"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
	"github.com/jhoicas/Cotizaciones-api/internal/infrastructure/memory"
)

var (
	company = entity.Actor{UserID: "u1", CompanyID: "C1", Role: entity.RoleCompany}
	other   = entity.Actor{UserID: "u2", CompanyID: "C2", Role: entity.RoleCompany}
	s1      = entity.Actor{UserID: "S1", Role: entity.RoleSupplier}
	s2      = entity.Actor{UserID: "S2", Role: entity.RoleSupplier}
)

// countingObserver cuenta las ofertas registradas.
type countingObserver struct {
	created, updated int
}

func (o *countingObserver) ObserveAward(string) {}
func (o *countingObserver) ObserveReconcile(bool) {}
func (o *countingObserver) ObserveBidSubmitted(created bool) {
	if created {
		o.created++
	} else {
		o.updated++
	}
}

type env struct {
	store *memory.Store
	uc    *bid.UseCase
	obs   *countingObserver
}

func newEnv(t *testing.T, enforceDeadline bool) *env {
	t.Helper()
	store := memory.NewStore()
	t0 := time.Date(2025, 11, 1, 9, 0, 0, 0, time.UTC)
	n := 0
	clock := func() time.Time {
		n++
		return t0.Add(time.Duration(n) * time.Minute)
	}
	obs := &countingObserver{}
	uc := bid.NewUseCase(store, memory.NewRfqRepository(store), memory.NewBidRepository(store), obs,
		bid.Config{EnforceDeadline: enforceDeadline}).WithClock(clock)
	return &env{store: store, uc: uc, obs: obs}
}

func (e *env) seedRfq(t *testing.T, status entity.RfqStatus, deadline string) string {
	t.Helper()
	d, err := dto.ParseDate(deadline)
	require.NoError(t, err)
	r := &entity.Rfq{
		ID: "rfq-" + string(status) + deadline, CompanyID: "C1", ItemName: "Steel Rods", Quantity: 100,
		DeliveryLocation: "Plant A", BidDeadline: d, Status: status,
	}
	require.NoError(t, memory.NewRfqRepository(e.store).Create(context.Background(), r))
	return r.ID
}

func (e *env) rfqStatus(t *testing.T, id string) entity.RfqStatus {
	t.Helper()
	r, err := memory.NewRfqRepository(e.store).GetByID(context.Background(), id)
	require.NoError(t, err)
	return r.Status
}

func offer(price int64) dto.SubmitBidRequest {
	p := decimal.NewFromInt(price)
	return dto.SubmitBidRequest{Price: &p, DeliveryDate: "2025-12-10", Terms: "FOB"}
}

func TestSubmit_PrimeraOfertaPasaRfqABidding(t *testing.T) {
	e := newEnv(t, true)
	rfqID := e.seedRfq(t, entity.RfqStatusPosted, "2025-12-01")

	out, err := e.uc.Submit(context.Background(), s1, rfqID, offer(500))
	require.NoError(t, err)
	assert.True(t, out.Created)
	assert.Equal(t, "Submitted", out.Bid.Status)
	assert.Equal(t, "S1", out.Bid.SupplierID)
	assert.Equal(t, "2025-12-10", out.Bid.DeliveryDate)
	assert.Equal(t, entity.RfqStatusBidding, e.rfqStatus(t, rfqID))
	assert.Equal(t, 1, e.obs.created)

	notifs, err := memory.NewNotificationRepository(e.store).ListByRecipient(context.Background(), "C1", false, 10, 0)
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	assert.Equal(t, entity.NotificationBidSubmitted, notifs[0].Kind)
}

func TestSubmit_RepetidaActualizaLaOfertaVigente(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, true)
	rfqID := e.seedRfq(t, entity.RfqStatusPosted, "2025-12-01")

	first, err := e.uc.Submit(ctx, s1, rfqID, offer(500))
	require.NoError(t, err)
	second, err := e.uc.Submit(ctx, s1, rfqID, offer(470))
	require.NoError(t, err)

	assert.False(t, second.Created)
	assert.Equal(t, first.Bid.ID, second.Bid.ID)
	assert.True(t, decimal.NewFromInt(470).Equal(second.Bid.Price))
	assert.Equal(t, 1, e.obs.updated)

	list, err := e.uc.ListForRfq(ctx, company, rfqID, "")
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
}

func TestSubmit_Validacion(t *testing.T) {
	e := newEnv(t, true)
	rfqID := e.seedRfq(t, entity.RfqStatusPosted, "2025-12-01")
	zero := decimal.Zero

	_, err := e.uc.Submit(context.Background(), s1, rfqID, dto.SubmitBidRequest{Price: &zero, DeliveryDate: "mañana"})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "price")
	assert.Contains(t, ve.Fields, "delivery_date")

	_, err = e.uc.Submit(context.Background(), s1, rfqID, dto.SubmitBidRequest{})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "es requerido", ve.Fields["price"])
}

func TestSubmit_RolesYExistencia(t *testing.T) {
	e := newEnv(t, true)
	rfqID := e.seedRfq(t, entity.RfqStatusPosted, "2025-12-01")

	_, err := e.uc.Submit(context.Background(), company, rfqID, offer(500))
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = e.uc.Submit(context.Background(), s1, "no-existe", offer(500))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSubmit_RfqCerradaOAdjudicada(t *testing.T) {
	for _, status := range []entity.RfqStatus{entity.RfqStatusAwarded, entity.RfqStatusClosed} {
		t.Run(string(status), func(t *testing.T) {
			e := newEnv(t, true)
			rfqID := e.seedRfq(t, status, "2025-12-01")
			_, err := e.uc.Submit(context.Background(), s1, rfqID, offer(500))
			assert.ErrorIs(t, err, domain.ErrRfqClosed)
			assert.Equal(t, status, e.rfqStatus(t, rfqID))
		})
	}
}

func TestSubmit_PlazoVencido(t *testing.T) {
	strict := newEnv(t, true)
	rfqID := strict.seedRfq(t, entity.RfqStatusPosted, "2025-10-31")
	_, err := strict.uc.Submit(context.Background(), s1, rfqID, offer(500))
	assert.ErrorIs(t, err, domain.ErrRfqClosed)

	sameDay := strict.seedRfq(t, entity.RfqStatusPosted, "2025-11-01")
	_, err = strict.uc.Submit(context.Background(), s1, sameDay, offer(500))
	assert.NoError(t, err, "el día del plazo todavía se aceptan ofertas")

	lenient := newEnv(t, false)
	rfqID = lenient.seedRfq(t, entity.RfqStatusPosted, "2025-10-31")
	_, err = lenient.uc.Submit(context.Background(), s1, rfqID, offer(500))
	assert.NoError(t, err)
}

func TestUpdate_SoloOfertaPropiaSubmitted(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, true)
	rfqID := e.seedRfq(t, entity.RfqStatusPosted, "2025-12-01")
	created, err := e.uc.Submit(ctx, s1, rfqID, offer(500))
	require.NoError(t, err)

	terms := "CIF"
	out, err := e.uc.Update(ctx, s1, created.Bid.ID, dto.UpdateBidRequest{Terms: &terms})
	require.NoError(t, err)
	assert.Equal(t, "CIF", out.Terms)
	assert.True(t, decimal.NewFromInt(500).Equal(out.Price))

	_, err = e.uc.Update(ctx, s2, created.Bid.ID, dto.UpdateBidRequest{Terms: &terms})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	ok, err := memory.NewBidRepository(e.store).UpdateStatus(ctx, created.Bid.ID,
		entity.BidStatusSubmitted, entity.BidStatusRejected, time.Now())
	require.NoError(t, err)
	require.True(t, ok)

	_, err = e.uc.Update(ctx, s1, created.Bid.ID, dto.UpdateBidRequest{Terms: &terms})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	got, err := e.uc.Get(ctx, s1, created.Bid.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rejected", got.Status)
	assert.Equal(t, "CIF", got.Terms)
}

func TestListForRfq_OrdenYPermisos(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, true)
	rfqID := e.seedRfq(t, entity.RfqStatusPosted, "2025-12-01")
	a, err := e.uc.Submit(ctx, s1, rfqID, offer(500))
	require.NoError(t, err)
	b, err := e.uc.Submit(ctx, s2, rfqID, offer(450))
	require.NoError(t, err)

	byPrice, err := e.uc.ListForRfq(ctx, company, rfqID, "price")
	require.NoError(t, err)
	require.Len(t, byPrice.Items, 2)
	assert.Equal(t, []string{b.Bid.ID, a.Bid.ID}, []string{byPrice.Items[0].ID, byPrice.Items[1].ID})

	recent, err := e.uc.ListForRfq(ctx, company, rfqID, "recent")
	require.NoError(t, err)
	assert.Equal(t, []string{b.Bid.ID, a.Bid.ID}, []string{recent.Items[0].ID, recent.Items[1].ID})

	_, err = e.uc.ListForRfq(ctx, company, rfqID, "cheapest")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = e.uc.ListForRfq(ctx, other, rfqID, "")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = e.uc.ListForRfq(ctx, s1, rfqID, "")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestListForSupplier(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, true)
	r1 := e.seedRfq(t, entity.RfqStatusPosted, "2025-12-01")
	r2 := e.seedRfq(t, entity.RfqStatusPosted, "2025-12-02")
	_, err := e.uc.Submit(ctx, s1, r1, offer(500))
	require.NoError(t, err)
	_, err = e.uc.Submit(ctx, s1, r2, offer(300))
	require.NoError(t, err)
	_, err = e.uc.Submit(ctx, s2, r2, offer(310))
	require.NoError(t, err)

	mine, err := e.uc.ListForSupplier(ctx, s1, "S1", dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, mine.Items, 2)
	assert.Equal(t, r2, mine.Items[0].RfqID, "más reciente primero")

	_, err = e.uc.ListForSupplier(ctx, s2, "S1", dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
