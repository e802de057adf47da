package rfq_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Cotizaciones-api/internal/application/dto"
	"github.com/jhoicas/Cotizaciones-api/internal/application/rfq"
	"github.com/jhoicas/Cotizaciones-api/internal/domain"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
	"github.com/jhoicas/Cotizaciones-api/internal/infrastructure/memory"
)

var (
	c1       = entity.Actor{UserID: "u1", CompanyID: "C1", Role: entity.RoleCompany}
	c2       = entity.Actor{UserID: "u2", CompanyID: "C2", Role: entity.RoleCompany}
	supplier = entity.Actor{UserID: "S1", Role: entity.RoleSupplier}
)

func setup() (*rfq.UseCase, *memory.Store) {
	store := memory.NewStore()
	t0 := time.Date(2025, 11, 1, 9, 0, 0, 0, time.UTC)
	n := 0
	clock := func() time.Time {
		n++
		return t0.Add(time.Duration(n) * time.Minute)
	}
	return rfq.NewUseCase(store, memory.NewRfqRepository(store)).WithClock(clock), store
}

func validRequest() dto.CreateRfqRequest {
	return dto.CreateRfqRequest{
		ItemName:         "Steel Rods",
		Quantity:         100,
		DeliveryLocation: "Plant A",
		BidDeadline:      "2025-12-01",
	}
}

func TestCreate_PublicaEnPosted(t *testing.T) {
	uc, _ := setup()
	price := decimal.RequireFromString("480.50")
	in := validRequest()
	in.ExpectedPrice = &price
	in.DeliveryTimeline = "2025-12-20"

	out, err := uc.Create(context.Background(), c1, in)
	require.NoError(t, err)
	assert.NotEmpty(t, out.ID)
	assert.Equal(t, "Posted", out.Status)
	assert.Equal(t, "C1", out.CompanyID)
	assert.Equal(t, "2025-12-01", out.BidDeadline)
	require.NotNil(t, out.DeliveryTimeline)
	assert.Equal(t, "2025-12-20", *out.DeliveryTimeline)
	assert.True(t, price.Equal(*out.ExpectedPrice))
}

func TestCreate_Validacion(t *testing.T) {
	uc, _ := setup()
	negative := decimal.NewFromInt(-1)
	_, err := uc.Create(context.Background(), c1, dto.CreateRfqRequest{
		ItemName: " ", Quantity: 0, BidDeadline: "01/12/2025", ExpectedPrice: &negative,
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	for _, field := range []string{"item_name", "quantity", "delivery_location", "bid_deadline", "expected_price"} {
		assert.Contains(t, ve.Fields, field)
	}
}

func TestCreate_SoloEmpresas(t *testing.T) {
	uc, _ := setup()
	_, err := uc.Create(context.Background(), supplier, validRequest())
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestList_EmpresaVeSoloLasSuyas(t *testing.T) {
	ctx := context.Background()
	uc, _ := setup()
	mine, err := uc.Create(ctx, c1, validRequest())
	require.NoError(t, err)
	_, err = uc.Create(ctx, c2, validRequest())
	require.NoError(t, err)

	own, err := uc.List(ctx, c1, dto.RfqListQuery{CompanyID: "C2"})
	require.NoError(t, err)
	require.Len(t, own.Items, 1)
	assert.Equal(t, mine.ID, own.Items[0].ID)
	assert.Equal(t, 1, own.Page.Total)

	all, err := uc.List(ctx, supplier, dto.RfqListQuery{})
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)
	assert.Equal(t, 20, all.Page.Limit)

	again, err := uc.List(ctx, supplier, dto.RfqListQuery{})
	require.NoError(t, err)
	assert.Equal(t, all.Items, again.Items, "listar dos veces sin escrituras devuelve lo mismo")
}

func TestList_FiltroPorEstado(t *testing.T) {
	ctx := context.Background()
	uc, _ := setup()
	a, err := uc.Create(ctx, c1, validRequest())
	require.NoError(t, err)
	b, err := uc.Create(ctx, c1, validRequest())
	require.NoError(t, err)
	_, err = uc.UpdateStatus(ctx, c1, b.ID, "Closed")
	require.NoError(t, err)

	open, err := uc.List(ctx, supplier, dto.RfqListQuery{OpenOnly: true})
	require.NoError(t, err)
	require.Len(t, open.Items, 1)
	assert.Equal(t, a.ID, open.Items[0].ID)

	closed, err := uc.List(ctx, supplier, dto.RfqListQuery{Status: []string{"closed"}})
	require.NoError(t, err)
	require.Len(t, closed.Items, 1)
	assert.Equal(t, b.ID, closed.Items[0].ID)

	_, err = uc.List(ctx, supplier, dto.RfqListQuery{Status: []string{"Pending"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGet_NoEncontrada(t *testing.T) {
	uc, _ := setup()
	_, err := uc.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdate_EditaContenidoMientrasEstaAbierta(t *testing.T) {
	ctx := context.Background()
	uc, _ := setup()
	created, err := uc.Create(ctx, c1, validRequest())
	require.NoError(t, err)

	name, qty := "Copper Wire", 250
	out, err := uc.Update(ctx, c1, created.ID, dto.UpdateRfqRequest{ItemName: &name, Quantity: &qty})
	require.NoError(t, err)
	assert.Equal(t, "Copper Wire", out.ItemName)
	assert.Equal(t, 250, out.Quantity)
	assert.Equal(t, "Posted", out.Status)

	_, err = uc.Update(ctx, c2, created.ID, dto.UpdateRfqRequest{ItemName: &name})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.UpdateStatus(ctx, c1, created.ID, "Closed")
	require.NoError(t, err)
	_, err = uc.Update(ctx, c1, created.ID, dto.UpdateRfqRequest{ItemName: &name})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestUpdateStatus_Transiciones(t *testing.T) {
	ctx := context.Background()
	uc, _ := setup()
	created, err := uc.Create(ctx, c1, validRequest())
	require.NoError(t, err)

	_, err = uc.UpdateStatus(ctx, c1, created.ID, "Awarded")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "Posted no pasa directo a Awarded")

	out, err := uc.UpdateStatus(ctx, c1, created.ID, "bidding")
	require.NoError(t, err)
	assert.Equal(t, "Bidding", out.Status)

	_, err = uc.UpdateStatus(ctx, c1, created.ID, "Awarded")
	assert.ErrorIs(t, err, domain.ErrInvalidState, "sin oferta aceptada no se adjudica")

	_, err = uc.UpdateStatus(ctx, c1, created.ID, "Posted")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = uc.UpdateStatus(ctx, c1, created.ID, "Cancelled")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDelete_CascadaYDueno(t *testing.T) {
	ctx := context.Background()
	uc, store := setup()
	created, err := uc.Create(ctx, c1, validRequest())
	require.NoError(t, err)

	require.NoError(t, memory.NewBidRepository(store).Create(ctx, &entity.Bid{
		ID: "b1", RfqID: created.ID, SupplierID: "S1", Price: decimal.NewFromInt(10), Status: entity.BidStatusSubmitted,
	}))

	assert.ErrorIs(t, uc.Delete(ctx, c2, created.ID), domain.ErrForbidden)
	require.NoError(t, uc.Delete(ctx, c1, created.ID))

	_, err = uc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	b, err := memory.NewBidRepository(store).GetByID(ctx, "b1")
	require.NoError(t, err)
	assert.Nil(t, b)
	assert.ErrorIs(t, uc.Delete(ctx, c1, created.ID), domain.ErrNotFound)
}
