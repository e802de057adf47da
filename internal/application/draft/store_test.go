package draft_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Cotizaciones-api/internal/application/draft"
	"github.com/jhoicas/Cotizaciones-api/internal/application/dto"
	"github.com/jhoicas/Cotizaciones-api/internal/domain"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
)

var (
	supplierA = entity.Actor{UserID: "S1", Role: entity.RoleSupplier}
	supplierB = entity.Actor{UserID: "S2", Role: entity.RoleSupplier}
)

func TestStore_BorradorAisladoPorActor(t *testing.T) {
	ctx := context.Background()
	s := draft.NewStore(10 * time.Minute)

	saved, err := s.Save(ctx, supplierA, "", dto.SaveDraftRequest{Kind: "bid", Payload: json.RawMessage(`{"price":500}`)})
	require.NoError(t, err)
	require.NotEmpty(t, saved.Session)

	got, err := s.Get(ctx, supplierA, saved.Session)
	require.NoError(t, err)
	assert.JSONEq(t, `{"price":500}`, string(got.Payload))

	_, err = s.Get(ctx, supplierB, saved.Session)
	assert.ErrorIs(t, err, domain.ErrNotFound, "otro proveedor no debe ver el borrador")
}

func TestStore_Expira(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 11, 1, 10, 0, 0, 0, time.UTC)
	s := draft.NewStore(5 * time.Minute).WithClock(func() time.Time { return now })

	_, err := s.Save(ctx, supplierA, "form-1", dto.SaveDraftRequest{Kind: "rfq", Payload: json.RawMessage(`{}`)})
	require.NoError(t, err)

	now = now.Add(6 * time.Minute)
	_, err = s.Get(ctx, supplierA, "form-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_DiscardYValidacion(t *testing.T) {
	ctx := context.Background()
	s := draft.NewStore(time.Hour)

	_, err := s.Save(ctx, supplierA, "x", dto.SaveDraftRequest{Kind: "otro", Payload: json.RawMessage(`{}`)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = s.Save(ctx, supplierA, "x", dto.SaveDraftRequest{Kind: "bid", Payload: json.RawMessage(`{}`)})
	require.NoError(t, err)
	assert.True(t, s.Discard(ctx, supplierA, "x"))
	assert.False(t, s.Discard(ctx, supplierA, "x"))
}
