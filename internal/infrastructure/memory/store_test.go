package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Cotizaciones-api/internal/domain"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/repository"
	"github.com/jhoicas/Cotizaciones-api/internal/infrastructure/memory"
)

var t0 = time.Date(2025, 11, 1, 10, 0, 0, 0, time.UTC)

func seedRfq(t *testing.T, s *memory.Store, id string, status entity.RfqStatus) {
	t.Helper()
	err := memory.NewRfqRepository(s).Create(context.Background(), &entity.Rfq{
		ID: id, CompanyID: "C1", ItemName: "Acero", Quantity: 1, DeliveryLocation: "Bogotá",
		BidDeadline: time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), Status: status, CreatedAt: t0, UpdatedAt: t0,
	})
	require.NoError(t, err)
}

func seedBid(t *testing.T, s *memory.Store, id, rfqID, supplier string, price int64, at time.Time) {
	t.Helper()
	err := memory.NewBidRepository(s).Create(context.Background(), &entity.Bid{
		ID: id, RfqID: rfqID, SupplierID: supplier, Price: decimal.NewFromInt(price),
		DeliveryDate: t0, Status: entity.BidStatusSubmitted, CreatedAt: at, UpdatedAt: at,
	})
	require.NoError(t, err)
}

func TestStore_Run_RollbackDescartaCambios(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	seedRfq(t, s, "R1", entity.RfqStatusBidding)
	seedBid(t, s, "B1", "R1", "S1", 500, t0)
	seedBid(t, s, "B2", "R1", "S2", 450, t0.Add(time.Minute))

	boom := errors.New("falla simulada")
	err := s.Run(ctx, func(rfqRepo repository.RfqRepository, bidRepo repository.BidRepository, _ repository.NotificationRepository) error {
		ok, err := bidRepo.UpdateStatus(ctx, "B1", entity.BidStatusSubmitted, entity.BidStatusAccepted, t0)
		require.NoError(t, err)
		require.True(t, ok)
		_, err = bidRepo.RejectSiblings(ctx, "R1", "B1", t0)
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	bids, err := memory.NewBidRepository(s).ListByRfq(ctx, "R1", entity.BidOrderPrice)
	require.NoError(t, err)
	for _, b := range bids {
		assert.Equal(t, entity.BidStatusSubmitted, b.Status, "la transacción fallida no debe dejar rastro")
	}
}

func TestBidRepo_ListByRfq_Orden(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	seedRfq(t, s, "R1", entity.RfqStatusBidding)
	seedBid(t, s, "B1", "R1", "S1", 500, t0)
	seedBid(t, s, "B2", "R1", "S2", 450, t0.Add(time.Minute))
	seedBid(t, s, "B3", "R1", "S3", 450, t0.Add(2*time.Minute))

	byPrice, err := memory.NewBidRepository(s).ListByRfq(ctx, "R1", entity.BidOrderPrice)
	require.NoError(t, err)
	assert.Equal(t, []string{"B2", "B3", "B1"}, ids(byPrice))

	recent, err := memory.NewBidRepository(s).ListByRfq(ctx, "R1", entity.BidOrderRecent)
	require.NoError(t, err)
	assert.Equal(t, []string{"B3", "B2", "B1"}, ids(recent))
}

func TestBidRepo_UnaSolaSubmittedPorProveedor(t *testing.T) {
	s := memory.NewStore()
	seedRfq(t, s, "R1", entity.RfqStatusBidding)
	seedBid(t, s, "B1", "R1", "S1", 500, t0)

	err := memory.NewBidRepository(s).Create(context.Background(), &entity.Bid{
		ID: "B2", RfqID: "R1", SupplierID: "S1", Price: decimal.NewFromInt(400), Status: entity.BidStatusSubmitted,
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestRfqRepo_UpdateStatus_CompareAndSwap(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	seedRfq(t, s, "R1", entity.RfqStatusAwarded)
	repo := memory.NewRfqRepository(s)

	ok, err := repo.UpdateStatus(ctx, "R1", []entity.RfqStatus{entity.RfqStatusPosted, entity.RfqStatusBidding}, entity.RfqStatusClosed, t0)
	require.NoError(t, err)
	assert.False(t, ok, "no debe pisar un estado terminal")

	got, err := repo.GetByID(ctx, "R1")
	require.NoError(t, err)
	assert.Equal(t, entity.RfqStatusAwarded, got.Status)
}

func TestRfqRepo_ListInconsistentIDs(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	seedRfq(t, s, "OK", entity.RfqStatusBidding)
	seedBid(t, s, "B0", "OK", "S1", 100, t0)
	seedRfq(t, s, "BAD", entity.RfqStatusBidding)
	seedBid(t, s, "B1", "BAD", "S1", 100, t0)
	seedBid(t, s, "B2", "BAD", "S2", 200, t0)
	_, err := memory.NewBidRepository(s).UpdateStatus(ctx, "B1", entity.BidStatusSubmitted, entity.BidStatusAccepted, t0)
	require.NoError(t, err)
	seedRfq(t, s, "EMPTY", entity.RfqStatusAwarded)

	got, err := memory.NewRfqRepository(s).ListInconsistentIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"BAD", "EMPTY"}, got)
}

func TestRfqRepo_DeleteCascada(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	seedRfq(t, s, "R1", entity.RfqStatusBidding)
	seedBid(t, s, "B1", "R1", "S1", 100, t0)

	require.NoError(t, memory.NewRfqRepository(s).Delete(ctx, "R1"))
	b, err := memory.NewBidRepository(s).GetByID(ctx, "B1")
	require.NoError(t, err)
	assert.Nil(t, b)
}

func ids(list []*entity.Bid) []string {
	out := make([]string, 0, len(list))
	for _, b := range list {
		out = append(out, b.ID)
	}
	return out
}
