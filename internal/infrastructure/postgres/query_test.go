package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Cotizaciones-api/internal/domain"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/repository"
)

func TestBuildRfqListQuery(t *testing.T) {
	query, args, err := buildRfqListQuery(repository.RfqFilter{
		CompanyID: "C1",
		Statuses:  []entity.RfqStatus{entity.RfqStatusPosted, entity.RfqStatusBidding},
		Limit:     20,
		Offset:    40,
	})
	require.NoError(t, err)
	assert.Contains(t, query, "FROM quotations WHERE company_id = $1 AND lower(status) IN ($2,$3)")
	assert.Contains(t, query, "ORDER BY created_at DESC, id LIMIT 20 OFFSET 40")
	assert.Equal(t, []any{"C1", "posted", "bidding"}, args)
}

func TestBuildRfqListQuery_SinFiltros(t *testing.T) {
	query, args, err := buildRfqListQuery(repository.RfqFilter{})
	require.NoError(t, err)
	assert.NotContains(t, query, "WHERE")
	assert.NotContains(t, query, "LIMIT")
	assert.Empty(t, args)
}

func TestBuildBidListQuery_Orden(t *testing.T) {
	byPrice, _, err := buildBidListQuery("r1", entity.BidOrderPrice)
	require.NoError(t, err)
	assert.Contains(t, byPrice, "ORDER BY price ASC, created_at ASC, id")

	recent, args, err := buildBidListQuery("r1", entity.BidOrderRecent)
	require.NoError(t, err)
	assert.Contains(t, recent, "WHERE rfq_id = $1 ORDER BY created_at DESC, id")
	assert.Equal(t, []any{"r1"}, args)
}

func TestBidStatusKeys_IncluyeHeredados(t *testing.T) {
	assert.Equal(t, []string{"submitted", "pending", ""}, bidStatusKeys(entity.BidStatusSubmitted))
	assert.Equal(t, []string{"accepted"}, bidStatusKeys(entity.BidStatusAccepted))
}

func TestDBError_Clasifica(t *testing.T) {
	assert.Nil(t, dbError("op", nil))

	down := dbError("get rfq", &pgconn.PgError{Code: "57P01"})
	assert.ErrorIs(t, down, domain.ErrBackendUnavailable)

	serial := dbError("update", &pgconn.PgError{Code: "40001"})
	assert.ErrorIs(t, serial, domain.ErrConflict)

	canceled := dbError("list", fmt.Errorf("wrap: %w", context.Canceled))
	assert.ErrorIs(t, canceled, context.Canceled)
	assert.NotErrorIs(t, canceled, domain.ErrBackendUnavailable)

	other := dbError("insert", errors.New("boom"))
	assert.NotErrorIs(t, other, domain.ErrBackendUnavailable)
	assert.Contains(t, other.Error(), "insert: boom")

	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
}
