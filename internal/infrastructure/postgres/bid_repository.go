package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Cotizaciones-api/internal/domain"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/bidding"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/repository"
)

var _ repository.BidRepository = (*BidRepo)(nil)

var bidColumns = []string{
	"id", "rfq_id", "supplier_id", "price", "delivery_date", "terms", "status", "created_at", "updated_at",
}

// BidRepo implementación de BidRepository sobre supplier_bids (usable con pool o tx).
type BidRepo struct {
	q Querier
}

// NewBidRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBidRepository(q Querier) *BidRepo {
	return &BidRepo{q: q}
}

// bidStatusKeys valores almacenados que equivalen a s; las filas heredadas usan minúsculas y "pending".
func bidStatusKeys(s entity.BidStatus) []string {
	keys := []string{strings.ToLower(string(s))}
	if s == entity.BidStatusSubmitted {
		keys = append(keys, "pending", "")
	}
	return keys
}

func bidStatusIs(s entity.BidStatus) sq.Eq {
	return sq.Eq{"lower(COALESCE(status, ''))": bidStatusKeys(s)}
}

// Create inserta la oferta. El índice único parcial (rfq_id, supplier_id) Submitted da ErrConflict.
func (r *BidRepo) Create(ctx context.Context, bid *entity.Bid) error {
	query, args, err := psql.Insert("supplier_bids").Columns(bidColumns...).Values(
		bid.ID, bid.RfqID, bid.SupplierID, bid.Price, bid.DeliveryDate, nullIfEmpty(bid.Terms),
		string(bid.Status), bid.CreatedAt, bid.UpdatedAt,
	).ToSql()
	if err != nil {
		return fmt.Errorf("build insert bid: %w", err)
	}
	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: el proveedor ya tiene una oferta vigente", domain.ErrConflict)
		}
		return dbError("insert bid", err)
	}
	return nil
}

// GetByID obtiene una oferta; (nil, nil) si no existe.
func (r *BidRepo) GetByID(ctx context.Context, id string) (*entity.Bid, error) {
	return r.getOne(ctx, psql.Select(bidColumns...).From("supplier_bids").Where(sq.Eq{"id": id}))
}

// FindSubmitted oferta vigente del proveedor en la RFQ.
func (r *BidRepo) FindSubmitted(ctx context.Context, rfqID, supplierID string) (*entity.Bid, error) {
	return r.getOne(ctx, psql.Select(bidColumns...).From("supplier_bids").
		Where(sq.Eq{"rfq_id": rfqID, "supplier_id": supplierID}).
		Where(bidStatusIs(entity.BidStatusSubmitted)).
		OrderBy("created_at DESC").
		Limit(1))
}

func (r *BidRepo) getOne(ctx context.Context, b sq.SelectBuilder) (*entity.Bid, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get bid: %w", err)
	}
	bid, err := scanBid(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, dbError("get bid", err)
	}
	return bid, nil
}

// Update precio, entrega y términos mientras la oferta siga Submitted. Normaliza el estado heredado.
func (r *BidRepo) Update(ctx context.Context, bid *entity.Bid) (bool, error) {
	query, args, err := psql.Update("supplier_bids").
		Set("price", bid.Price).
		Set("delivery_date", bid.DeliveryDate).
		Set("terms", nullIfEmpty(bid.Terms)).
		Set("status", string(entity.BidStatusSubmitted)).
		Set("updated_at", bid.UpdatedAt).
		Where(sq.Eq{"id": bid.ID}).
		Where(bidStatusIs(entity.BidStatusSubmitted)).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build update bid: %w", err)
	}
	cmd, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return false, dbError("update bid", err)
	}
	return cmd.RowsAffected() == 1, nil
}

func buildBidListQuery(rfqID string, order entity.BidOrder) (string, []any, error) {
	b := psql.Select(bidColumns...).From("supplier_bids").Where(sq.Eq{"rfq_id": rfqID})
	switch order {
	case entity.BidOrderRecent:
		b = b.OrderBy("created_at DESC", "id")
	default:
		b = b.OrderBy("price ASC", "created_at ASC", "id")
	}
	return b.ToSql()
}

// ListByRfq todas las ofertas de la RFQ en orden determinista.
func (r *BidRepo) ListByRfq(ctx context.Context, rfqID string, order entity.BidOrder) ([]*entity.Bid, error) {
	query, args, err := buildBidListQuery(rfqID, order)
	if err != nil {
		return nil, fmt.Errorf("build list bids: %w", err)
	}
	return r.list(ctx, "list bids", query, args)
}

// ListBySupplier ofertas del proveedor, más recientes primero.
func (r *BidRepo) ListBySupplier(ctx context.Context, supplierID string, limit, offset int) ([]*entity.Bid, error) {
	b := psql.Select(bidColumns...).From("supplier_bids").
		Where(sq.Eq{"supplier_id": supplierID}).
		OrderBy("created_at DESC", "id")
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}
	if offset > 0 {
		b = b.Offset(uint64(offset))
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list supplier bids: %w", err)
	}
	return r.list(ctx, "list supplier bids", query, args)
}

func (r *BidRepo) list(ctx context.Context, op, query string, args []any) ([]*entity.Bid, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, dbError(op, err)
	}
	defer rows.Close()
	list := make([]*entity.Bid, 0)
	for rows.Next() {
		bid, err := scanBid(rows)
		if err != nil {
			return nil, dbError("scan bid", err)
		}
		list = append(list, bid)
	}
	return list, dbError(op, rows.Err())
}

// UpdateStatus compare-and-swap del estado. Una segunda aceptada en la RFQ choca con el índice único.
func (r *BidRepo) UpdateStatus(ctx context.Context, id string, from, to entity.BidStatus, at time.Time) (bool, error) {
	query, args, err := psql.Update("supplier_bids").
		Set("status", string(to)).
		Set("updated_at", at).
		Where(sq.Eq{"id": id}).
		Where(bidStatusIs(from)).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build update bid status: %w", err)
	}
	cmd, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return false, fmt.Errorf("%w: la rfq ya tiene una oferta aceptada", domain.ErrConflict)
		}
		return false, dbError("update bid status", err)
	}
	return cmd.RowsAffected() == 1, nil
}

// RejectSiblings rechaza las demás ofertas no rechazadas de la RFQ y devuelve las afectadas.
func (r *BidRepo) RejectSiblings(ctx context.Context, rfqID, exceptID string, at time.Time) ([]*entity.Bid, error) {
	query, args, err := psql.Update("supplier_bids").
		Set("status", string(entity.BidStatusRejected)).
		Set("updated_at", at).
		Where(sq.Eq{"rfq_id": rfqID}).
		Where(sq.NotEq{"id": exceptID}).
		Where(sq.NotEq{"lower(COALESCE(status, ''))": "rejected"}).
		Suffix("RETURNING " + strings.Join(bidColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build reject siblings: %w", err)
	}
	list, err := r.list(ctx, "reject siblings", query, args)
	if err != nil {
		return nil, err
	}
	sortByPrice(list)
	return list, nil
}

// CountByStatus cuántas ofertas de la RFQ están en status.
func (r *BidRepo) CountByStatus(ctx context.Context, rfqID string, status entity.BidStatus) (int, error) {
	query, args, err := psql.Select("COUNT(*)").From("supplier_bids").
		Where(sq.Eq{"rfq_id": rfqID}).
		Where(bidStatusIs(status)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count bids: %w", err)
	}
	var n int
	if err := r.q.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, dbError("count bids", err)
	}
	return n, nil
}

func scanBid(row pgx.Row) (*entity.Bid, error) {
	var (
		bid    entity.Bid
		terms  *string
		status *string
	)
	if err := row.Scan(
		&bid.ID, &bid.RfqID, &bid.SupplierID, &bid.Price, &bid.DeliveryDate, &terms, &status,
		&bid.CreatedAt, &bid.UpdatedAt,
	); err != nil {
		return nil, err
	}
	st, err := bidding.ParseBidStatus(derefStr(status))
	if err != nil {
		return nil, fmt.Errorf("bid %s: %w", bid.ID, err)
	}
	bid.Status = st
	bid.Terms = derefStr(terms)
	return &bid, nil
}

// sortByPrice RETURNING no garantiza orden; se deja igual que ListByRfq por precio.
func sortByPrice(list []*entity.Bid) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if c := a.Price.Cmp(b.Price); c != 0 {
			return c < 0
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}
