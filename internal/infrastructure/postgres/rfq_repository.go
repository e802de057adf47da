package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Cotizaciones-api/internal/domain/bidding"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/repository"
)

var _ repository.RfqRepository = (*RfqRepo)(nil)

var rfqColumns = []string{
	"id", "company_id", "item_name", "quantity", "description", "delivery_location",
	"delivery_timeline", "expected_price", "bid_deadline", "status", "created_at", "updated_at",
}

// RfqRepo implementación de RfqRepository sobre la tabla quotations (usable con pool o tx).
type RfqRepo struct {
	q Querier
}

// NewRfqRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRfqRepository(q Querier) *RfqRepo {
	return &RfqRepo{q: q}
}

// Create inserta la RFQ.
func (r *RfqRepo) Create(ctx context.Context, rfq *entity.Rfq) error {
	query, args, err := psql.Insert("quotations").Columns(rfqColumns...).Values(
		rfq.ID, rfq.CompanyID, rfq.ItemName, rfq.Quantity, rfq.Description, rfq.DeliveryLocation,
		rfq.DeliveryTimeline, nullDecimal(rfq.ExpectedPrice), rfq.BidDeadline, string(rfq.Status),
		rfq.CreatedAt, rfq.UpdatedAt,
	).ToSql()
	if err != nil {
		return fmt.Errorf("build insert rfq: %w", err)
	}
	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		return dbError("insert rfq", err)
	}
	return nil
}

// GetByID obtiene una RFQ; (nil, nil) si no existe.
func (r *RfqRepo) GetByID(ctx context.Context, id string) (*entity.Rfq, error) {
	return r.getOne(ctx, psql.Select(rfqColumns...).From("quotations").Where(sq.Eq{"id": id}))
}

// GetForUpdate igual que GetByID pero con SELECT ... FOR UPDATE. Solo tiene efecto dentro de una tx.
func (r *RfqRepo) GetForUpdate(ctx context.Context, id string) (*entity.Rfq, error) {
	return r.getOne(ctx, psql.Select(rfqColumns...).From("quotations").Where(sq.Eq{"id": id}).Suffix("FOR UPDATE"))
}

func (r *RfqRepo) getOne(ctx context.Context, b sq.SelectBuilder) (*entity.Rfq, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get rfq: %w", err)
	}
	rfq, err := scanRfq(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, dbError("get rfq", err)
	}
	return rfq, nil
}

// buildRfqFilter aplica empresa y estados. Los estados se comparan en minúsculas para cubrir filas heredadas.
func buildRfqFilter(b sq.SelectBuilder, f repository.RfqFilter) sq.SelectBuilder {
	if f.CompanyID != "" {
		b = b.Where(sq.Eq{"company_id": f.CompanyID})
	}
	if len(f.Statuses) > 0 {
		keys := make([]string, 0, len(f.Statuses))
		for _, s := range f.Statuses {
			keys = append(keys, strings.ToLower(string(s)))
		}
		b = b.Where(sq.Eq{"lower(status)": keys})
	}
	return b
}

func buildRfqListQuery(f repository.RfqFilter) (string, []any, error) {
	b := buildRfqFilter(psql.Select(rfqColumns...).From("quotations"), f).OrderBy("created_at DESC", "id")
	if f.Limit > 0 {
		b = b.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		b = b.Offset(uint64(f.Offset))
	}
	return b.ToSql()
}

// List RFQ más recientes primero.
func (r *RfqRepo) List(ctx context.Context, f repository.RfqFilter) ([]*entity.Rfq, error) {
	query, args, err := buildRfqListQuery(f)
	if err != nil {
		return nil, fmt.Errorf("build list rfq: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, dbError("list rfq", err)
	}
	defer rows.Close()
	list := make([]*entity.Rfq, 0)
	for rows.Next() {
		rfq, err := scanRfq(rows)
		if err != nil {
			return nil, dbError("scan rfq", err)
		}
		list = append(list, rfq)
	}
	return list, dbError("list rfq", rows.Err())
}

// Count total de RFQ que cumplen el filtro (sin paginación).
func (r *RfqRepo) Count(ctx context.Context, f repository.RfqFilter) (int, error) {
	query, args, err := buildRfqFilter(psql.Select("COUNT(*)").From("quotations"), f).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count rfq: %w", err)
	}
	var n int
	if err := r.q.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, dbError("count rfq", err)
	}
	return n, nil
}

// Update persiste los campos de contenido. El estado solo cambia por UpdateStatus.
func (r *RfqRepo) Update(ctx context.Context, rfq *entity.Rfq) error {
	query, args, err := psql.Update("quotations").
		Set("item_name", rfq.ItemName).
		Set("quantity", rfq.Quantity).
		Set("description", rfq.Description).
		Set("delivery_location", rfq.DeliveryLocation).
		Set("delivery_timeline", rfq.DeliveryTimeline).
		Set("expected_price", nullDecimal(rfq.ExpectedPrice)).
		Set("bid_deadline", rfq.BidDeadline).
		Set("updated_at", rfq.UpdatedAt).
		Where(sq.Eq{"id": rfq.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update rfq: %w", err)
	}
	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		return dbError("update rfq", err)
	}
	return nil
}

// UpdateStatus compare-and-swap del estado.
func (r *RfqRepo) UpdateStatus(ctx context.Context, id string, from []entity.RfqStatus, to entity.RfqStatus, at time.Time) (bool, error) {
	keys := make([]string, 0, len(from))
	for _, s := range from {
		keys = append(keys, strings.ToLower(string(s)))
	}
	query, args, err := psql.Update("quotations").
		Set("status", string(to)).
		Set("updated_at", at).
		Where(sq.Eq{"id": id, "lower(status)": keys}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build update rfq status: %w", err)
	}
	cmd, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return false, dbError("update rfq status", err)
	}
	return cmd.RowsAffected() == 1, nil
}

// Delete elimina la RFQ; ofertas y avisos caen por ON DELETE CASCADE.
func (r *RfqRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM quotations WHERE id = $1`, id); err != nil {
		return dbError("delete rfq", err)
	}
	return nil
}

// ListInconsistentIDs RFQ cuyo estado no cuadra con sus ofertas.
func (r *RfqRepo) ListInconsistentIDs(ctx context.Context) ([]string, error) {
	query := `
		SELECT q.id
		FROM quotations q
		LEFT JOIN (
			SELECT rfq_id,
			       COUNT(*) FILTER (WHERE lower(status) = 'accepted') AS accepted,
			       COUNT(*) FILTER (WHERE lower(COALESCE(status, '')) IN ('submitted', 'pending', '')) AS submitted
			FROM supplier_bids
			GROUP BY rfq_id
		) b ON b.rfq_id = q.id
		WHERE COALESCE(b.accepted, 0) > 1
		   OR (COALESCE(b.accepted, 0) = 1 AND (lower(q.status) <> 'awarded' OR COALESCE(b.submitted, 0) > 0))
		   OR (COALESCE(b.accepted, 0) = 0 AND lower(q.status) = 'awarded')
		ORDER BY q.id`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, dbError("list inconsistent rfq", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, dbError("scan rfq id", err)
		}
		ids = append(ids, id)
	}
	return ids, dbError("list inconsistent rfq", rows.Err())
}

func scanRfq(row pgx.Row) (*entity.Rfq, error) {
	var (
		rfq         entity.Rfq
		description *string
		price       decimal.NullDecimal
		status      *string
	)
	if err := row.Scan(
		&rfq.ID, &rfq.CompanyID, &rfq.ItemName, &rfq.Quantity, &description, &rfq.DeliveryLocation,
		&rfq.DeliveryTimeline, &price, &rfq.BidDeadline, &status, &rfq.CreatedAt, &rfq.UpdatedAt,
	); err != nil {
		return nil, err
	}
	st, err := bidding.ParseRfqStatus(derefStr(status))
	if err != nil {
		return nil, fmt.Errorf("rfq %s: %w", rfq.ID, err)
	}
	rfq.Status = st
	rfq.Description = derefStr(description)
	if price.Valid {
		p := price.Decimal
		rfq.ExpectedPrice = &p
	}
	return &rfq, nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}
