package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/repository"
)

var _ repository.NotificationRepository = (*NotificationRepo)(nil)

// NotificationRepo implementación de NotificationRepository (usable con pool o tx).
type NotificationRepo struct {
	q Querier
}

// NewNotificationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewNotificationRepository(q Querier) *NotificationRepo {
	return &NotificationRepo{q: q}
}

// Create inserta el aviso.
func (r *NotificationRepo) Create(ctx context.Context, n *entity.Notification) error {
	query := `
		INSERT INTO notifications (id, recipient_id, kind, rfq_id, bid_id, message, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		n.ID, n.RecipientID, n.Kind, n.RfqID, nullIfEmpty(n.BidID), n.Message, n.Read, n.CreatedAt,
	)
	if err != nil {
		return dbError("insert notification", err)
	}
	return nil
}

// ListByRecipient avisos del destinatario, más recientes primero.
func (r *NotificationRepo) ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool, limit, offset int) ([]*entity.Notification, error) {
	b := psql.Select("id", "recipient_id", "kind", "rfq_id", "bid_id", "message", "read", "created_at").
		From("notifications").
		Where(sq.Eq{"recipient_id": recipientID}).
		OrderBy("created_at DESC", "id")
	if unreadOnly {
		b = b.Where(sq.Eq{"read": false})
	}
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}
	if offset > 0 {
		b = b.Offset(uint64(offset))
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list notifications: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, dbError("list notifications", err)
	}
	defer rows.Close()
	list := make([]*entity.Notification, 0)
	for rows.Next() {
		var n entity.Notification
		var bidID *string
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.Kind, &n.RfqID, &bidID, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, dbError("scan notification", err)
		}
		n.BidID = derefStr(bidID)
		list = append(list, &n)
	}
	return list, dbError("list notifications", rows.Err())
}

// MarkRead marca el aviso como leído si pertenece al destinatario.
func (r *NotificationRepo) MarkRead(ctx context.Context, id, recipientID string) (bool, error) {
	cmd, err := r.q.Exec(ctx,
		`UPDATE notifications SET read = TRUE WHERE id = $1 AND recipient_id = $2`,
		id, recipientID,
	)
	if err != nil {
		return false, dbError("mark notification read", err)
	}
	return cmd.RowsAffected() == 1, nil
}
