package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/repository"
)

var _ repository.NotificationRepository = (*NotificationRepo)(nil)

// NotificationRepo implementación en memoria de NotificationRepository.
type NotificationRepo struct {
	s  *Store
	tx *dataset
}

func (r *NotificationRepo) Create(_ context.Context, n *entity.Notification) error {
	return r.s.view(r.tx, func(d *dataset) error {
		d.notifications[n.ID] = *n
		return nil
	})
}

func (r *NotificationRepo) ListByRecipient(_ context.Context, recipientID string, unreadOnly bool, limit, offset int) ([]*entity.Notification, error) {
	var out []*entity.Notification
	err := r.s.view(r.tx, func(d *dataset) error {
		list := make([]*entity.Notification, 0)
		for _, n := range d.notifications {
			if n.RecipientID != recipientID || (unreadOnly && n.Read) {
				continue
			}
			n := n
			list = append(list, &n)
		}
		sort.Slice(list, func(i, j int) bool {
			if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
				return list[i].CreatedAt.After(list[j].CreatedAt)
			}
			return list[i].ID < list[j].ID
		})
		out = page(list, limit, offset)
		return nil
	})
	return out, err
}

func (r *NotificationRepo) MarkRead(_ context.Context, id, recipientID string) (bool, error) {
	ok := false
	err := r.s.view(r.tx, func(d *dataset) error {
		n, found := d.notifications[id]
		if !found || n.RecipientID != recipientID {
			return nil
		}
		n.Read = true
		d.notifications[id] = n
		ok = true
		return nil
	})
	return ok, err
}
