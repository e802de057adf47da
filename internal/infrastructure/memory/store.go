// Package memory implementa los puertos de persistencia en memoria.
// Sirve como backend de desarrollo (STORAGE_DRIVER=memory) y como base de los tests de casos de uso.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/Cotizaciones-api/internal/application/ports"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/repository"
)

var _ ports.TxRunner = (*Store)(nil)

type dataset struct {
	rfqs          map[string]entity.Rfq
	bids          map[string]entity.Bid
	notifications map[string]entity.Notification
}

func newDataset() *dataset {
	return &dataset{
		rfqs:          map[string]entity.Rfq{},
		bids:          map[string]entity.Bid{},
		notifications: map[string]entity.Notification{},
	}
}

func (d *dataset) clone() *dataset {
	c := &dataset{
		rfqs:          make(map[string]entity.Rfq, len(d.rfqs)),
		bids:          make(map[string]entity.Bid, len(d.bids)),
		notifications: make(map[string]entity.Notification, len(d.notifications)),
	}
	for k, v := range d.rfqs {
		c.rfqs[k] = v
	}
	for k, v := range d.bids {
		c.bids[k] = v
	}
	for k, v := range d.notifications {
		c.notifications[k] = v
	}
	return c
}

// Store guarda RFQ, ofertas y avisos. Cada operación suelta toma el lock; Run lo retiene durante
// toda la transacción, de modo que las transacciones quedan serializadas entre sí.
type Store struct {
	mu   sync.Mutex
	data *dataset
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{data: newDataset()}
}

// Run ejecuta fn con repos atados a la transacción. Si fn falla se restaura la
// instantánea tomada al inicio.
func (s *Store) Run(ctx context.Context, fn func(
	rfqRepo repository.RfqRepository,
	bidRepo repository.BidRepository,
	notifRepo repository.NotificationRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	tx := s.data
	if err := fn(&RfqRepo{s: s, tx: tx}, &BidRepo{s: s, tx: tx}, &NotificationRepo{s: s, tx: tx}); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

// view ejecuta fn sobre el dataset de la tx si existe; si no, toma el lock del store.
func (s *Store) view(tx *dataset, fn func(d *dataset) error) error {
	if tx != nil {
		return fn(tx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

// NewRfqRepository repo de RFQ fuera de transacción.
func NewRfqRepository(s *Store) *RfqRepo { return &RfqRepo{s: s} }

// NewBidRepository repo de ofertas fuera de transacción.
func NewBidRepository(s *Store) *BidRepo { return &BidRepo{s: s} }

// NewNotificationRepository repo de avisos fuera de transacción.
func NewNotificationRepository(s *Store) *NotificationRepo { return &NotificationRepo{s: s} }

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
