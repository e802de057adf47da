package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/Cotizaciones-api/internal/domain"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/repository"
)

var _ repository.BidRepository = (*BidRepo)(nil)

// BidRepo implementación en memoria de BidRepository.
type BidRepo struct {
	s  *Store
	tx *dataset
}

func (r *BidRepo) Create(_ context.Context, bid *entity.Bid) error {
	return r.s.view(r.tx, func(d *dataset) error {
		if _, ok := d.rfqs[bid.RfqID]; !ok {
			return domain.ErrNotFound
		}
		if _, ok := d.bids[bid.ID]; ok {
			return domain.ErrConflict
		}
		// Mismo índice parcial que en PostgreSQL: una sola oferta Submitted por (rfq, proveedor).
		if bid.Status == entity.BidStatusSubmitted {
			for _, b := range d.bids {
				if b.RfqID == bid.RfqID && b.SupplierID == bid.SupplierID && b.Status == entity.BidStatusSubmitted {
					return domain.ErrConflict
				}
			}
		}
		d.bids[bid.ID] = *bid
		return nil
	})
}

func (r *BidRepo) GetByID(_ context.Context, id string) (*entity.Bid, error) {
	var out *entity.Bid
	err := r.s.view(r.tx, func(d *dataset) error {
		if v, ok := d.bids[id]; ok {
			out = &v
		}
		return nil
	})
	return out, err
}

func (r *BidRepo) FindSubmitted(_ context.Context, rfqID, supplierID string) (*entity.Bid, error) {
	var out *entity.Bid
	err := r.s.view(r.tx, func(d *dataset) error {
		for _, b := range d.bids {
			if b.RfqID == rfqID && b.SupplierID == supplierID && b.Status == entity.BidStatusSubmitted {
				b := b
				out = &b
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *BidRepo) Update(_ context.Context, bid *entity.Bid) (bool, error) {
	applied := false
	err := r.s.view(r.tx, func(d *dataset) error {
		cur, ok := d.bids[bid.ID]
		if !ok || cur.Status != entity.BidStatusSubmitted {
			return nil
		}
		cur.Price = bid.Price
		cur.DeliveryDate = bid.DeliveryDate
		cur.Terms = bid.Terms
		cur.UpdatedAt = bid.UpdatedAt
		d.bids[bid.ID] = cur
		applied = true
		return nil
	})
	return applied, err
}

func (r *BidRepo) ListByRfq(_ context.Context, rfqID string, order entity.BidOrder) ([]*entity.Bid, error) {
	var out []*entity.Bid
	err := r.s.view(r.tx, func(d *dataset) error {
		out = make([]*entity.Bid, 0)
		for _, b := range d.bids {
			if b.RfqID == rfqID {
				b := b
				out = append(out, &b)
			}
		}
		return nil
	})
	sortBids(out, order)
	return out, err
}

func sortBids(list []*entity.Bid, order entity.BidOrder) {
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if order == entity.BidOrderPrice {
			if !a.Price.Equal(b.Price) {
				return a.Price.LessThan(b.Price)
			}
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.ID < b.ID
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

func (r *BidRepo) ListBySupplier(_ context.Context, supplierID string, limit, offset int) ([]*entity.Bid, error) {
	var out []*entity.Bid
	err := r.s.view(r.tx, func(d *dataset) error {
		list := make([]*entity.Bid, 0)
		for _, b := range d.bids {
			if b.SupplierID == supplierID {
				b := b
				list = append(list, &b)
			}
		}
		sortBids(list, entity.BidOrderRecent)
		out = page(list, limit, offset)
		return nil
	})
	return out, err
}

func (r *BidRepo) UpdateStatus(_ context.Context, id string, from, to entity.BidStatus, at time.Time) (bool, error) {
	applied := false
	err := r.s.view(r.tx, func(d *dataset) error {
		cur, ok := d.bids[id]
		if !ok || cur.Status != from {
			return nil
		}
		if to == entity.BidStatusAccepted {
			for _, b := range d.bids {
				if b.RfqID == cur.RfqID && b.ID != id && b.Status == entity.BidStatusAccepted {
					return domain.ErrConflict
				}
			}
		}
		cur.Status = to
		cur.UpdatedAt = at
		d.bids[id] = cur
		applied = true
		return nil
	})
	return applied, err
}

func (r *BidRepo) RejectSiblings(_ context.Context, rfqID, exceptID string, at time.Time) ([]*entity.Bid, error) {
	var out []*entity.Bid
	err := r.s.view(r.tx, func(d *dataset) error {
		out = make([]*entity.Bid, 0)
		for k, b := range d.bids {
			if b.RfqID != rfqID || b.ID == exceptID || b.Status == entity.BidStatusRejected {
				continue
			}
			b.Status = entity.BidStatusRejected
			b.UpdatedAt = at
			d.bids[k] = b
			b := b
			out = append(out, &b)
		}
		return nil
	})
	sortBids(out, entity.BidOrderPrice)
	return out, err
}

func (r *BidRepo) CountByStatus(_ context.Context, rfqID string, status entity.BidStatus) (int, error) {
	n := 0
	err := r.s.view(r.tx, func(d *dataset) error {
		for _, b := range d.bids {
			if b.RfqID == rfqID && b.Status == status {
				n++
			}
		}
		return nil
	})
	return n, err
}
