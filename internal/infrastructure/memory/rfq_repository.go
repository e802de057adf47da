package memory

import (
	"context"
	"slices"
	"sort"
	"time"

	"github.com/jhoicas/Cotizaciones-api/internal/domain"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/repository"
)

var _ repository.RfqRepository = (*RfqRepo)(nil)

// RfqRepo implementación en memoria de RfqRepository.
type RfqRepo struct {
	s  *Store
	tx *dataset
}

func (r *RfqRepo) Create(_ context.Context, rfq *entity.Rfq) error {
	return r.s.view(r.tx, func(d *dataset) error {
		if _, ok := d.rfqs[rfq.ID]; ok {
			return domain.ErrConflict
		}
		d.rfqs[rfq.ID] = *rfq
		return nil
	})
}

func (r *RfqRepo) GetByID(_ context.Context, id string) (*entity.Rfq, error) {
	var out *entity.Rfq
	err := r.s.view(r.tx, func(d *dataset) error {
		if v, ok := d.rfqs[id]; ok {
			out = &v
		}
		return nil
	})
	return out, err
}

// GetForUpdate en memoria equivale a GetByID: la transacción ya tiene el store en exclusiva.
func (r *RfqRepo) GetForUpdate(ctx context.Context, id string) (*entity.Rfq, error) {
	return r.GetByID(ctx, id)
}

func (r *RfqRepo) filtered(d *dataset, f repository.RfqFilter) []*entity.Rfq {
	list := make([]*entity.Rfq, 0, len(d.rfqs))
	for _, v := range d.rfqs {
		if f.CompanyID != "" && v.CompanyID != f.CompanyID {
			continue
		}
		if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, v.Status) {
			continue
		}
		v := v
		list = append(list, &v)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
	return list
}

func (r *RfqRepo) List(_ context.Context, f repository.RfqFilter) ([]*entity.Rfq, error) {
	var out []*entity.Rfq
	err := r.s.view(r.tx, func(d *dataset) error {
		out = page(r.filtered(d, f), f.Limit, f.Offset)
		return nil
	})
	return out, err
}

func (r *RfqRepo) Count(_ context.Context, f repository.RfqFilter) (int, error) {
	var n int
	err := r.s.view(r.tx, func(d *dataset) error {
		n = len(r.filtered(d, f))
		return nil
	})
	return n, err
}

func (r *RfqRepo) Update(_ context.Context, rfq *entity.Rfq) error {
	return r.s.view(r.tx, func(d *dataset) error {
		cur, ok := d.rfqs[rfq.ID]
		if !ok {
			return domain.ErrNotFound
		}
		status := cur.Status
		cur = *rfq
		cur.Status = status
		d.rfqs[rfq.ID] = cur
		return nil
	})
}

func (r *RfqRepo) UpdateStatus(_ context.Context, id string, from []entity.RfqStatus, to entity.RfqStatus, at time.Time) (bool, error) {
	applied := false
	err := r.s.view(r.tx, func(d *dataset) error {
		cur, ok := d.rfqs[id]
		if !ok || !slices.Contains(from, cur.Status) {
			return nil
		}
		cur.Status = to
		cur.UpdatedAt = at
		d.rfqs[id] = cur
		applied = true
		return nil
	})
	return applied, err
}

func (r *RfqRepo) Delete(_ context.Context, id string) error {
	return r.s.view(r.tx, func(d *dataset) error {
		delete(d.rfqs, id)
		for k, b := range d.bids {
			if b.RfqID == id {
				delete(d.bids, k)
			}
		}
		for k, n := range d.notifications {
			if n.RfqID == id {
				delete(d.notifications, k)
			}
		}
		return nil
	})
}

func (r *RfqRepo) ListInconsistentIDs(_ context.Context) ([]string, error) {
	var ids []string
	err := r.s.view(r.tx, func(d *dataset) error {
		accepted := map[string]int{}
		submitted := map[string]int{}
		for _, b := range d.bids {
			switch b.Status {
			case entity.BidStatusAccepted:
				accepted[b.RfqID]++
			case entity.BidStatusSubmitted:
				submitted[b.RfqID]++
			}
		}
		for id, rfq := range d.rfqs {
			a := accepted[id]
			switch {
			case a > 1,
				a == 1 && (rfq.Status != entity.RfqStatusAwarded || submitted[id] > 0),
				a == 0 && rfq.Status == entity.RfqStatusAwarded:
				ids = append(ids, id)
			}
		}
		return nil
	})
	sort.Strings(ids)
	return ids, err
}
