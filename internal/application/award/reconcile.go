package award

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/Cotizaciones-api/internal/application/dto"
	"github.com/jhoicas/Cotizaciones-api/internal/domain"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/repository"
)

// StepReconcile paso reportado cuando falla la reparación.
const StepReconcile = "reconciliar"

// Reconcile revisa que la RFQ y sus ofertas sean coherentes y repara lo que tiene una sola lectura
// posible: con exactamente una oferta aceptada, las hermanas Submitted se rechazan y la RFQ pasa a
// Awarded. Lo que no se puede decidir (varias aceptadas, Awarded sin ganadora, cerrada con ganadora)
// se informa en Issues sin tocar datos.
func (c *Coordinator) Reconcile(ctx context.Context, rfqID string) (*dto.ReconcileReport, error) {
	const op = "reconciliar rfq"
	report := &dto.ReconcileReport{RfqID: rfqID}
	err := c.tx.Run(ctx, func(rfqRepo repository.RfqRepository, bidRepo repository.BidRepository, _ repository.NotificationRepository) error {
		now := c.now()
		r, err := rfqRepo.GetForUpdate(ctx, rfqID)
		if err != nil {
			return &domain.StepError{Op: op, Step: StepLockRfq, Err: err}
		}
		if r == nil {
			return &domain.StepError{Op: op, Step: StepLockRfq, Err: domain.ErrNotFound}
		}
		bids, err := bidRepo.ListByRfq(ctx, r.ID, entity.BidOrderPrice)
		if err != nil {
			return &domain.StepError{Op: op, Step: StepLoadBid, Err: err}
		}
		var accepted []*entity.Bid
		submitted := 0
		for _, b := range bids {
			switch b.Status {
			case entity.BidStatusAccepted:
				accepted = append(accepted, b)
			case entity.BidStatusSubmitted:
				submitted++
			}
		}

		switch {
		case len(accepted) > 1:
			report.Issues = append(report.Issues, fmt.Sprintf("%d ofertas aceptadas en la misma rfq", len(accepted)))
		case len(accepted) == 1 && r.Status == entity.RfqStatusClosed:
			report.Issues = append(report.Issues, "rfq cerrada con una oferta aceptada")
		case len(accepted) == 1:
			if submitted > 0 {
				rejected, err := bidRepo.RejectSiblings(ctx, r.ID, accepted[0].ID, now)
				if err != nil {
					return &domain.StepError{Op: op, Step: StepRejectSiblings, Err: err}
				}
				for _, b := range rejected {
					report.RejectedBidIDs = append(report.RejectedBidIDs, b.ID)
				}
			}
			if r.Status != entity.RfqStatusAwarded {
				if err := awardRfq(ctx, rfqRepo, r, now); err != nil {
					return &domain.StepError{Op: op, Step: StepAwardRfq, Err: err}
				}
				report.RfqAwarded = true
			}
		case r.Status == entity.RfqStatusAwarded:
			report.Issues = append(report.Issues, "rfq adjudicada sin oferta aceptada")
		}
		report.Repaired = len(report.RejectedBidIDs) > 0 || report.RfqAwarded
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.observer.ObserveReconcile(report.Repaired)
	if report.Repaired || len(report.Issues) > 0 {
		c.log.Warn().
			Str("rfq_id", rfqID).
			Bool("repaired", report.Repaired).
			Strs("rejected_bids", report.RejectedBidIDs).
			Strs("issues", report.Issues).
			Msg("rfq reconciliada")
	}
	return report, nil
}

// ReconcileOwned ejecuta Reconcile verificando que el actor sea dueño de la RFQ.
func (c *Coordinator) ReconcileOwned(ctx context.Context, actor entity.Actor, rfqID string) (*dto.ReconcileReport, error) {
	r, err := c.rfqRepo.GetByID(ctx, rfqID)
	if err != nil {
		return nil, fmt.Errorf("obtener rfq: %w", err)
	}
	if r == nil {
		return nil, domain.ErrNotFound
	}
	if !actor.Owns(r) {
		return nil, domain.ErrForbidden
	}
	return c.Reconcile(ctx, rfqID)
}

// ReconcileAll recorre todas las RFQ incoherentes. Un fallo en una RFQ no detiene las demás;
// los errores se devuelven unidos al final.
func (c *Coordinator) ReconcileAll(ctx context.Context) ([]dto.ReconcileReport, error) {
	ids, err := c.rfqRepo.ListInconsistentIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("buscar rfq incoherentes: %w", err)
	}
	reports := make([]dto.ReconcileReport, 0, len(ids))
	var errs []error
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		rep, err := c.Reconcile(ctx, id)
		if err != nil {
			c.log.Error().Str("rfq_id", id).Err(err).Msg("reconciliación fallida")
			errs = append(errs, &domain.StepError{Op: "reconciliar " + id, Step: StepReconcile, Err: err})
			continue
		}
		reports = append(reports, *rep)
	}
	return reports, errors.Join(errs...)
}
