package award

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/Cotizaciones-api/internal/application/dto"
	"github.com/jhoicas/Cotizaciones-api/internal/application/notification"
	"github.com/jhoicas/Cotizaciones-api/internal/application/ports"
	"github.com/jhoicas/Cotizaciones-api/internal/domain"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/bidding"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/repository"
	"github.com/jhoicas/Cotizaciones-api/pkg/logger"
)

// Pasos de la adjudicación, reportados en domain.StepError.
const (
	StepLoadBid        = "cargar_oferta"
	StepLockRfq        = "bloquear_rfq"
	StepAcceptBid      = "aceptar_oferta"
	StepRejectSiblings = "rechazar_hermanas"
	StepAwardRfq       = "adjudicar_rfq"
	StepRejectBid      = "rechazar_oferta"
	StepCloseRfq       = "cerrar_rfq"
	StepNotify         = "notificar"
)

// Coordinator orquesta aceptar, rechazar y cerrar como operaciones atómicas sobre RFQ y ofertas.
// Cada operación corre en una sola transacción que bloquea la fila de la RFQ: dos aceptaciones
// concurrentes sobre la misma RFQ quedan serializadas y la segunda falla con ErrConflict.
type Coordinator struct {
	tx       ports.TxRunner
	rfqRepo  repository.RfqRepository
	bidRepo  repository.BidRepository
	observer ports.AwardObserver
	log      *logger.Logger
	now      func() time.Time
}

// NewCoordinator construye el coordinador.
func NewCoordinator(
	tx ports.TxRunner,
	rfqRepo repository.RfqRepository,
	bidRepo repository.BidRepository,
	observer ports.AwardObserver,
	log *logger.Logger,
) *Coordinator {
	return &Coordinator{
		tx:       tx,
		rfqRepo:  rfqRepo,
		bidRepo:  bidRepo,
		observer: observer,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock reemplaza el reloj (tests).
func (c *Coordinator) WithClock(now func() time.Time) *Coordinator {
	c.now = now
	return c
}

// AcceptBid acepta la oferta, rechaza todas sus hermanas no rechazadas y adjudica la RFQ.
//
// Retorna:
//   - domain.ErrNotFound       si la oferta o la RFQ no existen.
//   - domain.ErrForbidden      si el actor no es la empresa dueña.
//   - domain.ErrConflict       si la RFQ ya fue adjudicada (p. ej. por una aceptación concurrente).
//   - domain.ErrRfqClosed      si la RFQ fue cerrada sin adjudicar.
//   - domain.ErrInvalidState   si la oferta ya no está Submitted.
//
// Todo error viene envuelto en *domain.StepError con el paso que falló; nada queda aplicado a medias.
func (c *Coordinator) AcceptBid(ctx context.Context, actor entity.Actor, bidID string) (*dto.AwardResponse, error) {
	const op = "aceptar oferta"
	var out dto.AwardResponse
	err := c.tx.Run(ctx, func(rfqRepo repository.RfqRepository, bidRepo repository.BidRepository, notifRepo repository.NotificationRepository) error {
		now := c.now()
		r, b, err := lockRfqOfBid(ctx, op, rfqRepo, bidRepo, actor, bidID)
		if err != nil {
			return err
		}
		switch r.Status {
		case entity.RfqStatusAwarded:
			return &domain.StepError{Op: op, Step: StepLockRfq, Err: fmt.Errorf("%w: la rfq ya fue adjudicada", domain.ErrConflict)}
		case entity.RfqStatusClosed:
			return &domain.StepError{Op: op, Step: StepLockRfq, Err: fmt.Errorf("%w: la rfq fue cerrada sin adjudicar", domain.ErrRfqClosed)}
		}
		if err := bidding.CheckBidTransition(b.Status, entity.BidStatusAccepted); err != nil {
			return &domain.StepError{Op: op, Step: StepAcceptBid, Err: err}
		}

		ok, err := bidRepo.UpdateStatus(ctx, b.ID, entity.BidStatusSubmitted, entity.BidStatusAccepted, now)
		if err != nil {
			return &domain.StepError{Op: op, Step: StepAcceptBid, Err: err}
		}
		if !ok {
			return &domain.StepError{Op: op, Step: StepAcceptBid, Err: fmt.Errorf("%w: la oferta cambió de estado", domain.ErrConflict)}
		}
		b.Status, b.UpdatedAt = entity.BidStatusAccepted, now

		rejected, err := bidRepo.RejectSiblings(ctx, r.ID, b.ID, now)
		if err != nil {
			return &domain.StepError{Op: op, Step: StepRejectSiblings, Err: err}
		}

		if err := awardRfq(ctx, rfqRepo, r, now); err != nil {
			return &domain.StepError{Op: op, Step: StepAwardRfq, Err: err}
		}

		notices := []*entity.Notification{
			notification.Build(b.SupplierID, entity.NotificationBidAccepted, r.ID, b.ID,
				fmt.Sprintf("Su oferta sobre %q fue aceptada", r.ItemName), now),
		}
		for _, rb := range rejected {
			notices = append(notices, notification.Build(rb.SupplierID, entity.NotificationBidRejected, r.ID, rb.ID,
				fmt.Sprintf("Su oferta sobre %q no fue seleccionada", r.ItemName), now))
		}
		if err := createAll(ctx, notifRepo, notices); err != nil {
			return &domain.StepError{Op: op, Step: StepNotify, Err: err}
		}

		out = dto.AwardResponse{Accepted: dto.FromBid(b), Rejected: dto.FromBids(rejected), Rfq: dto.FromRfq(r)}
		return nil
	})
	c.observeAward(bidID, err)
	if err != nil {
		return nil, err
	}
	c.log.Info().
		Str("rfq_id", out.Rfq.ID).
		Str("bid_id", out.Accepted.ID).
		Int("rejected", len(out.Rejected)).
		Msg("rfq adjudicada")
	return &out, nil
}

// RejectBid rechaza una oferta Submitted. No toca las demás ofertas ni el estado de la RFQ.
func (c *Coordinator) RejectBid(ctx context.Context, actor entity.Actor, bidID string) (*dto.BidResponse, error) {
	const op = "rechazar oferta"
	var out dto.BidResponse
	err := c.tx.Run(ctx, func(rfqRepo repository.RfqRepository, bidRepo repository.BidRepository, notifRepo repository.NotificationRepository) error {
		now := c.now()
		r, b, err := lockRfqOfBid(ctx, op, rfqRepo, bidRepo, actor, bidID)
		if err != nil {
			return err
		}
		if err := bidding.CheckBidTransition(b.Status, entity.BidStatusRejected); err != nil {
			return &domain.StepError{Op: op, Step: StepRejectBid, Err: err}
		}
		ok, err := bidRepo.UpdateStatus(ctx, b.ID, entity.BidStatusSubmitted, entity.BidStatusRejected, now)
		if err != nil {
			return &domain.StepError{Op: op, Step: StepRejectBid, Err: err}
		}
		if !ok {
			return &domain.StepError{Op: op, Step: StepRejectBid, Err: fmt.Errorf("%w: la oferta cambió de estado", domain.ErrConflict)}
		}
		b.Status, b.UpdatedAt = entity.BidStatusRejected, now

		n := notification.Build(b.SupplierID, entity.NotificationBidRejected, r.ID, b.ID,
			fmt.Sprintf("Su oferta sobre %q fue rechazada", r.ItemName), now)
		if err := notifRepo.Create(ctx, n); err != nil {
			return &domain.StepError{Op: op, Step: StepNotify, Err: err}
		}
		out = dto.FromBid(b)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CloseRfq cierra la RFQ sin adjudicar. Las ofertas conservan su estado; los proveedores con
// ofertas Submitted reciben aviso.
func (c *Coordinator) CloseRfq(ctx context.Context, actor entity.Actor, rfqID string) (*dto.RfqResponse, error) {
	const op = "cerrar rfq"
	var out dto.RfqResponse
	err := c.tx.Run(ctx, func(rfqRepo repository.RfqRepository, bidRepo repository.BidRepository, notifRepo repository.NotificationRepository) error {
		now := c.now()
		r, err := rfqRepo.GetForUpdate(ctx, rfqID)
		if err != nil {
			return &domain.StepError{Op: op, Step: StepLockRfq, Err: err}
		}
		if r == nil {
			return &domain.StepError{Op: op, Step: StepLockRfq, Err: domain.ErrNotFound}
		}
		if !actor.Owns(r) {
			return &domain.StepError{Op: op, Step: StepLockRfq, Err: domain.ErrForbidden}
		}
		if err := moveRfq(ctx, rfqRepo, r, entity.RfqStatusClosed, now); err != nil {
			return &domain.StepError{Op: op, Step: StepCloseRfq, Err: err}
		}

		bids, err := bidRepo.ListByRfq(ctx, r.ID, entity.BidOrderRecent)
		if err != nil {
			return &domain.StepError{Op: op, Step: StepNotify, Err: err}
		}
		seen := map[string]bool{}
		var notices []*entity.Notification
		for _, b := range bids {
			if b.Status != entity.BidStatusSubmitted || seen[b.SupplierID] {
				continue
			}
			seen[b.SupplierID] = true
			notices = append(notices, notification.Build(b.SupplierID, entity.NotificationRfqClosed, r.ID, b.ID,
				fmt.Sprintf("La solicitud %q se cerró sin adjudicar", r.ItemName), now))
		}
		if err := createAll(ctx, notifRepo, notices); err != nil {
			return &domain.StepError{Op: op, Step: StepNotify, Err: err}
		}
		out = dto.FromRfq(r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// lockRfqOfBid carga la oferta, bloquea su RFQ, verifica dueño y relee la oferta ya con el lock.
func lockRfqOfBid(
	ctx context.Context,
	op string,
	rfqRepo repository.RfqRepository,
	bidRepo repository.BidRepository,
	actor entity.Actor,
	bidID string,
) (*entity.Rfq, *entity.Bid, error) {
	b, err := bidRepo.GetByID(ctx, bidID)
	if err != nil {
		return nil, nil, &domain.StepError{Op: op, Step: StepLoadBid, Err: err}
	}
	if b == nil {
		return nil, nil, &domain.StepError{Op: op, Step: StepLoadBid, Err: domain.ErrNotFound}
	}
	r, err := rfqRepo.GetForUpdate(ctx, b.RfqID)
	if err != nil {
		return nil, nil, &domain.StepError{Op: op, Step: StepLockRfq, Err: err}
	}
	if r == nil {
		return nil, nil, &domain.StepError{Op: op, Step: StepLockRfq, Err: domain.ErrNotFound}
	}
	if !actor.Owns(r) {
		return nil, nil, &domain.StepError{Op: op, Step: StepLockRfq, Err: fmt.Errorf("%w: la rfq pertenece a otra empresa", domain.ErrForbidden)}
	}
	b, err = bidRepo.GetByID(ctx, bidID)
	if err != nil {
		return nil, nil, &domain.StepError{Op: op, Step: StepLoadBid, Err: err}
	}
	if b == nil {
		return nil, nil, &domain.StepError{Op: op, Step: StepLoadBid, Err: domain.ErrNotFound}
	}
	return r, b, nil
}

// awardRfq lleva la RFQ a Awarded recorriendo la tabla: una RFQ heredada en Posted pasa antes por Bidding.
func awardRfq(ctx context.Context, rfqRepo repository.RfqRepository, r *entity.Rfq, now time.Time) error {
	if r.Status == entity.RfqStatusPosted {
		if err := moveRfq(ctx, rfqRepo, r, entity.RfqStatusBidding, now); err != nil {
			return err
		}
	}
	return moveRfq(ctx, rfqRepo, r, entity.RfqStatusAwarded, now)
}

func moveRfq(ctx context.Context, rfqRepo repository.RfqRepository, r *entity.Rfq, to entity.RfqStatus, now time.Time) error {
	if err := bidding.CheckRfqTransition(r.Status, to); err != nil {
		return err
	}
	ok, err := rfqRepo.UpdateStatus(ctx, r.ID, []entity.RfqStatus{r.Status}, to, now)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: la rfq cambió de estado", domain.ErrConflict)
	}
	r.Status, r.UpdatedAt = to, now
	return nil
}

func createAll(ctx context.Context, repo repository.NotificationRepository, list []*entity.Notification) error {
	for _, n := range list {
		if err := repo.Create(ctx, n); err != nil {
			return err
		}
	}
	return nil
}

func (c *Coordinator) observeAward(bidID string, err error) {
	switch {
	case err == nil:
		c.observer.ObserveAward(ports.AwardOutcomeAccepted)
	case errors.Is(err, domain.ErrConflict):
		c.observer.ObserveAward(ports.AwardOutcomeConflict)
		c.log.Warn().Str("bid_id", bidID).Err(err).Msg("aceptación en conflicto")
	case errors.Is(err, domain.ErrInvalidState), errors.Is(err, domain.ErrRfqClosed),
		errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrForbidden):
		c.observer.ObserveAward(ports.AwardOutcomeRejected)
	default:
		c.observer.ObserveAward(ports.AwardOutcomeFailed)
		c.log.Error().Str("bid_id", bidID).Str("step", domain.FailedStep(err)).Err(err).Msg("aceptación fallida")
	}
}
