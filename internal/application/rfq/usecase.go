package rfq

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Cotizaciones-api/internal/application/dto"
	"github.com/jhoicas/Cotizaciones-api/internal/application/ports"
	"github.com/jhoicas/Cotizaciones-api/internal/domain"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/bidding"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/repository"
)

// UseCase casos de uso de la solicitud de cotización: crear, listar, editar, cambiar estado y eliminar.
// La adjudicación y el cierre con avisos viven en el coordinador (paquete award).
type UseCase struct {
	tx      ports.TxRunner
	rfqRepo repository.RfqRepository
	now     func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(tx ports.TxRunner, rfqRepo repository.RfqRepository) *UseCase {
	return &UseCase{tx: tx, rfqRepo: rfqRepo, now: func() time.Time { return time.Now().UTC() }}
}

// WithClock reemplaza el reloj (tests).
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

// Create publica una RFQ en estado Posted a nombre de la empresa del actor.
func (uc *UseCase) Create(ctx context.Context, actor entity.Actor, in dto.CreateRfqRequest) (*dto.RfqResponse, error) {
	if !actor.IsCompany() {
		return nil, fmt.Errorf("%w: solo una empresa puede publicar solicitudes", domain.ErrForbidden)
	}
	ve := domain.NewValidationError()
	if strings.TrimSpace(in.ItemName) == "" {
		ve.Add("item_name", "es requerido")
	}
	if in.Quantity <= 0 {
		ve.Add("quantity", "debe ser mayor que 0")
	}
	if strings.TrimSpace(in.DeliveryLocation) == "" {
		ve.Add("delivery_location", "es requerido")
	}
	deadline, _ := requiredDate(ve, "bid_deadline", in.BidDeadline)
	timeline := optionalDate(ve, "delivery_timeline", in.DeliveryTimeline)
	checkPrice(ve, in.ExpectedPrice)
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	now := uc.now()
	r := &entity.Rfq{
		ID:               uuid.New().String(),
		CompanyID:        actor.OwnerID(),
		ItemName:         strings.TrimSpace(in.ItemName),
		Quantity:         in.Quantity,
		Description:      in.Description,
		DeliveryLocation: strings.TrimSpace(in.DeliveryLocation),
		DeliveryTimeline: timeline,
		ExpectedPrice:    in.ExpectedPrice,
		BidDeadline:      deadline,
		Status:           entity.RfqStatusPosted,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := uc.rfqRepo.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("crear rfq: %w", err)
	}
	out := dto.FromRfq(r)
	return &out, nil
}

// List RFQ más recientes primero. Una empresa solo ve las suyas; proveedores y consumidores ven todas.
func (uc *UseCase) List(ctx context.Context, actor entity.Actor, q dto.RfqListQuery) (*dto.RfqListResponse, error) {
	q.DefaultPage()
	filter := repository.RfqFilter{CompanyID: q.CompanyID, Limit: q.Limit, Offset: q.Offset}
	if actor.IsCompany() {
		filter.CompanyID = actor.OwnerID()
	}
	for _, s := range q.Status {
		st, err := bidding.ParseRfqStatus(s)
		if err != nil {
			ve := domain.NewValidationError()
			ve.Add("status", err.Error())
			return nil, ve
		}
		filter.Statuses = append(filter.Statuses, st)
	}
	if q.OpenOnly {
		filter.Statuses = []entity.RfqStatus{entity.RfqStatusPosted, entity.RfqStatusBidding}
	}

	list, err := uc.rfqRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listar rfq: %w", err)
	}
	total, err := uc.rfqRepo.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("contar rfq: %w", err)
	}
	items := make([]dto.RfqResponse, 0, len(list))
	for _, r := range list {
		items = append(items, dto.FromRfq(r))
	}
	return &dto.RfqListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Total: total},
	}, nil
}

// Get obtiene una RFQ por ID.
func (uc *UseCase) Get(ctx context.Context, id string) (*dto.RfqResponse, error) {
	r, err := uc.rfqRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("obtener rfq: %w", err)
	}
	if r == nil {
		return nil, domain.ErrNotFound
	}
	out := dto.FromRfq(r)
	return &out, nil
}

// Update edita el contenido de una RFQ abierta. El estado no cambia.
func (uc *UseCase) Update(ctx context.Context, actor entity.Actor, id string, in dto.UpdateRfqRequest) (*dto.RfqResponse, error) {
	var out dto.RfqResponse
	err := uc.tx.Run(ctx, func(rfqRepo repository.RfqRepository, _ repository.BidRepository, _ repository.NotificationRepository) error {
		r, err := loadOwned(ctx, rfqRepo, actor, id)
		if err != nil {
			return err
		}
		if !r.IsOpen() {
			return fmt.Errorf("%w: la rfq está %s y ya no se puede editar", domain.ErrInvalidState, r.Status)
		}
		if err := applyUpdate(r, in); err != nil {
			return err
		}
		r.UpdatedAt = uc.now()
		if err := rfqRepo.Update(ctx, r); err != nil {
			return fmt.Errorf("actualizar rfq: %w", err)
		}
		out = dto.FromRfq(r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateStatus aplica un cambio de estado según la tabla de transiciones.
// Awarded solo se acepta si la RFQ ya tiene exactamente una oferta aceptada; el camino normal
// para adjudicar es el coordinador.
func (uc *UseCase) UpdateStatus(ctx context.Context, actor entity.Actor, id, status string) (*dto.RfqResponse, error) {
	to, err := bidding.ParseRfqStatus(status)
	if err != nil || strings.TrimSpace(status) == "" {
		ve := domain.NewValidationError()
		ve.Add("status", "debe ser Posted, Bidding, Awarded o Closed")
		return nil, ve
	}
	var out dto.RfqResponse
	err = uc.tx.Run(ctx, func(rfqRepo repository.RfqRepository, bidRepo repository.BidRepository, _ repository.NotificationRepository) error {
		r, err := loadOwned(ctx, rfqRepo, actor, id)
		if err != nil {
			return err
		}
		if err := bidding.CheckRfqTransition(r.Status, to); err != nil {
			return err
		}
		if to == entity.RfqStatusAwarded {
			n, err := bidRepo.CountByStatus(ctx, r.ID, entity.BidStatusAccepted)
			if err != nil {
				return fmt.Errorf("contar ofertas aceptadas: %w", err)
			}
			if n != 1 {
				return fmt.Errorf("%w: adjudicar requiere exactamente una oferta aceptada (hay %d)", domain.ErrInvalidState, n)
			}
		}
		now := uc.now()
		ok, err := rfqRepo.UpdateStatus(ctx, r.ID, []entity.RfqStatus{r.Status}, to, now)
		if err != nil {
			return fmt.Errorf("actualizar estado rfq: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: el estado de la rfq cambió durante la operación", domain.ErrConflict)
		}
		r.Status = to
		r.UpdatedAt = now
		out = dto.FromRfq(r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete elimina la RFQ junto con sus ofertas y avisos.
func (uc *UseCase) Delete(ctx context.Context, actor entity.Actor, id string) error {
	return uc.tx.Run(ctx, func(rfqRepo repository.RfqRepository, _ repository.BidRepository, _ repository.NotificationRepository) error {
		r, err := loadOwned(ctx, rfqRepo, actor, id)
		if err != nil {
			return err
		}
		if err := rfqRepo.Delete(ctx, r.ID); err != nil {
			return fmt.Errorf("eliminar rfq: %w", err)
		}
		return nil
	})
}

// loadOwned bloquea la RFQ y verifica que el actor sea su dueño.
func loadOwned(ctx context.Context, rfqRepo repository.RfqRepository, actor entity.Actor, id string) (*entity.Rfq, error) {
	r, err := rfqRepo.GetForUpdate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("obtener rfq: %w", err)
	}
	if r == nil {
		return nil, domain.ErrNotFound
	}
	if !actor.Owns(r) {
		return nil, fmt.Errorf("%w: la rfq pertenece a otra empresa", domain.ErrForbidden)
	}
	return r, nil
}

func applyUpdate(r *entity.Rfq, in dto.UpdateRfqRequest) error {
	ve := domain.NewValidationError()
	if in.ItemName != nil {
		if strings.TrimSpace(*in.ItemName) == "" {
			ve.Add("item_name", "no puede quedar vacío")
		}
		r.ItemName = strings.TrimSpace(*in.ItemName)
	}
	if in.Quantity != nil {
		if *in.Quantity <= 0 {
			ve.Add("quantity", "debe ser mayor que 0")
		}
		r.Quantity = *in.Quantity
	}
	if in.Description != nil {
		r.Description = *in.Description
	}
	if in.DeliveryLocation != nil {
		if strings.TrimSpace(*in.DeliveryLocation) == "" {
			ve.Add("delivery_location", "no puede quedar vacío")
		}
		r.DeliveryLocation = strings.TrimSpace(*in.DeliveryLocation)
	}
	if in.DeliveryTimeline != nil {
		r.DeliveryTimeline = optionalDate(ve, "delivery_timeline", *in.DeliveryTimeline)
	}
	if in.ExpectedPrice != nil {
		checkPrice(ve, in.ExpectedPrice)
		r.ExpectedPrice = in.ExpectedPrice
	}
	if in.BidDeadline != nil {
		if d, ok := requiredDate(ve, "bid_deadline", *in.BidDeadline); ok {
			r.BidDeadline = d
		}
	}
	return ve.OrNil()
}

func requiredDate(ve *domain.ValidationError, field, s string) (time.Time, bool) {
	if strings.TrimSpace(s) == "" {
		ve.Add(field, "es requerido")
		return time.Time{}, false
	}
	d, err := dto.ParseDate(s)
	if err != nil {
		ve.Add(field, "formato esperado YYYY-MM-DD")
		return time.Time{}, false
	}
	return d, true
}

func optionalDate(ve *domain.ValidationError, field, s string) *time.Time {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	d, err := dto.ParseDate(s)
	if err != nil {
		ve.Add(field, "formato esperado YYYY-MM-DD")
		return nil
	}
	return &d
}

func checkPrice(ve *domain.ValidationError, p *decimal.Decimal) {
	if p != nil && p.IsNegative() {
		ve.Add("expected_price", "no puede ser negativo")
	}
}
