package bid

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Cotizaciones-api/internal/application/dto"
	"github.com/jhoicas/Cotizaciones-api/internal/application/notification"
	"github.com/jhoicas/Cotizaciones-api/internal/application/ports"
	"github.com/jhoicas/Cotizaciones-api/internal/domain"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/bidding"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/repository"
)

// Config reglas de negocio configurables del registro de ofertas.
type Config struct {
	// EnforceDeadline rechaza ofertas nuevas o ediciones después del día límite de la RFQ.
	EnforceDeadline bool
}

// UseCase registro de ofertas: enviar, editar y listar.
type UseCase struct {
	tx       ports.TxRunner
	rfqRepo  repository.RfqRepository
	bidRepo  repository.BidRepository
	observer ports.AwardObserver
	cfg      Config
	now      func() time.Time
}

// NewUseCase construye el caso de uso. observer puede ser ports.NopObserver{}.
func NewUseCase(tx ports.TxRunner, rfqRepo repository.RfqRepository, bidRepo repository.BidRepository, observer ports.AwardObserver, cfg Config) *UseCase {
	return &UseCase{
		tx:       tx,
		rfqRepo:  rfqRepo,
		bidRepo:  bidRepo,
		observer: observer,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

// Submit registra la oferta del proveedor sobre la RFQ.
//
// Si el proveedor ya tiene una oferta Submitted en esa RFQ se actualiza esa misma oferta
// (created=false) en lugar de crear otra. La primera oferta pasa la RFQ de Posted a Bidding.
// Retorna domain.ErrRfqClosed si la RFQ está Awarded/Closed o venció su plazo.
func (uc *UseCase) Submit(ctx context.Context, actor entity.Actor, rfqID string, in dto.SubmitBidRequest) (*dto.SubmitBidResponse, error) {
	if !actor.IsSupplier() {
		return nil, fmt.Errorf("%w: solo un proveedor puede ofertar", domain.ErrForbidden)
	}
	ve := domain.NewValidationError()
	price := checkPrice(ve, in.Price, true)
	delivery := checkDate(ve, "delivery_date", &in.DeliveryDate, true)
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	var out dto.SubmitBidResponse
	err := uc.tx.Run(ctx, func(rfqRepo repository.RfqRepository, bidRepo repository.BidRepository, notifRepo repository.NotificationRepository) error {
		now := uc.now()
		r, err := rfqRepo.GetForUpdate(ctx, rfqID)
		if err != nil {
			return fmt.Errorf("obtener rfq: %w", err)
		}
		if r == nil {
			return domain.ErrNotFound
		}
		if err := uc.checkOpen(r, now); err != nil {
			return err
		}

		b, err := bidRepo.FindSubmitted(ctx, r.ID, actor.UserID)
		if err != nil {
			return fmt.Errorf("buscar oferta previa: %w", err)
		}
		created := b == nil
		if created {
			b = &entity.Bid{
				ID:           uuid.New().String(),
				RfqID:        r.ID,
				SupplierID:   actor.UserID,
				Price:        price,
				DeliveryDate: delivery,
				Terms:        in.Terms,
				Status:       entity.BidStatusSubmitted,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if err := bidRepo.Create(ctx, b); err != nil {
				return fmt.Errorf("crear oferta: %w", err)
			}
		} else {
			b.Price, b.DeliveryDate, b.Terms, b.UpdatedAt = price, delivery, in.Terms, now
			ok, err := bidRepo.Update(ctx, b)
			if err != nil {
				return fmt.Errorf("actualizar oferta: %w", err)
			}
			if !ok {
				return fmt.Errorf("%w: la oferta previa dejó de estar Submitted", domain.ErrConflict)
			}
		}

		if r.Status == entity.RfqStatusPosted {
			if err := bidding.CheckRfqTransition(r.Status, entity.RfqStatusBidding); err != nil {
				return err
			}
			ok, err := rfqRepo.UpdateStatus(ctx, r.ID, []entity.RfqStatus{entity.RfqStatusPosted}, entity.RfqStatusBidding, now)
			if err != nil {
				return fmt.Errorf("pasar rfq a Bidding: %w", err)
			}
			if !ok {
				return fmt.Errorf("%w: el estado de la rfq cambió durante la operación", domain.ErrConflict)
			}
		}

		msg := fmt.Sprintf("Nueva oferta de %s sobre %q: %s", actor.UserID, r.ItemName, price.String())
		if !created {
			msg = fmt.Sprintf("Oferta actualizada por %s sobre %q: %s", actor.UserID, r.ItemName, price.String())
		}
		if err := notifRepo.Create(ctx, notification.Build(r.CompanyID, entity.NotificationBidSubmitted, r.ID, b.ID, msg, now)); err != nil {
			return fmt.Errorf("registrar aviso: %w", err)
		}
		out = dto.SubmitBidResponse{Bid: dto.FromBid(b), Created: created}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.observer.ObserveBidSubmitted(out.Created)
	return &out, nil
}

// Update edita precio, entrega o términos de una oferta propia que sigue Submitted.
// Retorna domain.ErrInvalidState si la oferta ya fue aceptada o rechazada (y no la modifica).
func (uc *UseCase) Update(ctx context.Context, actor entity.Actor, bidID string, in dto.UpdateBidRequest) (*dto.BidResponse, error) {
	ve := domain.NewValidationError()
	var price decimal.Decimal
	if in.Price != nil {
		price = checkPrice(ve, in.Price, true)
	}
	var delivery time.Time
	if in.DeliveryDate != nil {
		delivery = checkDate(ve, "delivery_date", in.DeliveryDate, true)
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	var out dto.BidResponse
	err := uc.tx.Run(ctx, func(rfqRepo repository.RfqRepository, bidRepo repository.BidRepository, _ repository.NotificationRepository) error {
		now := uc.now()
		b, err := bidRepo.GetByID(ctx, bidID)
		if err != nil {
			return fmt.Errorf("obtener oferta: %w", err)
		}
		if b == nil {
			return domain.ErrNotFound
		}
		if !actor.IsSupplier() || b.SupplierID != actor.UserID {
			return fmt.Errorf("%w: la oferta pertenece a otro proveedor", domain.ErrForbidden)
		}
		r, err := rfqRepo.GetForUpdate(ctx, b.RfqID)
		if err != nil {
			return fmt.Errorf("obtener rfq: %w", err)
		}
		if r == nil {
			return domain.ErrNotFound
		}
		// Releer con la RFQ bloqueada: una aceptación concurrente pudo cambiar el estado.
		if b, err = bidRepo.GetByID(ctx, bidID); err != nil {
			return fmt.Errorf("releer oferta: %w", err)
		}
		if b == nil {
			return domain.ErrNotFound
		}
		if b.Status != entity.BidStatusSubmitted {
			return fmt.Errorf("%w: la oferta está %s y ya no se puede editar", domain.ErrInvalidState, b.Status)
		}
		if err := uc.checkOpen(r, now); err != nil {
			return err
		}

		if in.Price != nil {
			b.Price = price
		}
		if in.DeliveryDate != nil {
			b.DeliveryDate = delivery
		}
		if in.Terms != nil {
			b.Terms = *in.Terms
		}
		b.UpdatedAt = now
		ok, err := bidRepo.Update(ctx, b)
		if err != nil {
			return fmt.Errorf("actualizar oferta: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: la oferta dejó de estar Submitted", domain.ErrInvalidState)
		}
		out = dto.FromBid(b)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Get obtiene una oferta visible para el actor: el proveedor autor o la empresa dueña de la RFQ.
func (uc *UseCase) Get(ctx context.Context, actor entity.Actor, bidID string) (*dto.BidResponse, error) {
	b, err := uc.bidRepo.GetByID(ctx, bidID)
	if err != nil {
		return nil, fmt.Errorf("obtener oferta: %w", err)
	}
	if b == nil {
		return nil, domain.ErrNotFound
	}
	if actor.IsSupplier() && b.SupplierID == actor.UserID {
		out := dto.FromBid(b)
		return &out, nil
	}
	r, err := uc.rfqRepo.GetByID(ctx, b.RfqID)
	if err != nil {
		return nil, fmt.Errorf("obtener rfq: %w", err)
	}
	if !actor.Owns(r) {
		return nil, domain.ErrForbidden
	}
	out := dto.FromBid(b)
	return &out, nil
}

// ListForRfq ofertas de una RFQ para su empresa dueña. order: "price" (ascendente, por defecto) o "recent".
func (uc *UseCase) ListForRfq(ctx context.Context, actor entity.Actor, rfqID, order string) (*dto.BidListResponse, error) {
	o, err := parseOrder(order)
	if err != nil {
		return nil, err
	}
	r, err := uc.rfqRepo.GetByID(ctx, rfqID)
	if err != nil {
		return nil, fmt.Errorf("obtener rfq: %w", err)
	}
	if r == nil {
		return nil, domain.ErrNotFound
	}
	if !actor.Owns(r) {
		return nil, fmt.Errorf("%w: solo la empresa dueña ve las ofertas", domain.ErrForbidden)
	}
	list, err := uc.bidRepo.ListByRfq(ctx, rfqID, o)
	if err != nil {
		return nil, fmt.Errorf("listar ofertas: %w", err)
	}
	return &dto.BidListResponse{Items: dto.FromBids(list)}, nil
}

// ListForSupplier ofertas propias del proveedor, más recientes primero.
func (uc *UseCase) ListForSupplier(ctx context.Context, actor entity.Actor, supplierID string, page dto.PageRequest) (*dto.BidListResponse, error) {
	if !actor.IsSupplier() || actor.UserID != supplierID {
		return nil, fmt.Errorf("%w: un proveedor solo ve sus propias ofertas", domain.ErrForbidden)
	}
	page.DefaultPage()
	list, err := uc.bidRepo.ListBySupplier(ctx, supplierID, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("listar ofertas del proveedor: %w", err)
	}
	return &dto.BidListResponse{
		Items: dto.FromBids(list),
		Page:  &dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

func (uc *UseCase) checkOpen(r *entity.Rfq, now time.Time) error {
	if !bidding.AcceptsBids(r.Status) {
		return fmt.Errorf("%w: la rfq está %s", domain.ErrRfqClosed, r.Status)
	}
	if uc.cfg.EnforceDeadline && r.DeadlinePassed(now) {
		return fmt.Errorf("%w: el plazo venció el %s", domain.ErrRfqClosed, r.BidDeadline.Format(dto.DateLayout))
	}
	return nil
}

func parseOrder(s string) (entity.BidOrder, error) {
	switch entity.BidOrder(strings.ToLower(strings.TrimSpace(s))) {
	case "", entity.BidOrderPrice:
		return entity.BidOrderPrice, nil
	case entity.BidOrderRecent:
		return entity.BidOrderRecent, nil
	}
	ve := domain.NewValidationError()
	ve.Add("order", "debe ser price o recent")
	return "", ve
}

func checkPrice(ve *domain.ValidationError, p *decimal.Decimal, required bool) decimal.Decimal {
	if p == nil {
		if required {
			ve.Add("price", "es requerido")
		}
		return decimal.Zero
	}
	if !p.IsPositive() {
		ve.Add("price", "debe ser mayor que 0")
	}
	return *p
}

func checkDate(ve *domain.ValidationError, field string, s *string, required bool) time.Time {
	if s == nil || strings.TrimSpace(*s) == "" {
		if required {
			ve.Add(field, "es requerido")
		}
		return time.Time{}
	}
	d, err := dto.ParseDate(*s)
	if err != nil {
		ve.Add(field, "formato esperado YYYY-MM-DD")
	}
	return d
}
