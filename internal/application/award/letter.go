package award

import (
	"context"
	"fmt"

	"github.com/jhoicas/Cotizaciones-api/internal/application/ports"
	"github.com/jhoicas/Cotizaciones-api/internal/domain"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/repository"
)

// LetterUseCase genera la carta de adjudicación (PDF) de una RFQ adjudicada.
type LetterUseCase struct {
	rfqRepo   repository.RfqRepository
	bidRepo   repository.BidRepository
	generator ports.AwardLetterGenerator
}

// NewLetterUseCase construye el caso de uso.
func NewLetterUseCase(rfqRepo repository.RfqRepository, bidRepo repository.BidRepository, generator ports.AwardLetterGenerator) *LetterUseCase {
	return &LetterUseCase{rfqRepo: rfqRepo, bidRepo: bidRepo, generator: generator}
}

// Download devuelve el PDF y su nombre de archivo.
//
// Retorna:
//   - domain.ErrNotFound       si la RFQ no existe.
//   - domain.ErrInvalidState   si la RFQ no está adjudicada o no tiene oferta ganadora.
//   - domain.ErrForbidden      si el actor no es la empresa dueña ni el proveedor ganador.
func (uc *LetterUseCase) Download(ctx context.Context, actor entity.Actor, rfqID string) ([]byte, string, error) {
	r, err := uc.rfqRepo.GetByID(ctx, rfqID)
	if err != nil {
		return nil, "", fmt.Errorf("carta: obtener rfq: %w", err)
	}
	if r == nil {
		return nil, "", domain.ErrNotFound
	}
	if r.Status != entity.RfqStatusAwarded {
		return nil, "", fmt.Errorf("%w: la rfq está %s", domain.ErrInvalidState, r.Status)
	}
	bids, err := uc.bidRepo.ListByRfq(ctx, r.ID, entity.BidOrderPrice)
	if err != nil {
		return nil, "", fmt.Errorf("carta: listar ofertas: %w", err)
	}
	var winner *entity.Bid
	for _, b := range bids {
		if b.Status == entity.BidStatusAccepted {
			winner = b
			break
		}
	}
	if winner == nil {
		return nil, "", fmt.Errorf("%w: la rfq no tiene oferta aceptada", domain.ErrInvalidState)
	}
	if !actor.Owns(r) && !(actor.IsSupplier() && actor.UserID == winner.SupplierID) {
		return nil, "", domain.ErrForbidden
	}

	pdf, err := uc.generator.GenerateAwardLetter(ctx, r, winner, r.CompanyID)
	if err != nil {
		return nil, "", fmt.Errorf("carta: generar pdf: %w", err)
	}
	return pdf, fmt.Sprintf("adjudicacion-%s.pdf", r.ID), nil
}
