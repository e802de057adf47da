package ports

import (
	"context"

	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
)

// Resultados de una aceptación, para métricas.
const (
	AwardOutcomeAccepted = "accepted"
	AwardOutcomeConflict = "conflict"
	AwardOutcomeRejected = "invalid"
	AwardOutcomeFailed   = "failed"
)

// AwardObserver recibe el resultado de cada intento de adjudicación y de cada oferta registrada.
// Lo implementa el adaptador de métricas; NopObserver sirve en tests.
type AwardObserver interface {
	ObserveAward(outcome string)
	ObserveBidSubmitted(created bool)
	ObserveReconcile(repaired bool)
}

// NopObserver descarta todas las observaciones.
type NopObserver struct{}

func (NopObserver) ObserveAward(string) {}
func (NopObserver) ObserveBidSubmitted(bool) {}
func (NopObserver) ObserveReconcile(bool) {}

// AwardLetterGenerator genera la carta de adjudicación (PDF) de una RFQ adjudicada.
type AwardLetterGenerator interface {
	GenerateAwardLetter(ctx context.Context, rfq *entity.Rfq, winner *entity.Bid, issuedBy string) ([]byte, error)
}
