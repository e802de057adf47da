// Package bidding contiene las reglas puras del ciclo de vida de RFQ y ofertas.
// Toda ruta de mutación consulta estas tablas; ningún caller decide por su cuenta.
package bidding

import (
	"fmt"

	"github.com/jhoicas/Cotizaciones-api/internal/domain"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
)

// rfqTransitions estados destino permitidos por estado de origen. Awarded y Closed son terminales.
var rfqTransitions = map[entity.RfqStatus][]entity.RfqStatus{
	entity.RfqStatusPosted:  {entity.RfqStatusBidding, entity.RfqStatusClosed},
	entity.RfqStatusBidding: {entity.RfqStatusAwarded, entity.RfqStatusClosed},
}

// bidTransitions Accepted y Rejected son terminales.
var bidTransitions = map[entity.BidStatus][]entity.BidStatus{
	entity.BidStatusSubmitted: {entity.BidStatusAccepted, entity.BidStatusRejected},
}

// CanTransitionRfq indica si from → to está en la tabla de la RFQ.
func CanTransitionRfq(from, to entity.RfqStatus) bool {
	for _, s := range rfqTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CanTransitionBid indica si from → to está en la tabla de la oferta.
func CanTransitionBid(from, to entity.BidStatus) bool {
	for _, s := range bidTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CheckRfqTransition devuelve ErrInvalidTransition con contexto si la transición no está permitida.
func CheckRfqTransition(from, to entity.RfqStatus) error {
	if CanTransitionRfq(from, to) {
		return nil
	}
	return fmt.Errorf("%w: rfq %s → %s", domain.ErrInvalidTransition, from, to)
}

// CheckBidTransition devuelve ErrInvalidState si la oferta no puede pasar de from a to.
// Una oferta fuera de Submitted ya fue resuelta; el caller solo puede reportarlo.
func CheckBidTransition(from, to entity.BidStatus) error {
	if CanTransitionBid(from, to) {
		return nil
	}
	return fmt.Errorf("%w: oferta en estado %s no puede pasar a %s", domain.ErrInvalidState, from, to)
}

// AcceptsBids indica si una RFQ en ese estado admite ofertas nuevas o su edición.
func AcceptsBids(s entity.RfqStatus) bool {
	return s == entity.RfqStatusPosted || s == entity.RfqStatusBidding
}
