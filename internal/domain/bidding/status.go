package bidding

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
)

// canonical pasa "accepted", "ACCEPTED" o " Accepted " a "Accepted".
// Un Caser guarda estado: se crea uno por llamada.
func canonical(s string) string {
	return cases.Title(language.Und).String(strings.ToLower(strings.TrimSpace(s)))
}

// ParseRfqStatus normaliza el estado leído del almacenamiento o de la API.
// Vacío equivale a Posted (filas heredadas sin estado).
func ParseRfqStatus(s string) (entity.RfqStatus, error) {
	if strings.TrimSpace(s) == "" {
		return entity.RfqStatusPosted, nil
	}
	switch st := entity.RfqStatus(canonical(s)); st {
	case entity.RfqStatusPosted, entity.RfqStatusBidding, entity.RfqStatusAwarded, entity.RfqStatusClosed:
		return st, nil
	}
	return "", fmt.Errorf("estado de rfq desconocido: %q", s)
}

// ParseBidStatus normaliza el estado de una oferta. Vacío y el heredado "pending" equivalen a Submitted.
func ParseBidStatus(s string) (entity.BidStatus, error) {
	if strings.TrimSpace(s) == "" {
		return entity.BidStatusSubmitted, nil
	}
	switch st := entity.BidStatus(canonical(s)); st {
	case entity.BidStatusSubmitted, entity.BidStatusAccepted, entity.BidStatusRejected:
		return st, nil
	case "Pending":
		return entity.BidStatusSubmitted, nil
	}
	return "", fmt.Errorf("estado de oferta desconocido: %q", s)
}
