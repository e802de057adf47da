package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrInvalidState       = errors.New("operación no permitida en el estado actual")
	ErrInvalidTransition  = errors.New("transición de estado no permitida")
	ErrRfqClosed          = errors.New("la solicitud de cotización no acepta más ofertas")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrBackendUnavailable = errors.New("almacenamiento no disponible")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
)

// ValidationError agrupa los campos inválidos de una petición. errors.Is(err, ErrInvalidInput) es true.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError crea un error de validación vacío; usar Add y luego OrNil.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string]string{}}
}

// Add registra el mensaje para un campo (el primero gana).
func (e *ValidationError) Add(field, msg string) {
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// OrNil devuelve nil si no se registró ningún campo.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validación: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// StepError identifica el paso que falló dentro de una operación de varios pasos
// (p. ej. aceptar oferta → rechazar hermanas → adjudicar RFQ).
type StepError struct {
	Op   string
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: paso %s: %v", e.Op, e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// FailedStep devuelve el paso registrado en la cadena de errores, o "" si no hay StepError.
func FailedStep(err error) string {
	var se *StepError
	if errors.As(err, &se) {
		return se.Step
	}
	return ""
}
