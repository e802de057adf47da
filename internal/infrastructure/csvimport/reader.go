// Package csvimport lee exportaciones de RFQ en CSV (planillas heredadas) y las convierte en
// peticiones de creación. Las planillas antiguas suelen venir en ISO-8859-1.
package csvimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/Cotizaciones-api/internal/application/dto"
)

// Columnas reconocidas; company_id, item_name, quantity, delivery_location y bid_deadline son obligatorias.
var requiredColumns = []string{"company_id", "item_name", "quantity", "delivery_location", "bid_deadline"}

// Row una fila válida con la empresa dueña.
type Row struct {
	Line      int
	CompanyID string
	Request   dto.CreateRfqRequest
}

// RowError fila descartada y el motivo.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string { return fmt.Sprintf("línea %d: %v", e.Line, e.Err) }

// Read decodifica el CSV. Si el contenido no es UTF-8 válido se reinterpreta como ISO-8859-1.
// Las filas con errores se devuelven aparte y no detienen la lectura.
func Read(r io.Reader) ([]Row, []RowError, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("leer csv: %w", err)
	}
	var src io.Reader = strings.NewReader(string(raw))
	if !utf8.Valid(raw) {
		src = transform.NewReader(strings.NewReader(string(raw)), charmap.ISO8859_1.NewDecoder())
	}

	cr := csv.NewReader(src)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("leer encabezado: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, nil, fmt.Errorf("falta la columna %q", col)
		}
	}

	var rows []Row
	var bad []RowError
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			bad = append(bad, RowError{Line: line, Err: err})
			continue
		}
		get := func(col string) string {
			i, ok := idx[col]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		row, err := toRow(get)
		if err != nil {
			bad = append(bad, RowError{Line: line, Err: err})
			continue
		}
		row.Line = line
		rows = append(rows, row)
	}
	return rows, bad, nil
}

func toRow(get func(string) string) (Row, error) {
	companyID := get("company_id")
	if companyID == "" {
		return Row{}, errors.New("company_id vacío")
	}
	qty, err := strconv.Atoi(get("quantity"))
	if err != nil {
		return Row{}, fmt.Errorf("quantity inválido: %q", get("quantity"))
	}
	req := dto.CreateRfqRequest{
		ItemName:         get("item_name"),
		Quantity:         qty,
		Description:      get("description"),
		DeliveryLocation: get("delivery_location"),
		DeliveryTimeline: get("delivery_timeline"),
		BidDeadline:      get("bid_deadline"),
	}
	if s := get("expected_price"); s != "" {
		p, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
		if err != nil {
			return Row{}, fmt.Errorf("expected_price inválido: %q", s)
		}
		req.ExpectedPrice = &p
	}
	return Row{CompanyID: companyID, Request: req}, nil
}
