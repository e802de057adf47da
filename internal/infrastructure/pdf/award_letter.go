// Package pdf genera la carta de adjudicación de una RFQ.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Empresa compradora  │  N° RFQ + Fecha de emisión   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  PROVEEDOR ADJUDICADO                                        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Ítem | Entrega | Precio ofertado              │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TÉRMINOS + QR de verificación                               │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Cotizaciones-api/internal/application/ports"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
)

var _ ports.AwardLetterGenerator = (*AwardLetterGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// AwardLetterGenerator implementa ports.AwardLetterGenerator usando Maroto v2.
type AwardLetterGenerator struct {
	now func() time.Time
}

// NewAwardLetterGenerator construye el generador.
func NewAwardLetterGenerator() *AwardLetterGenerator {
	return &AwardLetterGenerator{now: time.Now}
}

// GenerateAwardLetter genera el PDF de la RFQ adjudicada a winner y devuelve sus bytes.
func (g *AwardLetterGenerator) GenerateAwardLetter(
	_ context.Context,
	rfq *entity.Rfq,
	winner *entity.Bid,
	issuedBy string,
) ([]byte, error) {
	if rfq == nil || winner == nil {
		return nil, fmt.Errorf("pdf: rfq y oferta ganadora son requeridas")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Carta de adjudicación "+rfq.ID, true).
		WithAuthor(rfq.CompanyID, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(rfq, g.now().UTC()))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(supplierRow(winner))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(detailRow(rfq, winner))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalRow(rfq, winner))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	for _, r := range footerRows(rfq, winner, issuedBy) {
		m.AddRows(r)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(rfq *entity.Rfq, issued time.Time) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New("CARTA DE ADJUDICACIÓN", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Empresa: "+rfq.CompanyID, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("SOLICITUD DE COTIZACIÓN", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(shortID(rfq.ID), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Emitida: "+issued.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func supplierRow(winner *entity.Bid) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("PROVEEDOR ADJUDICADO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(winner.SupplierID, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New("Oferta: "+winner.ID, props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Ítem", 5, align.Left),
		h("Lugar de entrega", 3, align.Left),
		h("Entrega", 1, align.Center),
		h("Precio", 2, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

func detailRow(rfq *entity.Rfq, winner *entity.Bid) core.Row {
	return row.New(7).Add(
		col.New(1).Add(text.New(
			fmt.Sprintf("%d", rfq.Quantity),
			props.Text{Size: 8, Align: align.Center, Top: 1},
		)),
		col.New(5).Add(text.New(
			rfq.ItemName,
			props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
		)),
		col.New(3).Add(text.New(
			rfq.DeliveryLocation,
			props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
		)),
		col.New(1).Add(text.New(
			winner.DeliveryDate.Format("02/01/06"),
			props.Text{Size: 8, Align: align.Center, Top: 1},
		)),
		col.New(2).Add(text.New(
			"$"+formatMoney(winner.Price),
			props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
		)),
	)
}

// totalRow: precio adjudicado y, si la RFQ lo traía, el precio esperado.
func totalRow(rfq *entity.Rfq, winner *entity.Bid) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2,
		})
	}
	grand := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 1, Top: 6,
		})
	}
	expected := "—"
	if rfq.ExpectedPrice != nil {
		expected = "$" + formatMoney(*rfq.ExpectedPrice)
	}
	return row.New(14).Add(
		col.New(6),
		col.New(3).Add(
			label("Precio esperado:"),
			text.New("PRECIO ADJUDICADO:", props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2, Top: 6,
			}),
		),
		col.New(3).Add(
			text.New(expected, props.Text{Size: 9, Align: align.Right, Right: 1}),
			grand("$"+formatMoney(winner.Price)),
		),
	)
}

func footerRows(rfq *entity.Rfq, winner *entity.Bid, issuedBy string) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("TÉRMINOS DE LA OFERTA", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
		)),
	}
	terms := strings.TrimSpace(winner.Terms)
	if terms == "" {
		terms = "Sin términos adicionales."
	}
	for _, chunk := range splitEvery(terms, 110) {
		rows = append(rows, row.New(4).Add(col.New(12).Add(
			text.New(chunk, props.Text{Size: 7.5, Color: colorGray, Top: 0.5, Left: 2}),
		)))
	}

	rows = append(rows, row.New(3))
	rows = append(rows, row.New(40).Add(
		col.New(3).Add(code.NewQr(verificationCode(rfq, winner), props.Rect{
			Percent: 95,
			Center:  true,
		})),
		col.New(9).Add(
			text.New("Código de verificación de la adjudicación.", props.Text{
				Size: 8, Top: 4, Left: 3, Color: colorGray,
			}),
			text.New("Emitida por: "+nonEmpty(issuedBy, rfq.CompanyID), props.Text{
				Style: fontstyle.Bold, Size: 9, Top: 14, Left: 3, Color: colorPrimary,
			}),
		),
	))
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func verificationCode(rfq *entity.Rfq, winner *entity.Bid) string {
	return fmt.Sprintf("rfq:%s;bid:%s;supplier:%s;price:%s", rfq.ID, winner.ID, winner.SupplierID, winner.Price.StringFixed(2))
}

func shortID(id string) string {
	if len(id) > 8 {
		return "N° " + strings.ToUpper(id[:8])
	}
	return "N° " + strings.ToUpper(id)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatMoney inserta puntos de miles y coma decimal. Ej: 1234567.5 → "1.234.567,50".
func formatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac, _ := strings.Cut(s, ".")
	n := len(intPart)
	buf := make([]byte, 0, n+n/3+3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	out := string(buf) + "," + frac
	if neg {
		return "-" + out
	}
	return out
}

// splitEvery divide s en trozos de max n runas.
func splitEvery(s string, n int) []string {
	r := []rune(s)
	var parts []string
	for len(r) > n {
		parts = append(parts, string(r[:n]))
		r = r[n:]
	}
	if len(r) > 0 {
		parts = append(parts, string(r))
	}
	return parts
}
