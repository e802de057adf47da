package csvimport_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Cotizaciones-api/internal/infrastructure/csvimport"
)

func TestRead_FilasValidasYErroneas(t *testing.T) {
	in := "company_id,item_name,quantity,delivery_location,bid_deadline,expected_price\n" +
		"C1,Steel Rods,100,Plant A,2025-12-01,\"1234,50\"\n" +
		"C1,Bolts,muchos,Plant B,2025-12-01,\n" +
		",Nuts,5,Plant C,2025-12-01,\n"

	rows, bad, err := csvimport.Read(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, "C1", rows[0].CompanyID)
	assert.Equal(t, 100, rows[0].Request.Quantity)
	require.NotNil(t, rows[0].Request.ExpectedPrice)
	assert.Equal(t, "1234.5", rows[0].Request.ExpectedPrice.String())

	require.Len(t, bad, 2)
	assert.Equal(t, 3, bad[0].Line)
	assert.Equal(t, 4, bad[1].Line)
}

func TestRead_Latin1(t *testing.T) {
	// "Tubería" en ISO-8859-1: í = 0xED.
	var buf bytes.Buffer
	buf.WriteString("company_id,item_name,quantity,delivery_location,bid_deadline\n")
	buf.Write([]byte("C1,Tuber\xeda,3,Bogot\xe1,2025-12-01\n"))

	rows, bad, err := csvimport.Read(&buf)
	require.NoError(t, err)
	assert.Empty(t, bad)
	require.Len(t, rows, 1)
	assert.Equal(t, "Tubería", rows[0].Request.ItemName)
	assert.Equal(t, "Bogotá", rows[0].Request.DeliveryLocation)
}

func TestRead_FaltaColumna(t *testing.T) {
	_, _, err := csvimport.Read(strings.NewReader("item_name,quantity\nx,1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "company_id")
}
