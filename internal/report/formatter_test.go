package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/afc-labs/facturas-service/internal/models"
)

// resumenWorkbook arma un libro con la hoja de resumen y las filas dadas
func resumenWorkbook(t *testing.T, rows [][]string) *excelize.File {
	t.Helper()
	f, err := newWorkbook(nil, rows)
	require.NoError(t, err)
	return f
}

func resumenFila(receptor string) []string {
	_, resumen := Project([]models.InvoiceRecord{{
		Header: models.InvoiceHeader{
			Clave:          "50601012400310155566600100001010000000155199999999",
			Consecutivo:    "00100001010000000155",
			Fecha:          "01-03-2024",
			NombreEmisor:   "Comercial La Bandera S.A.",
			NumeroEmisor:   "3101555666",
			NombreReceptor: "AFC Consultores",
			NumeroReceptor: receptor,
			TipoDocumento:  models.TipoFacturaElectronica,
			Archivo:        "a.xml",
		},
		Totales: models.InvoiceSummaryTotals{
			TotalVenta:       "8500,00",
			TotalDescuentos:  "500,00",
			TotalVentaNeta:   "8000,00",
			TotalImpuesto:    "1040,00",
			TotalComprobante: "9040,00",
		},
	}})
	return resumen[0]
}

func rawValue(t *testing.T, f *excelize.File, cell string) string {
	t.Helper()
	v, err := f.GetCellValue(SheetResumen, cell, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	return v
}

func styleOf(t *testing.T, f *excelize.File, cell string) int {
	t.Helper()
	id, err := f.GetCellStyle(SheetResumen, cell)
	require.NoError(t, err)
	return id
}

func TestFormatCoercionNumerica(t *testing.T) {
	f := resumenWorkbook(t, [][]string{resumenFila("3101123456")})

	schema := ResumenSchema()
	require.NoError(t, Format(f, schema, ""))

	// Total Venta "8500,00" se reinterpreta como número
	cell, err := excelize.CoordinatesToCellName(schema.ColumnIndex(colTotalVenta), 2)
	require.NoError(t, err)
	assert.Equal(t, "8500", rawValue(t, f, cell))
	assert.NotZero(t, styleOf(t, f, cell))

	// La clave es texto y no recibe estilo numérico
	claveCell, err := excelize.CoordinatesToCellName(schema.ColumnIndex(colClave), 2)
	require.NoError(t, err)
	assert.Equal(t, "50601012400310155566600100001010000000155199999999", rawValue(t, f, claveCell))
	assert.Zero(t, styleOf(t, f, claveCell))
}

func TestFormatResaltadoDeColumnas(t *testing.T) {
	f := resumenWorkbook(t, [][]string{resumenFila("3101123456")})

	schema := ResumenSchema()
	require.NoError(t, Format(f, schema, ""))

	consecutivo, err := excelize.CoordinatesToCellName(schema.ColumnIndex(colConsecutivo), 2)
	require.NoError(t, err)
	emisor, err := excelize.CoordinatesToCellName(schema.ColumnIndex(colNombreEmisor), 2)
	require.NoError(t, err)

	// columna resaltada recibe estilo; columna de texto plano no
	assert.NotZero(t, styleOf(t, f, consecutivo))
	assert.Zero(t, styleOf(t, f, emisor))
}

func TestFormatReceptorMismatch(t *testing.T) {
	f := resumenWorkbook(t, [][]string{
		resumenFila("3101123456"),
		resumenFila("3101999999"),
	})

	schema := ResumenSchema()
	require.NoError(t, Format(f, schema, "3101123456"))

	col := schema.ColumnIndex(colNombreEmisor)
	coincide, err := excelize.CoordinatesToCellName(col, 2)
	require.NoError(t, err)
	difiere, err := excelize.CoordinatesToCellName(col, 3)
	require.NoError(t, err)

	// la fila completa del receptor que no coincide queda pintada
	assert.Zero(t, styleOf(t, f, coincide))
	assert.NotZero(t, styleOf(t, f, difiere))

	// el rojo de fila gana sobre el resaltado de columna
	resaltadaOK, err := excelize.CoordinatesToCellName(schema.ColumnIndex(colConsecutivo), 2)
	require.NoError(t, err)
	resaltadaMal, err := excelize.CoordinatesToCellName(schema.ColumnIndex(colConsecutivo), 3)
	require.NoError(t, err)
	assert.NotEqual(t, styleOf(t, f, resaltadaOK), styleOf(t, f, resaltadaMal))
}

func TestFormatSinFiltroNoPintaFilas(t *testing.T) {
	f := resumenWorkbook(t, [][]string{resumenFila("3101999999")})

	schema := ResumenSchema()
	require.NoError(t, Format(f, schema, ""))

	emisor, err := excelize.CoordinatesToCellName(schema.ColumnIndex(colNombreEmisor), 2)
	require.NoError(t, err)
	assert.Zero(t, styleOf(t, f, emisor))
}

func TestFormatPodaFilasEnBlanco(t *testing.T) {
	schema := ResumenSchema()
	blanco := make([]string, len(schema.Columns))

	f := resumenWorkbook(t, [][]string{
		resumenFila("3101123456"),
		blanco,
		resumenFila("3101123456"),
	})

	require.NoError(t, Format(f, schema, ""))

	rows, err := f.GetRows(SheetResumen)
	require.NoError(t, err)
	assert.Len(t, rows, 3) // encabezado + 2 filas de datos

	// una segunda pasada no altera el conteo
	require.NoError(t, Format(f, schema, ""))
	rows, err = f.GetRows(SheetResumen)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestFormatRechazaFormasNoDecimales(t *testing.T) {
	schema := ResumenSchema()
	ventaIdx := schema.ColumnIndex(colTotalVenta)

	filas := [][]string{
		resumenFila("3101123456"),
		resumenFila("3101123456"),
		resumenFila("3101123456"),
	}
	filas[0][ventaIdx-1] = "NaN"
	filas[1][ventaIdx-1] = "Inf"
	filas[2][ventaIdx-1] = "0x1p4"

	f := resumenWorkbook(t, filas)
	require.NoError(t, Format(f, schema, ""))

	for i, esperado := range []string{"NaN", "Inf", "0x1p4"} {
		cell, err := excelize.CoordinatesToCellName(ventaIdx, i+2)
		require.NoError(t, err)
		// la celda queda como texto, sin coerción ni estilo numérico
		assert.Equal(t, esperado, rawValue(t, f, cell))
		assert.Zero(t, styleOf(t, f, cell))
	}
}

func TestParseMonto(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		{input: "8500,00", want: 8500, ok: true},
		{input: "8500.00", want: 8500, ok: true},
		{input: "-120,50", want: -120.5, ok: true},
		{input: "42", want: 42, ok: true},
		{input: "", ok: false},
		{input: "NaN", ok: false},
		{input: "Inf", ok: false},
		{input: "-Inf", ok: false},
		{input: "0x1p4", ok: false},
		{input: "1e3", ok: false},
		{input: "1,2,3", ok: false},
		{input: "texto", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			value, ok := parseMonto(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, value)
			}
		})
	}
}

func TestIsBlankRow(t *testing.T) {
	assert.True(t, isBlankRow([]string{"", "  ", ""}))
	assert.True(t, isBlankRow(nil))
	assert.False(t, isBlankRow([]string{"", "x"}))
}
