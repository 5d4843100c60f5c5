package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Colores de relleno del reporte
const (
	fillResaltado = "ADD8E6" // azul claro para columnas resaltadas
	fillMismatch  = "FF0000" // rojo para receptor distinto al filtro
)

// numFmtMiles es el formato numérico integrado #,##0.00
const numFmtMiles = 4

// cellStyles agrupa los IDs de estilo que el formateador combina por celda.
// Una celda tiene un único estilo, así que número y relleno se precomputan
// en sus combinaciones.
type cellStyles struct {
	numeric          int
	numericResaltado int
	numericMismatch  int
	resaltado        int
	mismatch         int
}

func newCellStyles(f *excelize.File) (*cellStyles, error) {
	s := &cellStyles{}
	var err error

	lightFill := excelize.Fill{Type: "pattern", Color: []string{fillResaltado}, Pattern: 1}
	redFill := excelize.Fill{Type: "pattern", Color: []string{fillMismatch}, Pattern: 1}

	if s.numeric, err = f.NewStyle(&excelize.Style{NumFmt: numFmtMiles}); err != nil {
		return nil, err
	}
	if s.numericResaltado, err = f.NewStyle(&excelize.Style{NumFmt: numFmtMiles, Fill: lightFill}); err != nil {
		return nil, err
	}
	if s.numericMismatch, err = f.NewStyle(&excelize.Style{NumFmt: numFmtMiles, Fill: redFill}); err != nil {
		return nil, err
	}
	if s.resaltado, err = f.NewStyle(&excelize.Style{Fill: lightFill}); err != nil {
		return nil, err
	}
	if s.mismatch, err = f.NewStyle(&excelize.Style{Fill: redFill}); err != nil {
		return nil, err
	}
	return s, nil
}

// Format aplica el formato de una hoja en sitio: coerción numérica con
// separador de miles, resaltado de columnas y resaltado de filas cuyo
// receptor no coincide con el filtro, y por último poda de filas en blanco.
//
// Política adoptada: el resaltado de columnas se aplica a todas las filas
// de datos, y la fila COMPLETA se pinta de rojo cuando el receptor no
// coincide; el rojo gana sobre el resaltado de columna.
func Format(f *excelize.File, schema SheetSchema, receptorFiltro string) error {
	styles, err := newCellStyles(f)
	if err != nil {
		return fmt.Errorf("error creando estilos: %w", err)
	}

	rows, err := f.GetRows(schema.Name)
	if err != nil {
		return fmt.Errorf("error leyendo hoja %s: %w", schema.Name, err)
	}

	numericos := schema.indexSet(schema.NumericColumns)
	resaltadas := schema.indexSet(schema.HighlightColumns)
	receptorIdx := schema.ColumnIndex(schema.ReceptorColumn)
	filtro := strings.TrimSpace(receptorFiltro)

	// La fila 1 es el encabezado
	for i := 1; i < len(rows); i++ {
		rowNum := i + 1
		row := rows[i]

		mismatch := filtro != "" && strings.TrimSpace(cellAt(row, receptorIdx)) != filtro

		for col := 1; col <= len(schema.Columns); col++ {
			cell, err := excelize.CoordinatesToCellName(col, rowNum)
			if err != nil {
				return err
			}

			esNumerica := false
			if numericos[col] {
				// Reinterpretar el texto con coma decimal como número; si
				// no es numérico la celda queda como texto y no es error
				raw := strings.TrimSpace(cellAt(row, col))
				if value, ok := parseMonto(raw); ok {
					if err := f.SetCellFloat(schema.Name, cell, value, -1, 64); err != nil {
						return err
					}
					esNumerica = true
				}
			}

			styleID := 0
			switch {
			case mismatch && esNumerica:
				styleID = styles.numericMismatch
			case mismatch:
				styleID = styles.mismatch
			case resaltadas[col] && esNumerica:
				styleID = styles.numericResaltado
			case resaltadas[col]:
				styleID = styles.resaltado
			case esNumerica:
				styleID = styles.numeric
			}
			if styleID != 0 {
				if err := f.SetCellStyle(schema.Name, cell, cell, styleID); err != nil {
					return err
				}
			}
		}
	}

	return pruneBlankRows(f, schema, rows)
}

// parseMonto reinterpreta un monto con coma decimal como número. Solo acepta
// decimales simples: dígitos, signo y separadores. Las formas extendidas de
// strconv (NaN, Inf, hexadecimales, exponentes) quedan como texto.
func parseMonto(raw string) (float64, bool) {
	if raw == "" {
		return 0, false
	}
	for _, r := range raw {
		if (r < '0' || r > '9') && r != ',' && r != '.' && r != '-' {
			return 0, false
		}
	}
	value, err := strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// pruneBlankRows elimina las filas de datos completamente vacías, en orden
// inverso para no desplazar los índices pendientes
func pruneBlankRows(f *excelize.File, schema SheetSchema, rows [][]string) error {
	for i := len(rows) - 1; i >= 1; i-- {
		if isBlankRow(rows[i]) {
			if err := f.RemoveRow(schema.Name, i+1); err != nil {
				return fmt.Errorf("error eliminando fila %d: %w", i+1, err)
			}
		}
	}
	return nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// cellAt retorna la celda en la columna base 1, o vacío si la fila es corta
func cellAt(row []string, col int) string {
	if col >= 1 && col <= len(row) {
		return row[col-1]
	}
	return ""
}
