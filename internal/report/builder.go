package report

import (
	"fmt"

	"github.com/afc-labs/facturas-service/internal/models"
	"github.com/afc-labs/facturas-service/internal/xmlfe"
	"github.com/xuri/excelize/v2"
)

// Result resume el lote procesado
type Result struct {
	// Errors contiene un mensaje legible por cada documento que no se
	// pudo procesar; los documentos restantes no se ven afectados
	Errors []string
	// Documentos extraídos (sin contar los acuses excluidos)
	Records int
	// Filas escritas en cada hoja antes de la poda
	DetalleRows int
	ResumenRows int
}

// Build procesa el lote completo de documentos y retorna el libro XLSX
// terminado. Cada documento se procesa de forma independiente: un XML
// malformado aporta un error al resultado y el lote continúa. Un lote sin
// filas sigue produciendo un libro válido con solo los encabezados.
func Build(docs []models.Document, receptorFiltro string) (*excelize.File, Result, error) {
	var result Result

	records := make([]models.InvoiceRecord, 0, len(docs))
	for _, doc := range docs {
		record, err := xmlfe.ExtractBytes(doc)
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		if record == nil {
			// Acuse de recibo: se excluye del reporte por completo
			continue
		}
		records = append(records, *record)
	}
	result.Records = len(records)

	detalle, resumen := Project(records)
	result.DetalleRows = len(detalle)
	result.ResumenRows = len(resumen)

	f, err := newWorkbook(detalle, resumen)
	if err != nil {
		return nil, result, err
	}

	if err := Format(f, DetalleSchema(), receptorFiltro); err != nil {
		return nil, result, fmt.Errorf("error formateando %s: %w", SheetDetalle, err)
	}
	if err := Format(f, ResumenSchema(), receptorFiltro); err != nil {
		return nil, result, fmt.Errorf("error formateando %s: %w", SheetResumen, err)
	}

	return f, result, nil
}

// newWorkbook crea el libro con las dos hojas, sus encabezados y las filas
// proyectadas
func newWorkbook(detalle, resumen [][]string) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SheetDetalle); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(SheetResumen); err != nil {
		return nil, err
	}

	if err := writeSheet(f, DetalleSchema(), detalle); err != nil {
		return nil, err
	}
	if err := writeSheet(f, ResumenSchema(), resumen); err != nil {
		return nil, err
	}
	return f, nil
}

func writeSheet(f *excelize.File, schema SheetSchema, rows [][]string) error {
	if err := f.SetSheetRow(schema.Name, "A1", &schema.Columns); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(schema.Name, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
