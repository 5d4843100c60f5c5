package report

import (
	"github.com/afc-labs/facturas-service/internal/models"
)

// Project convierte los registros extraídos en las dos proyecciones
// tabulares del reporte, en el orden fijo de columnas de cada esquema.
//
// Una factura con N líneas aporta N filas de detalle; con cero líneas no
// aporta ninguna. Todo registro, incluidos los marcadores "Otro Documento",
// aporta exactamente una fila de resumen.
func Project(records []models.InvoiceRecord) (detalle, resumen [][]string) {
	for _, record := range records {
		if record.Header.TipoDocumento == models.TipoFacturaElectronica {
			for _, item := range record.Items {
				detalle = append(detalle, detalleRow(record.Header, item, record.Totales))
			}
		}
		resumen = append(resumen, resumenRow(record.Header, record.Totales))
	}
	return detalle, resumen
}

// detalleRow arma una fila de detalle: encabezado + línea + totales, en el
// mismo orden que DetalleSchema().Columns
func detalleRow(h models.InvoiceHeader, item models.InvoiceLineItem, t models.InvoiceSummaryTotals) []string {
	return []string{
		h.Clave, h.Consecutivo, h.Fecha, h.NombreEmisor, h.NumeroEmisor,
		h.NombreReceptor, h.NumeroReceptor, item.CodigoCabys, item.Detalle,
		item.Cantidad, item.PrecioUnitario, item.MontoTotal, item.MontoDescuento,
		item.Subtotal, item.Tarifa, item.MontoImpuesto, item.ImpuestoNeto,
		h.CodigoMoneda, h.TipoCambio, t.TotalGravado, t.TotalExento,
		t.TotalExonerado, t.TotalVenta, t.TotalDescuentos, t.TotalVentaNeta,
		t.TotalImpuesto, t.TotalComprobante, t.OtrosCargos, h.Archivo,
		string(h.TipoDocumento),
	}
}

// resumenRow arma una fila de resumen en el mismo orden que
// ResumenSchema().Columns
func resumenRow(h models.InvoiceHeader, t models.InvoiceSummaryTotals) []string {
	return []string{
		h.Clave, h.Consecutivo, h.Fecha, h.NombreEmisor, h.NumeroEmisor,
		h.NombreReceptor, h.NumeroReceptor, t.TotalVenta, t.TotalDescuentos,
		t.TotalVentaNeta, t.TotalImpuesto, t.TotalComprobante, h.Archivo,
		string(h.TipoDocumento),
	}
}
