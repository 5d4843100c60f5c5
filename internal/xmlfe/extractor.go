package xmlfe

import (
	"bytes"
	"fmt"
	"io"

	"github.com/afc-labs/facturas-service/internal/models"
	"github.com/antchfx/xmlquery"
)

const (
	rootFactura = "FacturaElectronica"

	// montoCero es el valor formateado para montos ausentes
	montoCero = "0,00"
)

// skipRoots son acuses de recibo que se excluyen del reporte por completo
var skipRoots = map[string]bool{
	"MensajeReceptor": true,
	"MensajeHacienda": true,
}

// Extract parsea un documento y retorna su registro canónico.
//
// Retorna (nil, nil) para los tipos de acuse que se excluyen del reporte.
// Para raíces que no son FacturaElectronica retorna un encabezado mínimo
// con tipo "Otro Documento". Un XML malformado retorna error; el caller
// reporta el error y continúa con el siguiente documento.
func Extract(filename string, r io.Reader) (*models.InvoiceRecord, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("error al parsear el archivo XML '%s': %w", filename, err)
	}

	StripNamespaces(doc)

	root := RootElement(doc)
	if root == nil {
		return nil, fmt.Errorf("error al procesar el archivo '%s': documento sin elemento raíz", filename)
	}

	if skipRoots[root.Data] {
		return nil, nil
	}

	if root.Data != rootFactura {
		return &models.InvoiceRecord{
			Header: models.InvoiceHeader{
				Archivo:       filename,
				TipoDocumento: models.TipoOtroDocumento,
			},
		}, nil
	}

	record := &models.InvoiceRecord{
		Header: models.InvoiceHeader{
			Clave:          GetText(root, "Clave", ""),
			Consecutivo:    GetText(root, "NumeroConsecutivo", ""),
			Fecha:          FormatDate(GetText(root, "FechaEmision", "")),
			NombreEmisor:   GetText(root, "Emisor/Nombre", ""),
			NumeroEmisor:   GetText(root, "Emisor/Identificacion/Numero", ""),
			NombreReceptor: GetText(root, "Receptor/Nombre", ""),
			NumeroReceptor: GetText(root, "Receptor/Identificacion/Numero", ""),
			CodigoMoneda:   GetText(root, "ResumenFactura/CodigoTipoMoneda/CodigoMoneda", ""),
			TipoCambio:     FormatNumber(GetText(root, "ResumenFactura/CodigoTipoMoneda/TipoCambio", "")),
			TipoDocumento:  models.TipoFacturaElectronica,
			Archivo:        filename,
		},
		Totales: extractTotales(root),
	}

	for _, linea := range xmlquery.Find(root, "DetalleServicio/LineaDetalle") {
		record.Items = append(record.Items, extractLinea(linea))
	}

	return record, nil
}

// ExtractBytes es una conveniencia sobre Extract para documentos en memoria
func ExtractBytes(doc models.Document) (*models.InvoiceRecord, error) {
	return Extract(doc.Filename, bytes.NewReader(doc.Data))
}

// extractLinea extrae una línea de detalle. Descuento e Impuesto son
// opcionales y se resuelven a cero formateado cuando faltan.
func extractLinea(linea *xmlquery.Node) models.InvoiceLineItem {
	return models.InvoiceLineItem{
		CodigoCabys:    GetText(linea, "Codigo", ""),
		Detalle:        GetText(linea, "Detalle", ""),
		Cantidad:       FormatNumber(GetText(linea, "Cantidad", "")),
		PrecioUnitario: FormatNumber(GetText(linea, "PrecioUnitario", "")),
		MontoTotal:     FormatNumber(GetText(linea, "MontoTotal", "")),
		MontoDescuento: formatOrDefault(GetText(linea, "Descuento/MontoDescuento", "")),
		Subtotal:       FormatNumber(GetText(linea, "SubTotal", "")),
		Tarifa:         formatOrDefault(GetText(linea, "Impuesto/Tarifa", "")),
		MontoImpuesto:  formatOrDefault(GetText(linea, "Impuesto/Monto", "")),
		ImpuestoNeto:   FormatNumber(GetText(linea, "ImpuestoNeto", "")),
	}
}

// extractTotales extrae el ResumenFactura del documento, independiente de
// las líneas de detalle
func extractTotales(root *xmlquery.Node) models.InvoiceSummaryTotals {
	return models.InvoiceSummaryTotals{
		TotalGravado:     FormatNumber(GetText(root, "ResumenFactura/TotalGravado", "")),
		TotalExento:      FormatNumber(GetText(root, "ResumenFactura/TotalExento", "")),
		TotalExonerado:   FormatNumber(GetText(root, "ResumenFactura/TotalExonerado", "")),
		TotalVenta:       FormatNumber(GetText(root, "ResumenFactura/TotalVenta", "")),
		TotalDescuentos:  FormatNumber(GetText(root, "ResumenFactura/TotalDescuentos", "")),
		TotalVentaNeta:   FormatNumber(GetText(root, "ResumenFactura/TotalVentaNeta", "")),
		TotalImpuesto:    FormatNumber(GetText(root, "ResumenFactura/TotalImpuesto", "")),
		TotalComprobante: FormatNumber(GetText(root, "ResumenFactura/TotalComprobante", "")),
		OtrosCargos:      formatOrDefault(GetText(root, "OtrosCargos/MontoCargo", "")),
	}
}

func formatOrDefault(value string) string {
	if value == "" {
		return montoCero
	}
	return FormatNumber(value)
}
