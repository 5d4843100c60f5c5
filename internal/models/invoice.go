package models

// TipoDocumento representa la clasificación de un documento procesado
type TipoDocumento string

const (
	TipoFacturaElectronica TipoDocumento = "Factura Electronica"
	TipoOtroDocumento      TipoDocumento = "Otro Documento"
)

// InvoiceHeader representa el encabezado canónico de un documento.
// Clave y Consecutivo son cadenas opacas, nunca se interpretan como números.
type InvoiceHeader struct {
	Clave          string        `json:"clave"`
	Consecutivo    string        `json:"consecutivo"`
	Fecha          string        `json:"fecha"`
	NombreEmisor   string        `json:"nombre_emisor"`
	NumeroEmisor   string        `json:"numero_emisor"`
	NombreReceptor string        `json:"nombre_receptor"`
	NumeroReceptor string        `json:"numero_receptor"`
	CodigoMoneda   string        `json:"codigo_moneda"`
	TipoCambio     string        `json:"tipo_cambio"`
	TipoDocumento  TipoDocumento `json:"tipo_documento"`
	Archivo        string        `json:"archivo"`
}

// InvoiceLineItem representa una línea de detalle de la factura
type InvoiceLineItem struct {
	CodigoCabys    string `json:"codigo_cabys"`
	Detalle        string `json:"detalle"`
	Cantidad       string `json:"cantidad"`
	PrecioUnitario string `json:"precio_unitario"`
	MontoTotal     string `json:"monto_total"`
	MontoDescuento string `json:"monto_descuento"`
	Subtotal       string `json:"subtotal"`
	Tarifa         string `json:"tarifa"`
	MontoImpuesto  string `json:"monto_impuesto"`
	ImpuestoNeto   string `json:"impuesto_neto"`
}

// InvoiceSummaryTotals representa los totales del ResumenFactura
type InvoiceSummaryTotals struct {
	TotalGravado     string `json:"total_gravado"`
	TotalExento      string `json:"total_exento"`
	TotalExonerado   string `json:"total_exonerado"`
	TotalVenta       string `json:"total_venta"`
	TotalDescuentos  string `json:"total_descuentos"`
	TotalVentaNeta   string `json:"total_venta_neta"`
	TotalImpuesto    string `json:"total_impuesto"`
	TotalComprobante string `json:"total_comprobante"`
	OtrosCargos      string `json:"otros_cargos"`
}

// InvoiceRecord agrupa el encabezado con sus líneas y totales.
// Items y Totales quedan vacíos para documentos que no son facturas.
type InvoiceRecord struct {
	Header  InvoiceHeader
	Items   []InvoiceLineItem
	Totales InvoiceSummaryTotals
}

// Document representa un archivo subido pendiente de procesar
type Document struct {
	Filename string
	Data     []byte
}
