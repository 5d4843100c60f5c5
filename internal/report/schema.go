// Package report proyecta registros de facturas a un libro XLSX con dos
// hojas: el detalle por línea y el resumen por comprobante.
package report

// Nombres de las hojas del reporte
const (
	SheetDetalle = "facturas_detalladas"
	SheetResumen = "facturas_resumidas"
)

// Columnas compartidas entre esquemas. Los índices se resuelven por nombre
// al momento de formatear, nunca se codifican a mano.
const (
	colClave           = "Clave"
	colConsecutivo     = "Consecutivo"
	colFecha           = "Fecha"
	colNombreEmisor    = "Nombre Emisor"
	colNumeroEmisor    = "Número Emisor"
	colNombreReceptor  = "Nombre Receptor"
	colNumeroReceptor  = "Número Receptor"
	colCodigoCabys     = "Código Cabys"
	colDetalle         = "Detalle"
	colCantidad        = "Cantidad"
	colPrecioUnitario  = "Precio Unitario"
	colMontoTotal      = "Monto Total"
	colMontoDescuento  = "Monto Descuento"
	colSubtotal        = "Subtotal"
	colTarifa          = "Tarifa (%)"
	colMontoImpuesto   = "Monto Impuesto"
	colImpuestoNeto    = "Impuesto Neto"
	colCodigoMoneda    = "Código Moneda"
	colTipoCambio      = "Tipo Cambio"
	colTotalGravado    = "Total Gravado"
	colTotalExento     = "Total Exento"
	colTotalExonerado  = "Total Exonerado"
	colTotalVenta      = "Total Venta"
	colTotalDescuentos = "Total Descuentos"
	colTotalVentaNeta  = "Total Venta Neta"
	colTotalImpuesto   = "Total Impuesto"
	colTotalComprobante = "Total Comprobante"
	colOtrosCargos     = "Otros Cargos"
	colArchivo         = "Archivo"
	colTipoDocumento   = "Tipo de Documento"
)

// SheetSchema describe una hoja del reporte: el orden fijo de columnas y
// los conjuntos de columnas numéricas y resaltadas, todos por nombre.
type SheetSchema struct {
	Name             string
	Columns          []string
	NumericColumns   []string
	HighlightColumns []string
	ReceptorColumn   string
}

// ColumnIndex retorna el índice (base 1) de una columna por nombre, o 0 si
// el nombre no pertenece al esquema
func (s SheetSchema) ColumnIndex(name string) int {
	for i, col := range s.Columns {
		if col == name {
			return i + 1
		}
	}
	return 0
}

// indexSet resuelve una lista de nombres a un conjunto de índices base 1
func (s SheetSchema) indexSet(names []string) map[int]bool {
	set := make(map[int]bool, len(names))
	for _, name := range names {
		if idx := s.ColumnIndex(name); idx > 0 {
			set[idx] = true
		}
	}
	return set
}

// DetalleSchema retorna el esquema de la hoja de detalle (30 columnas, una
// fila por línea de factura)
func DetalleSchema() SheetSchema {
	return SheetSchema{
		Name: SheetDetalle,
		Columns: []string{
			colClave, colConsecutivo, colFecha, colNombreEmisor, colNumeroEmisor,
			colNombreReceptor, colNumeroReceptor, colCodigoCabys, colDetalle,
			colCantidad, colPrecioUnitario, colMontoTotal, colMontoDescuento,
			colSubtotal, colTarifa, colMontoImpuesto, colImpuestoNeto,
			colCodigoMoneda, colTipoCambio, colTotalGravado, colTotalExento,
			colTotalExonerado, colTotalVenta, colTotalDescuentos, colTotalVentaNeta,
			colTotalImpuesto, colTotalComprobante, colOtrosCargos, colArchivo,
			colTipoDocumento,
		},
		NumericColumns: []string{
			colCantidad, colPrecioUnitario, colMontoTotal, colMontoDescuento,
			colSubtotal, colTarifa, colMontoImpuesto, colImpuestoNeto,
			colTipoCambio, colTotalGravado, colTotalExento, colTotalExonerado,
			colTotalVenta, colTotalDescuentos, colTotalVentaNeta,
			colTotalImpuesto, colTotalComprobante, colOtrosCargos,
		},
		HighlightColumns: []string{
			colConsecutivo, colFecha, colDetalle, colMontoImpuesto,
			colTotalExento, colTotalDescuentos, colTotalVentaNeta, colArchivo,
		},
		ReceptorColumn: colNumeroReceptor,
	}
}

// ResumenSchema retorna el esquema de la hoja de resumen (14 columnas, una
// fila por comprobante)
func ResumenSchema() SheetSchema {
	return SheetSchema{
		Name: SheetResumen,
		Columns: []string{
			colClave, colConsecutivo, colFecha, colNombreEmisor, colNumeroEmisor,
			colNombreReceptor, colNumeroReceptor, colTotalVenta,
			colTotalDescuentos, colTotalVentaNeta, colTotalImpuesto,
			colTotalComprobante, colArchivo, colTipoDocumento,
		},
		NumericColumns: []string{
			colTotalVenta, colTotalDescuentos, colTotalVentaNeta,
			colTotalImpuesto, colTotalComprobante,
		},
		HighlightColumns: []string{
			colConsecutivo, colFecha, colTotalVentaNeta, colTotalComprobante,
			colArchivo,
		},
		ReceptorColumn: colNumeroReceptor,
	}
}
