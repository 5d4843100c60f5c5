package models

import (
	"time"

	"github.com/google/uuid"
)

// ReportLog representa la bitácora de un reporte generado. No persiste los
// documentos subidos, solo los contadores del lote.
type ReportLog struct {
	ID             uuid.UUID `json:"id" db:"id"`
	NumeroReceptor string    `json:"numero_receptor" db:"numero_receptor"`
	FileCount      int       `json:"file_count" db:"file_count"`
	DetalleRows    int       `json:"detalle_rows" db:"detalle_rows"`
	ResumenRows    int       `json:"resumen_rows" db:"resumen_rows"`
	ErrorCount     int       `json:"error_count" db:"error_count"`
	DurationMS     int64     `json:"duration_ms" db:"duration_ms"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
