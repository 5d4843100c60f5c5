package database

import (
	"fmt"
	"time"

	"github.com/afc-labs/facturas-service/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ReportLogRepository maneja la bitácora de reportes generados
type ReportLogRepository struct {
	db     *DB
	logger *logrus.Logger
}

// NewReportLogRepository crea una nueva instancia del repositorio
func NewReportLogRepository(db *DB, logger *logrus.Logger) *ReportLogRepository {
	return &ReportLogRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserta una entrada en la bitácora
func (r *ReportLogRepository) Create(log *models.ReportLog) error {
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO report_logs (
			id, numero_receptor, file_count, detalle_rows, resumen_rows,
			error_count, duration_ms, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
	`

	_, err := r.db.Exec(query,
		log.ID, log.NumeroReceptor, log.FileCount, log.DetalleRows,
		log.ResumenRows, log.ErrorCount, log.DurationMS, log.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error creating report log: %w", err)
	}

	return nil
}

// GetRecent retorna las últimas entradas de la bitácora
func (r *ReportLogRepository) GetRecent(limit int) ([]models.ReportLog, error) {
	query := `
		SELECT id, numero_receptor, file_count, detalle_rows, resumen_rows,
		       error_count, duration_ms, created_at
		FROM report_logs
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying report logs: %w", err)
	}
	defer rows.Close()

	var logs []models.ReportLog
	for rows.Next() {
		var log models.ReportLog
		if err := rows.Scan(
			&log.ID, &log.NumeroReceptor, &log.FileCount, &log.DetalleRows,
			&log.ResumenRows, &log.ErrorCount, &log.DurationMS, &log.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning report log: %w", err)
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}
