package services

import (
	"fmt"
	"time"

	"github.com/afc-labs/facturas-service/internal/database"
	"github.com/afc-labs/facturas-service/internal/email"
	"github.com/afc-labs/facturas-service/internal/models"
	"github.com/afc-labs/facturas-service/internal/report"
	"github.com/sirupsen/logrus"
)

// FlashSink recibe los mensajes legibles que el servicio produce durante
// el procesamiento del lote. El servicio no depende de cómo se muestran.
type FlashSink interface {
	Error(message string)
	Success(message string)
}

// ReportService maneja la generación del reporte de facturas
type ReportService struct {
	reportLogRepo *database.ReportLogRepository
	resendService *email.ResendService
	downloadName  string
	logger        *logrus.Logger
}

// NewReportService crea una nueva instancia del servicio. reportLogRepo y
// resendService pueden ser nil; la bitácora y el correo quedan deshabilitados.
func NewReportService(reportLogRepo *database.ReportLogRepository, resendService *email.ResendService, downloadName string, logger *logrus.Logger) *ReportService {
	return &ReportService{
		reportLogRepo: reportLogRepo,
		resendService: resendService,
		downloadName:  downloadName,
		logger:        logger,
	}
}

// DownloadName retorna el nombre fijo del archivo descargable
func (s *ReportService) DownloadName() string {
	return s.downloadName
}

// GenerateReport procesa el lote y retorna los bytes del XLSX terminado.
// Los errores por documento se empujan al sink y no detienen el lote; solo
// falla cuando no es posible producir ningún artefacto.
func (s *ReportService) GenerateReport(docs []models.Document, receptorFiltro string, sink FlashSink) ([]byte, report.Result, error) {
	start := time.Now()

	f, result, err := report.Build(docs, receptorFiltro)
	if err != nil {
		return nil, result, fmt.Errorf("error generando el reporte: %w", err)
	}

	for _, msg := range result.Errors {
		s.logger.WithField("receptor", receptorFiltro).Warn(msg)
		sink.Error(msg)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, result, fmt.Errorf("error serializando el reporte: %w", err)
	}

	duration := time.Since(start)
	s.logger.WithFields(logrus.Fields{
		"files":        len(docs),
		"records":      result.Records,
		"detalle_rows": result.DetalleRows,
		"resumen_rows": result.ResumenRows,
		"errors":       len(result.Errors),
		"duration_ms":  duration.Milliseconds(),
	}).Info("Report generated successfully")

	s.logBatch(docs, receptorFiltro, result, duration)

	return buf.Bytes(), result, nil
}

// RecentLogs retorna las últimas entradas de la bitácora de reportes
func (s *ReportService) RecentLogs(limit int) ([]models.ReportLog, error) {
	if s.reportLogRepo == nil {
		return nil, fmt.Errorf("report log not available")
	}
	return s.reportLogRepo.GetRecent(limit)
}

// EmailReport envía el reporte generado por correo si el servicio de email
// está configurado
func (s *ReportService) EmailReport(to string, data []byte, result report.Result) error {
	if s.resendService == nil {
		return fmt.Errorf("email service not available")
	}
	return s.resendService.SendReportEmail(to, s.downloadName, data, result)
}

// logBatch registra el lote en la bitácora; un fallo aquí no afecta el
// reporte ya generado
func (s *ReportService) logBatch(docs []models.Document, receptorFiltro string, result report.Result, duration time.Duration) {
	if s.reportLogRepo == nil {
		return
	}

	entry := &models.ReportLog{
		NumeroReceptor: receptorFiltro,
		FileCount:      len(docs),
		DetalleRows:    result.DetalleRows,
		ResumenRows:    result.ResumenRows,
		ErrorCount:     len(result.Errors),
		DurationMS:     duration.Milliseconds(),
	}
	if err := s.reportLogRepo.Create(entry); err != nil {
		s.logger.WithError(err).Warn("Could not write report log entry")
	}
}
