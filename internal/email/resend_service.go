package email

import (
	"fmt"

	"github.com/afc-labs/facturas-service/internal/report"
	"github.com/resend/resend-go/v2"
	"github.com/sirupsen/logrus"
)

// ResendService maneja el envío de reportes por correo usando Resend API
type ResendService struct {
	client    *resend.Client
	fromEmail string
	logger    *logrus.Logger
}

// NewResendService crea una nueva instancia de ResendService
func NewResendService(apiKey, fromEmail string, logger *logrus.Logger) *ResendService {
	return &ResendService{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
		logger:    logger,
	}
}

// SendReportEmail envía el reporte generado como adjunto
func (s *ResendService) SendReportEmail(to, filename string, data []byte, result report.Result) error {
	htmlContent := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Reporte de Facturas</title>
</head>
<body>
    <h1>Reporte de Facturas Electrónicas</h1>
    <p>Adjunto encontrará el reporte generado.</p>
    <ul>
        <li>Documentos procesados: %d</li>
        <li>Filas de detalle: %d</li>
        <li>Filas de resumen: %d</li>
        <li>Documentos con error: %d</li>
    </ul>
</body>
</html>`, result.Records, result.DetalleRows, result.ResumenRows, len(result.Errors))

	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{to},
		Subject: "Reporte de Facturas Electrónicas",
		Html:    htmlContent,
		Attachments: []*resend.Attachment{
			{
				Filename: filename,
				Content:  data,
			},
		},
	}

	sent, err := s.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("error sending report email: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"email_id": sent.Id,
		"to":       to,
		"filename": filename,
	}).Info("Report email sent successfully")

	return nil
}
