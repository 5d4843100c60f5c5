package api

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/afc-labs/facturas-service/internal/config"
	"github.com/afc-labs/facturas-service/internal/database"
	"github.com/afc-labs/facturas-service/internal/models"
	"github.com/afc-labs/facturas-service/internal/services"
	"github.com/afc-labs/facturas-service/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	sessionCookie = "session"

	// xlsxMIME es el tipo MIME estándar de los libros .xlsx
	xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// API maneja todos los endpoints del portal
type API struct {
	reportService *services.ReportService
	sessions      session.Store
	db            *database.DB
	cfg           *config.Config
	logger        *logrus.Logger
}

// NewAPI crea una nueva instancia de la API. db puede ser nil; el health
// check reporta la base de datos como deshabilitada.
func NewAPI(reportService *services.ReportService, sessions session.Store, db *database.DB, cfg *config.Config, logger *logrus.Logger) *API {
	return &API{
		reportService: reportService,
		sessions:      sessions,
		db:            db,
		cfg:           cfg,
		logger:        logger,
	}
}

// Health reporta el estado del servicio y de la base de datos
func (api *API) Health(c *gin.Context) {
	httpStatus := http.StatusOK
	status := "ok"
	dbStatus := "disabled"
	if api.db != nil {
		if err := api.db.HealthCheck(); err != nil {
			api.logger.WithError(err).Warn("Database health check failed")
			httpStatus = http.StatusServiceUnavailable
			status = "degraded"
			dbStatus = "down"
		} else {
			dbStatus = "ok"
		}
	}
	c.JSON(httpStatus, gin.H{
		"status":    status,
		"database":  dbStatus,
		"timestamp": time.Now().UTC(),
		"service":   "facturas-service",
		"version":   "1.0.0",
	})
}

// LoginPage muestra el formulario de inicio de sesión
func (api *API) LoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{
		"flashes": api.popFlashes(c),
	})
}

// Login valida la contraseña y abre la sesión. Los fallos se renderizan en
// la misma página: antes de autenticar no hay sesión donde encolar flashes.
func (api *API) Login(c *gin.Context) {
	password := c.PostForm("password")
	if api.cfg.Auth.Password == "" || password != api.cfg.Auth.Password {
		c.HTML(http.StatusUnauthorized, "login.html", gin.H{
			"flashes": []models.Flash{models.NewErrorFlash("Contraseña incorrecta. Inténtalo de nuevo.")},
		})
		return
	}

	token, err := api.sessions.Create(c.Request.Context())
	if err != nil {
		api.logger.WithError(err).Error("Error creating session")
		c.HTML(http.StatusInternalServerError, "login.html", gin.H{
			"flashes": []models.Flash{models.NewErrorFlash("No se pudo iniciar la sesión. Inténtalo de nuevo.")},
		})
		return
	}

	maxAge := int(api.cfg.Auth.SessionTTL.Seconds())
	c.SetCookie(sessionCookie, token, maxAge, "/", "", api.cfg.IsProduction(), true)

	api.pushFlash(c.Request.Context(), token, models.NewSuccessFlash("Inicio de sesión exitoso."))
	c.Redirect(http.StatusSeeOther, "/")
}

// Logout cierra la sesión
func (api *API) Logout(c *gin.Context) {
	if token, err := c.Cookie(sessionCookie); err == nil {
		if err := api.sessions.Delete(c.Request.Context(), token); err != nil {
			api.logger.WithError(err).Warn("Error deleting session")
		}
	}
	c.SetCookie(sessionCookie, "", -1, "/", "", api.cfg.IsProduction(), true)
	c.Redirect(http.StatusSeeOther, "/login")
}

// Index muestra el formulario de subida de archivos
func (api *API) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"flashes": api.popFlashes(c),
	})
}

// Upload procesa el lote de XMLs subidos y responde con el XLSX generado
func (api *API) Upload(c *gin.Context) {
	token, _ := c.Cookie(sessionCookie)

	form, err := c.MultipartForm()
	if err != nil {
		api.flashTo(c, "/", models.NewErrorFlash("No se subieron archivos."))
		return
	}

	files := form.File["xml_files"]
	if len(files) == 0 || files[0].Filename == "" {
		if wantsJSON(c) {
			c.JSON(http.StatusBadRequest, models.NewValidationError(
				"No se seleccionó ningún archivo.",
				[]models.ErrorDetail{{Field: "xml_files", Issue: "required"}}))
			return
		}
		api.flashTo(c, "/", models.NewErrorFlash("No se seleccionó ningún archivo."))
		return
	}
	if max := api.cfg.Report.MaxFiles; max > 0 && len(files) > max {
		api.flashTo(c, "/", models.NewErrorFlash(fmt.Sprintf("Demasiados archivos: el máximo por lote es %d.", max)))
		return
	}

	numeroReceptor := strings.TrimSpace(c.PostForm("numero_receptor"))
	if numeroReceptor == "" {
		if wantsJSON(c) {
			c.JSON(http.StatusBadRequest, models.NewValidationError(
				"El número de identificación del receptor es obligatorio.",
				[]models.ErrorDetail{{Field: "numero_receptor", Issue: "required"}}))
			return
		}
		api.flashTo(c, "/", models.NewErrorFlash("El número de identificación del receptor es obligatorio."))
		return
	}

	sink := &sessionFlashSink{api: api, ctx: c.Request.Context(), token: token}

	docs := make([]models.Document, 0, len(files))
	for _, fh := range files {
		if !strings.HasSuffix(strings.ToLower(fh.Filename), ".xml") {
			sink.Error(fmt.Sprintf("El archivo '%s' no es un XML y fue omitido.", fh.Filename))
			continue
		}
		data, err := readUpload(fh)
		if err != nil {
			api.logger.WithError(err).WithField("filename", fh.Filename).Error("Error reading uploaded file")
			sink.Error(fmt.Sprintf("Error al leer el archivo '%s'.", fh.Filename))
			continue
		}
		docs = append(docs, models.Document{Filename: fh.Filename, Data: data})
	}

	data, result, err := api.reportService.GenerateReport(docs, numeroReceptor, sink)
	if err != nil {
		api.logger.WithError(err).Error("Error generating report")
		if wantsJSON(c) {
			c.JSON(http.StatusInternalServerError, models.NewInternalError("No se pudo generar el reporte."))
			return
		}
		api.flashTo(c, "/", models.NewErrorFlash("No se pudo generar el reporte."))
		return
	}

	if to := strings.TrimSpace(c.PostForm("email")); to != "" {
		if err := api.reportService.EmailReport(to, data, result); err != nil {
			api.logger.WithError(err).Warn("Error sending report email")
			sink.Error(fmt.Sprintf("No se pudo enviar el reporte a %s.", to))
		} else {
			sink.Success(fmt.Sprintf("Reporte enviado a %s.", to))
		}
	}

	sink.Success("Excel generado y listo para descargar.")

	filename := api.reportService.DownloadName()
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Length", fmt.Sprintf("%d", len(data)))
	c.Data(http.StatusOK, xlsxMIME, data)
}

// History retorna las últimas entradas de la bitácora de reportes
func (api *API) History(c *gin.Context) {
	logs, err := api.reportService.RecentLogs(20)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, models.NewInternalError("La bitácora de reportes no está disponible."))
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": logs})
}

// AuthMiddleware redirige a /login cuando no hay una sesión vigente; los
// clientes JSON reciben el error estandarizado en lugar de la redirección
func (api *API) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(sessionCookie)
		if err != nil || !api.sessions.Valid(c.Request.Context(), token) {
			if wantsJSON(c) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, models.NewUnauthorizedError("Sesión no válida o expirada."))
				return
			}
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// wantsJSON indica si el cliente pidió una respuesta JSON en lugar de HTML
func wantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}

// flashTo encola un flash en la sesión vigente (si la hay) y redirige
func (api *API) flashTo(c *gin.Context, location string, flash models.Flash) {
	if token, err := c.Cookie(sessionCookie); err == nil {
		api.pushFlash(c.Request.Context(), token, flash)
	}
	c.Redirect(http.StatusSeeOther, location)
}

func (api *API) pushFlash(ctx context.Context, token string, flash models.Flash) {
	if err := api.sessions.PushFlash(ctx, token, flash); err != nil {
		api.logger.WithError(err).Warn("Error pushing flash message")
	}
}

func (api *API) popFlashes(c *gin.Context) []models.Flash {
	token, err := c.Cookie(sessionCookie)
	if err != nil {
		return nil
	}
	flashes, err := api.sessions.PopFlashes(c.Request.Context(), token)
	if err != nil {
		api.logger.WithError(err).Warn("Error popping flash messages")
		return nil
	}
	return flashes
}

// readUpload lee el contenido completo de un archivo subido
func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// sessionFlashSink empuja los mensajes del servicio a la sesión del usuario
type sessionFlashSink struct {
	api   *API
	ctx   context.Context
	token string
}

func (s *sessionFlashSink) Error(message string) {
	s.api.pushFlash(s.ctx, s.token, models.NewErrorFlash(message))
}

func (s *sessionFlashSink) Success(message string) {
	s.api.pushFlash(s.ctx, s.token, models.NewSuccessFlash(message))
}
