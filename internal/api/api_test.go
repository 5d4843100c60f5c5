package api

import (
	"bytes"
	"html/template"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/afc-labs/facturas-service/internal/config"
	"github.com/afc-labs/facturas-service/internal/services"
	"github.com/afc-labs/facturas-service/internal/session"
)

const facturaXML = `<?xml version="1.0" encoding="utf-8"?>
<FacturaElectronica xmlns="https://cdn.comprobanteselectronicos.go.cr/xml-schemas/v4.3/facturaElectronica">
	<Clave>50601012400310155566600100001010000000155199999999</Clave>
	<NumeroConsecutivo>00100001010000000155</NumeroConsecutivo>
	<FechaEmision>2024-03-01T10:00:00-06:00</FechaEmision>
	<Emisor><Nombre>Comercial La Bandera S.A.</Nombre><Identificacion><Tipo>02</Tipo><Numero>3101555666</Numero></Identificacion></Emisor>
	<Receptor><Nombre>AFC Consultores</Nombre><Identificacion><Tipo>02</Tipo><Numero>3101123456</Numero></Identificacion></Receptor>
	<DetalleServicio>
		<LineaDetalle>
			<NumeroLinea>1</NumeroLinea>
			<Codigo>2399200009900</Codigo>
			<Cantidad>1</Cantidad>
			<Detalle>Servicio profesional</Detalle>
			<PrecioUnitario>10000.00</PrecioUnitario>
			<MontoTotal>10000.00</MontoTotal>
			<SubTotal>10000.00</SubTotal>
			<Impuesto><Codigo>01</Codigo><Tarifa>13.00</Tarifa><Monto>1300.00</Monto></Impuesto>
			<ImpuestoNeto>1300.00</ImpuestoNeto>
		</LineaDetalle>
	</DetalleServicio>
	<ResumenFactura>
		<CodigoTipoMoneda><CodigoMoneda>CRC</CodigoMoneda><TipoCambio>1.00</TipoCambio></CodigoTipoMoneda>
		<TotalVenta>10000.00</TotalVenta>
		<TotalVentaNeta>10000.00</TotalVentaNeta>
		<TotalImpuesto>1300.00</TotalImpuesto>
		<TotalComprobante>11300.00</TotalComprobante>
	</ResumenFactura>
</FacturaElectronica>`

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Env: "development"},
		Auth: config.AuthConfig{
			Password:   "secreto",
			SessionTTL: time.Hour,
		},
		Report: config.ReportConfig{
			DownloadName: "datos_facturas.xlsx",
			MaxFiles:     500,
		},
	}
}

// testRouter arma el router con las mismas rutas que el servidor real,
// respaldado por el almacén de sesiones en memoria
func testRouter(t *testing.T) (*gin.Engine, session.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := testConfig()
	sessions := session.NewMemoryStore(cfg.Auth.SessionTTL)
	reportService := services.NewReportService(nil, nil, cfg.Report.DownloadName, logger)
	handler := NewAPI(reportService, sessions, nil, cfg, logger)

	router := gin.New()
	router.SetHTMLTemplate(template.Must(template.New("").Parse(
		`{{define "login.html"}}login{{range .flashes}}[{{.Message}}]{{end}}{{end}}` +
			`{{define "index.html"}}index{{range .flashes}}[{{.Message}}]{{end}}{{end}}`)))

	router.GET("/health", handler.Health)
	router.GET("/login", handler.LoginPage)
	router.POST("/login", handler.Login)
	router.GET("/logout", handler.Logout)

	protected := router.Group("/")
	protected.Use(handler.AuthMiddleware())
	{
		protected.GET("/", handler.Index)
		protected.POST("/upload", handler.Upload)
		protected.GET("/historial", handler.History)
	}

	return router, sessions
}

// login abre una sesión válida y retorna la cookie resultante
func login(t *testing.T, router *gin.Engine) *http.Cookie {
	t.Helper()

	form := url.Values{"password": {"secreto"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, "/", w.Header().Get("Location"))

	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == sessionCookie && cookie.Value != "" {
			return cookie
		}
	}
	t.Fatal("no se recibió la cookie de sesión")
	return nil
}

// multipartUpload arma el cuerpo multipart de una subida
func multipartUpload(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for name, value := range fields {
		require.NoError(t, writer.WriteField(name, value))
	}
	for filename, content := range files {
		part, err := writer.CreateFormFile("xml_files", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return &body, writer.FormDataContentType()
}

func TestAuthMiddlewareRedirigeSinSesion(t *testing.T) {
	router, _ := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestLoginContrasenaIncorrecta(t *testing.T) {
	router, _ := testRouter(t)

	form := url.Values{"password": {"incorrecta"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// la página se renderiza de nuevo con el mensaje de error: antes de
	// autenticar no hay sesión donde encolar el flash
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, w.Result().Cookies())
	assert.Contains(t, w.Body.String(), "Contraseña incorrecta. Inténtalo de nuevo.")
}

func TestLoginYAccesoProtegido(t *testing.T) {
	router, _ := testRouter(t)
	cookie := login(t, router)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogoutInvalidaLaSesion(t *testing.T) {
	router, _ := testRouter(t)
	cookie := login(t, router)

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusSeeOther, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestUploadGeneraElReporte(t *testing.T) {
	router, _ := testRouter(t)
	cookie := login(t, router)

	body, contentType := multipartUpload(t,
		map[string]string{"numero_receptor": "3101123456"},
		map[string]string{"factura.xml": facturaXML},
	)

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxMIME, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "datos_facturas.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Len(t, f.GetSheetList(), 2)
}

func TestUploadSinReceptor(t *testing.T) {
	router, _ := testRouter(t)
	cookie := login(t, router)

	body, contentType := multipartUpload(t, nil,
		map[string]string{"factura.xml": facturaXML})

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestUploadSinArchivos(t *testing.T) {
	router, _ := testRouter(t)
	cookie := login(t, router)

	body, contentType := multipartUpload(t,
		map[string]string{"numero_receptor": "3101123456"}, nil)

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestAuthMiddlewareClienteJSON(t *testing.T) {
	router, _ := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"UNAUTHORIZED"`)
}

func TestUploadSinReceptorClienteJSON(t *testing.T) {
	router, _ := testRouter(t)
	cookie := login(t, router)

	body, contentType := multipartUpload(t, nil,
		map[string]string{"factura.xml": facturaXML})

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"INVALID_REQUEST"`)
	assert.Contains(t, w.Body.String(), `"field":"numero_receptor"`)
}

func TestHistorialSinBitacora(t *testing.T) {
	router, _ := testRouter(t)
	cookie := login(t, router)

	req := httptest.NewRequest(http.MethodGet, "/historial", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"INTERNAL"`)
}

func TestHealthSinBaseDeDatos(t *testing.T) {
	router, _ := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.Contains(t, w.Body.String(), `"database":"disabled"`)
}

func TestUploadOmiteArchivosNoXML(t *testing.T) {
	router, sessions := testRouter(t)
	cookie := login(t, router)

	body, contentType := multipartUpload(t,
		map[string]string{"numero_receptor": "3101123456"},
		map[string]string{
			"factura.xml": facturaXML,
			"notas.txt":   "no es xml",
		},
	)

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// el lote continúa con los XML válidos
	require.Equal(t, http.StatusOK, w.Code)

	flashes, err := sessions.PopFlashes(req.Context(), cookie.Value)
	require.NoError(t, err)

	var mensajes []string
	for _, flash := range flashes {
		mensajes = append(mensajes, flash.Message)
	}
	assert.Contains(t, strings.Join(mensajes, "\n"), "notas.txt")
}
