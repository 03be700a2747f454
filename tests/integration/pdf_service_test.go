package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pdfapp "github.com/pdfgen/backend/internal/application/pdf"
	"github.com/pdfgen/backend/internal/domain/pdf"
	"github.com/pdfgen/backend/internal/infrastructure/render"
	"github.com/pdfgen/backend/internal/infrastructure/storage"
	"github.com/pdfgen/backend/internal/infrastructure/sweeper"
	"github.com/pdfgen/backend/internal/interfaces/http/handler"
	"github.com/pdfgen/backend/internal/interfaces/http/middleware"
	"github.com/pdfgen/backend/internal/interfaces/http/router"
	"github.com/pdfgen/backend/tests/testutil"
)

// app is the service assembled the way the entrypoint does it, with a
// stub rendering engine so no browser is needed.
type app struct {
	engine *gin.Engine
	store  *storage.FileStore
	stub   *render.StubRenderer
}

func newApp(t *testing.T) *app {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()

	store, err := storage.New(t.TempDir(), nil)
	require.NoError(t, err)

	stub := render.NewStubRenderer()

	svc := pdfapp.NewService(stub, store, pdfapp.ServiceConfig{
		Defaults: pdf.Options{
			Format:  pdf.FormatA4,
			Scale:   0.6,
			Margins: pdf.Margins{Top: "1cm", Bottom: "1cm", Left: "1cm", Right: "1cm"},
		},
		RenderTimeout: 5 * time.Second,
	}, nil)

	engine := gin.New()
	engine.Use(middleware.RequestID())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173"}
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.BodyLimit(1 << 20))

	r := router.NewRouter(engine)
	r.Register(handler.NewSystemHandler())
	r.Register(handler.NewPDFHandler(svc))
	r.Setup()

	return &app{engine: engine, store: store, stub: stub}
}

func (a *app) generate(t *testing.T, body string) (int, map[string]string) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/generate-pdf", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Host = "localhost:8080"
	a.engine.ServeHTTP(w, req)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func (a *app) get(path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Host = "localhost:8080"
	a.engine.ServeHTTP(w, req)
	return w
}

func TestGenerateServeLifecycle(t *testing.T) {
	a := newApp(t)
	a.stub.Output = []byte("%PDF-1.7\nlifecycle\n%%EOF\n")

	status, resp := a.generate(t, `{"html": "<h1>Invoice #42</h1>"}`)
	require.Equal(t, http.StatusOK, status)
	require.True(t, strings.HasPrefix(resp["pdf_url"], "http://localhost:8080/pdfs/"))

	path := strings.TrimPrefix(resp["pdf_url"], "http://localhost:8080")
	w := a.get(path)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, a.stub.Output, w.Body.Bytes())

	// The same link keeps working until retention expires it
	w = a.get(path)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRetentionExpiresLinks(t *testing.T) {
	a := newApp(t)

	status, resp := a.generate(t, `{"html": "<p>ephemeral</p>"}`)
	require.Equal(t, http.StatusOK, status)
	path := strings.TrimPrefix(resp["pdf_url"], "http://localhost:8080")

	require.Equal(t, http.StatusOK, a.get(path).Code)

	sw := sweeper.New(a.store, 50*time.Millisecond, time.Minute, nil)

	// Still fresh: the sweep keeps it
	result := sw.RunOnce()
	assert.Equal(t, 0, result.Deleted)
	require.Equal(t, http.StatusOK, a.get(path).Code)

	time.Sleep(60 * time.Millisecond)
	result = sw.RunOnce()
	assert.Equal(t, 1, result.Deleted)

	w := a.get(path)
	assert.Equal(t, http.StatusNotFound, w.Code)
	var errResp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
	assert.NotEmpty(t, errResp["error"])
}

func TestBackgroundSweeperEndToEnd(t *testing.T) {
	a := newApp(t)

	status, resp := a.generate(t, `{"html": "<p>x</p>"}`)
	require.Equal(t, http.StatusOK, status)
	path := strings.TrimPrefix(resp["pdf_url"], "http://localhost:8080")

	sw := sweeper.New(a.store, 30*time.Millisecond, 20*time.Millisecond, nil)
	sw.Start(t.Context())
	defer sw.Stop()

	assert.Eventually(t, func() bool {
		return a.get(path).Code == http.StatusNotFound
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHTTPContract(t *testing.T) {
	a := newApp(t)

	testutil.RunHTTPTestCases(t, a.engine, []testutil.HTTPTestCase{
		{
			Name:           "health endpoint",
			Path:           "/",
			ExpectedStatus: http.StatusOK,
			ExpectedBody:   map[string]any{"message": "PDF Generator Service is running."},
		},
		{
			Name:           "neither html nor url",
			Method:         http.MethodPost,
			Path:           "/generate-pdf",
			Body:           map[string]any{},
			ExpectedStatus: http.StatusBadRequest,
			Validate: func(t *testing.T, tc *testutil.TestContext) {
				testutil.AssertErrorResponse(t, tc)
			},
		},
		{
			Name:           "both html and url",
			Method:         http.MethodPost,
			Path:           "/generate-pdf",
			Body:           map[string]any{"html": "<p>x</p>", "url": "https://example.com"},
			ExpectedStatus: http.StatusBadRequest,
			Validate: func(t *testing.T, tc *testutil.TestContext) {
				testutil.AssertErrorResponse(t, tc)
			},
		},
		{
			Name:           "unknown pdf",
			Path:           "/pdfs/b2f6e1a0-0000-4000-8000-000000000000.pdf",
			ExpectedStatus: http.StatusNotFound,
		},
		{
			Name:           "metrics endpoint",
			Path:           "/metrics",
			ExpectedStatus: http.StatusOK,
		},
	})

	// None of the failures produced a stored file
	assert.Equal(t, 0, a.store.Len())
}

func TestHealthHasNoSideEffects(t *testing.T) {
	a := newApp(t)

	for range 5 {
		require.Equal(t, http.StatusOK, a.get("/").Code)
	}
	assert.Equal(t, 0, a.store.Len())
	assert.Empty(t, a.stub.Requests())
}

func TestSessionCookieForwarded(t *testing.T) {
	a := newApp(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/generate-pdf",
		strings.NewReader(`{"url": "https://example.com/secure"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Host = "localhost:8080"
	req.AddCookie(&http.Cookie{Name: "token", Value: "session-xyz"})
	a.engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	reqs := a.stub.Requests()
	require.Len(t, reqs, 1)
	require.NotNil(t, reqs[0].Cookie)
	assert.Equal(t, "token", reqs[0].Cookie.Name)
	assert.Equal(t, "session-xyz", reqs[0].Cookie.Value)
	assert.Equal(t, "localhost", reqs[0].Cookie.Domain)
}

func TestBodyLimitRejectsOversizedRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// A tiny limit exercises the 413 path without a megabyte fixture
	small := gin.New()
	small.Use(middleware.BodyLimit(32))
	small.POST("/generate-pdf", func(c *gin.Context) { c.Status(http.StatusOK) })

	body := `{"html": "` + strings.Repeat("x", 128) + `"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/generate-pdf", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	small.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
