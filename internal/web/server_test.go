package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"github.com/roach88/precario/internal/auth"
	"github.com/roach88/precario/internal/catalog"
	"github.com/roach88/precario/internal/label"
	"github.com/roach88/precario/internal/metrics"
	"github.com/roach88/precario/internal/testutil"
)

const (
	testEmail    = "caixa@precario.test"
	testPassword = "talho-2024"
	assetsDir    = "../label/testdata/assets"
)

type testServer struct {
	srv     *Server
	svc     *catalog.Service
	auth    *auth.Authenticator
	metrics *metrics.Metrics
}

// newTestServer builds a Server over a fresh store with sign-in disabled.
// ids are handed out in order to created records.
func newTestServer(t *testing.T, ids []string, mods ...func(*Options)) *testServer {
	t.Helper()
	svc := testutil.NewService(t, ids...)
	m := metrics.New()
	renderer, err := label.NewRenderer(&label.Assets{Dir: assetsDir, URLPrefix: "/assets"}, m)
	require.NoError(t, err)

	opts := Options{
		Service:   svc,
		Renderer:  renderer,
		Auth:      auth.NewAuthenticator(nil, 0, auth.Disabled()),
		AssetsDir: assetsDir,
		Metrics:   m,
		Logger:    zaptest.NewLogger(t),
	}
	for _, mod := range mods {
		mod(&opts)
	}
	srv, err := New(opts)
	require.NoError(t, err)
	return &testServer{srv: srv, svc: svc, auth: opts.Auth, metrics: m}
}

// withUsers enables sign-in for the test account.
func withUsers(t *testing.T) func(*Options) {
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	return func(o *Options) {
		o.Auth = auth.NewAuthenticator([]auth.User{{Email: testEmail, PasswordHash: string(hash)}}, time.Hour)
	}
}

type request struct {
	method  string
	path    string
	body    string
	form    url.Values
	headers map[string]string
	cookies []*http.Cookie
}

func (ts *testServer) do(t *testing.T, req request) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	switch {
	case req.form != nil:
		body = strings.NewReader(req.form.Encode())
	case req.body != "":
		body = strings.NewReader(req.body)
	}
	r := httptest.NewRequest(req.method, req.path, body)
	if req.form != nil {
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else if req.body != "" {
		r.Header.Set("Content-Type", "application/json")
	}
	for k, v := range req.headers {
		r.Header.Set(k, v)
	}
	for _, c := range req.cookies {
		r.AddCookie(c)
	}
	w := httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(w, r)
	return w
}

func (ts *testServer) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	return ts.do(t, request{method: http.MethodGet, path: path})
}

// envelope is Response with a typed payload.
type envelope[T any] struct {
	Status string    `json:"status"`
	Data   T         `json:"data"`
	Error  *APIError `json:"error"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func TestNew_RequiresDependencies(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, nil)
	w := ts.get(t, "/healthz")
	require.Equal(t, http.StatusOK, w.Code)

	env := decode[map[string]string](t, w)
	assert.Equal(t, "ok", env.Status)
	assert.Equal(t, "ok", env.Data["status"])
}

func TestRequestID_IsUUIDv7(t *testing.T) {
	ts := newTestServer(t, nil)
	w := ts.get(t, "/healthz")

	id, err := uuid.Parse(w.Header().Get(RequestIDHeader))
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.get(t, "/healthz")
	ts.get(t, "/no/such/route")

	w := ts.get(t, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `precario_http_requests_total{code="200",method="GET",route="GET /healthz"} 1`)
	assert.Contains(t, body, `route="unmatched"`)
}

func TestAssets(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.get(t, "/assets/vaca.png")
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.get(t, "/assets/")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.get(t, "/assets/missing.png")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecoverPanics(t *testing.T) {
	ts := newTestServer(t, nil)
	boom := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })
	h := ts.srv.recoverPanics(boom)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/products", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	env := decode[any](t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, CodeInternal, env.Error.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/labels", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal Server Error")
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	ts := newTestServer(t, nil)
	ctx, cancel := context.WithCancel(context.Background())

	addrCh := make(chan string, 1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- ts.srv.Serve(ctx, ServerConfig{Addr: "127.0.0.1:0", ShutdownTimeout: time.Second}, func(addr string) {
			addrCh <- addr
		})
	}()

	addr := <-addrCh
	resp, err := http.Get("http://" + addr + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRGBHex(t *testing.T) {
	assert.Equal(t, "#ff5252", rgbHex(catalog.DefaultQueueColor))
}
