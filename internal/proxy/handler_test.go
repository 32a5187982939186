package proxy

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"orbitaledge/internal/clients"
)

type recorded struct {
	method, path, query, contentType, body string
}

func newBackend(t *testing.T, status int, contentType, reply string) (*httptest.Server, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		*rec = recorded{
			method:      r.Method,
			path:        r.URL.Path,
			query:       r.URL.RawQuery,
			contentType: r.Header.Get("Content-Type"),
			body:        string(body),
		}
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func newProxy(baseURL string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	client := clients.NewBackendClient(baseURL, 2*time.Second)
	return NewRouter(NewHandler(client, zap.NewNop()), zap.NewNop())
}

func serve(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestProxy_SearchForwardsVerbatim(t *testing.T) {
	backend, rec := newBackend(t, http.StatusOK, "application/json; charset=utf-8", `[{"catalogID":"ABC1234567"}]`)
	r := newProxy(backend.URL)

	geometry := `{"type":"Polygon","coordinates":[[[0,0],[0,1],[1,1],[1,0],[0,0]]]}`
	for _, path := range []string{"/api/images/search", "/api/images"} {
		w := serve(r, http.MethodPost, path, geometry)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, `[{"catalogID":"ABC1234567"}]`, w.Body.String())
		assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Equal(t, http.MethodPost, rec.method)
		assert.Equal(t, "/api/images/search", rec.path)
		assert.Equal(t, geometry, rec.body)
		assert.Equal(t, "application/json", rec.contentType)
	}
}

func TestProxy_PassesThroughErrorStatus(t *testing.T) {
	backend, _ := newBackend(t, http.StatusBadRequest, "application/json", `{"error":"Invalid GeoJSON","details":[]}`)
	r := newProxy(backend.URL)

	w := serve(r, http.MethodPost, "/api/images/search", `{"type":"Point"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid GeoJSON","details":[]}`, w.Body.String())
}

func TestProxy_OrdersAndImage(t *testing.T) {
	backend, rec := newBackend(t, http.StatusCreated, "application/json", `{"id":1}`)
	r := newProxy(backend.URL)

	w := serve(r, http.MethodPost, "/api/orders", `{"catalogId":"ABC1234567"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, `{"catalogId":"ABC1234567"}`, rec.body)

	serve(r, http.MethodGet, "/api/orders?imageId=ABC1234567", "")
	assert.Equal(t, http.MethodGet, rec.method)
	assert.Equal(t, "/api/orders", rec.path)
	assert.Equal(t, "imageId=ABC1234567", rec.query)

	serve(r, http.MethodGet, "/api/images/ABC1234567", "")
	assert.Equal(t, "/api/images/ABC1234567", rec.path)
}

func TestProxy_BackendUnreachable(t *testing.T) {
	backend, _ := newBackend(t, http.StatusOK, "application/json", `[]`)
	url := backend.URL
	backend.Close()

	w := serve(newProxy(url), http.MethodGet, "/api/orders", "")

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"error":"Internal server error"`)
	assert.Contains(t, w.Body.String(), `"message"`)
}
