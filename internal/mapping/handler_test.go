package mapping

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/videobooker-api/internal/integrations"
	"github.com/wolfman30/videobooker-api/internal/session"
	"github.com/wolfman30/videobooker-api/pkg/logging"
)

func newMappingRouter(t *testing.T) (http.Handler, *integrations.Registry) {
	t.Helper()
	reg := integrations.NewRegistry(integrations.NewMemoryStore(), logging.Discard())
	h := NewHandler(reg, NewMemoryCache(logging.Discard()), logging.Discard())
	r := chi.NewRouter()
	r.Route("/bookings", h.Routes)
	return r, reg
}

func request(router http.Handler, method, path, sessionID, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if sessionID != "" {
		req = req.WithContext(session.WithID(req.Context(), sessionID))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandlerOptionsReflectRecord(t *testing.T) {
	router, reg := newMappingRouter(t)
	_, err := reg.Connect(context.Background(), integrations.ProviderAcuity, &integrations.Metadata{EventTypes: []string{"Lip Filler"}})
	require.NoError(t, err)

	rec := request(router, http.MethodGet, "/bookings/options/acuity", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var out optionsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Options, 4)
	assert.Equal(t, "Lip Filler", out.Options[0].Name)
	assert.Equal(t, 45, out.Options[0].DurationMinutes)

	rec = request(router, http.MethodGet, "/bookings/options/square", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerMappingsAreSessionScoped(t *testing.T) {
	router, _ := newMappingRouter(t)

	rec := request(router, http.MethodPut, "/bookings/mappings/calendly/s1", "tab-a", `{"eventName":"Retired Event"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var pm struct {
		Mapping map[string]string `json:"mapping"`
		Stale   []Entry           `json:"stale"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pm))
	assert.Equal(t, map[string]string{"s1": "Retired Event"}, pm.Mapping)
	assert.Equal(t, []Entry{{"s1", "Retired Event"}}, pm.Stale)

	rec = request(router, http.MethodGet, "/bookings/mappings", "tab-b", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Retired Event")

	rec = request(router, http.MethodGet, "/bookings/mappings", "tab-a", "")
	assert.Contains(t, rec.Body.String(), "Retired Event")

	rec = request(router, http.MethodDelete, "/bookings/mappings/calendly", "tab-a", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = request(router, http.MethodGet, "/bookings/mappings", "tab-a", "")
	assert.NotContains(t, rec.Body.String(), "Retired Event")
}

func TestHandlerRejectsMetaMappings(t *testing.T) {
	router, _ := newMappingRouter(t)
	rec := request(router, http.MethodPut, "/bookings/mappings/meta/s1", "", `{"eventName":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = request(router, http.MethodPut, "/bookings/mappings/calendly/s1", "", `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionLocksAreBounded(t *testing.T) {
	h := NewHandler(integrations.NewRegistry(integrations.NewMemoryStore(), logging.Discard()), NewMemoryCache(logging.Discard()), logging.Discard())

	assert.Same(t, h.sessionLock("visitor-1"), h.sessionLock("visitor-1"))

	seen := map[*sync.Mutex]struct{}{}
	for i := 0; i < 1000; i++ {
		lock := h.sessionLock(fmt.Sprintf("visitor-%d", i))
		seen[lock] = struct{}{}
	}
	assert.LessOrEqual(t, len(seen), sessionStripes)
	stripes := map[*sync.Mutex]struct{}{}
	for i := range h.sessions {
		stripes[&h.sessions[i]] = struct{}{}
	}
	for lock := range seen {
		assert.Contains(t, stripes, lock)
	}
}
