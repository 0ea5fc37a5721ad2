package infra

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPII_Normaliza(t *testing.T) {
	assert.Equal(t, HashPII("cliente@correo.mx"), HashPII("  Cliente@Correo.MX "))
	// sha256("cliente@correo.mx") hex is 64 chars
	assert.Len(t, HashPII("cliente@correo.mx"), 64)
}

type capturedRequest struct {
	path   string
	query  string
	header http.Header
	body   map[string]any
}

func platformServer(t *testing.T, status int) (*httptest.Server, *[]capturedRequest) {
	t.Helper()
	var (
		mu   sync.Mutex
		reqs []capturedRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		mu.Lock()
		reqs = append(reqs, capturedRequest{path: r.URL.Path, query: r.URL.RawQuery, header: r.Header.Clone(), body: body})
		mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, &reqs
}

func compra() PixelEvent {
	return PixelEvent{
		EventName:  "Purchase",
		EventID:    "b6f0c1de-0000-4000-8000-000000000001",
		EventTime:  time.Unix(1767225600, 0),
		Email:      "Cliente@Correo.mx",
		Phone:      "+52 55 1234 5678",
		Value:      1350,
		Currency:   "MXN",
		ContentIDs: []string{"anillo-luna-1700000000000"},
		SourceURL:  "https://acevesjoyeria.com/checkout",
	}
}

func TestPixelClient_EnviaAmbasPlataformas(t *testing.T) {
	srv, reqs := platformServer(t, http.StatusOK)
	c := NewPixelClient("123", "meta-token", "TT1", "tt-token").WithEndpoints(srv.URL+"/meta", srv.URL+"/tiktok")
	require.True(t, c.Enabled())

	require.NoError(t, c.Send(context.Background(), compra()))
	require.Len(t, *reqs, 2)

	meta := (*reqs)[0]
	assert.Equal(t, "/meta/123/events", meta.path)
	assert.Equal(t, "access_token=meta-token", meta.query)
	data := meta.body["data"].([]any)[0].(map[string]any)
	assert.Equal(t, "Purchase", data["event_name"])
	assert.Equal(t, "b6f0c1de-0000-4000-8000-000000000001", data["event_id"])
	userData := data["user_data"].(map[string]any)
	assert.Equal(t, []any{HashPII("cliente@correo.mx")}, userData["em"])

	tt := (*reqs)[1]
	assert.Equal(t, "/tiktok", tt.path)
	assert.Equal(t, "tt-token", tt.header.Get("Access-Token"))
	assert.Equal(t, "TT1", tt.body["event_source_id"])
}

func TestPixelClient_SinCredencialesNoEnvia(t *testing.T) {
	srv, reqs := platformServer(t, http.StatusOK)
	c := NewPixelClient("123", "", "", "").WithEndpoints(srv.URL, srv.URL)
	assert.False(t, c.Enabled())
	require.NoError(t, c.Send(context.Background(), compra()))
	assert.Empty(t, *reqs)
}

func TestPixelClient_ErrorDePlataforma(t *testing.T) {
	srv, reqs := platformServer(t, http.StatusBadGateway)
	c := NewPixelClient("123", "meta-token", "TT1", "tt-token").WithEndpoints(srv.URL+"/meta", srv.URL+"/tiktok")

	err := c.Send(context.Background(), compra())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pixel meta: returned 502")
	assert.Len(t, *reqs, 2, "tiktok is still attempted after meta fails")
}
