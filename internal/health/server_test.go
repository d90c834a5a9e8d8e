package health

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleHealth(t *testing.T) {
	s := NewServer("127.0.0.1", 0, nil, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	s.handleHealth(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
}

func TestHandleHealth_RejectsNonGet(t *testing.T) {
	s := NewServer("127.0.0.1", 0, nil, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/health", nil)
	w := httptest.NewRecorder()

	s.handleHealth(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestServer_ServesProbe(t *testing.T) {
	s := NewServer("127.0.0.1", 0, nil, zerolog.Nop())
	s.Start()
	defer s.Stop()

	select {
	case <-s.Bound():
	case <-time.After(5 * time.Second):
		t.Fatal("server did not bind")
	}

	resp, err := http.Get(fmt.Sprintf("http://%s/health", s.Addr()))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.NotEmpty(t, body)
}

func TestServer_UnknownPathIs404(t *testing.T) {
	s := NewServer("127.0.0.1", 0, nil, zerolog.Nop())
	s.Start()
	defer s.Stop()

	select {
	case <-s.Bound():
	case <-time.After(5 * time.Second):
		t.Fatal("server did not bind")
	}

	resp, err := http.Get(fmt.Sprintf("http://%s/anything-else", s.Addr()))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_StopClosesEndpoint(t *testing.T) {
	s := NewServer("127.0.0.1", 0, nil, zerolog.Nop())
	s.Start()

	select {
	case <-s.Bound():
	case <-time.After(5 * time.Second):
		t.Fatal("server did not bind")
	}

	addr := s.Addr()
	require.NoError(t, s.Stop())

	_, err := net.DialTimeout("tcp", addr, 500*time.Millisecond)
	assert.Error(t, err)
}

func TestServer_StopBeforeStart(t *testing.T) {
	s := NewServer("127.0.0.1", 0, nil, zerolog.Nop())
	assert.NoError(t, s.Stop())
}
