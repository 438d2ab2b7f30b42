package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// stubNetStatus is a fixed platform connectivity signal
type stubNetStatus struct {
	connected bool
	err       error
}

func (s *stubNetStatus) GetStatus() (bool, error) {
	return s.connected, s.err
}

func TestConnectivityService_PlatformOfflineSkipsProbe(t *testing.T) {
	var probes int32
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&probes, 1)
	}))
	defer backend.Close()

	svc := NewConnectivityService(&stubNetStatus{connected: false}, backend.URL, time.Second)

	assert.False(t, svc.IsOnline(context.Background()))
	assert.Equal(t, int32(0), atomic.LoadInt32(&probes), "offline platform must not trigger a probe")
}

func TestConnectivityService_OnlineConfirmedByProbe(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		w.WriteHeader(http.StatusOK)
	}))
	defer backend.Close()

	svc := NewConnectivityService(&stubNetStatus{connected: true}, backend.URL, time.Second)

	assert.True(t, svc.IsOnline(context.Background()))
}

func TestConnectivityService_ProbeFailureIsAuthoritative(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	backend.Close() // probe target gone: platform says online, backend is not

	svc := NewConnectivityService(&stubNetStatus{connected: true}, backend.URL, time.Second)

	assert.False(t, svc.IsOnline(context.Background()))
}

func TestConnectivityService_ProbeTimeoutMeansOffline(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer backend.Close()

	svc := NewConnectivityService(&stubNetStatus{connected: true}, backend.URL, 50*time.Millisecond)

	assert.False(t, svc.IsOnline(context.Background()))
}

func TestConnectivityService_InternalFailureFailsClosed(t *testing.T) {
	svc := NewConnectivityService(&stubNetStatus{err: errors.New("platform check broke")}, "http://unused", time.Second)

	assert.False(t, svc.IsOnline(context.Background()))
}
