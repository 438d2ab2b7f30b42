package service

import (
	"context"
	"log"
	"net"
	"net/http"
	"time"
)

// DefaultProbeTimeout bounds the live backend probe. The probe must stay
// strict: a slow backend is treated the same as an unreachable one.
const DefaultProbeTimeout = 3 * time.Second

// InterfaceNetStatus reports platform connectivity from the machine's
// network interfaces: connected means at least one non-loopback interface
// is up with an address assigned.
type InterfaceNetStatus struct{}

// NewInterfaceNetStatus creates a new InterfaceNetStatus
func NewInterfaceNetStatus() *InterfaceNetStatus {
	return &InterfaceNetStatus{}
}

// Ensure InterfaceNetStatus implements NetStatusProvider
var _ NetStatusProvider = (*InterfaceNetStatus)(nil)

func (p *InterfaceNetStatus) GetStatus() (bool, error) {
	interfaces, err := net.Interfaces()
	if err != nil {
		return false, err
	}
	for _, iface := range interfaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		if len(addrs) > 0 {
			return true, nil
		}
	}
	return false, nil
}

// ConnectivityService layers a live backend probe on top of the platform
// signal: the platform can report link-layer connectivity while the
// backend is unreachable (captive portals, DNS failures, outages).
// Implements ConnectivityServiceInterface
type ConnectivityService struct {
	provider NetStatusProvider
	client   *http.Client
	probeURL string
	timeout  time.Duration
}

// NewConnectivityService creates a new ConnectivityService probing the
// given backend URL
func NewConnectivityService(provider NetStatusProvider, probeURL string, timeout time.Duration) *ConnectivityService {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &ConnectivityService{
		provider: provider,
		client:   &http.Client{Timeout: timeout},
		probeURL: probeURL,
		timeout:  timeout,
	}
}

// Ensure ConnectivityService implements ConnectivityServiceInterface
var _ ConnectivityServiceInterface = (*ConnectivityService)(nil)

// IsOnline returns the final connectivity verdict. Platform-offline means
// offline without probing; platform-online is confirmed by a HEAD probe
// against the backend, and the probe is authoritative once attempted.
// Every internal failure defaults to offline: acting "online" against an
// unreachable backend produces confusing partial failures downstream.
func (s *ConnectivityService) IsOnline(ctx context.Context) bool {
	connected, err := s.provider.GetStatus()
	if err != nil {
		log.Printf("⚠️  Connectivity check failed internally, assuming offline: %v", err)
		return false
	}
	if !connected {
		log.Printf("📴 Platform reports offline")
		return false
	}

	probeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodHead, s.probeURL, nil)
	if err != nil {
		log.Printf("⚠️  Failed to build connectivity probe, assuming offline: %v", err)
		return false
	}

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("📴 Backend probe failed, treating as offline: %v", err)
		return false
	}
	defer resp.Body.Close()

	log.Printf("📡 Backend reachable (probe status %d)", resp.StatusCode)
	return true
}
