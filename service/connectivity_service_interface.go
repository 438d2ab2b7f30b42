package service

import "context"

// NetStatusProvider is the platform-level connectivity capability. It
// reports link-layer reachability only; whether the backend is actually
// reachable is the ConnectivityService's job.
type NetStatusProvider interface {
	GetStatus() (connected bool, err error)
}

// ConnectivityServiceInterface defines the contract for the layered
// online/offline check
type ConnectivityServiceInterface interface {
	// IsOnline reports whether the backend is reachable. It fails closed:
	// any internal failure or probe timeout yields offline.
	IsOnline(ctx context.Context) bool
}
