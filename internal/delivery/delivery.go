// Package delivery defines the contract shared by every transport that
// exposes the application, so main can start them uniformly.
package delivery

import "context"

// Delivery is a long-running transport (HTTP server, worker, ...). Serve
// blocks until the transport stops or fails.
type Delivery interface {
	Serve(ctx context.Context) error
}
