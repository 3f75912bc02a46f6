// Package delivery defines the contract shared by all serving surfaces
// (HTTP API, alert worker) so binaries can start them uniformly.
package delivery

import "context"

// Delivery is a long-running serving surface started by a binary.
type Delivery interface {
	// Serve blocks while the surface is running.
	Serve(ctx context.Context) error
}
