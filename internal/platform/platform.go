// Package platform provides an adapter interface for prediction market platforms.
package platform

import (
	"context"
)

// Platform is a long-running market data source. Start blocks until the
// source fails or ctx is cancelled; Stop releases the connection.
type Platform interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
