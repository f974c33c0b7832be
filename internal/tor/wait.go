package tor

import (
	"context"
	"fmt"
	"time"
)

// ProgressFunc is called after every failed probe with the time spent waiting.
type ProgressFunc func(elapsed time.Duration, status SocksStatus)

// WaitForSocks polls the client's SOCKS port every interval until it is ready
// or ctx ends. A port that answers with something other than SOCKS5 fails
// immediately since waiting will not fix it.
func WaitForSocks(ctx context.Context, c *Client, interval time.Duration, progress ProgressFunc) error {
	start := time.Now()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		status := c.CheckConnection(ctx)
		switch status {
		case SocksReady:
			return nil
		case SocksNotSocks5:
			return fmt.Errorf("%w at %s", status.Err(), c.SocksAddress())
		}
		if progress != nil {
			progress(time.Since(start), status)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("gave up waiting for SOCKS port %s (%v): %w", c.SocksAddress(), status, ctx.Err())
		case <-ticker.C:
		}
	}
}
