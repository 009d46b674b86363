// Package timeouts provides centralized timeout values for handler and
// sweep operations.
//
// These values are used with context.WithTimeout around database and
// gateway I/O. Guidelines:
//   - Ping: health checks and connectivity verification
//   - Short: single-document reads or lookups
//   - Medium: list queries, moderate writes, multi-step reads
//   - Long: multi-collection writes, tree materialization, gateway calls
package timeouts

import "time"

const (
	ping   = 2 * time.Second
	short  = 5 * time.Second
	medium = 10 * time.Second
	long   = 30 * time.Second
)

// Ping returns the timeout for health checks.
func Ping() time.Duration { return ping }

// Short returns the timeout for simple operations like single-document reads.
func Short() time.Duration { return short }

// Medium returns the timeout for moderate operations like list queries.
func Medium() time.Duration { return medium }

// Long returns the timeout for operations touching multiple collections or
// an external gateway (AI provider, SMTP).
func Long() time.Duration { return long }
