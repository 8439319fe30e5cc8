package db

import "time"

// Signal processing status constants.
const (
	SignalStatusPending   = "pending"
	SignalStatusCanonical = "canonical"
	SignalStatusDuplicate = "duplicate"
	SignalStatusFiltered  = "filtered"
)

// Database connection constants.
const (
	// ConnectionRetrySleep is the sleep duration between connection retries.
	ConnectionRetrySleep = 2 * time.Second
	// maxConnectionRetries is the number of retries for initial connection.
	maxConnectionRetries = 10
)

// Database pool default constants.
const (
	defaultMaxConns          int32         = 25
	defaultMinConns          int32         = 5
	defaultMaxConnIdleTime   time.Duration = 30 * time.Minute
	defaultMaxConnLifetime   time.Duration = time.Hour
	defaultHealthCheckPeriod time.Duration = time.Minute
)
