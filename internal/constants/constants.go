package constants

import "time"

const (
	DefaultMatchDuration = 90
	MaxEventMinute       = 120
	ExpectedStarters     = 11
	SimilarNameThreshold = 0.97
)

const (
	DefaultRenderWait     = 3 * time.Second
	DefaultFetchTimeout   = 45 * time.Second
	DefaultRetryBaseDelay = 2 * time.Second
	MaxRetryDelay         = 30 * time.Second
	DefaultFetchRetries   = 3
	MaxFetchRetries       = 5
	DefaultConcurrency    = 1
)

const (
	DefaultRoundCompleteness = 9
)

const (
	DatabaseTimeout = 5 * time.Second
	RequestTimeout  = 30 * time.Second
)

const (
	DBMaxOpenConns    = 1
	DBMaxIdleConns    = 1
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
	DBBatchSize       = 100
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	RecentRunsLimit = 20
)
