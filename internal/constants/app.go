package constants

import (
	"time"
)

// Application identity
const (
	// AppName - binary and config directory name
	AppName = "dfa-wizard"

	// OpaqueIDPrefix - prefix of the X-Opaque-Id header so requests from the
	// wizard can be found in Elasticsearch slow logs and task listings
	OpaqueIDPrefix = "dfa-wizard-"
)

// Event System
const (
	// EventBusDefaultBuffer - default buffer size for event channels (1000)
	EventBusDefaultBuffer = 1000

	// EventBusMaxBuffer - maximum buffer size for high-throughput scenarios (5000)
	EventBusMaxBuffer = 5000
)

// API Client
const (
	// APIRetryMax - retries for transient failures (connection errors, 429, 5xx)
	APIRetryMax = 4

	// APIRetryWaitMin - minimum backoff between retries (1 second)
	APIRetryWaitMin = 1 * time.Second

	// APIRetryWaitMax - maximum backoff between retries (30 seconds)
	APIRetryWaitMax = 30 * time.Second

	// APIRequestTimeout - upper bound for a single Kibana request (2 minutes)
	// Job creation with createDataView=true waits on two round trips to
	// Elasticsearch, so this is generous.
	APIRequestTimeout = 2 * time.Minute

	// APIConnectionTestTimeout - timeout for testing API connectivity (10 seconds)
	APIConnectionTestTimeout = 10 * time.Second

	// ProxyWarmupTimeout - timeout for the proxy warmup request (15 seconds)
	ProxyWarmupTimeout = 15 * time.Second

	// DefaultProxyPort - used when a proxy host is configured without a port
	DefaultProxyPort = 8080

	// MaxErrorBodyBytes - cap on how much of an error response body is read
	MaxErrorBodyBytes = 64 * 1024
)

// Caches
const (
	// DataViewCacheTTL - how long a data view listing is served from cache (5 minutes)
	DataViewCacheTTL = 5 * time.Minute

	// JobListCacheTTL - how long the job id listing is served from cache (1 minute)
	JobListCacheTTL = 1 * time.Minute

	// DataViewPageSize - saved objects page size when listing data views
	DataViewPageSize = 1000
)

// HTTP Client Timeouts
const (
	// HTTPIdleConnTimeout - how long to keep idle connections open (90 seconds)
	HTTPIdleConnTimeout = 90 * time.Second

	// HTTPTLSHandshakeTimeout - timeout for TLS handshake (30 seconds)
	HTTPTLSHandshakeTimeout = 30 * time.Second

	// HTTPExpectContinueTimeout - timeout for 100-continue response (1 second)
	HTTPExpectContinueTimeout = 1 * time.Second

	// HTTPDialTimeout - timeout for establishing connection (30 seconds)
	HTTPDialTimeout = 30 * time.Second

	// HTTPDialKeepAlive - keep-alive period for dialer (30 seconds)
	HTTPDialKeepAlive = 30 * time.Second

	// HTTPMaxIdleConnsPerHost - idle connections kept per Kibana host
	HTTPMaxIdleConnsPerHost = 16
)

// CLI
const (
	// SpinnerRefreshRate - how often the progress spinner redraws
	SpinnerRefreshRate = 100 * time.Millisecond

	// DefaultEditor - editor used by create --edit when $EDITOR is unset
	DefaultEditor = "vi"
)
