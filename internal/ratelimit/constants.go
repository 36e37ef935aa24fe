// Package ratelimit provides client-side rate limiting for Kibana API calls.
package ratelimit

import "time"

// Kibana does not publish request quotas. These targets keep a single wizard
// session well below what a shared Kibana instance tolerates.
//
// Kibana throttles by sending 429 with Retry-After. The client feeds that back
// through Drain and SetCooldown.
const (
	// ReadRatePerSec covers GET requests and saved object lookups.
	ReadRatePerSec = 10.0

	// WriteRatePerSec covers job creation, start and the explain endpoint.
	WriteRatePerSec = 2.0
)

// Burst capacities (tokens)
const (
	// ReadBurstCapacity lets the wizard preload data views and jobs in parallel.
	ReadBurstCapacity = 20

	// WriteBurstCapacity allows create followed by start without waiting.
	WriteBurstCapacity = 5
)

const (
	// WarnWaitThreshold is the wait above which a throttle notification fires.
	WarnWaitThreshold = 2 * time.Second

	// NotifyMinInterval is the minimum time between consecutive notifications.
	NotifyMinInterval = 10 * time.Second
)
