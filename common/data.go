package common

import (
	"time"
)

// ErrorKind - Terminal classification of a failed device.
type ErrorKind string

// Error kinds. Authentication errors are terminal per device, the rest are
// retried up to MaxAttempts with a fresh session each attempt.
const (
	AuthenticationError ErrorKind = "AuthenticationError"
	TimeoutError        ErrorKind = "TimeoutError"
	UnexpectedError     ErrorKind = "UnexpectedError"
)

// Credential - Credential for a device.
type Credential struct {
	Username       string `json:"username"`
	Password       string `json:"password"`
	PrivateKeyPath string `json:"private_key_path"`
}

// NeighborEntry - One discovered adjacency, together with the neighbor's
// version details. Entries accumulate in processing-completion order.
type NeighborEntry struct {
	Time            time.Time
	Source          string // Device the adjacency was read from
	DeviceID        string
	Address         string // Management address advertised by the neighbor, may be empty
	LocalInterface  string
	RemoteInterface string
	Platform        string
	Capabilities    string
	SoftwareVersion string
	Uptime          string
	SerialNumber    string
}

// DNSEntry - Result of resolving a device hostname.
type DNSEntry struct {
	Hostname string
	Address  string // DNSFailureSentinel if resolution failed
}

// VisitEntry - Timing record for one processed device.
type VisitEntry struct {
	Time     time.Time
	Source   string
	Duration time.Duration
	Attempts int
	Success  bool
}
