// Package report aggregates discovery results and writes them out as CSV
// reports, a templated text summary and an optional InfluxDB mirror.
package report

import (
	"sync"

	"dev.hon.one/scandium/common"
)

// Store - Thread-safe aggregation of discovered rows and per-device error
// classifications. Uses its own lock so recording a result never blocks
// frontier progress.
type Store struct {
	mutex      sync.Mutex
	neighbors  []common.NeighborEntry
	dns        []common.DNSEntry
	dnsSeen    map[string]bool
	authErrors map[string]common.ErrorKind
	connErrors map[string]common.ErrorKind
	visits     []common.VisitEntry
}

// NewStore - Create an empty store.
func NewStore() *Store {
	return &Store{
		dnsSeen:    make(map[string]bool),
		authErrors: make(map[string]common.ErrorKind),
		connErrors: make(map[string]common.ErrorKind),
	}
}

// AddNeighbor - Append a discovered adjacency. Entries keep processing-completion order.
func (store *Store) AddNeighbor(entry common.NeighborEntry) {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	store.neighbors = append(store.neighbors, entry)
}

// AddDNS - Record a hostname resolution result. Deduplicated per hostname.
func (store *Store) AddDNS(entry common.DNSEntry) {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	if store.dnsSeen[entry.Hostname] {
		return
	}
	store.dnsSeen[entry.Hostname] = true
	store.dns = append(store.dns, entry)
}

// RecordError - Record a device's terminal error classification.
// Authentication errors and connection errors are kept in separate maps.
func (store *Store) RecordError(host string, kind common.ErrorKind) {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	if kind == common.AuthenticationError {
		store.authErrors[host] = kind
	} else {
		store.connErrors[host] = kind
	}
}

// ClearError - Remove any pending error classification for a device.
func (store *Store) ClearError(host string) {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	delete(store.authErrors, host)
	delete(store.connErrors, host)
}

// AddVisit - Record timing for one processed device.
func (store *Store) AddVisit(entry common.VisitEntry) {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	store.visits = append(store.visits, entry)
}

// Neighbors - Snapshot of discovered adjacencies.
func (store *Store) Neighbors() []common.NeighborEntry {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	return append([]common.NeighborEntry(nil), store.neighbors...)
}

// DNS - Snapshot of hostname resolution results.
func (store *Store) DNS() []common.DNSEntry {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	return append([]common.DNSEntry(nil), store.dns...)
}

// AuthErrors - Snapshot of devices which rejected every credential.
func (store *Store) AuthErrors() map[string]common.ErrorKind {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	return copyErrorMap(store.authErrors)
}

// ConnErrors - Snapshot of devices which exhausted their connection attempts.
func (store *Store) ConnErrors() map[string]common.ErrorKind {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	return copyErrorMap(store.connErrors)
}

// Visits - Snapshot of per-device timing records.
func (store *Store) Visits() []common.VisitEntry {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	return append([]common.VisitEntry(nil), store.visits...)
}

func copyErrorMap(source map[string]common.ErrorKind) map[string]common.ErrorKind {
	result := make(map[string]common.ErrorKind, len(source))
	for host, kind := range source {
		result[host] = kind
	}
	return result
}
