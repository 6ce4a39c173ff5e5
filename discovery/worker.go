package discovery

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"dev.hon.one/scandium/common"
	"dev.hon.one/scandium/parsing"
	"dev.hon.one/scandium/report"
	"dev.hon.one/scandium/util"
)

// DequeuePollInterval - How long a worker blocks on an empty frontier before
// re-checking the shutdown signal.
const DequeuePollInterval = 100 * time.Millisecond

// DeviceSession - One established session to a single device.
type DeviceSession interface {
	Run(command string) (string, error)
	Close()
}

// SessionFactory - Establishes a fresh session to a device with a credential.
type SessionFactory func(target string, credential common.Credential) (DeviceSession, error)

// SessionErrorClassifier - Maps a session error to its error kind.
type SessionErrorClassifier func(err error) common.ErrorKind

// Discovery command set, run in order on every device.
var discoveryCommands = []struct {
	command  string
	template string
}{
	{"show version", parsing.TemplateShowVersion},
	{"show cdp neighbors detail", parsing.TemplateCDPNeighborsDetail},
}

// attemptOutcome - Explicit decision from one connection attempt: retry, stop
// with a terminal error kind, or stop successfully (empty kind).
type attemptOutcome struct {
	retry bool
	kind  common.ErrorKind
}

// Pool - Fixed set of concurrent workers draining the frontier.
type Pool struct {
	frontier    *Frontier
	store       *report.Store
	sink        *report.Sink
	resolver    *Resolver
	parser      parsing.Parser
	dial        SessionFactory
	classify    SessionErrorClassifier
	credentials []common.Credential // Tried in order on rejected auth
}

// NewPool - Create a worker pool. sink may be nil.
func NewPool(frontier *Frontier, store *report.Store, sink *report.Sink, resolver *Resolver,
	parser parsing.Parser, dial SessionFactory, classify SessionErrorClassifier,
	credentials []common.Credential) *Pool {
	return &Pool{
		frontier:    frontier,
		store:       store,
		sink:        sink,
		resolver:    resolver,
		parser:      parser,
		dial:        dial,
		classify:    classify,
		credentials: credentials,
	}
}

// Start - Start workerCount workers in the background.
func (pool *Pool) Start(waitGroup *sync.WaitGroup, shutdown *util.ShutdownChannelDistributor, workerCount int) {
	for workerID := 0; workerID < workerCount; workerID++ {
		shutdownChannel := make(chan bool, 1)
		if !shutdown.AddListener(shutdownChannel) {
			return
		}
		waitGroup.Add(1)
		go pool.runWorker(workerID, waitGroup, shutdownChannel)
	}
	log.Infof("Started %v discovery workers", workerCount)
}

func (pool *Pool) runWorker(workerID int, waitGroup *sync.WaitGroup, shutdownChannel <-chan bool) {
	defer waitGroup.Done()
	defer log.Tracef("Worker %v stopped", workerID)

	for {
		select {
		case <-shutdownChannel:
			return
		default:
		}
		host, ok := pool.frontier.Dequeue(DequeuePollInterval)
		if !ok {
			continue
		}
		pool.process(host)
	}
}

// process - Handle one dequeued device through the retry loop. The deferred
// bookkeeping (error recording plus MarkVisited) runs on every exit path,
// including a panic escaping the retry loop; skipping it would hang the
// orchestrator's quiescence wait forever.
func (pool *Pool) process(host string) {
	startTime := time.Now()
	attempts := 0
	success := false
	var firstKind common.ErrorKind

	defer func() {
		if recovered := recover(); recovered != nil {
			log.WithFields(log.Fields{
				"device": host,
			}).Errorf("Recovered panic while processing device: %v", recovered)
			success = false
			if firstKind == "" {
				firstKind = common.UnexpectedError
			}
		}
		if success {
			pool.store.ClearError(host)
		} else if firstKind != "" {
			pool.store.RecordError(host, firstKind)
		}
		pool.frontier.MarkVisited(host)
		entry := common.VisitEntry{
			Time:     startTime,
			Source:   host,
			Duration: time.Since(startTime),
			Attempts: attempts,
			Success:  success,
		}
		pool.store.AddVisit(entry)
		pool.sink.StoreVisitEntry(entry)
	}()

	credentialIndex := 0
	budget := common.MaxAttempts
	for budget > 0 {
		attempts++
		metricAttemptsTotal.Inc()
		outcome := pool.attempt(host, pool.credentials[credentialIndex], startTime)
		if outcome.kind == "" {
			success = true
			break
		}
		metricErrorsTotal.WithLabelValues(string(outcome.kind)).Inc()
		// First error wins for the terminal classification
		if firstKind == "" {
			firstKind = outcome.kind
		}
		if outcome.retry {
			budget--
			log.WithFields(log.Fields{
				"device":  host,
				"attempt": attempts,
				"kind":    outcome.kind,
			}).Trace("Attempt failed, retrying with fresh session")
			continue
		}
		// Rejected auth falls through to the next configured credential. The
		// retry budget bounds retries of the same credential, not the
		// credential list, so the fallthrough does not consume it.
		if outcome.kind == common.AuthenticationError && credentialIndex+1 < len(pool.credentials) {
			credentialIndex++
			log.WithFields(log.Fields{
				"device": host,
			}).Trace("Credentials rejected, trying next credential")
			continue
		}
		break
	}
}

// attempt - One connection attempt: establish a session, run the discovery
// command set, parse and record the rows, and enqueue newly seen neighbors.
// Results are only recorded when the whole attempt succeeds.
func (pool *Pool) attempt(host string, credential common.Credential, startTime time.Time) attemptOutcome {
	deviceSession, err := pool.dial(host, credential)
	if err != nil {
		return pool.outcomeFromError(host, err)
	}
	defer deviceSession.Close()

	var versionRow parsing.Row
	var neighborRows []parsing.Row
	for _, discoveryCommand := range discoveryCommands {
		output, err := deviceSession.Run(discoveryCommand.command)
		if err != nil {
			return pool.outcomeFromError(host, err)
		}
		rows, err := pool.parser.Parse(output, discoveryCommand.template)
		if err != nil {
			log.WithError(err).WithFields(log.Fields{
				"device":  host,
				"command": discoveryCommand.command,
			}).Warn("Failed to parse command output")
			return attemptOutcome{retry: true, kind: common.UnexpectedError}
		}
		switch discoveryCommand.template {
		case parsing.TemplateShowVersion:
			if len(rows) > 0 {
				versionRow = rows[0]
			}
		case parsing.TemplateCDPNeighborsDetail:
			neighborRows = rows
		}
	}

	for _, row := range neighborRows {
		pool.recordNeighbor(host, row, versionRow, startTime)
	}
	return attemptOutcome{}
}

func (pool *Pool) recordNeighbor(host string, row parsing.Row, versionRow parsing.Row, startTime time.Time) {
	entry := common.NeighborEntry{
		Time:            startTime,
		Source:          host,
		DeviceID:        row[parsing.FieldDeviceID],
		Address:         row[parsing.FieldAddress],
		LocalInterface:  row[parsing.FieldLocalInterface],
		RemoteInterface: row[parsing.FieldRemoteInterface],
		Platform:        row[parsing.FieldPlatform],
		Capabilities:    row[parsing.FieldCapabilities],
		SoftwareVersion: row[parsing.FieldVersion],
		Uptime:          versionRow[parsing.FieldUptime],
		SerialNumber:    versionRow[parsing.FieldSerial],
	}
	pool.store.AddNeighbor(entry)
	pool.sink.StoreNeighborEntry(entry)

	// Prefer the advertised management address, resolve the device ID otherwise
	address := entry.Address
	if address == "" && entry.DeviceID != "" {
		resolved, ok := pool.resolver.Resolve(entry.DeviceID)
		if !ok {
			pool.store.AddDNS(common.DNSEntry{Hostname: entry.DeviceID, Address: common.DNSFailureSentinel})
			return
		}
		pool.store.AddDNS(common.DNSEntry{Hostname: entry.DeviceID, Address: resolved})
		address = resolved
	}
	if address == "" {
		return
	}
	if pool.frontier.TryEnqueue(address) {
		log.WithFields(log.Fields{
			"device":   address,
			"found_on": host,
		}).Debug("Discovered new device")
	}
}

func (pool *Pool) outcomeFromError(host string, err error) attemptOutcome {
	kind := pool.classify(err)
	log.WithError(err).WithFields(log.Fields{
		"device": host,
		"kind":   kind,
	}).Trace("Device attempt error")
	// Bad credentials are never retried with the same credential
	if kind == common.AuthenticationError {
		return attemptOutcome{retry: false, kind: kind}
	}
	return attemptOutcome{retry: true, kind: kind}
}
