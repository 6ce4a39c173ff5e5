package discovery

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"dev.hon.one/scandium/common"
	"dev.hon.one/scandium/parsing"
	"dev.hon.one/scandium/report"
	"dev.hon.one/scandium/session"
	"dev.hon.one/scandium/util"
)

// QuiescencePollInterval - How often the orchestrator checks for run completion.
const QuiescencePollInterval = 250 * time.Millisecond

// Run - Seed the frontier, run the worker pool to quiescence and return true
// if the run started (at least one seed was usable). Per-device failures are
// recorded in the store and never abort the run. sink may be nil.
func Run(store *report.Store, sink *report.Sink) bool {
	config := common.GlobalConfig
	timeout := time.Duration(config.TimeoutSeconds * float64(time.Second))
	resolver := NewResolver(config.DNSServer, timeout)

	// Resolve, deduplicate and enqueue seeds. No usable seed is fatal and
	// short-circuits before any worker is started.
	frontier := NewFrontier()
	seedCount := 0
	for _, seed := range config.Seeds {
		address, ok := resolver.Resolve(seed)
		if !ok {
			store.AddDNS(common.DNSEntry{Hostname: seed, Address: common.DNSFailureSentinel})
			log.Errorf("Failed to resolve seed device: %v", seed)
			continue
		}
		if address != seed {
			store.AddDNS(common.DNSEntry{Hostname: seed, Address: address})
		}
		if frontier.TryEnqueue(address) {
			seedCount++
		}
	}
	if seedCount == 0 {
		log.Error("No seed devices are usable, aborting")
		return false
	}

	credentials := orderedCredentials()
	pool := NewPool(frontier, store, sink, resolver, parsing.CiscoParser{},
		newSessionFactory(config.BastionAddress, timeout), session.Classify, credentials)

	startTime := time.Now()
	var waitGroup sync.WaitGroup
	var shutdown util.ShutdownChannelDistributor
	pool.Start(&waitGroup, &shutdown, config.WorkerCount)

	for !frontier.IsQuiescent() {
		time.Sleep(QuiescencePollInterval)
	}
	shutdown.Shutdown()
	waitGroup.Wait()

	log.WithFields(log.Fields{
		"visited":           frontier.VisitedCount(),
		"neighbors":         len(store.Neighbors()),
		"auth_errors":       len(store.AuthErrors()),
		"connection_errors": len(store.ConnErrors()),
		"duration":          time.Since(startTime),
	}).Info("Discovery finished")

	return true
}

// newSessionFactory - Build the session factory for direct or bastion-tunneled
// connections, per config.
func newSessionFactory(bastion string, timeout time.Duration) SessionFactory {
	return func(target string, credential common.Credential) (DeviceSession, error) {
		var deviceSession *session.Session
		var err error
		if bastion != "" {
			deviceSession, err = session.OpenViaBastion(target, bastion, credential, timeout)
		} else {
			deviceSession, err = session.Open(target, credential, timeout)
		}
		if err != nil {
			return nil, err
		}
		return deviceSession, nil
	}
}

func orderedCredentials() []common.Credential {
	credentials := make([]common.Credential, 0, len(common.GlobalConfig.CredentialOrder))
	for _, credentialID := range common.GlobalConfig.CredentialOrder {
		credentials = append(credentials, common.GlobalCredentials[credentialID])
	}
	return credentials
}
