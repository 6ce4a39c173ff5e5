package discovery

import (
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"
	log "github.com/sirupsen/logrus"
)

// DNSPort - Default DNS service port.
const DNSPort = "53"

// Resolver - Resolves device hostnames to addresses, against a configured DNS
// server or the system resolver.
type Resolver struct {
	server string // Empty means system resolver
	client *dns.Client
}

// NewResolver - Create a resolver. server may be empty, "host" or "host:port".
func NewResolver(server string, timeout time.Duration) *Resolver {
	if server != "" && !strings.Contains(server, ":") {
		server = net.JoinHostPort(server, DNSPort)
	}
	return &Resolver{
		server: server,
		client: &dns.Client{Timeout: timeout},
	}
}

// Resolve - Resolve a hostname to an address. Address literals pass through
// unchanged. Returns false if resolution failed.
func (resolver *Resolver) Resolve(hostname string) (string, bool) {
	if ip := net.ParseIP(hostname); ip != nil {
		return hostname, true
	}

	if resolver.server == "" {
		addresses, err := net.LookupHost(hostname)
		if err != nil || len(addresses) == 0 {
			log.WithError(err).Tracef("Failed to resolve hostname: %v", hostname)
			return "", false
		}
		return addresses[0], true
	}

	message := new(dns.Msg)
	message.SetQuestion(dns.Fqdn(hostname), dns.TypeA)
	response, _, err := resolver.client.Exchange(message, resolver.server)
	if err != nil {
		log.WithError(err).Tracef("Failed to resolve hostname: %v", hostname)
		return "", false
	}
	for _, answer := range response.Answer {
		if record, ok := answer.(*dns.A); ok {
			return record.A.String(), true
		}
	}
	log.Tracef("No A record for hostname: %v", hostname)
	return "", false
}
