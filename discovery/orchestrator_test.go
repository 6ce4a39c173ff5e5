package discovery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dev.hon.one/scandium/common"
	"dev.hon.one/scandium/report"
)

func TestRunAbortsWhenNoSeedIsUsable(t *testing.T) {
	common.GlobalConfig = common.Config{
		SiteName:        "test",
		Seeds:           []string{"ghost.example.invalid"},
		DNSServer:       "127.0.0.1:1", // Not listening, resolution fails fast
		TimeoutSeconds:  0.5,
		WorkerCount:     2,
		CredentialOrder: []string{"primary"},
	}
	common.GlobalCredentials = map[string]common.Credential{
		"primary": {Username: "admin", Password: "x"},
	}

	store := report.NewStore()
	start := time.Now()
	ok := Run(store, nil)

	assert.False(t, ok)
	assert.Less(t, time.Since(start), 10*time.Second)

	// The failed seed resolution is still recorded
	dnsEntries := store.DNS()
	require.Len(t, dnsEntries, 1)
	assert.Equal(t, "ghost.example.invalid", dnsEntries[0].Hostname)
	assert.Equal(t, common.DNSFailureSentinel, dnsEntries[0].Address)
}

func TestOrderedCredentials(t *testing.T) {
	common.GlobalConfig = common.Config{CredentialOrder: []string{"b", "a"}}
	common.GlobalCredentials = map[string]common.Credential{
		"a": {Username: "second"},
		"b": {Username: "first"},
	}

	credentials := orderedCredentials()
	require.Len(t, credentials, 2)
	assert.Equal(t, "first", credentials[0].Username)
	assert.Equal(t, "second", credentials[1].Username)
}
