package discovery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAddressLiteralPassthrough(t *testing.T) {
	resolver := NewResolver("", time.Second)

	address, ok := resolver.Resolve("10.0.0.1")
	require.True(t, ok)
	assert.Equal(t, "10.0.0.1", address)

	address, ok = resolver.Resolve("2001:db8::1")
	require.True(t, ok)
	assert.Equal(t, "2001:db8::1", address)
}

func TestResolveUnreachableServerFails(t *testing.T) {
	// Configured resolver which is not listening
	resolver := NewResolver("127.0.0.1:1", 500*time.Millisecond)

	start := time.Now()
	_, ok := resolver.Resolve("switch1.example.invalid")
	elapsed := time.Since(start)

	assert.False(t, ok)
	assert.Less(t, elapsed, 5*time.Second)
}

func TestNewResolverAppendsDefaultPort(t *testing.T) {
	resolver := NewResolver("10.0.0.53", time.Second)
	assert.Equal(t, "10.0.0.53:53", resolver.server)

	resolver = NewResolver("10.0.0.53:5353", time.Second)
	assert.Equal(t, "10.0.0.53:5353", resolver.server)
}
