package session

import (
	"errors"
	"net"
	"os"
	"strings"

	"dev.hon.one/scandium/common"
)

// ErrPhaseTimeout - A connection phase or command exceeded the configured timeout.
var ErrPhaseTimeout = errors.New("session: phase timeout exceeded")

// Classify - Map an error from any session phase to its terminal error kind.
func Classify(err error) common.ErrorKind {
	if errors.Is(err, ErrPhaseTimeout) || errors.Is(err, os.ErrDeadlineExceeded) {
		return common.TimeoutError
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return common.TimeoutError
	}

	// The SSH library wraps handshake and auth failures without an unwrap
	// chain, so the remaining cases are matched on message text.
	message := err.Error()
	switch {
	case strings.Contains(message, "unable to authenticate"),
		strings.Contains(message, "no supported methods remain"),
		strings.Contains(message, "permission denied"):
		return common.AuthenticationError
	case strings.Contains(message, "i/o timeout"),
		strings.Contains(message, "timed out"),
		strings.Contains(message, "phase timeout"),
		strings.Contains(message, "use of closed network connection"):
		return common.TimeoutError
	}
	return common.UnexpectedError
}
