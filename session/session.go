// Package session establishes SSH sessions to devices, directly or tunneled
// through a bastion host, with one uniform timeout bounding every connection
// phase and every command execution.
package session

import (
	"io/ioutil"
	"net"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/ssh"

	"dev.hon.one/scandium/common"
)

// SSHPort - Default SSH service port.
const SSHPort = "22"

// Session - One logical SSH connection to a single device, exclusively owned
// by its caller for the duration of one attempt. Never pooled or shared.
type Session struct {
	target        string
	timeout       time.Duration
	client        *ssh.Client
	bastionClient *ssh.Client
}

// Open - Establish a direct session to the target.
func Open(target string, credential common.Credential, timeout time.Duration) (*Session, error) {
	address := ensurePort(target)
	config, err := buildClientConfig(credential, timeout)
	if err != nil {
		return nil, err
	}

	// Transport handshake phase
	rawConn, err := net.DialTimeout("tcp", address, timeout)
	if err != nil {
		return nil, err
	}

	// Banner and authentication phases, each bounded per read/write
	client, err := establishClient(&timeoutConn{Conn: rawConn, timeout: timeout}, address, config)
	if err != nil {
		return nil, err
	}

	return &Session{target: target, timeout: timeout, client: client}, nil
}

// OpenViaBastion - Establish a session to the target tunneled through a bastion host.
func OpenViaBastion(target string, bastion string, credential common.Credential, timeout time.Duration) (*Session, error) {
	bastionAddress := ensurePort(bastion)
	targetAddress := ensurePort(target)
	config, err := buildClientConfig(credential, timeout)
	if err != nil {
		return nil, err
	}

	rawConn, err := net.DialTimeout("tcp", bastionAddress, timeout)
	if err != nil {
		return nil, err
	}
	bastionClient, err := establishClient(&timeoutConn{Conn: rawConn, timeout: timeout}, bastionAddress, config)
	if err != nil {
		return nil, err
	}

	// Successful auth leaves the raw connection with the transport's own
	// relaxed polling deadline. Re-assert the configured timeout before the
	// tunnel-channel open so the direct-tcpip exchange cannot outlive it.
	if err := rawConn.SetDeadline(time.Now().Add(timeout)); err != nil {
		bastionClient.Close()
		return nil, err
	}
	innerConn, err := bastionClient.Dial("tcp", targetAddress)
	if err != nil {
		bastionClient.Close()
		return nil, err
	}
	rawConn.SetDeadline(time.Time{})

	// Banner and auth against the true target, over the tunneled channel
	client, err := establishClient(&channelConn{Conn: innerConn, timeout: timeout}, targetAddress, config)
	if err != nil {
		bastionClient.Close()
		return nil, err
	}

	return &Session{target: target, timeout: timeout, client: client, bastionClient: bastionClient}, nil
}

// Run - Execute a single command and return its combined output. Bounded by
// the session timeout.
func (session *Session) Run(command string) (string, error) {
	sshSession, err := session.client.NewSession()
	if err != nil {
		return "", err
	}
	defer sshSession.Close()

	type runResult struct {
		output []byte
		err    error
	}
	resultChannel := make(chan runResult, 1)
	go func() {
		output, err := sshSession.CombinedOutput(command)
		resultChannel <- runResult{output, err}
	}()

	select {
	case result := <-resultChannel:
		if result.err != nil {
			// Non-zero exit still produced usable output
			if _, ok := result.err.(*ssh.ExitError); ok {
				return string(result.output), nil
			}
			return "", result.err
		}
		return string(result.output), nil
	case <-time.After(session.timeout):
		log.WithFields(log.Fields{
			"device":  session.target,
			"command": command,
		}).Trace("Command timed out")
		return "", ErrPhaseTimeout
	}
}

// Close - Close the session and any bastion tunnel under it.
func (session *Session) Close() {
	if session.client != nil {
		session.client.Close()
	}
	if session.bastionClient != nil {
		session.bastionClient.Close()
	}
}

// buildClientConfig - Build an SSH client config from a credential, with all
// library-default timeouts replaced by the configured one.
func buildClientConfig(credential common.Credential, timeout time.Duration) (*ssh.ClientConfig, error) {
	authMethods := make([]ssh.AuthMethod, 0)
	if credential.Password != "" {
		authMethods = append(authMethods, ssh.Password(credential.Password))
	}
	if credential.PrivateKeyPath != "" {
		privkey, err := ioutil.ReadFile(credential.PrivateKeyPath)
		if err != nil {
			return nil, err
		}
		signer, err := ssh.ParsePrivateKey(privkey)
		if err != nil {
			return nil, err
		}
		authMethods = append(authMethods, ssh.PublicKeys(signer))
	}
	return &ssh.ClientConfig{
		User:            credential.Username,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Auth:            authMethods,
		Timeout:         timeout,
	}, nil
}

func ensurePort(address string) string {
	if strings.Contains(address, ":") {
		return address
	}
	return net.JoinHostPort(address, SSHPort)
}
