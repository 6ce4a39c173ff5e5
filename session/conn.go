package session

import (
	"net"
	"time"

	"golang.org/x/crypto/ssh"
)

// timeoutConn applies the configured timeout to every read and write on a raw
// TCP connection, so no protocol phase (handshake, banner, auth, channel open)
// can stall on OS-level retransmit behavior past the configured bound.
type timeoutConn struct {
	net.Conn
	timeout time.Duration
}

func (conn *timeoutConn) Read(buffer []byte) (int, error) {
	if err := conn.Conn.SetReadDeadline(time.Now().Add(conn.timeout)); err != nil {
		return 0, err
	}
	return conn.Conn.Read(buffer)
}

func (conn *timeoutConn) Write(buffer []byte) (int, error) {
	if err := conn.Conn.SetWriteDeadline(time.Now().Add(conn.timeout)); err != nil {
		return 0, err
	}
	return conn.Conn.Write(buffer)
}

// channelConn bounds reads and writes on a tunneled SSH channel, which does
// not support deadlines, by closing the channel when an operation exceeds the
// timeout. The closed channel surfaces as ErrPhaseTimeout to the caller.
type channelConn struct {
	net.Conn
	timeout time.Duration
}

func (conn *channelConn) Read(buffer []byte) (int, error) {
	timer := time.AfterFunc(conn.timeout, func() { conn.Conn.Close() })
	numBytes, err := conn.Conn.Read(buffer)
	if !timer.Stop() {
		return numBytes, ErrPhaseTimeout
	}
	return numBytes, err
}

func (conn *channelConn) Write(buffer []byte) (int, error) {
	timer := time.AfterFunc(conn.timeout, func() { conn.Conn.Close() })
	numBytes, err := conn.Conn.Write(buffer)
	if !timer.Stop() {
		return numBytes, ErrPhaseTimeout
	}
	return numBytes, err
}

// establishClient runs the SSH banner and authentication phases over an
// already-dialed connection. The connection is closed on failure.
func establishClient(conn net.Conn, address string, config *ssh.ClientConfig) (*ssh.Client, error) {
	sshConn, channels, requests, err := ssh.NewClientConn(conn, address, config)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return ssh.NewClient(sshConn, channels, requests), nil
}
