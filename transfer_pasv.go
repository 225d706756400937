package ftpd

import (
	"errors"
	"fmt"
	"math/rand"
	"net"
	"strings"
	"time"
)

// ErrNoAvailableListeningPort is returned when no port in the configured
// passive range could be bound after a reasonable number of attempts.
var ErrNoAvailableListeningPort = errors.New("could not find any port to listen to")

// passiveTransferHandler accepts the single inbound data connection the
// client opens after receiving the PASV reply.
type passiveTransferHandler struct {
	tcpListener       *net.TCPListener
	connectionTimeout time.Duration
	conn              net.Conn
}

func (p *passiveTransferHandler) Open() (net.Conn, error) {
	if p.conn != nil {
		return p.conn, nil
	}

	if err := p.tcpListener.SetDeadline(time.Now().Add(p.connectionTimeout)); err != nil {
		return nil, fmt.Errorf("failed to set accept deadline: %w", err)
	}

	conn, err := p.tcpListener.Accept()
	if err != nil {
		return nil, err
	}

	p.conn = conn

	return conn, nil
}

func (p *passiveTransferHandler) Close() error {
	var err error

	if p.tcpListener != nil {
		err = p.tcpListener.Close()
	}

	if p.conn != nil {
		if closeErr := p.conn.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}

	return err
}

func (s *session) handlePASV(param string) error {
	tcpListener, err := s.findPassiveListener()
	if err != nil {
		return newCommandError(statusCantOpenDataConn, "could not listen for passive connection", errDataChannelUnavailable)
	}

	s.closeTransfer()
	s.transfer = &passiveTransferHandler{
		tcpListener:       tcpListener,
		connectionTimeout: s.server.settings.ConnectionTimeout,
	}

	port := tcpListener.Addr().(*net.TCPAddr).Port
	p1, p2 := port/256, port%256

	ip, err := s.currentIP()
	if err != nil {
		return newCommandError(statusCantOpenDataConn, "could not determine passive IP", errDataChannelUnavailable)
	}

	s.writeMessage(statusEnteringPassive,
		fmt.Sprintf("Entering Passive Mode (%s,%d,%d)", strings.ReplaceAll(ip, ".", ","), p1, p2))

	return nil
}

func (s *session) findPassiveListener() (*net.TCPListener, error) {
	portRange := s.server.settings.PassiveTransferPortRange
	if portRange == nil {
		addr, _ := net.ResolveTCPAddr("tcp", ":0")
		return net.ListenTCP("tcp", addr)
	}

	attempts := portRange.End - portRange.Start
	if attempts < 10 {
		attempts = 10
	} else if attempts > 1000 {
		attempts = 1000
	}

	for i := 0; i < attempts; i++ {
		port := portRange.Start + rand.Intn(portRange.End-portRange.Start+1) //nolint:gosec

		laddr, err := net.ResolveTCPAddr("tcp", fmt.Sprintf("0.0.0.0:%d", port))
		if err != nil {
			return nil, err
		}

		listener, err := net.ListenTCP("tcp", laddr)
		if err == nil {
			return listener, nil
		}
	}

	return nil, ErrNoAvailableListeningPort
}

// currentIP is the address advertised in the PASV reply: the configured
// public host, or else the local address of this control connection.
func (s *session) currentIP() (string, error) {
	if s.server.settings.PublicHost != "" {
		return s.server.settings.PublicHost, nil
	}

	host, _, err := net.SplitHostPort(s.localAddr().String())
	if err != nil {
		return "", err
	}

	return host, nil
}
