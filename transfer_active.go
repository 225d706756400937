package ftpd

import (
	"errors"
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrRemoteAddrFormat is returned when a PORT argument doesn't match the
// comma-separated sextet format RFC 959 defines.
var ErrRemoteAddrFormat = errors.New("remote address has a bad format")

var remoteAddrRegex = regexp.MustCompile(`^([0-9]{1,3},){5}[0-9]{1,3}$`)

// parseRemoteAddr decodes a PORT argument such as "192,168,150,80,14,178"
// into 192.168.150.80:3762.
func parseRemoteAddr(param string) (*net.TCPAddr, error) {
	if !remoteAddrRegex.MatchString(param) {
		return nil, fmt.Errorf("could not parse %q: %w", param, ErrRemoteAddrFormat)
	}

	parts := strings.Split(param, ",")
	ip := strings.Join(parts[0:4], ".")

	p1, err := strconv.Atoi(parts[4])
	if err != nil {
		return nil, err
	}

	p2, err := strconv.Atoi(parts[5])
	if err != nil {
		return nil, err
	}

	port := p1<<8 + p2

	return net.ResolveTCPAddr("tcp", fmt.Sprintf("%s:%d", ip, port))
}

func (s *session) handlePORT(param string) error {
	raddr, err := parseRemoteAddr(param)
	if err != nil {
		return newCommandError(statusSyntaxErrorParams, "could not parse PORT", errBadArgument)
	}

	s.closeTransfer()
	s.transfer = &activeTransferHandler{
		raddr:             raddr,
		connectionTimeout: s.server.settings.ConnectionTimeout,
		bindToPort20:      !s.server.settings.ActiveDataPortNon20,
	}

	s.writeMessage(statusOK, "PORT command successful")

	return nil
}

// activeTransferHandler dials back to the client's advertised address, the
// way PORT mode requires, optionally binding the local side to port 20 as
// RFC 959 recommends for ftp-data.
type activeTransferHandler struct {
	raddr             *net.TCPAddr
	conn              net.Conn
	connectionTimeout time.Duration
	bindToPort20      bool
}

func (a *activeTransferHandler) Open() (net.Conn, error) {
	dialer := &net.Dialer{Timeout: a.connectionTimeout, Control: dialerControl}

	if a.bindToPort20 {
		a.dialFromPort20(dialer)
	}

	conn, err := dialer.Dial("tcp", a.raddr.String())
	if err != nil {
		return nil, fmt.Errorf("could not establish active connection: %w", err)
	}

	a.conn = conn

	return conn, nil
}

func (a *activeTransferHandler) dialFromPort20(dialer *net.Dialer) {
	if laddr, err := net.ResolveTCPAddr("tcp", ":20"); err == nil {
		dialer.LocalAddr = laddr
	}
}

func (a *activeTransferHandler) Close() error {
	if a.conn != nil {
		return a.conn.Close()
	}

	return nil
}

// openDataConn opens the pending PORT/PASV transfer and announces it with
// a 150, for any handler that moves bytes over the data channel.
func (s *session) openDataConn() (net.Conn, error) {
	if s.transfer == nil {
		return nil, errDataChannelUnavailable
	}

	conn, err := s.transfer.Open()
	if err != nil {
		s.logger.Warn("data connection failed", "err", err)
		return nil, err
	}

	s.writeMessage(statusDataConnOpen, "opening data connection")

	return conn, nil
}

// closeDataConn tears down the transfer and reports success or failure per
// whether the transfer itself errored.
func (s *session) closeDataConn(transferErr error) {
	s.closeTransfer()

	if transferErr != nil {
		s.writeMessage(statusActionNotTakenFile, "transfer failed: "+transferErr.Error())
		return
	}

	s.writeMessage(statusTransferComplete, "transfer complete")
}
