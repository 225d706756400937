package ftpd

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"runtime/debug"
	"strings"
	"time"

	"github.com/goftpd/ftpd/log"
)

// transferType is the advisory representation type set by TYPE. Transfers
// are always byte-transparent; the value is recorded but changes nothing.
type transferType int

const (
	transferTypeASCII transferType = iota
	transferTypeBinary
)

// transferHandler is the data-channel half of an active or passive
// transfer, established by PORT or PASV and consumed by the next
// data-moving command.
type transferHandler interface {
	Open() (net.Conn, error)
	Close() error
}

// session is one client's connection state: the control socket plus
// everything RFC 959 calls out as per-connection (current directory,
// rename source, restart offset, transfer type, pending data channel).
type session struct {
	id     uint32
	server *Server
	conn   net.Conn
	reader *bufio.Reader
	writer *bufio.Writer
	logger log.Logger

	username      string
	authenticated bool
	cwd           string
	renameFrom    string
	restartAt     int64
	xferType      transferType

	transfer transferHandler
}

func newSession(server *Server, conn net.Conn, id uint32) *session {
	return &session{
		id:       id,
		server:   server,
		conn:     conn,
		reader:   bufio.NewReader(conn),
		writer:   bufio.NewWriter(conn),
		logger:   server.logger.With("session", id),
		cwd:      "/",
		xferType: transferTypeBinary,
	}
}

func (s *session) remoteAddr() net.Addr {
	return s.conn.RemoteAddr()
}

func (s *session) localAddr() net.Addr {
	return s.conn.LocalAddr()
}

// run is the per-connection goroutine body: send the banner, then loop
// reading and dispatching commands until the client disconnects or the
// control socket errors out.
func (s *session) run() {
	defer s.end()

	s.writeMessage(statusServiceReady, s.server.settings.Banner)

	for {
		if s.server.settings.IdleTimeout > 0 {
			if err := s.conn.SetReadDeadline(time.Now().Add(s.server.settings.IdleTimeout)); err != nil {
				s.logger.Error("set read deadline", "err", err)
			}
		}

		line, err := s.reader.ReadString('\n')
		if err != nil {
			s.handleReadError(err)
			return
		}

		s.handleLine(line)
	}
}

func (s *session) handleReadError(err error) {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		s.writeMessage(statusServiceNotAvailable, "command timeout: closing control connection")
		return
	}

	s.logger.Debug("control connection closed", "err", err)
}

func (s *session) end() {
	s.logger.Debug("client disconnected", "remote", s.remoteAddr())
	s.closeTransfer()
	_ = s.conn.Close()
	s.server.sessionDeparture(s)
}

func (s *session) closeTransfer() {
	if s.transfer != nil {
		_ = s.transfer.Close()
		s.transfer = nil
	}
}

func (s *session) handleLine(line string) {
	verb, param := parseLine(line)
	verb = strings.ToUpper(verb)

	desc, ok := commandTable[verb]
	if !ok {
		s.writeMessage(statusCommandNotImpl, fmt.Sprintf("unknown command %q", verb))
		return
	}

	if !s.authenticated && !desc.Open {
		s.writeMessage(statusNotLoggedIn, "please login with USER and PASS")
		return
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("handler panic", "verb", verb, "panic", r, "stack", string(debug.Stack()))
			s.writeMessage(statusActionNotTakenFile, "internal error")
		}
	}()

	if err := desc.Fn(s, param); err != nil {
		code := replyCodeFor(err, statusActionNotTakenFile)
		s.writeMessage(code, err.Error())
	}
}

func parseLine(line string) (verb, param string) {
	trimmed := strings.TrimRight(line, "\r\n")

	parts := strings.SplitN(trimmed, " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}

	return parts[0], parts[1]
}

func (s *session) writeLine(line string) {
	if _, err := s.writer.WriteString(line + "\r\n"); err != nil {
		s.logger.Warn("write line failed", "err", err)
		return
	}

	if err := s.writer.Flush(); err != nil {
		s.logger.Warn("flush failed", "err", err)
	}
}

// writeMessage sends a single- or multi-line reply, RFC 959 style: all but
// the last line of a multi-line message use "code-text", the last uses
// "code text".
func (s *session) writeMessage(code int, message string) {
	lines := strings.Split(message, "\n")

	for i, line := range lines {
		sep := " "
		if i < len(lines)-1 {
			sep = "-"
		}

		s.writeLine(fmt.Sprintf("%d%s%s", code, sep, line))
	}
}
