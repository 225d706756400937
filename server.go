// Package ftpd implements a sandboxed FTP server: a control-channel command
// processor, active and passive data channel managers, and the glue that
// wires them to an authenticator and a path resolver.
package ftpd

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/goftpd/ftpd/auth"
	"github.com/goftpd/ftpd/log"
	"github.com/goftpd/ftpd/vfs"
)

// ErrNotListening is returned by Stop when the server was never started.
var ErrNotListening = errors.New("server is not listening")

// Server owns the listening socket and the live session set. One Server
// serves one sandbox root with one credential store.
type Server struct {
	settings *Settings
	auth     auth.Authenticator
	resolver *vfs.Resolver
	logger   log.Logger

	listener net.Listener

	mu             sync.Mutex
	sessions       map[uint32]*session
	sessionCounter uint32
	sessionsWg     sync.WaitGroup
}

// NewServer builds a Server. logger may be nil, in which case a no-op
// logger is used.
func NewServer(settings *Settings, authenticator auth.Authenticator, resolver *vfs.Resolver, logger log.Logger) *Server {
	settings.applyDefaults()

	if logger == nil {
		logger = log.NewNoOpLogger()
	}

	return &Server{
		settings: settings,
		auth:     authenticator,
		resolver: resolver,
		logger:   logger,
		sessions: make(map[uint32]*session),
	}
}

// Listen opens the control-channel listening socket without serving yet.
func (srv *Server) Listen() error {
	listener, err := net.Listen("tcp", srv.settings.ListenAddr)
	if err != nil {
		return newNetworkError("cannot listen on control port", err)
	}

	srv.listener = listener
	srv.logger.Info("listening", "address", listener.Addr())

	return nil
}

// Addr returns the listening address, or "" if not listening.
func (srv *Server) Addr() string {
	if srv.listener == nil {
		return ""
	}

	return srv.listener.Addr().String()
}

// Serve accepts connections until the listener is closed or a
// non-recoverable accept error occurs.
func (srv *Server) Serve() error {
	var backoff time.Duration

	for {
		conn, err := srv.listener.Accept()
		if err != nil {
			stop, finalErr := srv.handleAcceptError(err, &backoff)
			if stop {
				return finalErr
			}

			continue
		}

		backoff = 0

		srv.clientArrival(conn)
	}
}

func (srv *Server) handleAcceptError(err error, backoff *time.Duration) (bool, error) {
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Err.Error() == "use of closed network connection" {
		return true, nil
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		if *backoff == 0 {
			*backoff = 5 * time.Millisecond
		} else {
			*backoff *= 2
		}

		if *backoff > time.Second {
			*backoff = time.Second
		}

		srv.logger.Warn("accept error, retrying", "err", err, "delay", *backoff)
		time.Sleep(*backoff)

		return false, nil
	}

	srv.logger.Error("listener accept error", "err", err)

	return true, newNetworkError("listener accept error", err)
}

// ListenAndServe chains Listen and Serve.
func (srv *Server) ListenAndServe() error {
	if err := srv.Listen(); err != nil {
		return err
	}

	return srv.Serve()
}

// Stop closes the listening socket and waits for every in-flight session to
// finish its command loop and close its own sockets.
func (srv *Server) Stop() error {
	if srv.listener == nil {
		return ErrNotListening
	}

	if err := srv.listener.Close(); err != nil {
		return newNetworkError("could not close listener", err)
	}

	srv.sessionsWg.Wait()

	return nil
}

func (srv *Server) clientArrival(conn net.Conn) {
	srv.mu.Lock()

	if srv.settings.MaxSessions > 0 && len(srv.sessions) >= srv.settings.MaxSessions {
		srv.mu.Unlock()
		srv.rejectOverCapacity(conn)

		return
	}

	srv.sessionCounter++
	id := srv.sessionCounter
	s := newSession(srv, conn, id)
	srv.sessions[id] = s
	srv.sessionsWg.Add(1)

	srv.mu.Unlock()

	srv.logger.Debug("session arrived", "session", id, "remote", conn.RemoteAddr())

	go s.run()
}

func (srv *Server) rejectOverCapacity(conn net.Conn) {
	_, _ = fmt.Fprintf(conn, "%d too many connections\r\n", statusServiceNotAvailable)
	_ = conn.Close()
}

func (srv *Server) sessionDeparture(s *session) {
	srv.mu.Lock()
	delete(srv.sessions, s.id)
	srv.mu.Unlock()

	srv.sessionsWg.Done()

	srv.logger.Debug("session departed", "session", s.id)
}
