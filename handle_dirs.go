package ftpd

import (
	"fmt"
	"os"
	"time"

	"github.com/goftpd/ftpd/listing"
	"github.com/spf13/afero"
)

func (s *session) handlePWD(param string) error {
	s.writeMessage(statusPathCreated, fmt.Sprintf("%q is the current directory", s.cwd))
	return nil
}

func (s *session) handleCWD(param string) error {
	if param == "" {
		return newCommandError(statusSyntaxErrorParams, "CWD requires a path", errBadArgument)
	}

	target, err := s.server.resolver.Resolve(s.cwd, param)
	if err != nil {
		return newCommandError(statusActionNotTakenFile, "directory not found", errNotFound)
	}

	info, err := s.server.resolver.Fs().Stat(target)
	if err != nil || !info.IsDir() {
		return newCommandError(statusActionNotTakenFile, "directory not found", errNotFound)
	}

	s.cwd = target
	s.writeMessage(statusFileActionOK, "directory changed to "+s.cwd)

	return nil
}

func (s *session) handleCDUP(param string) error {
	return s.handleCWD("..")
}

func (s *session) handleMKD(param string) error {
	if param == "" {
		return newCommandError(statusSyntaxErrorParams, "MKD requires a path", errBadArgument)
	}

	target, err := s.server.resolver.Resolve(s.cwd, param)
	if err != nil {
		return newCommandError(statusActionNotTakenFile, "cannot create directory", errSandboxViolation)
	}

	if err := s.server.resolver.Fs().Mkdir(target, 0o755); err != nil {
		if os.IsExist(err) {
			return newCommandError(statusActionNotTakenFile, "directory already exists", errConflict)
		}

		return newCommandError(statusActionNotTakenFile, "cannot create directory", errNotFound)
	}

	s.writeMessage(statusPathCreated, fmt.Sprintf("%q directory created", target))

	return nil
}

func (s *session) handleRMD(param string) error {
	if param == "" {
		return newCommandError(statusSyntaxErrorParams, "RMD requires a path", errBadArgument)
	}

	target, err := s.server.resolver.Resolve(s.cwd, param)
	if err != nil {
		return newCommandError(statusActionNotTakenFile, "cannot remove directory", errSandboxViolation)
	}

	if target == "/" {
		return newCommandError(statusActionNotTakenFile, "cannot remove the root directory", errConflict)
	}

	if err := s.server.resolver.Fs().Remove(target); err != nil {
		return newCommandError(statusActionNotTakenFile, "cannot remove directory", errNotFound)
	}

	s.writeMessage(statusFileActionOK, "directory removed")

	return nil
}

func (s *session) handleLIST(param string) error {
	return s.sendDirectory(param, false)
}

func (s *session) handleNLST(param string) error {
	return s.sendDirectory(param, true)
}

// sendDirectory opens the pending data connection and writes either a
// "ls -l" style listing (LIST) or bare names (NLST).
func (s *session) sendDirectory(param string, namesOnly bool) error {
	// LIST/NLST arguments are usually a path, occasionally a flag such as
	// "-la"; treat anything starting with "-" as "list the current directory".
	arg := param
	if len(arg) > 0 && arg[0] == '-' {
		arg = ""
	}

	target, err := s.server.resolver.Resolve(s.cwd, arg)
	if err != nil {
		return newCommandError(statusActionNotTakenFile, "path not found", errNotFound)
	}

	entries, err := afero.ReadDir(s.server.resolver.Fs(), target)
	if err != nil {
		return newCommandError(statusActionNotTakenFile, "path not found", errNotFound)
	}

	conn, err := s.openDataConn()
	if err != nil {
		return newCommandError(statusCantOpenDataConn, "could not open data connection", errDataChannelUnavailable)
	}

	now := time.Now()
	var writeErr error

	if namesOnly {
		for _, name := range listing.Names(entries) {
			if _, writeErr = fmt.Fprintf(conn, "%s\r\n", name); writeErr != nil {
				break
			}
		}
	} else {
		for _, entry := range listing.Sort(entries) {
			if _, writeErr = fmt.Fprintf(conn, "%s\r\n", listing.Line(entry, now)); writeErr != nil {
				break
			}
		}
	}

	s.closeDataConn(writeErr)

	return nil
}
