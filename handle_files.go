package ftpd

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/afero"
)

func (s *session) handleDELE(param string) error {
	if param == "" {
		return newCommandError(statusSyntaxErrorParams, "DELE requires a path", errBadArgument)
	}

	target, err := s.server.resolver.Resolve(s.cwd, param)
	if err != nil {
		return newCommandError(statusActionNotTakenFile, "file not found", errNotFound)
	}

	info, err := s.server.resolver.Fs().Stat(target)
	if err != nil {
		return newCommandError(statusActionNotTakenFile, "file not found", errNotFound)
	}

	if info.IsDir() {
		return newCommandError(statusActionNotTakenFile, "DELE cannot remove a directory", errBadArgument)
	}

	if err := s.server.resolver.Fs().Remove(target); err != nil {
		return newCommandError(statusActionNotTakenFile, "cannot delete file", errNotFound)
	}

	s.writeMessage(statusFileActionOK, "file deleted")

	return nil
}

func (s *session) handleSIZE(param string) error {
	if param == "" {
		return newCommandError(statusSyntaxErrorParams, "SIZE requires a path", errBadArgument)
	}

	target, err := s.server.resolver.Resolve(s.cwd, param)
	if err != nil {
		return newCommandError(statusActionNotTakenFile, "file not found", errNotFound)
	}

	info, err := s.server.resolver.Fs().Stat(target)
	if err != nil || info.IsDir() {
		return newCommandError(statusActionNotTakenFile, "file not found", errNotFound)
	}

	s.writeMessage(statusFileStatus, strconv.FormatInt(info.Size(), 10))

	return nil
}

func (s *session) handleMDTM(param string) error {
	if param == "" {
		return newCommandError(statusSyntaxErrorParams, "MDTM requires a path", errBadArgument)
	}

	target, err := s.server.resolver.Resolve(s.cwd, param)
	if err != nil {
		return newCommandError(statusActionNotTakenFile, "file not found", errNotFound)
	}

	info, err := s.server.resolver.Fs().Stat(target)
	if err != nil {
		return newCommandError(statusActionNotTakenFile, "file not found", errNotFound)
	}

	s.writeMessage(statusFileStatus, info.ModTime().UTC().Format("20060102150405"))

	return nil
}

func (s *session) handleRNFR(param string) error {
	if param == "" {
		return newCommandError(statusSyntaxErrorParams, "RNFR requires a path", errBadArgument)
	}

	target, err := s.server.resolver.Resolve(s.cwd, param)
	if err != nil {
		return newCommandError(statusActionNotTakenFile, "path not found", errNotFound)
	}

	if _, err := s.server.resolver.Fs().Stat(target); err != nil {
		return newCommandError(statusActionNotTakenFile, "path not found", errNotFound)
	}

	s.renameFrom = target
	s.writeMessage(statusFileActionPending, "ready for RNTO")

	return nil
}

func (s *session) handleRNTO(param string) error {
	if s.renameFrom == "" {
		return newCommandError(statusBadSequence, "RNFR required before RNTO", errSequenceError)
	}

	defer func() { s.renameFrom = "" }()

	if param == "" {
		return newCommandError(statusSyntaxErrorParams, "RNTO requires a path", errBadArgument)
	}

	target, err := s.server.resolver.Resolve(s.cwd, param)
	if err != nil {
		return newCommandError(statusActionNotTakenFile, "cannot rename", errSandboxViolation)
	}

	if err := s.server.resolver.Fs().Rename(s.renameFrom, target); err != nil {
		return newCommandError(statusActionNotTakenFile, "cannot rename", errNotFound)
	}

	s.writeMessage(statusFileActionOK, "renamed")

	return nil
}

func (s *session) handleREST(param string) error {
	offset, err := strconv.ParseInt(param, 10, 64)
	if err != nil || offset < 0 {
		return newCommandError(statusSyntaxErrorParams, "REST requires a non-negative byte offset", errBadArgument)
	}

	s.restartAt = offset
	s.writeMessage(statusFileActionPending, fmt.Sprintf("restarting at %d", offset))

	return nil
}

func (s *session) handleRETR(param string) error {
	defer func() { s.restartAt = 0 }()

	if param == "" {
		return newCommandError(statusSyntaxErrorParams, "RETR requires a path", errBadArgument)
	}

	target, err := s.server.resolver.Resolve(s.cwd, param)
	if err != nil {
		return newCommandError(statusActionNotTakenFile, "file not found", errNotFound)
	}

	file, err := s.server.resolver.Fs().Open(target)
	if err != nil {
		return newCommandError(statusActionNotTakenFile, "file not found", errNotFound)
	}
	defer file.Close()

	if s.restartAt > 0 {
		if _, err := file.Seek(s.restartAt, io.SeekStart); err != nil {
			return newCommandError(statusActionNotTakenFile, "cannot seek to restart offset", errTransferFailed)
		}
	}

	conn, err := s.openDataConn()
	if err != nil {
		return newCommandError(statusCantOpenDataConn, "could not open data connection", errDataChannelUnavailable)
	}

	_, copyErr := io.Copy(conn, file)
	s.closeDataConn(copyErr)

	return nil
}

func (s *session) handleSTOR(param string) error {
	return s.receiveFile(param, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
}

func (s *session) handleAPPE(param string) error {
	return s.receiveFile(param, os.O_WRONLY|os.O_CREATE|os.O_APPEND)
}

func (s *session) receiveFile(param string, flag int) error {
	defer func() { s.restartAt = 0 }()

	if param == "" {
		return newCommandError(statusSyntaxErrorParams, "requires a path", errBadArgument)
	}

	target, err := s.server.resolver.Resolve(s.cwd, param)
	if err != nil {
		return newCommandError(statusActionNotTakenFile, "cannot write file", errSandboxViolation)
	}

	file, err := openForWrite(s.server.resolver.Fs(), target, flag, s.restartAt)
	if err != nil {
		return newCommandError(statusActionNotTakenFile, "cannot write file", errConflict)
	}
	defer file.Close()

	conn, err := s.openDataConn()
	if err != nil {
		return newCommandError(statusCantOpenDataConn, "could not open data connection", errDataChannelUnavailable)
	}

	_, copyErr := io.Copy(file, conn)
	s.closeDataConn(copyErr)

	return nil
}

func openForWrite(fs afero.Fs, path string, flag int, restartAt int64) (afero.File, error) {
	if restartAt > 0 {
		flag &^= os.O_TRUNC
	}

	file, err := fs.OpenFile(path, flag, 0o644)
	if err != nil {
		return nil, err
	}

	if restartAt > 0 {
		if err := file.Truncate(restartAt); err != nil {
			file.Close()
			return nil, err
		}

		if _, err := file.Seek(restartAt, io.SeekStart); err != nil {
			file.Close()
			return nil, err
		}
	}

	return file, nil
}
