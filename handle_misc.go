package ftpd

import (
	"fmt"
	"strings"
)

func (s *session) handleQUIT(param string) error {
	s.writeMessage(statusClosingControlConn, "goodbye")
	_ = s.conn.Close()

	return nil
}

func (s *session) handleNOOP(param string) error {
	s.writeMessage(statusOK, "noop ok")
	return nil
}

func (s *session) handleSYST(param string) error {
	s.writeMessage(statusSystemType, "UNIX Type: L8")
	return nil
}

// handleFEAT advertises only the extensions this server actually
// implements: resumable transfers, SIZE and MDTM. No MLST/MLSD, no UTF8,
// no AUTH TLS.
func (s *session) handleFEAT(param string) error {
	s.writeMessage(statusSystemStatus, "Extensions supported:\n SIZE\n MDTM\n REST STREAM\nEnd")
	return nil
}

// handleSTAT with no argument reports server status; STAT with an argument
// would report file status, which this server does not implement beyond
// the bare case.
func (s *session) handleSTAT(param string) error {
	if param != "" {
		return newCommandError(statusCommandNotImplPar, "STAT on a path is not supported", errUnsupportedParameter)
	}

	status := fmt.Sprintf("Connected as %s, cwd %s", s.username, s.cwd)
	s.writeMessage(statusSystemStatus, "ftpd status\n "+status+"\nEnd")

	return nil
}

// handleTYPE is advisory only: transfers are always byte-transparent, but
// clients expect TYPE to succeed and remember what they asked for.
func (s *session) handleTYPE(param string) error {
	switch strings.ToUpper(strings.TrimSpace(param)) {
	case "A", "A N":
		s.xferType = transferTypeASCII
		s.writeMessage(statusOK, "switching to ASCII mode")
	case "I", "I N", "L 8":
		s.xferType = transferTypeBinary
		s.writeMessage(statusOK, "switching to binary mode")
	default:
		return newCommandError(statusCommandNotImplPar, "unsupported TYPE", errUnsupportedParameter)
	}

	return nil
}

// handleALLO is a no-op: this server never pre-allocates storage.
func (s *session) handleALLO(param string) error {
	s.writeMessage(statusOK, "ALLO ok")
	return nil
}

// handleOPTS accepts any argument starting with "UTF8" (such as "UTF8 ON" or
// "UTF8 OFF") as a no-op, since this server transmits raw bytes regardless.
func (s *session) handleOPTS(param string) error {
	upper := strings.ToUpper(strings.TrimSpace(param))
	if strings.HasPrefix(upper, "UTF8") {
		s.writeMessage(statusOK, "UTF8 ok")
		return nil
	}

	return newCommandError(statusCommandNotImplPar, "unsupported OPTS", errUnsupportedParameter)
}
