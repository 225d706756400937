package ftpd

func (s *session) handleUSER(param string) error {
	if param == "" {
		return newCommandError(statusSyntaxErrorParams, "USER requires a username", errBadArgument)
	}

	s.username = param
	s.authenticated = false
	s.writeMessage(statusUserNameOK, "user name ok, need password")

	return nil
}

func (s *session) handlePASS(param string) error {
	if s.username == "" {
		return newCommandError(statusBadSequence, "USER required before PASS", errSequenceError)
	}

	if s.server.auth.Authenticate(s.username, param) {
		s.authenticated = true
		s.writeMessage(statusUserLoggedIn, "login successful")

		return nil
	}

	s.authenticated = false
	s.writeMessage(statusNotLoggedIn, "authentication failed")

	return nil
}
