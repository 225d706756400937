package ftpd

import (
	"bufio"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/goftpd/ftpd/auth"
	"github.com/goftpd/ftpd/log"
	"github.com/goftpd/ftpd/vfs"
	"github.com/stretchr/testify/require"
)

const (
	testUser = "alice"
	testPass = "secret"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	root := t.TempDir()

	store := auth.NewStore()
	store.AddUser(testUser, testPass)

	resolver, err := vfs.NewOSResolver(root)
	require.NoError(t, err)

	settings := &Settings{
		ListenAddr:        "127.0.0.1:0",
		Root:              root,
		IdleTimeout:       5 * time.Second,
		ConnectionTimeout: 5 * time.Second,
		Banner:            "Welcome to testftpd",
	}

	srv := NewServer(settings, store, resolver, log.NewNoOpLogger())
	require.NoError(t, srv.Listen())

	go func() {
		_ = srv.Serve()
	}()

	t.Cleanup(func() {
		_ = srv.Stop()
	})

	return srv
}

// testClient is a thin control-connection wrapper for protocol tests.
type testClient struct {
	t    *testing.T
	conn net.Conn
	r    *bufio.Reader
}

func dialTestClient(t *testing.T, srv *Server) *testClient {
	t.Helper()

	conn, err := net.Dial("tcp", srv.Addr())
	require.NoError(t, err)

	t.Cleanup(func() { _ = conn.Close() })

	c := &testClient{t: t, conn: conn, r: bufio.NewReader(conn)}
	c.expectCode(statusServiceReady)

	return c
}

func (c *testClient) send(line string) {
	c.t.Helper()

	_, err := fmt.Fprintf(c.conn, "%s\r\n", line)
	require.NoError(c.t, err)
}

// readReply reads one reply, following "code-text" continuation lines
// through to the final "code text" line, and returns the code and the
// final line's text.
func (c *testClient) readReply() (int, string) {
	c.t.Helper()

	var code int
	var text string

	for {
		line, err := c.r.ReadString('\n')
		require.NoError(c.t, err)

		n, scanErr := fmt.Sscanf(line, "%d", &code)
		require.NoError(c.t, scanErr)
		require.Equal(c.t, 1, n)

		text = line

		if len(line) > 3 && line[3] == ' ' {
			break
		}
	}

	return code, text
}

func (c *testClient) expectCode(want int) string {
	c.t.Helper()

	got, text := c.readReply()
	require.Equal(c.t, want, got, "reply: %s", text)

	return text
}

func (c *testClient) login(user, pass string) {
	c.t.Helper()

	c.send("USER " + user)
	c.expectCode(statusUserNameOK)
	c.send("PASS " + pass)
	c.expectCode(statusUserLoggedIn)
}
