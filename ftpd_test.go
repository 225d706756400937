package ftpd

import (
	"fmt"
	"io"
	"net"
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnauthenticatedCommandRejected(t *testing.T) {
	srv := newTestServer(t)
	c := dialTestClient(t, srv)

	c.send("PWD")
	c.expectCode(statusNotLoggedIn)
}

func TestLoginThenPWD(t *testing.T) {
	srv := newTestServer(t)
	c := dialTestClient(t, srv)
	c.login(testUser, testPass)

	c.send("PWD")
	c.expectCode(statusPathCreated)
}

func TestBadPasswordRejected(t *testing.T) {
	srv := newTestServer(t)
	c := dialTestClient(t, srv)

	c.send("USER " + testUser)
	c.expectCode(statusUserNameOK)
	c.send("PASS wrong")
	c.expectCode(statusNotLoggedIn)
}

func TestUnknownCommand(t *testing.T) {
	srv := newTestServer(t)
	c := dialTestClient(t, srv)

	c.send("BOGUS")
	c.expectCode(statusCommandNotImpl)
}

func TestCWDTraversalDeniedEscapesToNotFound(t *testing.T) {
	srv := newTestServer(t)
	c := dialTestClient(t, srv)
	c.login(testUser, testPass)

	c.send("CWD ../../etc")
	c.expectCode(statusActionNotTakenFile)
}

func TestMKDAndRMD(t *testing.T) {
	srv := newTestServer(t)
	c := dialTestClient(t, srv)
	c.login(testUser, testPass)

	c.send("MKD sub")
	c.expectCode(statusPathCreated)

	c.send("CWD sub")
	c.expectCode(statusFileActionOK)

	c.send("CDUP")
	c.expectCode(statusFileActionOK)

	c.send("RMD sub")
	c.expectCode(statusFileActionOK)
}

func TestRNTOWithoutRNFRIsSequenceError(t *testing.T) {
	srv := newTestServer(t)
	c := dialTestClient(t, srv)
	c.login(testUser, testPass)

	c.send("RNTO newname")
	c.expectCode(statusBadSequence)
}

var pasvPattern = regexp.MustCompile(`\((\d+),(\d+),(\d+),(\d+),(\d+),(\d+)\)`)

func (c *testClient) enterPassive() net.Conn {
	c.t.Helper()

	c.send("PASV")
	text := c.expectCode(statusEnteringPassive)

	m := pasvPattern.FindStringSubmatch(text)
	require.Len(c.t, m, 7)

	ip := fmt.Sprintf("%s.%s.%s.%s", m[1], m[2], m[3], m[4])
	p1, err := strconv.Atoi(m[5])
	require.NoError(c.t, err)
	p2, err := strconv.Atoi(m[6])
	require.NoError(c.t, err)
	port := p1*256 + p2

	conn, err := net.Dial("tcp", fmt.Sprintf("%s:%d", ip, port))
	require.NoError(c.t, err)

	return conn
}

func TestSTORThenRETRRoundTrip(t *testing.T) {
	srv := newTestServer(t)
	c := dialTestClient(t, srv)
	c.login(testUser, testPass)

	conn := c.enterPassive()
	c.send("STOR hello.txt")
	c.expectCode(statusDataConnOpen)

	_, err := io.WriteString(conn, "hello world")
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	c.expectCode(statusTransferComplete)

	c.send("SIZE hello.txt")
	c.expectCode(213)

	retrConn := c.enterPassive()
	c.send("RETR hello.txt")
	c.expectCode(statusDataConnOpen)

	got, err := io.ReadAll(retrConn)
	require.NoError(t, err)
	require.Equal(t, "hello world", string(got))

	c.expectCode(statusTransferComplete)
}

func TestLISTAfterSTOR(t *testing.T) {
	srv := newTestServer(t)
	c := dialTestClient(t, srv)
	c.login(testUser, testPass)

	conn := c.enterPassive()
	c.send("STOR a.txt")
	c.expectCode(statusDataConnOpen)
	_, err := io.WriteString(conn, "x")
	require.NoError(t, err)
	require.NoError(t, conn.Close())
	c.expectCode(statusTransferComplete)

	listConn := c.enterPassive()
	c.send("LIST")
	c.expectCode(statusDataConnOpen)

	out, err := io.ReadAll(listConn)
	require.NoError(t, err)
	require.Contains(t, string(out), "a.txt")

	c.expectCode(statusTransferComplete)
}

func TestRESTOffsetsRETR(t *testing.T) {
	srv := newTestServer(t)
	c := dialTestClient(t, srv)
	c.login(testUser, testPass)

	conn := c.enterPassive()
	c.send("STOR r.txt")
	c.expectCode(statusDataConnOpen)
	_, err := io.WriteString(conn, "0123456789")
	require.NoError(t, err)
	require.NoError(t, conn.Close())
	c.expectCode(statusTransferComplete)

	c.send("REST 5")
	c.expectCode(statusFileActionPending)

	retrConn := c.enterPassive()
	c.send("RETR r.txt")
	c.expectCode(statusDataConnOpen)

	got, err := io.ReadAll(retrConn)
	require.NoError(t, err)
	require.Equal(t, "56789", string(got))

	c.expectCode(statusTransferComplete)
}

func TestRESTOffsetsSTORPreservesPrefix(t *testing.T) {
	srv := newTestServer(t)
	c := dialTestClient(t, srv)
	c.login(testUser, testPass)

	conn := c.enterPassive()
	c.send("STOR resume.txt")
	c.expectCode(statusDataConnOpen)
	_, err := io.WriteString(conn, "0123456789")
	require.NoError(t, err)
	require.NoError(t, conn.Close())
	c.expectCode(statusTransferComplete)

	c.send("REST 5")
	c.expectCode(statusFileActionPending)

	storConn := c.enterPassive()
	c.send("STOR resume.txt")
	c.expectCode(statusDataConnOpen)
	_, err = io.WriteString(storConn, "ABCDE")
	require.NoError(t, err)
	require.NoError(t, storConn.Close())
	c.expectCode(statusTransferComplete)

	retrConn := c.enterPassive()
	c.send("RETR resume.txt")
	c.expectCode(statusDataConnOpen)

	got, err := io.ReadAll(retrConn)
	require.NoError(t, err)
	require.Equal(t, "01234ABCDE", string(got))

	c.expectCode(statusTransferComplete)
}
