package ftpd

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// PortRange is an inclusive range of TCP ports passive transfers may bind
// to. A nil *PortRange means "ask the kernel for any free port".
type PortRange struct {
	Start int
	End   int
}

// Settings holds everything needed to run a Server, loadable from a TOML
// file via LoadSettings or built programmatically for tests.
type Settings struct {
	ListenAddr               string
	Root                     string
	PublicHost               string
	PassiveTransferPortRange *PortRange
	MaxSessions              int
	IdleTimeout              time.Duration
	ConnectionTimeout        time.Duration
	Banner                   string
	ActiveDataPortNon20      bool
}

func (s *Settings) applyDefaults() {
	if s.ListenAddr == "" {
		s.ListenAddr = "0.0.0.0:21"
	}

	if s.IdleTimeout == 0 {
		s.IdleTimeout = 60 * time.Second
	}

	if s.ConnectionTimeout == 0 {
		s.ConnectionTimeout = 30 * time.Second
	}

	if s.Banner == "" {
		s.Banner = "Welcome to ftpd"
	}
}

// Account is one user/password credential entry in a settings file, loaded
// into an auth.Store by cmd/ftpd. All accounts share the server's root.
type Account struct {
	User string
	Pass string
}

// fileSettings mirrors the on-disk TOML document: general server settings
// plus the credential list, decoded in one pass.
type fileSettings struct {
	ListenAddr          string `toml:"listen_addr"`
	Root                string `toml:"root"`
	PublicHost          string `toml:"public_host"`
	MaxSessions         int    `toml:"max_sessions"`
	IdleTimeoutSeconds  int    `toml:"idle_timeout_seconds"`
	ConnTimeoutSeconds  int    `toml:"connection_timeout_seconds"`
	Banner              string `toml:"banner"`
	ActiveDataPortNon20 bool   `toml:"active_data_port_non20"`

	PassivePortRange *struct {
		Start int `toml:"start"`
		End   int `toml:"end"`
	} `toml:"passive_port_range"`

	Users []Account `toml:"users"`
}

// LoadSettings reads a TOML settings file and returns the Settings plus the
// credential list it declared.
func LoadSettings(path string) (*Settings, []Account, error) {
	var doc fileSettings

	if _, err := toml.DecodeFile(path, &doc); err != nil {
		return nil, nil, newDriverError(fmt.Sprintf("decode settings %q", path), err)
	}

	settings := &Settings{
		ListenAddr:          doc.ListenAddr,
		Root:                doc.Root,
		PublicHost:          doc.PublicHost,
		MaxSessions:         doc.MaxSessions,
		IdleTimeout:         time.Duration(doc.IdleTimeoutSeconds) * time.Second,
		ConnectionTimeout:   time.Duration(doc.ConnTimeoutSeconds) * time.Second,
		Banner:              doc.Banner,
		ActiveDataPortNon20: doc.ActiveDataPortNon20,
	}

	if doc.PassivePortRange != nil {
		settings.PassiveTransferPortRange = &PortRange{
			Start: doc.PassivePortRange.Start,
			End:   doc.PassivePortRange.End,
		}
	}

	settings.applyDefaults()

	if doc.Root == "" {
		return nil, nil, fmt.Errorf("settings %q: root is required", path)
	}

	return settings, doc.Users, nil
}

// DefaultSettingsFileContent is written by cmd/ftpd on first run when no
// settings file exists yet.
func DefaultSettingsFileContent() []byte {
	return []byte(`# ftpd configuration file.

listen_addr = "0.0.0.0:2121"
root = "./data"
banner = "Welcome to ftpd"
max_sessions = 50
idle_timeout_seconds = 60
connection_timeout_seconds = 30

# [passive_port_range]
# start = 21000
# end = 21100

[[users]]
user = "ftp"
pass = "ftp"
`)
}
