// Command ftpd runs a sandboxed FTP server rooted at a configured
// directory, with credentials loaded from a TOML settings file.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/goftpd/ftpd"
	"github.com/goftpd/ftpd/auth"
	"github.com/goftpd/ftpd/log"
	"github.com/goftpd/ftpd/log/gokit"
	"github.com/goftpd/ftpd/vfs"
)

func main() {
	var confFile string
	var confOnly bool

	flag.StringVar(&confFile, "conf", "settings.toml", "configuration file")
	flag.BoolVar(&confOnly, "conf-only", false, "only create the default config file and exit")
	flag.Parse()

	logger := gokit.NewStdout()

	if _, err := os.Stat(confFile); os.IsNotExist(err) {
		logger.Info("no config file, creating one", "confFile", confFile)

		if err := os.WriteFile(confFile, ftpd.DefaultSettingsFileContent(), 0o644); err != nil {
			logger.Error("could not create config file", "confFile", confFile, "err", err)
			os.Exit(1)
		}
	}

	if confOnly {
		return
	}

	settings, accounts, err := ftpd.LoadSettings(confFile)
	if err != nil {
		logger.Error("could not load settings", "err", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(settings.Root, 0o755); err != nil {
		logger.Error("could not create sandbox root", "root", settings.Root, "err", err)
		os.Exit(1)
	}

	store := auth.NewStore()
	for _, account := range accounts {
		store.AddUser(account.User, account.Pass)
	}

	resolver, err := vfs.NewOSResolver(settings.Root)
	if err != nil {
		logger.Error("could not initialize sandbox root", "err", err)
		os.Exit(1)
	}

	server := ftpd.NewServer(settings, store, resolver, logger.With("component", "server"))

	done := make(chan struct{})
	go signalHandler(server, logger, done)

	if err := server.ListenAndServe(); err != nil {
		select {
		case <-done:
			// Stop was requested; an error raised during shutdown is not reported.
		default:
			logger.Error("server stopped unexpectedly", "err", err)
			os.Exit(1)
		}
	}
}

func signalHandler(server *ftpd.Server, logger log.Logger, done chan struct{}) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(ch)

	<-ch

	logger.Info("shutting down")
	close(done)

	if err := server.Stop(); err != nil {
		logger.Info("stop error", "err", err)
	}
}
