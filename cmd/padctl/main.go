// Command padctl talks to the adapter's diagnostics port: it shows what the
// adapter detected, what it reads from the pad and what it sends to the USB
// host.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"

	"github.com/tuffrabit/tinygo-retropad-rp2040/internal/log"
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/protocol"
)

type Log struct {
	Level string `help:"Log level: trace, debug, info, warn, error" default:"info" env:"PADCTL_LOG_LEVEL"`
	File  string `help:"Log file path (default: none; logs only to console)" env:"PADCTL_LOG_FILE"`
}

// CLI is the root command structure for Kong CLI parsing.
type CLI struct {
	Log `embed:"" prefix:"log."`

	Config  string        `help:"TOML config file" env:"PADCTL_CONFIG" placeholder:"PATH"`
	Port    string        `help:"Serial port of the adapter" default:"/dev/ttyACM0" env:"PADCTL_PORT"`
	Timeout time.Duration `help:"Response timeout" default:"2s" env:"PADCTL_TIMEOUT"`

	Ping      PingCmd      `cmd:"" help:"Check that the adapter answers"`
	Version   VersionCmd   `cmd:"" help:"Show the firmware version"`
	Boot      BootCmd      `cmd:"" help:"Show the boot record"`
	Session   SessionCmd   `cmd:"" help:"Show the running session"`
	State     StateCmd     `cmd:"" help:"Show the canonical pad state"`
	Report    ReportCmd    `cmd:"" help:"Show the last report sent to the USB host"`
	History   HistoryCmd   `cmd:"" help:"Show how often each family was detected"`
	Stats     StatsCmd     `cmd:"" help:"Show flash usage"`
	ResetBoot ResetBootCmd `cmd:"" help:"Wipe the boot record and family counters"`
	Watch     WatchCmd     `cmd:"" help:"Poll the pad state and print changes"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("padctl"),
		kong.Description("Diagnostics for the retro pad USB adapter."),
		kong.UsageOnError(),
		// flags/env override config values
		kong.Configuration(kongtoml.Loader, configPaths(findUserConfig(os.Args[1:]))...),
	)

	logger, closeFiles, err := log.SetupLogger(cli.Log.Level, cli.Log.File)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to setup logger:", err)
		os.Exit(2)
	}
	defer func() {
		for _, c := range closeFiles {
			_ = c.Close()
		}
	}()

	p, err := openPort(cli.Port, cli.Timeout, logger)
	if err != nil {
		logger.Error("failed to open port", "port", cli.Port, "error", err)
		os.Exit(1)
	}
	defer p.Close()
	logger.Debug("port open", "port", cli.Port, "timeout", cli.Timeout)

	ctx.Bind(logger)
	ctx.Bind(protocol.NewClient(p))
	ctx.BindTo(os.Stdout, (*io.Writer)(nil))

	err = ctx.Run()
	ctx.FatalIfErrorf(err)
}

func findUserConfig(args []string) string {
	for i, a := range args {
		if strings.HasPrefix(a, "--config=") {
			return a[len("--config="):]
		}
		if a == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return os.Getenv("PADCTL_CONFIG")
}

// configPaths lists the TOML files to load, lowest priority first. An
// explicit path replaces the defaults. Missing files are skipped.
func configPaths(user string) []string {
	if user != "" {
		return []string{user}
	}
	var paths []string
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "padctl", "padctl.toml"))
	}
	return append(paths, "padctl.toml")
}
