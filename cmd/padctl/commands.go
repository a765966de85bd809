package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/pad"
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/protocol"
)

type PingCmd struct {
	Payload string `arg:"" optional:"" default:"retropad" help:"Bytes to echo"`
}

func (c *PingCmd) Run(client *protocol.Client, out io.Writer) error {
	start := time.Now()
	if err := client.Ping([]byte(c.Payload)); err != nil {
		return err
	}
	fmt.Fprintf(out, "pong in %s\n", time.Since(start).Round(time.Microsecond))
	return nil
}

type VersionCmd struct{}

func (c *VersionCmd) Run(client *protocol.Client, out io.Writer) error {
	v, err := client.Version()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "firmware %s\n", v)
	return nil
}

type BootCmd struct{}

func (c *BootCmd) Run(client *protocol.Client, out io.Writer) error {
	rec, err := client.BootRecord()
	if err != nil {
		return err
	}
	fmt.Fprintln(out, formatBootRecord(rec))
	return nil
}

type SessionCmd struct{}

func (c *SessionCmd) Run(client *protocol.Client, out io.Writer) error {
	info, err := client.Session()
	if err != nil {
		return err
	}
	fmt.Fprintln(out, formatSession(info))
	return nil
}

type StateCmd struct{}

func (c *StateCmd) Run(client *protocol.Client, out io.Writer) error {
	s, err := client.State()
	if err != nil {
		return err
	}
	fmt.Fprintln(out, formatState(s))
	return nil
}

type ReportCmd struct{}

func (c *ReportCmd) Run(client *protocol.Client, out io.Writer) error {
	info, err := client.Session()
	if err != nil {
		return err
	}
	b, err := client.Report()
	if err != nil {
		return err
	}
	fmt.Fprintln(out, formatReport(info.Presentation, b))
	return nil
}

type HistoryCmd struct{}

func (c *HistoryCmd) Run(client *protocol.Client, out io.Writer) error {
	history, err := client.History()
	if err != nil {
		return err
	}
	fmt.Fprintln(out, formatHistory(history))
	return nil
}

type StatsCmd struct{}

func (c *StatsCmd) Run(client *protocol.Client, out io.Writer) error {
	stats, err := client.Stats()
	if err != nil {
		return err
	}
	fmt.Fprintln(out, formatStats(stats))
	return nil
}

type ResetBootCmd struct {
	Yes bool `short:"y" help:"Do not ask for confirmation"`
}

func (c *ResetBootCmd) Run(client *protocol.Client, out io.Writer, logger *slog.Logger) error {
	if !c.Yes {
		return errors.New("refusing to wipe the boot record without --yes")
	}
	if err := client.ResetBootRecord(); err != nil {
		return err
	}
	logger.Info("boot record wiped")
	fmt.Fprintln(out, "boot record wiped")
	return nil
}

type WatchCmd struct {
	Interval time.Duration `help:"Poll interval" default:"50ms"`
	Count    int           `help:"Stop after this many changes (0: until interrupted)" default:"0"`
}

func (c *WatchCmd) Run(client *protocol.Client, out io.Writer, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return c.watch(ctx, client, out, logger)
}

// watch prints the state on every change until ctx ends or Count changes
// were printed.
func (c *WatchCmd) watch(ctx context.Context, client *protocol.Client, out io.Writer, logger *slog.Logger) error {
	var last pad.State
	changes := 0
	first := true

	ticker := time.NewTicker(c.Interval)
	defer ticker.Stop()

	for {
		s, err := client.State()
		if err != nil {
			return err
		}
		if first || s != last {
			fmt.Fprintf(out, "%s %s\n", time.Now().Format("15:04:05.000"), formatState(s))
			last = s
			first = false
			changes++
			if c.Count > 0 && changes >= c.Count {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			logger.Debug("watch stopped", "changes", changes)
			return nil
		case <-ticker.C:
		}
	}
}
