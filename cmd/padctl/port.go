package main

import (
	"context"
	"encoding/hex"
	"errors"
	"log/slog"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/tuffrabit/tinygo-retropad-rp2040/internal/log"
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/protocol"
)

// port is the adapter's CDC tty in raw mode. Reads time out after timeout
// so a silent adapter does not hang the tool.
type port struct {
	f       *os.File
	timeout time.Duration
	logger  *slog.Logger
	saved   *term.State
}

func openPort(path string, timeout time.Duration, logger *slog.Logger) (*port, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	p := &port{f: f, timeout: timeout, logger: logger}

	// Control keeps the descriptor non-blocking, Fd would not.
	rc, err := f.SyscallConn()
	if err != nil {
		f.Close()
		return nil, err
	}
	var rawErr error
	rc.Control(func(fd uintptr) {
		if term.IsTerminal(int(fd)) {
			p.saved, rawErr = term.MakeRaw(int(fd))
		}
	})
	if rawErr != nil {
		logger.Warn("could not switch port to raw mode", "port", path, "error", rawErr)
	}
	return p, nil
}

func (p *port) Read(b []byte) (int, error) {
	if p.timeout > 0 {
		_ = p.f.SetReadDeadline(time.Now().Add(p.timeout))
	}
	n, err := p.f.Read(b)
	if n > 0 {
		p.logger.Log(context.Background(), log.LevelTrace, "rx", "bytes", hex.EncodeToString(b[:n]))
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return n, protocol.ErrTimeout
	}
	return n, err
}

func (p *port) Write(b []byte) (int, error) {
	p.logger.Log(context.Background(), log.LevelTrace, "tx", "bytes", hex.EncodeToString(b))
	return p.f.Write(b)
}

// Close restores the terminal settings and closes the port.
func (p *port) Close() error {
	if p.saved != nil {
		if rc, err := p.f.SyscallConn(); err == nil {
			rc.Control(func(fd uintptr) {
				_ = term.Restore(int(fd), p.saved)
			})
		}
	}
	return p.f.Close()
}
