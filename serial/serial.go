// Package serial runs the diagnostics protocol on the USB CDC port.
package serial

import (
	"errors"
	"io"
	"runtime"

	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/display"
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/protocol"
)

// Port is the subset of machine.Serialer the link needs.
type Port interface {
	ReadByte() (byte, error)
	Buffered() int
	Write(data []byte) (n int, err error)
}

// Monitor mirrors serial traffic, typically onto the debug display.
type Monitor interface {
	ShowIncomingFrame(bytesStr, parsedStr string)
	ShowOutgoingResponse(bytesStr, parsedStr string)
	ShowError(msg string)
}

type Serial struct {
	serial    Port
	handler   *protocol.Handler
	monitor   Monitor
	formatter display.FrameFormatter
}

// NewSerial binds a port to a protocol handler. monitor may be nil.
func NewSerial(serial Port, handler *protocol.Handler, monitor Monitor) Serial {
	return Serial{
		serial:  serial,
		handler: handler,
		monitor: monitor,
	}
}

// Handle serves frames forever. Run it in its own goroutine.
func (s *Serial) Handle() {
	for {
		s.Serve()
	}
}

// Serve reads one frame and answers it. Garbage ahead of a frame is dropped
// one byte at a time; a bad CRC is answered with StatusCRCError.
func (s *Serial) Serve() error {
	frame, err := protocol.ReadFrame(s)
	if err != nil {
		if errors.Is(err, protocol.ErrCRCMismatch) {
			s.respond(&protocol.Response{Status: protocol.StatusCRCError})
		}
		if !errors.Is(err, protocol.ErrInvalidFrame) {
			s.showError(err)
		}
		return err
	}

	if s.monitor != nil {
		s.monitor.ShowIncomingFrame(s.formatter.FormatIncoming(frame))
	}

	return s.respond(s.handler.Handle(frame))
}

func (s *Serial) respond(resp *protocol.Response) error {
	if err := protocol.WriteResponse(s.serial, resp); err != nil {
		s.showError(err)
		return err
	}
	if s.monitor != nil {
		s.monitor.ShowOutgoingResponse(s.formatter.FormatOutgoing(resp))
	}
	return nil
}

func (s *Serial) showError(err error) {
	if s.monitor != nil {
		s.monitor.ShowError(s.formatter.FormatError(err))
	}
}

// Read blocks until at least one byte is buffered, yielding to the pad loop
// while the port is idle.
func (s *Serial) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	for s.serial.Buffered() == 0 {
		runtime.Gosched()
	}

	n := 0
	for n < len(p) && s.serial.Buffered() > 0 {
		b, err := s.serial.ReadByte()
		if err != nil {
			if n > 0 {
				return n, nil
			}
			return 0, err
		}
		p[n] = b
		n++
	}
	return n, nil
}

var _ io.Reader = (*Serial)(nil)
