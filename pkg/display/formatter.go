package display

import (
	"fmt"
	"strings"

	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/config"
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/pad"
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/protocol"
)

// maxPayloadBytes is how many payload bytes fit on a display row.
const maxPayloadBytes = 4

// FrameFormatter formats protocol frames for display on the SSD1306.
// It creates compact string representations suitable for 16-character wide display rows.
type FrameFormatter struct{}

// NewFrameFormatter creates a new frame formatter.
func NewFrameFormatter() *FrameFormatter {
	return &FrameFormatter{}
}

// FormatIncoming formats an incoming request frame for display.
// Returns bytes string and parsed string.
func (f *FrameFormatter) FormatIncoming(frame *protocol.Frame) (bytesStr, parsedStr string) {
	bytesStr = f.formatBytes(frame.Cmd, frame.Payload)
	parsedStr = fmt.Sprintf("%s[%d]", f.getCommandName(frame.Cmd), len(frame.Payload))
	return bytesStr, parsedStr
}

// FormatOutgoing formats an outgoing response frame for display.
// Returns bytes string and parsed string.
func (f *FrameFormatter) FormatOutgoing(resp *protocol.Response) (bytesStr, parsedStr string) {
	bytesStr = f.formatBytes(resp.Status, resp.Payload)
	parsedStr = fmt.Sprintf("%s[%d]", f.getStatusName(resp.Status), len(resp.Payload))
	return bytesStr, parsedStr
}

// FormatError formats an error for display.
func (f *FrameFormatter) FormatError(err error) string {
	msg := err.Error()
	if len(msg) > 12 {
		msg = msg[:12]
	}
	return msg
}

// FormatSession formats the session header: family on the first row, boot
// count and presentation on the second.
func (f *FrameFormatter) FormatSession(family pad.Family, rec config.BootRecord) (title, detail string) {
	title = "RP " + family.String()
	detail = fmt.Sprintf("#%d %s", rec.BootCount, rec.Presentation)
	return title, detail
}

// FormatRetries formats the failed init counter.
func (f *FrameFormatter) FormatRetries(n int) string {
	return fmt.Sprintf("init retry %d", n)
}

// formatBytes formats the raw bytes of a frame as hex.
// Format: AA CODE LEN_LO LEN_HI [PAYLOAD] CRC_LO CRC_HI
func (f *FrameFormatter) formatBytes(code uint8, payload []byte) string {
	var b strings.Builder

	payloadLen := uint16(len(payload))

	fmt.Fprintf(&b, "%02X ", protocol.SyncByte)
	fmt.Fprintf(&b, "%02X ", code)
	fmt.Fprintf(&b, "%02X%02X ", uint8(payloadLen), uint8(payloadLen>>8))

	for i := 0; i < len(payload) && i < maxPayloadBytes; i++ {
		fmt.Fprintf(&b, "%02X", payload[i])
	}
	if len(payload) > maxPayloadBytes {
		b.WriteString("..")
	} else if len(payload) > 0 {
		b.WriteString(" ")
	}

	// CRC placeholder
	b.WriteString("..")

	return b.String()
}

// getCommandName returns a short name for a command code.
func (f *FrameFormatter) getCommandName(cmd uint8) string {
	switch cmd {
	case protocol.CmdGetBootRecord:
		return "GetBoot"
	case protocol.CmdGetHistory:
		return "GetHist"
	case protocol.CmdGetSession:
		return "GetSess"
	case protocol.CmdGetState:
		return "GetState"
	case protocol.CmdGetReport:
		return "GetRpt"
	case protocol.CmdGetStorageStats:
		return "GetStor"
	case protocol.CmdPing:
		return "Ping"
	case protocol.CmdResetBootRecord:
		return "RstBoot"
	case protocol.CmdGetVersion:
		return "GetVer"
	default:
		return fmt.Sprintf("Cmd%02X", cmd)
	}
}

// getStatusName returns a short name for a status code.
func (f *FrameFormatter) getStatusName(status uint8) string {
	switch status {
	case protocol.StatusOK:
		return "OK"
	case protocol.StatusError:
		return "Err"
	case protocol.StatusInvalidCmd:
		return "InvCmd"
	case protocol.StatusInvalidData:
		return "InvData"
	case protocol.StatusNotFound:
		return "NotFnd"
	case protocol.StatusNoSpace:
		return "NoSpace"
	case protocol.StatusVersionMismatch:
		return "VerMis"
	case protocol.StatusCRCError:
		return "CRC"
	default:
		return fmt.Sprintf("Sts%02X", status)
	}
}

// truncate limits a string to maxLen characters, adding ".." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 2 {
		return s[:maxLen]
	}
	return s[:maxLen-2] + ".."
}
