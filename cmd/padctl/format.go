package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/config"
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/pad"
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/protocol"
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/report"
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/storage"
)

var directionNames = [...]string{
	pad.DirUp:        "up",
	pad.DirUpRight:   "up-right",
	pad.DirRight:     "right",
	pad.DirDownRight: "down-right",
	pad.DirDown:      "down",
	pad.DirDownLeft:  "down-left",
	pad.DirLeft:      "left",
	pad.DirUpLeft:    "up-left",
	pad.DirCenter:    "center",
}

func directionName(d uint8) string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return fmt.Sprintf("0x%02x", d)
}

func pressedButtons(s *pad.State) string {
	var names []string
	for b := pad.Button(0); b < pad.NumButtons; b++ {
		if s.IsPressed(b) {
			names = append(names, b.String())
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ",")
}

func formatState(s pad.State) string {
	return fmt.Sprintf("buttons=%s dpad=%s lx=0x%02x ly=0x%02x rx=0x%02x ry=0x%02x",
		pressedButtons(&s), directionName(s.Direction), s.LeftX, s.LeftY, s.RightX, s.RightY)
}

func familyName(f uint8) string {
	return pad.Family(f).String()
}

func formatBootRecord(rec config.BootRecord) string {
	return fmt.Sprintf("boot #%d family=%s code=0b%04b presentation=%s init-retries=%d record-version=%d",
		rec.BootCount, familyName(rec.Family), rec.DetectCode, rec.Presentation, rec.InitRetries, rec.Version)
}

func formatSession(info protocol.SessionInfo) string {
	return fmt.Sprintf("family=%s code=0b%04b presentation=%s cycles=%d init-retries=%d",
		familyName(info.Family), info.DetectCode, info.Presentation, info.Cycles, info.InitRetries)
}

// formatReport decodes a report in the given presentation. Undecodable
// reports are shown as hex only.
func formatReport(p config.Presentation, b []byte) string {
	raw := hex.EncodeToString(b)
	switch p {
	case config.PresentationJoystick:
		s, err := report.DecodeJoystick(b)
		if err != nil {
			return raw
		}
		return raw + "\n" + formatState(s)
	case config.PresentationXbox:
		in, err := report.DecodeXbox(b)
		if err != nil {
			return raw
		}
		return fmt.Sprintf("%s\ndigital=0b%08b pressure=%v lx=%d ly=%d rx=%d ry=%d",
			raw, in.Digital, in.Pressure, in.LX, in.LY, in.RX, in.RY)
	}
	return raw
}

func formatHistory(history [pad.NumFamilies]uint32) string {
	var b strings.Builder
	for f, n := range history {
		fmt.Fprintf(&b, "%-9s %d\n", pad.Family(f).String(), n)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func formatStats(s storage.Stats) string {
	hasBoot := "no"
	if s.HasBoot {
		hasBoot = "yes"
	}
	return fmt.Sprintf("total=%d used=%d free=%d boot-record=%s families=%d",
		s.TotalSpace, s.UsedSpace, s.FreeSpace, hasBoot, s.FamilyCount)
}
