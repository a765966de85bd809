//go:build tinygo && !nodebug

// Package display provides SSD1306 OLED display support for debug output.
// The yellow rows (0-1) carry the session: detected family, boot count and
// presentation. The blue rows show init retries, then serial activity with
// incoming frames on rows 3-4 and outgoing responses on rows 5-6.
//
// To build without display support (saves ~1KB RAM and flash), use:
//
//	tinygo build -tags=nodebug -target=pico -o firmware.uf2 .
package display

import (
	"image/color"
	"machine"
	"time"

	"tinygo.org/x/drivers/ssd1306"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"

	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/config"
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/pad"
)

const (
	// I2C configuration
	i2cAddress = 0x3C
	sclPin     = machine.GPIO1
	sdaPin     = machine.GPIO0

	// Display dimensions
	screenWidth  = 128
	screenHeight = 64
	charWidth    = 8
	rowHeight    = 8
	cols         = screenWidth / charWidth  // 16 columns
	rows         = screenHeight / rowHeight // 8 rows

	// Row assignments
	rowTitle     = 0 // Yellow - family
	rowDetail    = 1 // Yellow - boot count, presentation
	rowRetries   = 2 // Blue - failed bus inits
	rowInBytes   = 3 // Blue - incoming raw bytes
	rowInParsed  = 4 // Blue - incoming parsed
	rowOutBytes  = 5 // Blue - outgoing raw bytes
	rowOutParsed = 6 // Blue - outgoing parsed
)

// Colors for monochrome display
var (
	black = color.RGBA{0, 0, 0, 0}
	white = color.RGBA{255, 255, 255, 255}
)

// Manager handles the SSD1306 display for debug output. A nil Manager
// ignores every call.
type Manager struct {
	device    *ssd1306.Device
	formatter FrameFormatter
}

// NewManager creates and initializes the display manager.
// Returns nil if display initialization fails (non-fatal for debug).
func NewManager() *Manager {
	i2c := machine.I2C0
	if err := i2c.Configure(machine.I2CConfig{
		Frequency: 400000, // 400kHz fast mode
		SCL:       sclPin,
		SDA:       sdaPin,
	}); err != nil {
		return nil
	}

	// Small delay for bus stabilization
	time.Sleep(10 * time.Millisecond)

	dev := ssd1306.NewI2C(i2c)
	dev.Configure(ssd1306.Config{
		Address: i2cAddress,
		Width:   screenWidth,
		Height:  screenHeight,
	})
	dev.ClearDisplay()

	mgr := &Manager{device: dev}
	mgr.drawString(rowTitle, "RetroPad")
	mgr.drawString(rowDetail, "detecting...")
	mgr.refresh()

	return mgr
}

// ShowSession displays the detected family and boot record.
func (m *Manager) ShowSession(family pad.Family, rec config.BootRecord) {
	if m == nil {
		return
	}
	title, detail := m.formatter.FormatSession(family, rec)
	m.clearRow(rowTitle)
	m.clearRow(rowDetail)
	m.drawString(rowTitle, truncate(title, cols))
	m.drawString(rowDetail, truncate(detail, cols))
	m.refresh()
}

// ShowRetries displays how many bus inits have failed so far.
func (m *Manager) ShowRetries(n int) {
	if m == nil {
		return
	}
	m.clearRow(rowRetries)
	m.drawString(rowRetries, truncate(m.formatter.FormatRetries(n), cols))
	m.refresh()
}

// ShowIncomingFrame displays an incoming serial frame.
// bytesRow shows the raw hex bytes, parsedRow shows human-readable info.
func (m *Manager) ShowIncomingFrame(bytesStr, parsedStr string) {
	if m == nil {
		return
	}
	m.clearRow(rowInBytes)
	m.clearRow(rowInParsed)
	m.drawString(rowInBytes, truncate("I:"+bytesStr, cols-1))
	m.drawString(rowInParsed, truncate(" "+parsedStr, cols-1))
	m.refresh()
}

// ShowOutgoingResponse displays an outgoing serial response.
func (m *Manager) ShowOutgoingResponse(bytesStr, parsedStr string) {
	if m == nil {
		return
	}
	m.clearRow(rowOutBytes)
	m.clearRow(rowOutParsed)
	m.drawString(rowOutBytes, truncate("O:"+bytesStr, cols-1))
	m.drawString(rowOutParsed, truncate(" "+parsedStr, cols-1))
	m.refresh()
}

// ShowError displays an error message on the outgoing rows.
func (m *Manager) ShowError(msg string) {
	if m == nil {
		return
	}
	m.clearRow(rowOutBytes)
	m.clearRow(rowOutParsed)
	m.drawString(rowOutBytes, "ERR:")
	m.drawString(rowOutParsed, truncate(msg, cols-1))
	m.refresh()
}

// clearRow blanks all 8 pixel lines of a row.
func (m *Manager) clearRow(row int) {
	if row < 0 || row >= rows {
		return
	}
	yStart := int16(row * rowHeight)
	for y := yStart; y < yStart+rowHeight; y++ {
		for x := int16(0); x < screenWidth; x++ {
			m.device.SetPixel(x, y, black)
		}
	}
}

// drawString draws s at the start of a row. tinyfont positions text by its
// baseline, one pixel above the bottom of the row.
func (m *Manager) drawString(row int, s string) {
	if row < 0 || row >= rows {
		return
	}
	baseline := int16(row*rowHeight + rowHeight - 1)
	tinyfont.WriteLine(m.device, &proggy.TinySZ8pt7b, 0, baseline, s, white)
}

// refresh updates the display with current buffer content.
func (m *Manager) refresh() {
	m.device.Display()
}
