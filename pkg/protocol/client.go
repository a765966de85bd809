package protocol

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/config"
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/pad"
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/storage"
)

// RemoteError is a non-OK status returned by the device.
type RemoteError struct {
	Cmd    uint8
	Status uint8
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("command 0x%02x: %s", e.Cmd, StatusText(e.Status))
}

// StatusText returns a short name for a status code.
func StatusText(status uint8) string {
	switch status {
	case StatusOK:
		return "ok"
	case StatusError:
		return "error"
	case StatusInvalidCmd:
		return "invalid command"
	case StatusInvalidData:
		return "invalid data"
	case StatusNotFound:
		return "not found"
	case StatusNoSpace:
		return "no space"
	case StatusVersionMismatch:
		return "version mismatch"
	case StatusCRCError:
		return "crc error"
	}
	return fmt.Sprintf("status 0x%02x", status)
}

// Version is the decoded CmdGetVersion payload.
type Version struct {
	Major, Minor  uint8
	RecordVersion uint16
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d (record v%d)", v.Major, v.Minor, v.RecordVersion)
}

// SessionInfo is the decoded CmdGetSession payload.
type SessionInfo struct {
	config.Session
	Cycles      uint32
	InitRetries uint16
}

// Client talks to the device from the host side of the serial link.
type Client struct {
	rw io.ReadWriter
}

// NewClient wraps an open serial port.
func NewClient(rw io.ReadWriter) *Client {
	return &Client{rw: rw}
}

// Call sends one command and waits for its response. Non-OK statuses are
// returned as *RemoteError.
func (c *Client) Call(cmd uint8, payload []byte) (*Response, error) {
	if err := WriteFrame(c.rw, &Frame{Cmd: cmd, Payload: payload}); err != nil {
		return nil, fmt.Errorf("write command 0x%02x: %w", cmd, err)
	}

	resp, err := ReadResponse(c.rw)
	if err != nil {
		return nil, fmt.Errorf("read response to 0x%02x: %w", cmd, err)
	}
	if resp.Status != StatusOK {
		return resp, &RemoteError{Cmd: cmd, Status: resp.Status}
	}
	return resp, nil
}

// call is Call for fixed-size responses.
func (c *Client) call(cmd uint8, size int) ([]byte, error) {
	resp, err := c.Call(cmd, nil)
	if err != nil {
		return nil, err
	}
	if len(resp.Payload) < size {
		return nil, fmt.Errorf("command 0x%02x: short payload (%d bytes)", cmd, len(resp.Payload))
	}
	return resp.Payload, nil
}

// Ping sends payload and checks that it comes back unchanged.
func (c *Client) Ping(payload []byte) error {
	resp, err := c.Call(CmdPing, payload)
	if err != nil {
		return err
	}
	if !bytes.Equal(resp.Payload, payload) {
		return fmt.Errorf("ping: echo mismatch")
	}
	return nil
}

// Version returns the firmware and record versions.
func (c *Client) Version() (Version, error) {
	data, err := c.call(CmdGetVersion, VersionPayloadSize)
	if err != nil {
		return Version{}, err
	}
	return Version{
		Major:         data[0],
		Minor:         data[1],
		RecordVersion: binary.LittleEndian.Uint16(data[2:]),
	}, nil
}

// BootRecord returns the persisted boot record.
func (c *Client) BootRecord() (config.BootRecord, error) {
	var rec config.BootRecord
	data, err := c.call(CmdGetBootRecord, config.BootRecordSize)
	if err != nil {
		return rec, err
	}
	return rec, rec.UnmarshalBinary(data)
}

// Session returns what the adapter is running.
func (c *Client) Session() (SessionInfo, error) {
	var info SessionInfo
	data, err := c.call(CmdGetSession, SessionPayloadSize)
	if err != nil {
		return info, err
	}
	if err := info.Session.UnmarshalBinary(data); err != nil {
		return info, err
	}
	info.Cycles = binary.LittleEndian.Uint32(data[config.SessionSize:])
	info.InitRetries = binary.LittleEndian.Uint16(data[config.SessionSize+4:])
	return info, nil
}

// State returns the current canonical state.
func (c *Client) State() (pad.State, error) {
	var s pad.State
	data, err := c.call(CmdGetState, pad.StateSize)
	if err != nil {
		return s, err
	}
	return s, s.UnmarshalBinary(data)
}

// Report returns the last report the adapter sent to the USB host.
func (c *Client) Report() ([]byte, error) {
	resp, err := c.Call(CmdGetReport, nil)
	if err != nil {
		return nil, err
	}
	return resp.Payload, nil
}

// History returns the per-family boot counters.
func (c *Client) History() ([pad.NumFamilies]uint32, error) {
	var history [pad.NumFamilies]uint32
	data, err := c.call(CmdGetHistory, HistoryPayloadSize)
	if err != nil {
		return history, err
	}
	for i := range history {
		history[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	return history, nil
}

// Stats returns flash usage.
func (c *Client) Stats() (storage.Stats, error) {
	var stats storage.Stats
	data, err := c.call(CmdGetStorageStats, StatsPayloadSize)
	if err != nil {
		return stats, err
	}
	stats.TotalSpace = int64(binary.LittleEndian.Uint32(data[0:]))
	stats.UsedSpace = int64(binary.LittleEndian.Uint32(data[4:]))
	stats.FreeSpace = int64(binary.LittleEndian.Uint32(data[8:]))
	stats.HasBoot = data[12] != 0
	stats.FamilyCount = int(data[13])
	return stats, nil
}

// ResetBootRecord wipes the boot record and family counters.
func (c *Client) ResetBootRecord() error {
	_, err := c.Call(CmdResetBootRecord, nil)
	return err
}
