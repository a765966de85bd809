// Package protocol implements the binary diagnostics protocol spoken over the
// USB CDC serial port. The pad report never travels here; this link only
// exposes what the adapter detected and what it last sent.
//
// Frame format:
//
//	[SYNC:1][CMD:1][LEN:2][PAYLOAD:LEN][CRC:2]
//	- SYNC: 0xAA (frame start marker)
//	- CMD: Command byte (status byte in responses)
//	- LEN: Payload length (uint16, little-endian)
//	- PAYLOAD: Variable length data
//	- CRC: CRC16-CCITT of [CMD][LEN][PAYLOAD]
//
// Response format is identical.
package protocol

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/config"
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/pad"
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/storage"
)

const (
	SyncByte = 0xAA

	// MaxPayload bounds a frame's payload.
	MaxPayload = 4096

	// Command codes (PC → Device)
	CmdGetBootRecord   = 0x01
	CmdGetHistory      = 0x02
	CmdGetSession      = 0x03
	CmdGetState        = 0x05
	CmdGetReport       = 0x06
	CmdGetStorageStats = 0x07
	CmdPing            = 0x08
	CmdResetBootRecord = 0x09
	CmdGetVersion      = 0x10

	// Response status codes (Device → PC)
	StatusOK              = 0x00
	StatusError           = 0x01
	StatusInvalidCmd      = 0x02
	StatusInvalidData     = 0x03
	StatusNotFound        = 0x04
	StatusNoSpace         = 0x05
	StatusVersionMismatch = 0x06
	StatusCRCError        = 0x07
)

// Firmware version reported by CmdGetVersion.
const (
	FirmwareMajor = 0
	FirmwareMinor = 2
)

// Payload sizes of the fixed-size responses.
const (
	SessionPayloadSize = config.SessionSize + 4 + 2
	HistoryPayloadSize = pad.NumFamilies * 4
	StatsPayloadSize   = 14
	VersionPayloadSize = 4
)

var (
	ErrInvalidFrame = errors.New("invalid frame")
	ErrCRCMismatch  = errors.New("CRC mismatch")
	ErrTimeout      = errors.New("timeout")
)

// Live is the running adapter as seen by the diagnostics link.
type Live interface {
	State() pad.State
	LastReport() []byte
	Cycles() uint32
	Retries() int
}

// Handler processes protocol commands.
type Handler struct {
	storage *storage.Manager
	live    Live
	session config.Session
}

// NewHandler creates a new protocol handler. sm may be nil when flash could
// not be mounted; storage backed commands then answer StatusError.
func NewHandler(sm *storage.Manager, live Live, session config.Session) *Handler {
	return &Handler{
		storage: sm,
		live:    live,
		session: session,
	}
}

// Frame represents a protocol frame.
type Frame struct {
	Cmd     uint8
	Payload []byte
}

// Response represents a protocol response.
type Response struct {
	Status  uint8
	Payload []byte
}

// ReadFrame reads and validates a frame from the reader.
func ReadFrame(r io.Reader) (*Frame, error) {
	sync := make([]byte, 1)
	if _, err := io.ReadFull(r, sync); err != nil {
		return nil, err
	}
	if sync[0] != SyncByte {
		return nil, ErrInvalidFrame
	}

	cmd, payload, err := readBody(r)
	if err != nil {
		return nil, err
	}

	return &Frame{
		Cmd:     cmd,
		Payload: payload,
	}, nil
}

// ReadResponse reads a response frame, discarding any bytes ahead of the
// sync byte.
func ReadResponse(r io.Reader) (*Response, error) {
	sync := make([]byte, 1)
	for {
		if _, err := io.ReadFull(r, sync); err != nil {
			return nil, err
		}
		if sync[0] == SyncByte {
			break
		}
	}

	status, payload, err := readBody(r)
	if err != nil {
		return nil, err
	}

	return &Response{
		Status:  status,
		Payload: payload,
	}, nil
}

// readBody reads everything after the sync byte and checks the CRC.
func readBody(r io.Reader) (uint8, []byte, error) {
	header := make([]byte, 3)
	if _, err := io.ReadFull(r, header); err != nil {
		return 0, nil, err
	}

	length := binary.LittleEndian.Uint16(header[1:])
	if length > MaxPayload {
		return 0, nil, ErrInvalidFrame
	}

	var payload []byte
	if length > 0 {
		payload = make([]byte, length)
		if _, err := io.ReadFull(r, payload); err != nil {
			return 0, nil, err
		}
	}

	crcBytes := make([]byte, 2)
	if _, err := io.ReadFull(r, crcBytes); err != nil {
		return 0, nil, err
	}

	if binary.LittleEndian.Uint16(crcBytes) != calcCRC(append(header, payload...)) {
		return 0, nil, ErrCRCMismatch
	}

	return header[0], payload, nil
}

// WriteResponse writes a response frame to the writer.
func WriteResponse(w io.Writer, resp *Response) error {
	_, err := w.Write(encode(resp.Status, resp.Payload))
	return err
}

// WriteFrame writes a request frame.
func WriteFrame(w io.Writer, frame *Frame) error {
	if len(frame.Payload) > MaxPayload {
		return ErrInvalidFrame
	}
	_, err := w.Write(encode(frame.Cmd, frame.Payload))
	return err
}

func encode(code uint8, payload []byte) []byte {
	payloadLen := uint16(len(payload))
	buf := make([]byte, 0, 1+1+2+int(payloadLen)+2) // sync + code + len + payload + crc

	buf = append(buf, SyncByte, code)
	buf = binary.LittleEndian.AppendUint16(buf, payloadLen)
	buf = append(buf, payload...)

	// CRC skips the sync byte
	return binary.LittleEndian.AppendUint16(buf, calcCRC(buf[1:]))
}

// Handle processes a command frame and returns a response.
func (h *Handler) Handle(frame *Frame) *Response {
	switch frame.Cmd {
	case CmdPing:
		return h.handlePing(frame.Payload)
	case CmdGetBootRecord:
		return h.handleGetBootRecord()
	case CmdGetHistory:
		return h.handleGetHistory()
	case CmdGetSession:
		return h.handleGetSession()
	case CmdGetState:
		return h.handleGetState()
	case CmdGetReport:
		return h.handleGetReport()
	case CmdGetStorageStats:
		return h.handleGetStorageStats()
	case CmdResetBootRecord:
		return h.handleResetBootRecord()
	case CmdGetVersion:
		return h.handleGetVersion()
	default:
		return &Response{Status: StatusInvalidCmd}
	}
}

// handlePing responds with the same payload (echo).
func (h *Handler) handlePing(payload []byte) *Response {
	return &Response{
		Status:  StatusOK,
		Payload: payload,
	}
}

// handleGetBootRecord returns the boot record written at startup.
// Response: [BootRecord:12]
func (h *Handler) handleGetBootRecord() *Response {
	if h.storage == nil {
		return &Response{Status: StatusError}
	}

	var rec config.BootRecord
	if err := h.storage.LoadBoot(&rec); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return &Response{Status: StatusNotFound}
		}
		return &Response{Status: StatusError}
	}

	data, err := rec.MarshalBinary()
	if err != nil {
		return &Response{Status: StatusError}
	}

	return &Response{
		Status:  StatusOK,
		Payload: data,
	}
}

// handleGetHistory returns how often each family was detected at boot.
// Response: [Count:4] per family, in family order
func (h *Handler) handleGetHistory() *Response {
	if h.storage == nil {
		return &Response{Status: StatusError}
	}

	history, err := h.storage.History()
	if err != nil {
		return &Response{Status: StatusError}
	}

	payload := make([]byte, 0, HistoryPayloadSize)
	for _, n := range history {
		payload = binary.LittleEndian.AppendUint32(payload, n)
	}

	return &Response{
		Status:  StatusOK,
		Payload: payload,
	}
}

// handleGetSession describes the running adapter.
// Response: [Session:3][Cycles:4][InitRetries:2]
func (h *Handler) handleGetSession() *Response {
	data, err := h.session.MarshalBinary()
	if err != nil {
		return &Response{Status: StatusError}
	}

	var cycles uint32
	var retries int
	if h.live != nil {
		cycles = h.live.Cycles()
		retries = h.live.Retries()
	}
	if retries > 0xFFFF {
		retries = 0xFFFF
	}

	payload := make([]byte, 0, SessionPayloadSize)
	payload = append(payload, data...)
	payload = binary.LittleEndian.AppendUint32(payload, cycles)
	payload = binary.LittleEndian.AppendUint16(payload, uint16(retries))

	return &Response{
		Status:  StatusOK,
		Payload: payload,
	}
}

// handleGetState returns the current canonical state.
// Response: [State:9]
func (h *Handler) handleGetState() *Response {
	s := pad.Neutral()
	if h.live != nil {
		s = h.live.State()
	}

	data, err := s.MarshalBinary()
	if err != nil {
		return &Response{Status: StatusError}
	}

	return &Response{
		Status:  StatusOK,
		Payload: data,
	}
}

// handleGetReport returns the last report sent to the USB host.
func (h *Handler) handleGetReport() *Response {
	if h.live == nil {
		return &Response{Status: StatusNotFound}
	}

	last := h.live.LastReport()
	if len(last) == 0 {
		return &Response{Status: StatusNotFound}
	}

	return &Response{
		Status:  StatusOK,
		Payload: last,
	}
}

// handleGetStorageStats returns storage statistics.
// Response: [Total:4][Used:4][Free:4][HasBoot:1][FamilyCount:1]
func (h *Handler) handleGetStorageStats() *Response {
	if h.storage == nil {
		return &Response{Status: StatusError}
	}

	stats, err := h.storage.GetStats()
	if err != nil {
		return &Response{Status: StatusError}
	}

	payload := make([]byte, StatsPayloadSize)
	binary.LittleEndian.PutUint32(payload[0:], uint32(stats.TotalSpace))
	binary.LittleEndian.PutUint32(payload[4:], uint32(stats.UsedSpace))
	binary.LittleEndian.PutUint32(payload[8:], uint32(stats.FreeSpace))
	if stats.HasBoot {
		payload[12] = 1
	}
	payload[13] = uint8(stats.FamilyCount)

	return &Response{
		Status:  StatusOK,
		Payload: payload,
	}
}

// handleResetBootRecord wipes the boot record and family counters.
func (h *Handler) handleResetBootRecord() *Response {
	if h.storage == nil {
		return &Response{Status: StatusError}
	}
	if err := h.storage.Wipe(); err != nil {
		return &Response{Status: StatusError}
	}
	return &Response{Status: StatusOK}
}

// handleGetVersion returns firmware and record version info.
// Response: [FirmwareVersionMajor:1][FirmwareVersionMinor:1][RecordVersion:2]
func (h *Handler) handleGetVersion() *Response {
	payload := make([]byte, VersionPayloadSize)
	payload[0] = FirmwareMajor
	payload[1] = FirmwareMinor
	binary.LittleEndian.PutUint16(payload[2:], config.CurrentVersion)

	return &Response{
		Status:  StatusOK,
		Payload: payload,
	}
}

// calcCRC calculates CRC16-CCITT.
// Polynomial: 0x1021, Initial: 0xFFFF
func calcCRC(data []byte) uint16 {
	var crc uint16 = 0xFFFF

	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = (crc << 1) ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}

	return crc
}
