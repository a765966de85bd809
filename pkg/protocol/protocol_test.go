package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/config"
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/pad"
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/storage"

	"tinygo.org/x/tinyfs"
)

type fakeLive struct {
	state   pad.State
	report  []byte
	cycles  uint32
	retries int
}

func (f *fakeLive) State() pad.State   { return f.state }
func (f *fakeLive) LastReport() []byte { return f.report }
func (f *fakeLive) Cycles() uint32     { return f.cycles }
func (f *fakeLive) Retries() int       { return f.retries }

var testSession = config.Session{
	Family:       uint8(pad.SNES),
	Presentation: config.PresentationXbox,
	DetectCode:   0b0101,
}

func newTestHandler(t *testing.T) (*Handler, *storage.Manager, *fakeLive) {
	blockDev := tinyfs.NewMemoryDevice(256, 4096, 64)
	mgr, err := storage.New(blockDev, true)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	live := &fakeLive{state: pad.Neutral()}
	return NewHandler(mgr, live, testSession), mgr, live
}

func TestFrameEncodingDecoding(t *testing.T) {
	original := &Frame{
		Cmd:     CmdGetBootRecord,
		Payload: []byte{1, 2, 3, 4},
	}

	var buf bytes.Buffer
	if err := WriteFrame(&buf, original); err != nil {
		t.Fatalf("WriteFrame failed: %v", err)
	}

	decoded, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("ReadFrame failed: %v", err)
	}

	if decoded.Cmd != original.Cmd {
		t.Errorf("Cmd: expected 0x%x, got 0x%x", original.Cmd, decoded.Cmd)
	}
	if !bytes.Equal(decoded.Payload, original.Payload) {
		t.Errorf("Payload: expected %v, got %v", original.Payload, decoded.Payload)
	}
}

func TestFrameWireLayout(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, &Frame{Cmd: CmdPing, Payload: []byte{0x42}}); err != nil {
		t.Fatalf("WriteFrame failed: %v", err)
	}

	data := buf.Bytes()
	if len(data) != 7 {
		t.Fatalf("Expected 7 bytes, got %d", len(data))
	}
	if data[0] != SyncByte || data[1] != CmdPing || data[2] != 1 || data[3] != 0 || data[4] != 0x42 {
		t.Errorf("Unexpected header/payload: % x", data)
	}
	if crc := binary.LittleEndian.Uint16(data[5:]); crc != calcCRC(data[1:5]) {
		t.Errorf("CRC: expected 0x%04x, got 0x%04x", calcCRC(data[1:5]), crc)
	}
}

func TestCRCKnownValue(t *testing.T) {
	// CRC-16/CCITT-FALSE check value
	if crc := calcCRC([]byte("123456789")); crc != 0x29B1 {
		t.Errorf("Expected 0x29B1, got 0x%04x", crc)
	}
}

func TestResponseEncodingDecoding(t *testing.T) {
	var buf bytes.Buffer
	resp := &Response{Status: StatusNotFound, Payload: []byte{9, 8}}
	if err := WriteResponse(&buf, resp); err != nil {
		t.Fatalf("WriteResponse failed: %v", err)
	}

	decoded, err := ReadResponse(&buf)
	if err != nil {
		t.Fatalf("ReadResponse failed: %v", err)
	}
	if decoded.Status != StatusNotFound || !bytes.Equal(decoded.Payload, resp.Payload) {
		t.Errorf("Expected %+v, got %+v", resp, decoded)
	}
}

func TestReadResponseResyncs(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0x00, 0x13, 0x37})
	if err := WriteResponse(&buf, &Response{Status: StatusOK}); err != nil {
		t.Fatalf("WriteResponse failed: %v", err)
	}

	decoded, err := ReadResponse(&buf)
	if err != nil {
		t.Fatalf("ReadResponse failed: %v", err)
	}
	if decoded.Status != StatusOK || len(decoded.Payload) != 0 {
		t.Errorf("Unexpected response %+v", decoded)
	}
}

func TestPingCommand(t *testing.T) {
	handler, mgr, _ := newTestHandler(t)
	defer mgr.Close()

	frame := &Frame{
		Cmd:     CmdPing,
		Payload: []byte{0xAA, 0xBB, 0xCC},
	}

	resp := handler.Handle(frame)
	if resp.Status != StatusOK {
		t.Errorf("Expected StatusOK, got 0x%x", resp.Status)
	}
	if !bytes.Equal(resp.Payload, frame.Payload) {
		t.Errorf("Expected echo %v, got %v", frame.Payload, resp.Payload)
	}
}

func TestGetVersionCommand(t *testing.T) {
	handler, mgr, _ := newTestHandler(t)
	defer mgr.Close()

	resp := handler.Handle(&Frame{Cmd: CmdGetVersion})
	if resp.Status != StatusOK {
		t.Fatalf("CmdGetVersion failed: status 0x%x", resp.Status)
	}
	if len(resp.Payload) != VersionPayloadSize {
		t.Fatalf("Expected %d bytes, got %d", VersionPayloadSize, len(resp.Payload))
	}
	if resp.Payload[0] != FirmwareMajor || resp.Payload[1] != FirmwareMinor {
		t.Errorf("Unexpected firmware version %d.%d", resp.Payload[0], resp.Payload[1])
	}
	if v := binary.LittleEndian.Uint16(resp.Payload[2:]); v != config.CurrentVersion {
		t.Errorf("Expected record version %d, got %d", config.CurrentVersion, v)
	}
}

func TestGetBootRecordCommand(t *testing.T) {
	handler, mgr, _ := newTestHandler(t)
	defer mgr.Close()

	resp := handler.Handle(&Frame{Cmd: CmdGetBootRecord})
	if resp.Status != StatusNotFound {
		t.Errorf("Expected StatusNotFound before first boot, got 0x%x", resp.Status)
	}

	if _, err := mgr.RecordBoot(pad.SNES, 0b0101, config.PresentationXbox); err != nil {
		t.Fatalf("RecordBoot failed: %v", err)
	}
	if err := mgr.SetInitRetries(3); err != nil {
		t.Fatalf("SetInitRetries failed: %v", err)
	}

	resp = handler.Handle(&Frame{Cmd: CmdGetBootRecord})
	if resp.Status != StatusOK {
		t.Fatalf("CmdGetBootRecord failed: status 0x%x", resp.Status)
	}

	var rec config.BootRecord
	if err := rec.UnmarshalBinary(resp.Payload); err != nil {
		t.Fatalf("UnmarshalBinary failed: %v", err)
	}
	if rec.BootCount != 1 || rec.Family != uint8(pad.SNES) || rec.InitRetries != 3 {
		t.Errorf("Unexpected boot record %+v", rec)
	}
	if rec.Presentation != config.PresentationXbox {
		t.Errorf("Expected xbox presentation, got %v", rec.Presentation)
	}
}

func TestGetHistoryCommand(t *testing.T) {
	handler, mgr, _ := newTestHandler(t)
	defer mgr.Close()

	for _, f := range []pad.Family{pad.N64, pad.N64, pad.Saturn} {
		if _, err := mgr.RecordBoot(f, 0, config.PresentationJoystick); err != nil {
			t.Fatalf("RecordBoot failed: %v", err)
		}
	}

	resp := handler.Handle(&Frame{Cmd: CmdGetHistory})
	if resp.Status != StatusOK {
		t.Fatalf("CmdGetHistory failed: status 0x%x", resp.Status)
	}
	if len(resp.Payload) != HistoryPayloadSize {
		t.Fatalf("Expected %d bytes, got %d", HistoryPayloadSize, len(resp.Payload))
	}

	for f := pad.Family(0); f < pad.NumFamilies; f++ {
		got := binary.LittleEndian.Uint32(resp.Payload[int(f)*4:])
		var want uint32
		switch f {
		case pad.N64:
			want = 2
		case pad.Saturn:
			want = 1
		}
		if got != want {
			t.Errorf("%v: expected %d boots, got %d", f, want, got)
		}
	}
}

func TestGetSessionCommand(t *testing.T) {
	handler, mgr, live := newTestHandler(t)
	defer mgr.Close()

	live.cycles = 123456
	live.retries = 0x1FFFF // saturates

	resp := handler.Handle(&Frame{Cmd: CmdGetSession})
	if resp.Status != StatusOK {
		t.Fatalf("CmdGetSession failed: status 0x%x", resp.Status)
	}
	if len(resp.Payload) != SessionPayloadSize {
		t.Fatalf("Expected %d bytes, got %d", SessionPayloadSize, len(resp.Payload))
	}

	want := []byte{uint8(pad.SNES), uint8(config.PresentationXbox), 0b0101}
	if !bytes.Equal(resp.Payload[:3], want) {
		t.Errorf("Session: expected %v, got %v", want, resp.Payload[:3])
	}
	if c := binary.LittleEndian.Uint32(resp.Payload[3:]); c != 123456 {
		t.Errorf("Cycles: expected 123456, got %d", c)
	}
	if r := binary.LittleEndian.Uint16(resp.Payload[7:]); r != 0xFFFF {
		t.Errorf("Retries: expected 0xFFFF, got 0x%x", r)
	}
}

func TestGetStateCommand(t *testing.T) {
	handler, mgr, live := newTestHandler(t)
	defer mgr.Close()

	live.state.SetButton(pad.Cross, true)
	live.state.LeftX = 0x10

	resp := handler.Handle(&Frame{Cmd: CmdGetState})
	if resp.Status != StatusOK {
		t.Fatalf("CmdGetState failed: status 0x%x", resp.Status)
	}

	var s pad.State
	if err := s.UnmarshalBinary(resp.Payload); err != nil {
		t.Fatalf("UnmarshalBinary failed: %v", err)
	}
	if s != live.state {
		t.Errorf("Expected %+v, got %+v", live.state, s)
	}
}

func TestGetReportCommand(t *testing.T) {
	handler, mgr, live := newTestHandler(t)
	defer mgr.Close()

	resp := handler.Handle(&Frame{Cmd: CmdGetReport})
	if resp.Status != StatusNotFound {
		t.Errorf("Expected StatusNotFound with no report sent, got 0x%x", resp.Status)
	}

	live.report = []byte{0x00, 0x14, 0x01}
	resp = handler.Handle(&Frame{Cmd: CmdGetReport})
	if resp.Status != StatusOK {
		t.Fatalf("CmdGetReport failed: status 0x%x", resp.Status)
	}
	if !bytes.Equal(resp.Payload, live.report) {
		t.Errorf("Expected %v, got %v", live.report, resp.Payload)
	}
}

func TestStorageStatsCommand(t *testing.T) {
	handler, mgr, _ := newTestHandler(t)
	defer mgr.Close()

	if _, err := mgr.RecordBoot(pad.GameCube, 0b0011, config.PresentationJoystick); err != nil {
		t.Fatalf("RecordBoot failed: %v", err)
	}

	resp := handler.Handle(&Frame{Cmd: CmdGetStorageStats})
	if resp.Status != StatusOK {
		t.Fatalf("CmdGetStorageStats failed: status 0x%x", resp.Status)
	}
	if len(resp.Payload) != StatsPayloadSize {
		t.Fatalf("Expected %d bytes, got %d", StatsPayloadSize, len(resp.Payload))
	}

	total := binary.LittleEndian.Uint32(resp.Payload[0:])
	used := binary.LittleEndian.Uint32(resp.Payload[4:])
	free := binary.LittleEndian.Uint32(resp.Payload[8:])
	if total != used+free {
		t.Errorf("Expected total %d = used %d + free %d", total, used, free)
	}
	if resp.Payload[12] != 1 {
		t.Errorf("Expected HasBoot set")
	}
	if resp.Payload[13] != 1 {
		t.Errorf("Expected 1 family, got %d", resp.Payload[13])
	}
}

func TestResetBootRecordCommand(t *testing.T) {
	handler, mgr, _ := newTestHandler(t)
	defer mgr.Close()

	if _, err := mgr.RecordBoot(pad.NES, 0b0110, config.PresentationJoystick); err != nil {
		t.Fatalf("RecordBoot failed: %v", err)
	}

	resp := handler.Handle(&Frame{Cmd: CmdResetBootRecord})
	if resp.Status != StatusOK {
		t.Fatalf("CmdResetBootRecord failed: status 0x%x", resp.Status)
	}

	var rec config.BootRecord
	if err := mgr.LoadBoot(&rec); err != storage.ErrNotFound {
		t.Errorf("Expected ErrNotFound after reset, got %v", err)
	}
}

func TestNilStorage(t *testing.T) {
	handler := NewHandler(nil, &fakeLive{state: pad.Neutral()}, testSession)

	for _, cmd := range []uint8{CmdGetBootRecord, CmdGetHistory, CmdGetStorageStats, CmdResetBootRecord} {
		if resp := handler.Handle(&Frame{Cmd: cmd}); resp.Status != StatusError {
			t.Errorf("Command 0x%02x: expected StatusError, got 0x%x", cmd, resp.Status)
		}
	}

	if resp := handler.Handle(&Frame{Cmd: CmdGetSession}); resp.Status != StatusOK {
		t.Errorf("CmdGetSession should not need storage, got 0x%x", resp.Status)
	}
}

func TestInvalidCommand(t *testing.T) {
	handler, mgr, _ := newTestHandler(t)
	defer mgr.Close()

	resp := handler.Handle(&Frame{Cmd: 0x7F})
	if resp.Status != StatusInvalidCmd {
		t.Errorf("Expected StatusInvalidCmd, got 0x%x", resp.Status)
	}
}

func TestCRCMismatch(t *testing.T) {
	buf := &bytes.Buffer{}
	buf.WriteByte(SyncByte)
	buf.WriteByte(CmdPing)
	lenBytes := make([]byte, 2)
	binary.LittleEndian.PutUint16(lenBytes, 0)
	buf.Write(lenBytes)
	// Write wrong CRC
	buf.Write([]byte{0xFF, 0xFF})

	_, err := ReadFrame(buf)
	if err != ErrCRCMismatch {
		t.Errorf("Expected ErrCRCMismatch, got %v", err)
	}
}

func TestInvalidFrame(t *testing.T) {
	buf := &bytes.Buffer{}
	buf.WriteByte(0x55) // Wrong sync

	_, err := ReadFrame(buf)
	if err != ErrInvalidFrame {
		t.Errorf("Expected ErrInvalidFrame, got %v", err)
	}
}

func TestOversizedLength(t *testing.T) {
	buf := &bytes.Buffer{}
	buf.Write([]byte{SyncByte, CmdPing, 0x01, 0x10}) // 4097

	_, err := ReadFrame(buf)
	if err != ErrInvalidFrame {
		t.Errorf("Expected ErrInvalidFrame, got %v", err)
	}

	if err := WriteFrame(io.Discard, &Frame{Cmd: CmdPing, Payload: make([]byte, MaxPayload+1)}); err != ErrInvalidFrame {
		t.Errorf("Expected ErrInvalidFrame on write, got %v", err)
	}
}

func TestTruncatedFrame(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, &Frame{Cmd: CmdPing, Payload: []byte{1, 2, 3}}); err != nil {
		t.Fatalf("WriteFrame failed: %v", err)
	}
	data := buf.Bytes()

	_, err := ReadFrame(bytes.NewReader(data[:len(data)-3]))
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("Expected io.ErrUnexpectedEOF, got %v", err)
	}
}
