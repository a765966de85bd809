// Package config defines the records the firmware persists and reports over
// the diagnostics link. All structs are fixed size little endian, encoded
// without reflection.
package config

import (
	"encoding/binary"
	"errors"
	"io"
)

// CurrentVersion is the boot record format version.
// Bump this when making breaking changes to the record layout.
// When firmware boots and finds a different version in flash, records are wiped.
const CurrentVersion uint16 = 1

// Presentation is the USB report layout the firmware was built with.
type Presentation uint8

const (
	PresentationJoystick Presentation = iota
	PresentationXbox
)

func (p Presentation) String() string {
	switch p {
	case PresentationJoystick:
		return "joystick"
	case PresentationXbox:
		return "xbox"
	}
	return "unknown"
}

// BootRecord is written once per boot. It is a diagnostic trail, not
// settings: nothing read back from it changes how the adapter behaves.
// Total size: 12 bytes
// Layout:
//
//	[0-1]:   Version (uint16)
//	[2-5]:   BootCount (uint32)
//	[6]:     Family (uint8, pad.Family)
//	[7]:     DetectCode (uint8, raw sense pin code)
//	[8]:     Presentation (uint8)
//	[9]:     Reserved (uint8)
//	[10-11]: InitRetries (uint16, failed bus inits of this boot, saturating)
type BootRecord struct {
	Version      uint16
	BootCount    uint32
	Family       uint8
	DetectCode   uint8
	Presentation Presentation
	Reserved     uint8
	InitRetries  uint16
}

// BootRecordSize is the encoded size of a BootRecord.
const BootRecordSize = 12

// Session describes the running adapter.
// Total size: 3 bytes
// Layout: [Family:1][Presentation:1][DetectCode:1]
type Session struct {
	Family       uint8
	Presentation Presentation
	DetectCode   uint8
}

// SessionSize is the encoded size of a Session.
const SessionSize = 3

// Errors
var (
	ErrInvalidSize = errors.New("invalid record size")
)

// Marshal writes the BootRecord to w in binary format.
// Returns the number of bytes written.
func (b *BootRecord) Marshal(w io.Writer) (int, error) {
	buf, _ := b.MarshalBinary()
	return w.Write(buf)
}

// Unmarshal reads the BootRecord from r in binary format.
func (b *BootRecord) Unmarshal(r io.Reader) error {
	buf := make([]byte, BootRecordSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return err
	}
	return b.UnmarshalBinary(buf)
}

// MarshalBinary implements encoding.BinaryMarshaler for BootRecord.
func (b *BootRecord) MarshalBinary() ([]byte, error) {
	buf := make([]byte, BootRecordSize)
	binary.LittleEndian.PutUint16(buf[0:], b.Version)
	binary.LittleEndian.PutUint32(buf[2:], b.BootCount)
	buf[6] = b.Family
	buf[7] = b.DetectCode
	buf[8] = uint8(b.Presentation)
	buf[9] = b.Reserved
	binary.LittleEndian.PutUint16(buf[10:], b.InitRetries)
	return buf, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler for BootRecord.
func (b *BootRecord) UnmarshalBinary(data []byte) error {
	if len(data) < BootRecordSize {
		return ErrInvalidSize
	}

	b.Version = binary.LittleEndian.Uint16(data[0:])
	b.BootCount = binary.LittleEndian.Uint32(data[2:])
	b.Family = data[6]
	b.DetectCode = data[7]
	b.Presentation = Presentation(data[8])
	b.Reserved = data[9]
	b.InitRetries = binary.LittleEndian.Uint16(data[10:])
	return nil
}

// AddInitRetries adds n failed inits, saturating at the field maximum.
func (b *BootRecord) AddInitRetries(n int) {
	total := int(b.InitRetries) + n
	if total > 0xFFFF {
		total = 0xFFFF
	}
	if total < 0 {
		total = 0
	}
	b.InitRetries = uint16(total)
}

// MarshalBinary implements encoding.BinaryMarshaler for Session.
func (s *Session) MarshalBinary() ([]byte, error) {
	return []byte{s.Family, uint8(s.Presentation), s.DetectCode}, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler for Session.
func (s *Session) UnmarshalBinary(data []byte) error {
	if len(data) < SessionSize {
		return ErrInvalidSize
	}
	s.Family = data[0]
	s.Presentation = Presentation(data[1])
	s.DetectCode = data[2]
	return nil
}
