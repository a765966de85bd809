package pad

// Frame is the unprocessed result of one bus read. It lives for one polling
// cycle.
//
// Multiplexed and shift-register buses (Genesis, Saturn, NES, SNES, Arcade,
// NeoGeo) fill Bits with 1 = pressed. Byte oriented buses fill Data:
//
//	PlayStation: [0] buttons 1, [1] buttons 2 (0 = pressed), [2..5] RX RY LX LY
//	GameCube:    the 8 byte poll response
//	N64:         the 4 byte poll response
//
// Len is the number of valid bytes in Data. A PlayStation frame with Len 0
// carries no new data.
type Frame struct {
	Bits uint32
	Data [8]byte
	Len  uint8
	ID   byte
}
