// Package pad holds the types shared by every stage of the adapter: the
// detected pad family, the raw frame a bus driver produces and the canonical
// gamepad state the presentation layer consumes.
package pad

// Family identifies the legacy controller protocol attached to the adapter.
// It is chosen once at startup and never changes for the session.
type Family uint8

const (
	Genesis Family = iota
	Arcade
	NES
	SNES
	PS2
	GameCube
	N64
	NeoGeo
	Saturn
)

// NumFamilies is the number of supported families.
const NumFamilies = 9

var familyNames = [NumFamilies]string{
	Genesis:  "Genesis",
	Arcade:   "Arcade",
	NES:      "NES",
	SNES:     "SNES",
	PS2:      "PS2/PSX",
	GameCube: "GameCube",
	N64:      "N64",
	NeoGeo:   "NeoGeo",
	Saturn:   "Saturn",
}

func (f Family) String() string {
	if int(f) < len(familyNames) {
		return familyNames[f]
	}
	return "Unknown"
}

// Valid reports whether f is one of the supported families.
func (f Family) Valid() bool {
	return f < NumFamilies
}
