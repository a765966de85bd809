package pad

// Compass values of the Direction field. DirCenter also covers impossible
// combinations such as Up+Down.
const (
	DirUp uint8 = iota
	DirUpRight
	DirRight
	DirDownRight
	DirDown
	DirDownLeft
	DirLeft
	DirUpLeft
	DirCenter
)

// DirectionTable maps up<<3 | down<<2 | left<<1 | right to a compass value.
var DirectionTable = [16]uint8{
	DirCenter, DirRight, DirLeft, DirCenter,
	DirDown, DirDownRight, DirDownLeft, DirCenter,
	DirUp, DirUpRight, DirUpLeft, DirCenter,
	DirCenter, DirCenter, DirCenter, DirCenter,
}

// Direction returns the compass value for a d-pad combination.
func Direction(up, down, left, right bool) uint8 {
	var i uint8
	if up {
		i |= 1 << 3
	}
	if down {
		i |= 1 << 2
	}
	if left {
		i |= 1 << 1
	}
	if right {
		i |= 1
	}
	return DirectionTable[i]
}
