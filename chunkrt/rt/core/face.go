package core

// Face identifies one side of a voxel cube.
type Face uint8

const (
	FaceFront  Face = iota // +Z
	FaceRight              // +X
	FaceBack               // -Z
	FaceLeft               // -X
	FaceTop                // +Y
	FaceBottom             // -Y
)

// Faces in emission order.
var Faces = [6]Face{FaceFront, FaceRight, FaceBack, FaceLeft, FaceTop, FaceBottom}

var faceNormals = [6][3]float32{
	{0, 0, 1},
	{1, 0, 0},
	{0, 0, -1},
	{-1, 0, 0},
	{0, 1, 0},
	{0, -1, 0},
}

var faceOffsets = [6][3]int{
	{0, 0, 1},
	{1, 0, 0},
	{0, 0, -1},
	{-1, 0, 0},
	{0, 1, 0},
	{0, -1, 0},
}

func (f Face) Normal() [3]float32 {
	return faceNormals[f]
}

// Offset is the cell step towards the face's neighbor.
func (f Face) Offset() (dx, dy, dz int) {
	o := faceOffsets[f]
	return o[0], o[1], o[2]
}

func (f Face) String() string {
	switch f {
	case FaceFront:
		return "front"
	case FaceRight:
		return "right"
	case FaceBack:
		return "back"
	case FaceLeft:
		return "left"
	case FaceTop:
		return "top"
	case FaceBottom:
		return "bottom"
	}
	return "unknown"
}
