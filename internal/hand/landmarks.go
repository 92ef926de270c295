// Package hand provides hand landmark detection and the landmark/finger
// vocabulary shared by the extraction and compositing stages.
package hand

import "fmt"

// NumLandmarks is the fixed number of landmarks per detected hand.
const NumLandmarks = 21

// Landmark index constants, wrist first, then four joints per finger
// from palm to tip.
const (
	Wrist = iota
	ThumbCMC
	ThumbMCP
	ThumbIP
	ThumbTip
	IndexMCP
	IndexPIP
	IndexDIP
	IndexTip
	MiddleMCP
	MiddlePIP
	MiddleDIP
	MiddleTip
	RingMCP
	RingPIP
	RingDIP
	RingTip
	PinkyMCP
	PinkyPIP
	PinkyDIP
	PinkyTip
)

// Landmark is a normalized 2D/3D point on a detected hand.
// X and Y are image-fraction coordinates in [0,1]; Z is relative depth.
// Visibility is a [0,1] confidence, zero when the model does not provide one.
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// IsMissing reports whether the landmark carries no data at all. Detectors
// always emit full sets; a zero value only appears when a landmark was never
// populated.
func (l Landmark) IsMissing() bool {
	return l == Landmark{}
}

// Landmarks is a fixed-length ordered set of hand landmarks.
type Landmarks [NumLandmarks]Landmark

// Finger identifies one of the five fingers.
type Finger int

const (
	Thumb Finger = iota
	Index
	Middle
	Ring
	Pinky
)

// AllFingers lists fingers in iteration order for the per-finger pipeline loop.
var AllFingers = []Finger{Thumb, Index, Middle, Ring, Pinky}

func (f Finger) String() string {
	switch f {
	case Thumb:
		return "thumb"
	case Index:
		return "index"
	case Middle:
		return "middle"
	case Ring:
		return "ring"
	case Pinky:
		return "pinky"
	default:
		return fmt.Sprintf("finger(%d)", int(f))
	}
}

// ParseFinger converts a finger name to its Finger value.
func ParseFinger(s string) (Finger, error) {
	for _, f := range AllFingers {
		if f.String() == s {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown finger: %q", s)
}

// FingerIndices holds the landmark indices used to derive nail geometry.
// Tip is the fingertip, Base a joint nearer the palm, Mid the joint between
// them used for orientation.
type FingerIndices struct {
	Tip  int
	Base int
	Mid  int
}

// fingerLandmarks is the static finger-to-landmark mapping.
var fingerLandmarks = map[Finger]FingerIndices{
	Thumb:  {Tip: ThumbTip, Base: ThumbMCP, Mid: ThumbIP},
	Index:  {Tip: IndexTip, Base: IndexPIP, Mid: IndexDIP},
	Middle: {Tip: MiddleTip, Base: MiddlePIP, Mid: MiddleDIP},
	Ring:   {Tip: RingTip, Base: RingPIP, Mid: RingDIP},
	Pinky:  {Tip: PinkyTip, Base: PinkyPIP, Mid: PinkyDIP},
}

// Indices returns the landmark indices for f.
func (f Finger) Indices() FingerIndices {
	return fingerLandmarks[f]
}

// Triple returns the (tip, base, mid) landmarks for f from the set.
func (ls *Landmarks) Triple(f Finger) (tip, base, mid Landmark) {
	idx := f.Indices()
	return ls[idx.Tip], ls[idx.Base], ls[idx.Mid]
}
