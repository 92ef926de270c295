package hand

import "fmt"

// decodeLandmarks converts raw model outputs into a normalized landmark set
// and a presence score.
//
// The first output carries 21 landmarks as (x, y, z) triples. Coordinates may
// be emitted either normalized to [0,1] or in input-pixel units; both layouts
// exist among exported hand landmark models, so pixel-scale values are divided
// by the input size. The second output, when present, is the hand presence
// score. A missing score output is treated as full confidence, leaving the
// accept/reject decision to the configured threshold.
func decodeLandmarks(outputs [][]float32, inputSize int) (Landmarks, float64, error) {
	var landmarks Landmarks
	if len(outputs) == 0 {
		return landmarks, 0, fmt.Errorf("no model outputs")
	}

	raw := outputs[0]
	if len(raw) < NumLandmarks*3 {
		return landmarks, 0, fmt.Errorf("landmark output too short: got %d values, want %d",
			len(raw), NumLandmarks*3)
	}

	pixelScale := coordsArePixelScale(raw)
	score := 1.0
	if len(outputs) > 1 && len(outputs[1]) > 0 {
		score = clamp01(float64(outputs[1][0]))
	}

	for i := range NumLandmarks {
		x := float64(raw[i*3])
		y := float64(raw[i*3+1])
		z := float64(raw[i*3+2])
		if pixelScale {
			x /= float64(inputSize)
			y /= float64(inputSize)
			z /= float64(inputSize)
		}
		landmarks[i] = Landmark{
			X:          clamp01(x),
			Y:          clamp01(y),
			Z:          z,
			Visibility: score,
		}
	}
	return landmarks, score, nil
}

// coordsArePixelScale reports whether landmark coordinates exceed the
// normalized range and therefore need dividing by the input size.
func coordsArePixelScale(raw []float32) bool {
	for i := range NumLandmarks {
		if raw[i*3] > 1.5 || raw[i*3+1] > 1.5 {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
