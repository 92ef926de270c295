package testutil

import (
	"context"
	"image"
	"sync"

	"github.com/google/uuid"

	"github.com/geuryroustand/nail-design-try-on/internal/hand"
)

// UprightIndexLandmarks returns landmarks for a hand with only the index
// finger populated, pointing straight up with its nail centered near
// (100, 72) on a 200x200 image.
func UprightIndexLandmarks() hand.Landmarks {
	var ls hand.Landmarks
	ls[hand.IndexTip] = hand.Landmark{X: 0.5, Y: 0.3, Visibility: 1}
	ls[hand.IndexDIP] = hand.Landmark{X: 0.5, Y: 0.4, Visibility: 1}
	ls[hand.IndexPIP] = hand.Landmark{X: 0.5, Y: 0.5, Visibility: 1}
	return ls
}

// UprightIndexDetection wraps UprightIndexLandmarks in a detection sized
// for PaintedHandImage.
func UprightIndexDetection() *hand.Detection {
	return &hand.Detection{
		Landmarks:      UprightIndexLandmarks(),
		Score:          0.95,
		OriginalWidth:  200,
		OriginalHeight: 200,
	}
}

// ScriptedDetector satisfies the pipeline's detector interface without a
// model session. Every Detect call returns a copy of the configured
// detection with a fresh token, or the configured error.
type ScriptedDetector struct {
	mu        sync.Mutex
	Detection *hand.Detection
	Err       error
	calls     int
}

func (d *ScriptedDetector) Detect(ctx context.Context, img image.Image) (*hand.Detection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	if d.Err != nil {
		return nil, d.Err
	}
	if d.Detection == nil {
		return nil, nil
	}
	det := *d.Detection
	det.Token = uuid.New()
	return &det, nil
}

func (d *ScriptedDetector) Close() error { return nil }

// Calls reports how many times Detect ran.
func (d *ScriptedDetector) Calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}
