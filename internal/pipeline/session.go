package pipeline

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"github.com/geuryroustand/nail-design-try-on/internal/common"
	"github.com/geuryroustand/nail-design-try-on/internal/extractor"
	"github.com/geuryroustand/nail-design-try-on/internal/geometry"
	"github.com/geuryroustand/nail-design-try-on/internal/hand"
	"github.com/geuryroustand/nail-design-try-on/internal/utils"
)

// State identifies where a session is in the try-on flow.
type State int

const (
	StateIdle State = iota
	StateExtracting
	StateExtractionDone
	StateCompositing
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateExtracting:
		return "extracting"
	case StateExtractionDone:
		return "extraction_done"
	case StateCompositing:
		return "compositing"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Session holds the mutable per-user state of one try-on flow: the stored
// designs written once during extraction and read-only during compositing,
// plus the current stage. The detector is shared but never invoked
// concurrently; the session serializes its own calls and a generation
// counter makes results from before a reset detectable and discardable.
type Session struct {
	p *Pipeline

	mu         sync.Mutex
	state      State
	generation uint64
	designs    map[hand.Finger]*extractor.Design
	result     *image.NRGBA
	timings    common.StageTimings
}

// NewSession creates an idle session on top of the pipeline.
func NewSession(p *Pipeline) *Session {
	return &Session{
		p:       p,
		state:   StateIdle,
		designs: make(map[hand.Finger]*extractor.Design),
		timings: make(common.StageTimings),
	}
}

// NewSession returns a fresh idle session bound to this pipeline.
func (p *Pipeline) NewSession() *Session {
	return NewSession(p)
}

// State returns the current stage.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Designs returns a copy of the per-finger design map.
func (s *Session) Designs() map[hand.Finger]*extractor.Design {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[hand.Finger]*extractor.Design, len(s.designs))
	for k, v := range s.designs {
		out[k] = v
	}
	return out
}

// Result returns the last composited image, or nil before the first apply.
func (s *Session) Result() *image.NRGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Timings returns the stage durations recorded by the last operations.
func (s *Session) Timings() common.StageTimings {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(common.StageTimings, len(s.timings))
	for k, v := range s.timings {
		out[k] = v
	}
	return out
}

// LoadDesigns installs previously extracted designs, making an idle session
// ready for compositing without an extraction pass. Batch runs use this to
// extract once and apply to many targets.
func (s *Session) LoadDesigns(designs map[hand.Finger]*extractor.Design) error {
	if len(designs) == 0 {
		return wrapErr(KindInput, "load designs", ErrNoDesigns)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle {
		return wrapErr(KindInput, "load designs", ErrInvalidState)
	}
	s.designs = make(map[hand.Finger]*extractor.Design, len(designs))
	for k, v := range designs {
		s.designs[k] = v
	}
	s.state = StateExtractionDone
	return nil
}

// Reset discards all designs, any result and any in-flight detection, and
// returns the session to idle. Detector results belonging to the previous
// generation are ignored when they eventually arrive.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.state = StateIdle
	s.designs = make(map[hand.Finger]*extractor.Design)
	s.result = nil
	slog.Debug("Session reset", "generation", s.generation)
}

// ExtractDesigns detects the hand in the source photo and extracts a design
// for every finger whose nail passes the geometry and quality gates. It
// returns the number of designs stored. Allowed from idle, extraction_done
// and done; failures leave the session in its prior state.
func (s *Session) ExtractDesigns(ctx context.Context, src image.Image) (int, error) {
	if src == nil {
		return 0, wrapErr(KindInput, "extract designs", fmt.Errorf("source image is nil"))
	}

	prev, gen, err := s.enter(StateExtracting, StateIdle, StateExtractionDone, StateDone)
	if err != nil {
		return 0, err
	}

	det, err := s.detect(ctx, src)
	if err != nil {
		s.leave(gen, prev)
		return 0, wrapErr(KindDetection, "extract designs", err)
	}

	timer := common.NewNamedTimer("extract")
	geoms := geometry.ComputeAll(&det.Landmarks, det.OriginalWidth, det.OriginalHeight, s.p.cfg.ExtractionGeometry)
	designs := make(map[hand.Finger]*extractor.Design)
	srcNRGBA := utils.ToNRGBA(src)
	for finger, g := range geoms {
		if d := s.p.Extractor.Extract(srcNRGBA, finger, g); d != nil {
			designs[finger] = d
		}
	}
	timer.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		slog.Debug("Discarding extraction from a reset session", "generation", gen)
		return 0, wrapErr(KindExtraction, "extract designs", ErrSessionReset)
	}
	if len(designs) == 0 {
		s.state = prev
		return 0, wrapErr(KindExtraction, "extract designs", ErrNoFingersQualified)
	}
	s.designs = designs
	s.state = StateExtractionDone
	s.timings.Record(timer)
	slog.Info("Extracted nail designs", "fingers", len(designs), "duration", timer.Duration())
	return len(designs), nil
}

// ApplyDesigns detects the hand in the target photo and composites the
// stored designs onto it. When target detection fails, the original image
// is still returned alongside the error so the caller has something to
// show. Allowed from extraction_done and done (re-apply onto a new photo).
func (s *Session) ApplyDesigns(ctx context.Context, target image.Image) (*image.NRGBA, int, error) {
	if target == nil {
		return nil, 0, wrapErr(KindInput, "apply designs", fmt.Errorf("target image is nil"))
	}

	prev, gen, err := s.enter(StateCompositing, StateExtractionDone, StateDone)
	if err != nil {
		return nil, 0, err
	}

	det, err := s.detect(ctx, target)
	if err != nil {
		s.leave(gen, prev)
		return utils.ToNRGBA(target), 0, wrapErr(KindDetection, "apply designs", err)
	}

	timer := common.NewNamedTimer("composite")
	geoms := geometry.ComputeAll(&det.Landmarks, det.OriginalWidth, det.OriginalHeight, s.p.cfg.CompositeGeometry)
	result, applied := s.p.Compositor.Render(target, geoms, s.Designs())
	timer.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		slog.Debug("Discarding composite from a reset session", "generation", gen)
		return nil, 0, wrapErr(KindCompositing, "apply designs", ErrSessionReset)
	}
	if applied == 0 {
		s.state = prev
		return result, 0, wrapErr(KindCompositing, "apply designs", ErrNoDesigns)
	}
	s.result = result
	s.state = StateDone
	s.timings.Record(timer)
	slog.Info("Applied nail designs", "fingers", applied, "duration", timer.Duration())
	return result, applied, nil
}

// enter transitions into a working state if the current state is one of
// the allowed entry points, and captures the generation for the stale
// check on completion.
func (s *Session) enter(next State, allowed ...State) (prev State, gen uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range allowed {
		if s.state == a {
			prev = s.state
			s.state = next
			return prev, s.generation, nil
		}
	}
	return 0, 0, wrapErr(KindInput, next.String(),
		fmt.Errorf("%w: %s", ErrInvalidState, s.state))
}

// leave restores the pre-operation state after a failure, unless a reset
// has already moved the session on.
func (s *Session) leave(gen uint64, prev State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation == gen {
		s.state = prev
	}
}

// detect runs one landmark detection under the configured timeout and
// normalizes "no hand" to an error. The pipeline never issues two detector
// calls concurrently for a session; calls are serialized by the state
// machine, and the detector itself also guards its session with a mutex.
func (s *Session) detect(ctx context.Context, img image.Image) (*hand.Detection, error) {
	if timeout := s.p.cfg.Hand.Timeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	timer := common.NewNamedTimer("detect")
	det, err := s.p.Detector.Detect(ctx, img)
	timer.Stop()
	if err != nil {
		return nil, err
	}
	if det == nil {
		return nil, ErrNoHandDetected
	}

	s.mu.Lock()
	s.timings.Record(timer)
	s.mu.Unlock()
	return det, nil
}
