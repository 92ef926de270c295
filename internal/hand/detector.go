package hand

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yalue/onnxruntime_go"

	"github.com/geuryroustand/nail-design-try-on/internal/mempool"
	"github.com/geuryroustand/nail-design-try-on/internal/onnx"
	"github.com/geuryroustand/nail-design-try-on/internal/utils"
)

// Detection holds the output from a single landmark inference: at most one
// hand. Token correlates the result with the request that produced it, so a
// caller that has since reset can recognize and discard a stale result.
type Detection struct {
	Token          uuid.UUID // Request correlation token
	Landmarks      Landmarks // Normalized landmark set
	Score          float64   // Hand presence confidence in [0,1]
	OriginalWidth  int       // Original image width in pixels
	OriginalHeight int       // Original image height in pixels
	ProcessingTime int64     // Inference time in nanoseconds
}

// Detector performs hand landmark detection using ONNX Runtime.
type Detector struct {
	config     Config
	session    *onnxruntime_go.DynamicAdvancedSession
	inputInfo  onnxruntime_go.InputOutputInfo
	outputInfo []onnxruntime_go.InputOutputInfo
	mu         sync.Mutex
}

// NewDetector creates a new hand landmark detector with the given configuration.
func NewDetector(config Config) (*Detector, error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	if err := validateModelFile(config.ModelPath); err != nil {
		return nil, err
	}

	slog.Debug("Initializing hand landmark detector",
		"model_path", config.ModelPath,
		"gpu_enabled", config.GPU.UseGPU,
		"complexity", config.Complexity,
		"detection_confidence", config.DetectionConfidence)

	if err := setupONNXEnvironment(config.GPU.UseGPU); err != nil {
		return nil, err
	}

	inputInfo, outputInfo, err := validateModelInfo(config.ModelPath)
	if err != nil {
		return nil, err
	}

	session, err := createSession(config.ModelPath, inputInfo, outputInfo, config)
	if err != nil {
		return nil, err
	}

	slog.Debug("Hand landmark detector initialized successfully")
	return &Detector{
		config:     config,
		session:    session,
		inputInfo:  inputInfo,
		outputInfo: outputInfo,
	}, nil
}

// Close releases resources used by the detector.
func (d *Detector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.session != nil {
		if err := d.session.Destroy(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to destroy detector session: %v\n", err)
		}
		d.session = nil
	}
	// The ONNX environment is shared; it is torn down at process exit.
	return nil
}

// GetConfig returns a copy of the detector's configuration.
func (d *Detector) GetConfig() Config {
	return d.config
}

// preprocessImage prepares an image for landmark inference.
func (d *Detector) preprocessImage(img image.Image) (onnx.Tensor, error) {
	resized, err := utils.ResizeForModel(img, d.config.InputSize, d.config.InputSize)
	if err != nil {
		return onnx.Tensor{}, fmt.Errorf("failed to resize image: %w", err)
	}

	data, width, height, err := utils.NormalizeImageNHWC(resized)
	if err != nil {
		return onnx.Tensor{}, fmt.Errorf("failed to normalize image: %w", err)
	}

	tensor, err := onnx.NewImageTensorNHWC(data, height, width, 3)
	if err != nil {
		mempool.PutFloat32(data)
		return onnx.Tensor{}, fmt.Errorf("failed to create tensor: %w", err)
	}
	return tensor, nil
}

// runInference performs the ONNX inference and returns per-output float data.
func (d *Detector) runInference(tensor onnx.Tensor) ([][]float32, error) {
	if err := onnx.VerifyImageTensor(tensor); err != nil {
		return nil, fmt.Errorf("invalid tensor: %w", err)
	}

	if d.session == nil {
		return nil, errors.New("detector session is nil")
	}

	inputTensor, err := onnxruntime_go.NewTensor(onnxruntime_go.NewShape(tensor.Shape...), tensor.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer func() {
		if err := inputTensor.Destroy(); err != nil {
			fmt.Fprintf(os.Stderr, "Error destroying input tensor: %v\n", err)
		}
	}()

	outputs := make([]onnxruntime_go.Value, len(d.outputInfo))
	if err := d.session.Run([]onnxruntime_go.Value{inputTensor}, outputs); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}
	defer func() {
		for _, out := range outputs {
			if out == nil {
				continue
			}
			if err := out.Destroy(); err != nil {
				fmt.Fprintf(os.Stderr, "Error destroying output tensor: %v\n", err)
			}
		}
	}()

	results := make([][]float32, len(outputs))
	for i, out := range outputs {
		floatTensor, ok := out.(*onnxruntime_go.Tensor[float32])
		if !ok {
			return nil, fmt.Errorf("expected float32 output tensor, got %T", out)
		}
		data := floatTensor.GetData()
		results[i] = append([]float32(nil), data...)
	}
	return results, nil
}

// Detect runs landmark detection on a single image. It returns nil (and no
// error) when no hand clears the configured presence confidence. The context
// bounds the inference; the configured Timeout applies when the context has
// no earlier deadline. Calls are serialized: the underlying session handles
// one request at a time.
func (d *Detector) Detect(ctx context.Context, img image.Image) (*Detection, error) {
	if img == nil {
		return nil, errors.New("input image is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if d.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.Timeout)
		defer cancel()
	}

	token := uuid.New()
	start := time.Now()

	bounds := img.Bounds()
	originalWidth := bounds.Dx()
	originalHeight := bounds.Dy()

	type inferenceOutcome struct {
		outputs [][]float32
		err     error
	}
	done := make(chan inferenceOutcome, 1)

	go func() {
		d.mu.Lock()
		defer d.mu.Unlock()

		tensor, err := d.preprocessImage(img)
		if err != nil {
			done <- inferenceOutcome{err: fmt.Errorf("preprocessing failed: %w", err)}
			return
		}
		defer mempool.PutFloat32(tensor.Data)

		outputs, err := d.runInference(tensor)
		done <- inferenceOutcome{outputs: outputs, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("landmark detection: %w", ctx.Err())
	case outcome := <-done:
		if outcome.err != nil {
			return nil, outcome.err
		}
		landmarks, score, err := decodeLandmarks(outcome.outputs, d.config.InputSize)
		if err != nil {
			return nil, err
		}
		if score < d.config.DetectionConfidence {
			slog.Debug("Hand presence below threshold",
				"score", score, "threshold", d.config.DetectionConfidence)
			return nil, nil
		}
		return &Detection{
			Token:          token,
			Landmarks:      landmarks,
			Score:          score,
			OriginalWidth:  originalWidth,
			OriginalHeight: originalHeight,
			ProcessingTime: time.Since(start).Nanoseconds(),
		}, nil
	}
}

// GetModelInfo returns information about the loaded landmark model.
func (d *Detector) GetModelInfo() map[string]interface{} {
	outputNames := make([]string, len(d.outputInfo))
	for i, info := range d.outputInfo {
		outputNames[i] = info.Name
	}
	return map[string]interface{}{
		"model_path":           d.config.ModelPath,
		"input_name":           d.inputInfo.Name,
		"input_shape":          d.inputInfo.Dimensions,
		"output_names":         outputNames,
		"max_hands":            d.config.MaxHands,
		"complexity":           d.config.Complexity,
		"detection_confidence": d.config.DetectionConfidence,
		"tracking_confidence":  d.config.TrackingConfidence,
		"num_threads":          d.config.NumThreads,
		"gpu": map[string]interface{}{
			"enabled":            d.config.GPU.UseGPU,
			"device_id":          d.config.GPU.DeviceID,
			"memory_limit_bytes": d.config.GPU.GPUMemLimit,
		},
	}
}
