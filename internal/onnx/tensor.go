package onnx

import (
	"errors"
	"fmt"
)

// Tensor represents a float32 tensor prepared for ONNX input. Image data is
// row-major; hand-landmark models consume NHWC, so that is the primary layout.
type Tensor struct {
	Data  []float32
	Shape []int64 // e.g., [N, H, W, C]
}

// NewImageTensorNHWC builds a single-image tensor with shape [1, H, W, C].
// data must be length H*W*C in NHWC order.
func NewImageTensorNHWC(data []float32, h, w, c int) (Tensor, error) {
	if data == nil {
		return Tensor{}, errors.New("nil data")
	}
	expected := h * w * c
	if len(data) != expected {
		return Tensor{}, fmt.Errorf("unexpected data length: got %d, want %d", len(data), expected)
	}
	return Tensor{Data: data, Shape: []int64{1, int64(h), int64(w), int64(c)}}, nil
}

// NewImageTensorNCHW builds a single-image tensor with shape [1, C, H, W]
// for models trained with channel-first input.
func NewImageTensorNCHW(data []float32, c, h, w int) (Tensor, error) {
	if data == nil {
		return Tensor{}, errors.New("nil data")
	}
	expected := c * h * w
	if len(data) != expected {
		return Tensor{}, fmt.Errorf("unexpected data length: got %d, want %d", len(data), expected)
	}
	return Tensor{Data: data, Shape: []int64{1, int64(c), int64(h), int64(w)}}, nil
}

// ValidateImageShape ensures a shape is a 4-D image batch with positive dimensions.
func ValidateImageShape(shape []int64) error {
	if len(shape) != 4 {
		return fmt.Errorf("shape rank %d != 4", len(shape))
	}
	for i, v := range shape {
		if v <= 0 {
			return fmt.Errorf("dimension %d must be > 0, got %d", i, v)
		}
	}
	return nil
}

// VerifyImageTensor checks data length matches the tensor's 4-D shape.
func VerifyImageTensor(t Tensor) error {
	if err := ValidateImageShape(t.Shape); err != nil {
		return err
	}
	expected := int64(1)
	for _, v := range t.Shape {
		expected *= v
	}
	if int64(len(t.Data)) != expected {
		return fmt.Errorf("tensor data length %d != expected %d for shape %v", len(t.Data), expected, t.Shape)
	}
	return nil
}

// TensorStats computes min/max/mean for debug output.
func TensorStats(data []float32) (float32, float32, float32) {
	if len(data) == 0 {
		return 0, 0, 0
	}
	minVal, maxVal := data[0], data[0]
	var sum float64
	for _, v := range data {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
		sum += float64(v)
	}
	return minVal, maxVal, float32(sum / float64(len(data)))
}
