package onnx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewImageTensorNHWC(t *testing.T) {
	data := make([]float32, 4*4*3)
	tensor, err := NewImageTensorNHWC(data, 4, 4, 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 4, 4, 3}, tensor.Shape)
	assert.NoError(t, VerifyImageTensor(tensor))
}

func TestNewImageTensorNHWCBadLength(t *testing.T) {
	_, err := NewImageTensorNHWC(make([]float32, 10), 4, 4, 3)
	assert.Error(t, err)
}

func TestNewImageTensorNHWCNilData(t *testing.T) {
	_, err := NewImageTensorNHWC(nil, 4, 4, 3)
	assert.Error(t, err)
}

func TestNewImageTensorNCHW(t *testing.T) {
	data := make([]float32, 3*8*6)
	tensor, err := NewImageTensorNCHW(data, 3, 8, 6)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3, 8, 6}, tensor.Shape)
	assert.NoError(t, VerifyImageTensor(tensor))
}

func TestValidateImageShape(t *testing.T) {
	tests := []struct {
		name    string
		shape   []int64
		wantErr bool
	}{
		{"valid", []int64{1, 224, 224, 3}, false},
		{"wrong rank", []int64{224, 224, 3}, true},
		{"zero dim", []int64{1, 0, 224, 3}, true},
		{"negative dim", []int64{1, 224, -1, 3}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateImageShape(tt.shape)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestVerifyImageTensorMismatch(t *testing.T) {
	tensor := Tensor{Data: make([]float32, 5), Shape: []int64{1, 2, 2, 3}}
	assert.Error(t, VerifyImageTensor(tensor))
}

func TestTensorStats(t *testing.T) {
	minV, maxV, mean := TensorStats([]float32{0, 0.5, 1})
	assert.InDelta(t, 0, minV, 1e-6)
	assert.InDelta(t, 1, maxV, 1e-6)
	assert.InDelta(t, 0.5, mean, 1e-6)

	minV, maxV, mean = TensorStats(nil)
	assert.Zero(t, minV)
	assert.Zero(t, maxV)
	assert.Zero(t, mean)
}

func TestValidateGPUConfig(t *testing.T) {
	cfg := DefaultGPUConfig()
	assert.NoError(t, ValidateGPUConfig(cfg))

	cfg.UseGPU = true
	cfg.DeviceID = -1
	assert.Error(t, ValidateGPUConfig(cfg))

	cfg.DeviceID = 0
	cfg.ArenaExtendStrategy = "bogus"
	assert.Error(t, ValidateGPUConfig(cfg))
}
