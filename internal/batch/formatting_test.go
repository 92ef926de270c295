package batch

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *Result {
	return &Result{
		SourcePath:       "source.png",
		FingersExtracted: 3,
		Targets: []TargetResult{
			{Path: "a.png", OutputPath: "out/a_tryon.png", FingersApplied: 3, DurationMs: 120},
			{Path: "b.png", Error: "no hand detected", DurationMs: 80},
		},
		Succeeded:  1,
		Failed:     1,
		DurationMs: 250,
	}
}

func TestFormatResultJSON(t *testing.T) {
	out, err := FormatResult(sampleResult(), "json")
	require.NoError(t, err)

	var decoded Result
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "source.png", decoded.SourcePath)
	assert.Equal(t, 3, decoded.FingersExtracted)
	require.Len(t, decoded.Targets, 2)
	assert.Equal(t, "out/a_tryon.png", decoded.Targets[0].OutputPath)
	assert.Equal(t, "no hand detected", decoded.Targets[1].Error)
}

func TestFormatResultText(t *testing.T) {
	out, err := FormatResult(sampleResult(), "text")
	require.NoError(t, err)

	assert.Contains(t, out, "source.png (3 fingers extracted)")
	assert.Contains(t, out, "1 succeeded, 1 failed")
	assert.Contains(t, out, "OK   a.png")
	assert.Contains(t, out, "FAIL b.png: no hand detected")
}

func TestFormatResultUnsupported(t *testing.T) {
	_, err := FormatResult(sampleResult(), "xml")
	assert.Error(t, err)
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, "out/photo_tryon.png", outputPath("out", "in/photo.jpg"))
	assert.Equal(t, "out/photo_tryon.png", outputPath("out", "photo.png"))
}
