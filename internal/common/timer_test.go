package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNamedTimer(t *testing.T) {
	tm := NewNamedTimer("detect")
	time.Sleep(time.Millisecond)
	d := tm.Stop()

	assert.Equal(t, "detect", tm.Name())
	assert.Positive(t, d)
	assert.Equal(t, d, tm.Duration())
	assert.Contains(t, tm.String(), "detect:")
}

func TestStageTimingsRecord(t *testing.T) {
	st := StageTimings{}

	tm := NewNamedTimer("extract")
	tm.Stop()
	st.Record(tm)

	assert.Contains(t, st, "extract")
	assert.Equal(t, tm.Duration(), st["extract"])

	st.Record(nil)
	assert.Len(t, st, 1)
}
