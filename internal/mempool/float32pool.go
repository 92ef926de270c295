package mempool

import "sync"

// Sized pools for []float32 tensor buffers used on the detector hot path.
// Buffers are bucketed by rounded-up capacity to limit pool churn.

var float32Pools sync.Map // key: size class (int), value: *sync.Pool

const step = 1024

// sizeClass rounds n up to the next multiple of the bucket step.
func sizeClass(n int) int {
	if n <= step {
		return step
	}
	return ((n + step - 1) / step) * step
}

// GetFloat32 returns a []float32 with length n from the pool. The slice may
// contain stale values; callers overwrite every element. Return it with
// PutFloat32 when done.
func GetFloat32(n int) []float32 {
	cls := sizeClass(n)
	pAny, _ := float32Pools.LoadOrStore(cls, &sync.Pool{New: func() any { return make([]float32, cls) }})
	p, ok := pAny.(*sync.Pool)
	if !ok {
		return make([]float32, cls)[:n]
	}
	buf, ok := p.Get().([]float32)
	if !ok || cap(buf) < cls {
		buf = make([]float32, cls)
	}
	return buf[:cap(buf)][:n]
}

// PutFloat32 returns a buffer to its pool. Nil slices are ignored.
func PutFloat32(buf []float32) {
	if buf == nil {
		return
	}
	cls := sizeClass(cap(buf))
	pAny, _ := float32Pools.LoadOrStore(cls, &sync.Pool{New: func() any { return make([]float32, cls) }})
	if p, ok := pAny.(*sync.Pool); ok {
		p.Put(buf[:cap(buf)]) //nolint:staticcheck
	}
}
