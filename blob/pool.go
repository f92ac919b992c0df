package blob

import "sync"

// linePool is a bounded free list of line buffers shared by all blobs
type linePool struct {
	mu   sync.Mutex
	free [][]HorizontalLine
}

var sharedLines linePool

// GetLineBuffer returns an empty line buffer, reusing a released one when available
func GetLineBuffer(capacity int) []HorizontalLine {
	sharedLines.mu.Lock()
	n := len(sharedLines.free)
	if n == 0 {
		sharedLines.mu.Unlock()
		return make([]HorizontalLine, 0, capacity)
	}
	buf := sharedLines.free[n-1]
	sharedLines.free[n-1] = nil
	sharedLines.free = sharedLines.free[:n-1]
	sharedLines.mu.Unlock()
	if cap(buf) < capacity {
		return make([]HorizontalLine, 0, capacity)
	}
	return buf[:0]
}

// putLineBuffer hands buf back unless the free list already holds limit buffers
func putLineBuffer(buf []HorizontalLine, limit int) {
	if cap(buf) == 0 {
		return
	}
	sharedLines.mu.Lock()
	if len(sharedLines.free) < limit {
		sharedLines.free = append(sharedLines.free, buf[:0])
	}
	sharedLines.mu.Unlock()
}
