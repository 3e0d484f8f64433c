package render

import (
	"sync"

	"github.com/TFMV/giantgraph/models"
)

// Buffer is a surface that keeps the latest painted frame for readers on
// other goroutines
type Buffer struct {
	mu      sync.RWMutex
	frame   *models.Frame
	painted uint64
}

// NewBuffer creates an empty buffer
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Paint stores the frame
func (b *Buffer) Paint(frame *models.Frame) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.frame = frame
	b.painted++
	return nil
}

// Latest returns the last painted frame or nil
func (b *Buffer) Latest() *models.Frame {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.frame
}

// Painted returns how many frames were painted
func (b *Buffer) Painted() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.painted
}

// Render renders the latest frame
func (b *Buffer) Render(options *OutputOptions) ([]byte, error) {
	return GenerateWithOptions(b.Latest(), options)
}
