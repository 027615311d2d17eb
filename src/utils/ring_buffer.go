package utils

import (
	"github.com/Guide5210/Tensiometer-Arduino/src/models"
)

// Feature layout of one stored row.
const (
	rbNumFeatures = 3
	rbIdxElapsed  = 0
	rbIdxForce    = 1
	rbIdxPosition = 2
)

// -----------------------------------------------------------------------------
// RingBuffer is a fixed-size circular buffer of samples. Monitor mode streams
// indefinitely, so the live window exposed to observers must stay bounded.
// True ring buffer - no resizing allowed!
// -----------------------------------------------------------------------------

type RingBuffer struct {
	data     [][rbNumFeatures]float64
	capacity int
	index    int // Next write position
	size     int // Current number of elements
}

// -----------------------------------------------------------------------------

// NewRingBuffer creates a new buffer with fixed capacity
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = 1000 // Default reasonable size
	}

	return &RingBuffer{
		data:     make([][rbNumFeatures]float64, capacity),
		capacity: capacity,
		index:    0,
		size:     0,
	}
}

// -----------------------------------------------------------------------------

// Append adds a sample, overwriting the oldest entry when full
func (rb *RingBuffer) Append(sample models.MSample) {
	rb.data[rb.index] = [rbNumFeatures]float64{
		sample.Elapsed,
		sample.Force,
		sample.Position,
	}

	rb.index = (rb.index + 1) % rb.capacity

	// Update size (never exceeds capacity)
	if rb.size < rb.capacity {
		rb.size++
	}
}

// -----------------------------------------------------------------------------

// GetLatest returns the n newest samples, oldest of them first
func (rb *RingBuffer) GetLatest(n int) []models.MSample {
	if rb.size == 0 || n <= 0 {
		return []models.MSample{}
	}

	count := n
	if n > rb.size {
		count = rb.size
	}

	result := make([]models.MSample, count)

	// Latest data is at index-1
	startIdx := (rb.index - count + rb.capacity) % rb.capacity

	for i := 0; i < count; i++ {
		idx := (startIdx + i) % rb.capacity
		row := rb.data[idx]
		result[i] = models.MSample{
			Elapsed:  row[rbIdxElapsed],
			Force:    row[rbIdxForce],
			Position: row[rbIdxPosition],
		}
	}

	return result
}

// -----------------------------------------------------------------------------

// GetAll returns all data in insertion order (oldest to newest)
func (rb *RingBuffer) GetAll() []models.MSample {
	if rb.size == 0 {
		return []models.MSample{}
	}

	result := make([]models.MSample, rb.size)

	// Oldest element: at the write index once the buffer has wrapped
	var startIdx int
	if rb.size == rb.capacity {
		startIdx = rb.index
	} else {
		startIdx = 0
	}

	for i := 0; i < rb.size; i++ {
		idx := (startIdx + i) % rb.capacity
		row := rb.data[idx]
		result[i] = models.MSample{
			Elapsed:  row[rbIdxElapsed],
			Force:    row[rbIdxForce],
			Position: row[rbIdxPosition],
		}
	}

	return result
}

// -----------------------------------------------------------------------------

// Size returns current number of elements
func (rb *RingBuffer) Size() int {
	return rb.size
}

// -----------------------------------------------------------------------------

// Capacity returns buffer capacity (fixed)
func (rb *RingBuffer) Capacity() int {
	return rb.capacity
}

// -----------------------------------------------------------------------------

// IsFull returns whether buffer is full
func (rb *RingBuffer) IsFull() bool {
	return rb.size == rb.capacity
}

// -----------------------------------------------------------------------------

// Clear resets the buffer
func (rb *RingBuffer) Clear() {
	rb.index = 0
	rb.size = 0
}
