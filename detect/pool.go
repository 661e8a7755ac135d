package detect

import (
	"sync"
)

// Pool is a simple pool of person detectors used to run inference on
// multiple frames in parallel, as a single DNN network cannot run
// Forward calls concurrently
type Pool struct {
	// pool of detectors
	detectors chan Detector
	// size of pool
	size  int
	close sync.Once
}

// NewPool creates a new detector pool of the given size, loading the
// model once per slot
func NewPool(size int, newDetector func() (Detector, error)) (*Pool, error) {

	p := &Pool{
		detectors: make(chan Detector, size),
		size:      size,
	}

	for i := 0; i < size; i++ {
		det, err := newDetector()

		if err != nil {
			// close any instances that may have been created before
			// receiving the error
			p.Close()
			return nil, err
		}

		// attach to pool
		p.Return(det)
	}

	return p, nil
}

// Get a detector from the pool, blocking until one is free
func (p *Pool) Get() Detector {
	return <-p.detectors
}

// Return a detector to the pool
func (p *Pool) Return(det Detector) {
	select {
	case p.detectors <- det:
	default:
		// pool is full or closed
	}
}

// Close the pool and all detectors in it
func (p *Pool) Close() {
	p.close.Do(func() {
		close(p.detectors)

		for next := range p.detectors {
			_ = next.Close()
		}
	})
}
