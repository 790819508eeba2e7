package buffer

// ReplacementStrategy decides which buffer to evict from the pool when a new
// block needs to be pinned and no buffer is already assigned to it.
type ReplacementStrategy interface {
	// initialize is called once by the buffer Manager with the full pool, so
	// the strategy can set up whatever bookkeeping it needs.
	initialize(bufferPool []*Buffer)

	// chooseUnpinnedBuffer returns an unpinned buffer to reuse, or nil if
	// every buffer in the pool is currently pinned.
	chooseUnpinnedBuffer() *Buffer

	// pinBuffer notifies the strategy that the given buffer was just pinned.
	pinBuffer(buffer *Buffer)

	// unpinBuffer notifies the strategy that the given buffer was just unpinned.
	unpinBuffer(buffer *Buffer)
}

// NaiveStrategy chooses the first unpinned buffer it finds in pool order.
// It keeps no extra bookkeeping and is the default replacement strategy.
type NaiveStrategy struct {
	bufferPool []*Buffer
}

// NewNaiveStrategy creates a ReplacementStrategy that scans the pool in order.
func NewNaiveStrategy() *NaiveStrategy {
	return &NaiveStrategy{}
}

func (s *NaiveStrategy) initialize(bufferPool []*Buffer) {
	s.bufferPool = bufferPool
}

func (s *NaiveStrategy) chooseUnpinnedBuffer() *Buffer {
	for _, buff := range s.bufferPool {
		if !buff.isPinned() {
			return buff
		}
	}
	return nil
}

func (s *NaiveStrategy) pinBuffer(_ *Buffer)   {}
func (s *NaiveStrategy) unpinBuffer(_ *Buffer) {}
