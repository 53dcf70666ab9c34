package history

// MaxHistoryLength is the capacity of every history series.
const MaxHistoryLength = 1000

// series is an append only, length capped sequence. Eviction is FIFO.
type series[T any] struct {
	items []T
}

func (s *series[T]) append(item T, capacity int) {
	if capacity < 1 {
		capacity = 1
	}
	if len(s.items) >= capacity {
		n := copy(s.items, s.items[len(s.items)-capacity+1:])
		s.items = s.items[:n]
	}
	s.items = append(s.items, item)
}

func (s *series[T]) latest() (T, bool) {
	if len(s.items) == 0 {
		var zero T
		return zero, false
	}
	return s.items[len(s.items)-1], true
}
