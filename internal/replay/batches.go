package replay

import "fmt"

// BlockRange is an inclusive block range.
type BlockRange struct {
	From uint64
	To   uint64
}

// Batches splits [from, to] into consecutive ranges of at most size blocks.
func Batches(from, to, size uint64) ([]BlockRange, error) {
	if size == 0 {
		return nil, fmt.Errorf("batch size must be greater than zero")
	}
	if to < from {
		return nil, fmt.Errorf("to block %d is before from block %d", to, from)
	}

	batches := make([]BlockRange, 0, (to-from)/size+1)
	for start := from; ; {
		end := to
		if to-start >= size {
			end = start + size - 1
		}
		batches = append(batches, BlockRange{From: start, To: end})
		if end == to {
			return batches, nil
		}
		start = end + 1
	}
}
