package tempo

import (
	"golang.org/x/sync/errgroup"
)

// ParForEach splits a slice of entity indices into chunks and processes
// each chunk on its own goroutine, for use inside system bodies with large
// per-entity workloads. Below the configured threshold it iterates
// sequentially, where goroutine overhead would dominate.
//
// Safety precondition, upheld by the caller and not rechecked here: the
// indices are unique and per-index storage access is disjoint, so no two
// chunks can alias the same slot.
func ParForEach(cfg *Config, indices []int, fn func(index int) error) error {
	cfg = cfg.normalized()

	if len(indices) < cfg.ParallelThreshold {
		for _, i := range indices {
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	}

	chunk := len(indices) / (cfg.Workers * 4)
	if chunk < cfg.MinBatchSize {
		chunk = cfg.MinBatchSize
	}
	if chunk < 1 {
		chunk = 1
	}

	var g errgroup.Group
	g.SetLimit(cfg.Workers)
	for start := 0; start < len(indices); start += chunk {
		end := start + chunk
		if end > len(indices) {
			end = len(indices)
		}
		batch := indices[start:end]
		g.Go(func() error {
			for _, i := range batch {
				if err := fn(i); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}
