package broker

import "context"

// fanOut runs op once per item, all concurrently, and aggregates results
// positionally: results[i] corresponds to items[i] no matter which call
// finishes first. The first failure completes the aggregation immediately;
// completions arriving afterward land in the buffered channel and are
// discarded, so no goroutine blocks and op is never asked to complete twice.
// An empty items slice completes at once with an empty result.
func fanOut[P, R any](ctx context.Context, items []P, op func(context.Context, P) (R, error)) ([]R, error) {
	results := make([]R, len(items))
	if len(items) == 0 {
		return results, nil
	}

	type completion struct {
		index int
		value R
		err   error
	}

	// Buffer holds every completion so stragglers never leak.
	done := make(chan completion, len(items))
	for i, item := range items {
		go func(index int, item P) {
			value, err := op(ctx, item)
			done <- completion{index: index, value: value, err: err}
		}(i, item)
	}

	for pending := len(items); pending > 0; pending-- {
		c := <-done
		if c.err != nil {
			return nil, c.err
		}
		results[c.index] = c.value
	}
	return results, nil
}
