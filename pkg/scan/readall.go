package scan

import (
	"context"
)

// Result holds every batch of a completed scan.
type Result struct {
	Names   []string
	Batches []*Batch
	Stats   Stats
}

// Rows returns the total number of rows across batches.
func (r *Result) Rows() int {
	n := 0
	for _, b := range r.Batches {
		n += b.Len
	}
	return n
}

// ReadAll binds data, initializes a scanner over columnIDs and drains it.
// The terminating empty batch is not included in the result.
func ReadAll(ctx context.Context, data []byte, opts Options, columnIDs []int) (*Result, error) {
	bd, err := Bind(ctx, data, opts)
	if err != nil {
		return nil, err
	}
	s, err := bd.Init(ctx, columnIDs)
	if err != nil {
		return nil, err
	}

	res := &Result{Names: s.Names()}
	for {
		batch, err := s.Next(ctx)
		if err != nil {
			return nil, err
		}
		if batch.Len == 0 {
			break
		}
		res.Batches = append(res.Batches, batch)
	}
	res.Stats = s.Stats()
	return res, nil
}
