// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package worker runs batched pipeline stages across a fixed-size pool
// of goroutines. Pair vetting and feature comparison both fan out
// through Map when their input exceeds the configured batch threshold.
package worker

import (
	"context"
	"sync"
)

// result carries one batch's output back with its input position so the
// merged output preserves batch order.
type result[R any] struct {
	index int
	out   R
	err   error
}

// Map applies fn to every batch across workers goroutines and returns
// the outputs in input order. The first error cancels the remaining
// batches and is returned; a failed batch aborts the whole job rather
// than producing a silently partial result.
func Map[T, R any](ctx context.Context, workers int, batches []T, fn func(context.Context, T) (R, error)) ([]R, error) {
	if len(batches) == 0 {
		return nil, nil
	}
	if workers <= 0 {
		workers = 1
	}
	if workers > len(batches) {
		workers = len(batches)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int)
	results := make(chan result[R], len(batches))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				out, err := fn(ctx, batches[i])
				select {
				case results <- result[R]{index: i, out: out, err: err}:
				case <-ctx.Done():
					return
				}
				if err != nil {
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range batches {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	outs := make([]R, len(batches))
	done := 0
	for r := range results {
		if r.err != nil {
			cancel()
			return nil, r.err
		}
		outs[r.index] = r.out
		done++
		if done == len(batches) {
			break
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return outs, nil
}

// Batches splits items into slices of at most size elements, preserving
// order. A non-positive size yields a single batch.
func Batches[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	if size <= 0 || size >= len(items) {
		return [][]T{items}
	}
	out := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		out = append(out, items[start:end])
	}
	return out
}
