package parallel

// ForEach calls fn(i) for every i in [0, n) using at most workers
// goroutines and returns once all calls have finished. fn must only touch
// state owned by index i. Panics are recovered per call and handed to the
// pool's options; the remaining indices still run.
func ForEach(n, workers int, fn func(i int), opts ...Option) error {
	if n <= 0 {
		return nil
	}
	if workers > n {
		workers = n
	}

	pool, err := NewWorkerPool(workers, opts...)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		pool.Submit(func() { fn(i) })
	}
	pool.Close()
	return nil
}
