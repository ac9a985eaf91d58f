package lightmap

import (
	"runtime"
	"sync"
)

// factorWorkerPool computes rows of the view factor matrix in parallel
type factorWorkerPool struct {
	lightmap    *Lightmap
	taskQueue   chan int // Row indices
	resultQueue chan FactorStats
	numWorkers  int
	wg          sync.WaitGroup
}

// newFactorWorkerPool creates a pool with the specified number of workers
func newFactorWorkerPool(lm *Lightmap, numWorkers int) *factorWorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	// One slot per row so neither submitting nor reporting ever blocks
	rows := len(lm.Patches)
	return &factorWorkerPool{
		lightmap:    lm,
		taskQueue:   make(chan int, rows),
		resultQueue: make(chan FactorStats, rows),
		numWorkers:  numWorkers,
	}
}

// Start begins all workers
func (wp *factorWorkerPool) Start() {
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.run()
	}
}

// Stop waits for the submitted rows and closes the result queue
func (wp *factorWorkerPool) Stop() {
	close(wp.taskQueue) // No more tasks
	wp.wg.Wait()        // Wait for workers to finish
	close(wp.resultQueue)
}

// SubmitTask queues one row
func (wp *factorWorkerPool) SubmitTask(row int) {
	wp.taskQueue <- row
}

// GetResult retrieves the statistics of a completed row
func (wp *factorWorkerPool) GetResult() (FactorStats, bool) {
	result, ok := <-wp.resultQueue
	return result, ok
}

// GetNumWorkers returns the number of workers in the pool
func (wp *factorWorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

func (wp *factorWorkerPool) run() {
	defer wp.wg.Done()
	for row := range wp.taskQueue {
		wp.resultQueue <- wp.lightmap.computeFactorRow(row)
	}
}
