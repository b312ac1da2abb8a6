// Copyright 2020 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package parallel

import (
	"runtime"
	"sync"

	"github.com/samber/lo"
)

const chanSize = 1024

// Workers returns nWorkers if positive, otherwise GOMAXPROCS.
func Workers(nWorkers int) int {
	if nWorkers > 0 {
		return nWorkers
	}
	return runtime.GOMAXPROCS(0)
}

/* Parallel Schedulers */

// For runs worker(0) ... worker(nJobs-1) on nWorkers goroutines and returns once
// every job has finished. Jobs are handed out in order but may complete in any
// order.
func For(nJobs, nWorkers int, worker func(int)) {
	if nWorkers > nJobs {
		nWorkers = nJobs
	}
	if nWorkers <= 1 {
		for i := 0; i < nJobs; i++ {
			worker(i)
		}
	} else {
		c := make(chan int, min(nJobs, chanSize))
		// producer
		go func() {
			for i := 0; i < nJobs; i++ {
				c <- i
			}
			close(c)
		}()
		// consumer
		var wg sync.WaitGroup
		for j := 0; j < nWorkers; j++ {
			// start workers
			wg.Go(func() {
				for jobId := range c {
					worker(jobId)
				}
			})
		}
		wg.Wait()
	}
}

// ForEach runs worker on every element of a on nWorkers goroutines.
func ForEach[T any](a []T, nWorkers int, worker func(int, T)) {
	if nWorkers > len(a) {
		nWorkers = len(a)
	}
	if nWorkers <= 1 {
		for i, v := range a {
			worker(i, v)
		}
	} else {
		c := make(chan lo.Tuple2[int, T], min(len(a), chanSize))
		// producer
		go func() {
			for i, v := range a {
				c <- lo.Tuple2[int, T]{A: i, B: v}
			}
			close(c)
		}()
		// consumer
		var wg sync.WaitGroup
		for j := 0; j < nWorkers; j++ {
			// start workers
			wg.Go(func() {
				for job := range c {
					worker(job.A, job.B)
				}
			})
		}
		wg.Wait()
	}
}

// Split a slice into n slices and keep the order of elements.
func Split[T any](a []T, n int) [][]T {
	if len(a) == 0 || n <= 0 {
		return nil
	}
	if n > len(a) {
		n = len(a)
	}
	minChunkSize := len(a) / n
	maxChunkNum := len(a) % n
	chunks := make([][]T, n)
	for i, j := 0, 0; i < n; i++ {
		chunkSize := minChunkSize
		if i < maxChunkNum {
			chunkSize++
		}
		chunks[i] = a[j : j+chunkSize]
		j += chunkSize
	}
	return chunks
}
