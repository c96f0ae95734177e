package snmpclient

import (
	"context"
	"sync"

	"github.com/vpbank/rackctl/models"
)

// portFunc performs one port's exchange.
type portFunc func(ctx context.Context, port uint32) (models.PortStatus, error)

// slot is the private result cell of one port task.
type slot struct {
	status models.PortStatus
	err    error
}

// fanOut runs do for every port on at most workers goroutines and returns
// once all of them have finished. slots[i] belongs to ports[i] and is written
// by exactly one goroutine, so no locking is needed. Ports still waiting for
// a worker when ctx ends are marked with ctx.Err() and never started.
func fanOut(ctx context.Context, workers int, ports []uint32, do portFunc) []slot {
	slots := make([]slot, len(ports))
	if len(ports) == 0 {
		return slots
	}
	if workers <= 0 || workers > len(ports) {
		workers = len(ports)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				st, err := do(ctx, ports[i])
				slots[i] = slot{status: st, err: err}
			}
		}()
	}

dispatch:
	for i := range ports {
		select {
		case jobs <- i:
		case <-ctx.Done():
			for j := i; j < len(ports); j++ {
				slots[j] = slot{err: ctx.Err()}
			}
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()
	return slots
}
