package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	scifi "github.com/next-exp/scifi_go/pkg"
	"github.com/next-exp/scifi_go/pkg/hdf5io"
)

type WorkerData struct {
	Index int
	Event scifi.EventPulses
}

type WorkerResult struct {
	Index int
	ID    int32
	Event *scifi.Event
	Err   error
}

func worker(id int, reco *scifi.Reconstructor, jobs <-chan WorkerData, results chan<- WorkerResult) {
	for job := range jobs {
		if VerbosityLevel > 2 {
			message := fmt.Sprintf("Worker %d processing event %d", id, job.Event.ID)
			logger.Info(message, "worker")
		}
		event, err := reconstructEvent(reco, job.Event)
		results <- WorkerResult{Index: job.Index, ID: job.Event.ID, Event: event, Err: err}
	}
}

// reconstructEvent returns a nil event when the reconstruction panicked and
// errors are discarded.
func reconstructEvent(reco *scifi.Reconstructor, input scifi.EventPulses) (event *scifi.Event, err error) {
	defer func() {
		if r := recover(); r != nil {
			errMessage := fmt.Errorf("reconstruction recovered from panic on event %d: %v", input.ID, r)
			logger.Error(errMessage.Error())
			event = nil
			if !DiscardErrors {
				err = errMessage
				return
			}
			message := fmt.Sprintf("discarding event %d", input.ID)
			logger.Error(message)
			err = nil
		}
	}()
	return reco.Reconstruct(input.ID, input.Pulses)
}

// eventSource yields events until io.EOF.
type eventSource interface {
	getNextEvent() (scifi.EventPulses, error)
}

func sendEventsToWorkers(ctx context.Context, reader eventSource, jobs chan<- WorkerData) error {
	index := 0
	for {
		event, err := reader.getNextEvent()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			message := fmt.Errorf("error reading event %d: %w", index, err)
			logger.Error(message.Error())
			return message
		}
		select {
		case jobs <- WorkerData{Index: index, Event: event}:
			index++
		case <-ctx.Done():
			return nil
		}
	}
}

// processWorkerResults writes the events in input order. Results arrive out
// of order and wait in pending until their predecessors are written. The
// first error aborts the run through cancel; results keep being drained so
// workers never block.
func processWorkerResults(results <-chan WorkerResult, writer *hdf5io.Writer, cancel context.CancelFunc) (int, error) {
	pending := make(map[int]WorkerResult)
	next := 0
	written := 0
	var errs []error

	for result := range results {
		pending[result.Index] = result
		for {
			r, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++
			if len(errs) > 0 {
				continue
			}
			if r.Err != nil {
				errs = append(errs, r.Err)
				cancel()
				continue
			}
			if r.Event == nil {
				continue
			}
			if writer != nil {
				if err := writer.WriteEvent(r.Event); err != nil {
					errs = append(errs, fmt.Errorf("error writing event %d: %w", r.ID, err))
					cancel()
					continue
				}
			}
			written++
		}
	}
	return written, errors.Join(errs...)
}

func runWorkers(ctx context.Context, reco *scifi.Reconstructor, reader eventSource,
	writer *hdf5io.Writer, numWorkers int) (int, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if numWorkers < 1 {
		numWorkers = 1
	}
	jobs := make(chan WorkerData, numWorkers)
	results := make(chan WorkerResult, numWorkers)

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			worker(id, reco, jobs, results)
		}(w)
	}
	// readErr is set before jobs is closed and read once results are drained
	var readErr error
	go func() {
		readErr = sendEventsToWorkers(ctx, reader, jobs)
		close(jobs)
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	written, err := processWorkerResults(results, writer, cancel)
	return written, errors.Join(err, readErr)
}
