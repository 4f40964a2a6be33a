// Package producer feeds opened input files into the handle queue.
package producer

import (
	"context"
	"fmt"
	"log"

	"fastwc/internal/datasource"
	"fastwc/internal/queue"
)

// Summary reports what the producer did with the paths it was given.
type Summary struct {
	Found     int // paths handed to Run
	Submitted int // handles successfully opened and queued
	Skipped   int // paths that could not be opened
}

// Producer opens each input path and pushes the handle into the queue. It owns
// no counting logic.
type Producer struct {
	Queue   *queue.Queue
	Workers int // number of End sentinels to submit
	Opener  datasource.Opener
	Logger  *log.Logger // nil means log.Default()
}

// Run reserves a slot for every path, opens it, and submits the handle. A path
// that cannot be opened is logged and skipped; its reserved slot is released
// so the queue never stalls. After the last path, one End sentinel per worker
// is submitted.
//
// Run only returns an error when ctx is done while waiting for a slot.
func (p *Producer) Run(ctx context.Context, paths []string) (Summary, error) {
	lg := p.Logger
	if lg == nil {
		lg = log.Default()
	}
	sum := Summary{Found: len(paths)}

	for _, path := range paths {
		if err := p.Queue.Reserve(ctx); err != nil {
			return sum, fmt.Errorf("producer: %w", err)
		}
		rc, err := p.Opener.Open(ctx, path)
		if err != nil {
			lg.Printf("producer: unable to open file: %v", err)
			p.Queue.Release()
			sum.Skipped++
			continue
		}
		p.Queue.Submit(queue.Handle{Name: path, R: rc})
		sum.Submitted++
	}

	if err := p.Queue.SubmitEnd(ctx, p.Workers); err != nil {
		return sum, fmt.Errorf("producer: %w", err)
	}
	return sum, nil
}
