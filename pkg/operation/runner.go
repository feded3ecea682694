// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package operation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/walteh/kindlecbz/pkg/config"
	"github.com/walteh/kindlecbz/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// EventKind identifies what an Event reports.
type EventKind int

const (
	EventVolumeStarted EventKind = iota + 1
	EventLog
	EventProgress
	EventPage
	EventVolumeDone
	EventVolumeFailed
	EventBatchDone
)

func (k EventKind) String() string {
	switch k {
	case EventVolumeStarted:
		return "volume_started"
	case EventLog:
		return "log"
	case EventProgress:
		return "progress"
	case EventPage:
		return "page"
	case EventVolumeDone:
		return "volume_done"
	case EventVolumeFailed:
		return "volume_failed"
	case EventBatchDone:
		return "batch_done"
	default:
		return "unknown"
	}
}

// 📨 Event is one message from the batch worker to the front end
type Event struct {
	Kind    EventKind
	Index   int               // 1-based volume position, 0 for batch events
	Total   int               // Volumes in the batch
	Input   string            // Volume input path
	Message string            // EventLog
	Percent float64           // EventProgress, overall batch percent
	Page    *PageResult       // EventPage
	Result  *VolumeResult     // EventVolumeDone
	Info    status.VolumeInfo // EventVolumeDone, EventVolumeFailed
	Err     error             // EventVolumeFailed
	Summary *status.Summary   // EventBatchDone
}

// 🏃 Runner converts a batch of inputs, one volume at a time, on its own goroutine
type Runner struct {
	processor *Processor
	cfg       config.Config
}

// 🏗️ NewRunner creates a new runner
func NewRunner(processor *Processor, cfg config.Config) *Runner {
	return &Runner{
		processor: processor,
		cfg:       cfg,
	}
}

// 🏃 Start converts inputs in the background. The channel is closed after EventBatchDone and
// must be drained.
func (r *Runner) Start(ctx context.Context, inputs []string) <-chan Event {
	events := make(chan Event, 16)
	go func() {
		defer close(events)
		r.run(ctx, inputs, func(ev Event) { events <- ev })
	}()
	return events
}

// 🔄 Run converts inputs and blocks until the batch is done, handing every event to fn.
func (r *Runner) Run(ctx context.Context, inputs []string, fn func(Event)) *status.Summary {
	var summary *status.Summary
	for ev := range r.Start(ctx, inputs) {
		if fn != nil {
			fn(ev)
		}
		if ev.Kind == EventBatchDone {
			summary = ev.Summary
		}
	}
	return summary
}

func (r *Runner) run(ctx context.Context, inputs []string, emit func(Event)) {
	logger := zerolog.Ctx(ctx)
	summary := status.NewSummary()
	tracker := status.NewTracker(len(inputs))
	total := tracker.Total()

	logf := func(idx int, input, msg string) {
		emit(Event{Kind: EventLog, Index: idx, Total: total, Input: input, Message: msg})
	}

	outputDir := r.cfg.OutputDir
	if outputDir == "" {
		outputDir = "."
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		err = errors.Errorf("creating output folder %s: %w", outputDir, err)
		logf(0, "", "ERROR "+err.Error())
		for i, input := range inputs {
			info := status.VolumeInfo{Input: input, Status: status.StatusFailed, Error: err}
			summary.Record(info)
			emit(Event{Kind: EventVolumeFailed, Index: i + 1, Total: total, Input: input, Info: info, Err: err})
		}
		emit(Event{Kind: EventBatchDone, Total: total, Summary: summary})
		return
	}

	for i, input := range inputs {
		idx := i + 1

		if err := ctx.Err(); err != nil {
			logf(idx, input, fmt.Sprintf("SKIPPED %s: %v", input, err))

			info := status.VolumeInfo{Input: input, Status: status.StatusCancelled, Error: err}
			summary.Record(info)
			emit(Event{Kind: EventVolumeFailed, Index: idx, Total: total, Input: input, Info: info, Err: err})
			continue
		}

		emit(Event{Kind: EventVolumeStarted, Index: idx, Total: total, Input: input, Percent: tracker.StartVolume(idx)})
		logf(idx, input, fmt.Sprintf("=== Processing %s (%d/%d) ===", filepath.Base(input), idx, total))

		res, err := r.processor.ProcessVolume(ctx, Request{
			Input:     input,
			OutputDir: outputDir,
			Config:    r.cfg,
			Progress: func(p float64) {
				emit(Event{Kind: EventProgress, Index: idx, Total: total, Input: input, Percent: tracker.Update(p)})
			},
			Log: func(msg string) {
				logf(idx, input, msg)
			},
			Page: func(pr PageResult) {
				emit(Event{Kind: EventPage, Index: idx, Total: total, Input: input, Page: &pr})
			},
		})
		if err != nil {
			st := status.StatusFailed
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				st = status.StatusCancelled
			}
			logger.Debug().Err(err).Str("input", input).Msg("volume failed")
			logf(idx, input, fmt.Sprintf("ERROR processing %s: %v", input, err))

			info := status.VolumeInfo{Input: input, Status: st, Error: err}
			summary.Record(info)
			emit(Event{Kind: EventVolumeFailed, Index: idx, Total: total, Input: input, Info: info, Err: err})
			continue
		}

		logf(idx, input, "Done: "+res.ArchivePath)

		info := status.VolumeInfo{
			Input:       input,
			Status:      status.StatusDone,
			ArchivePath: res.ArchivePath,
			Attempted:   res.Attempted,
			Written:     res.Written,
			Failed:      len(res.Failures),
		}
		summary.Record(info)
		emit(Event{Kind: EventVolumeDone, Index: idx, Total: total, Input: input, Result: res, Info: info, Percent: tracker.Update(100)})
	}

	logf(0, "", "All done.")
	emit(Event{Kind: EventBatchDone, Total: total, Summary: summary, Percent: tracker.Percent()})
}
