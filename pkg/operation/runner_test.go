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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/kindlecbz/pkg/status"
)

func collect(t *testing.T, runner *Runner, ctx context.Context, inputs []string) ([]Event, *status.Summary) {
	t.Helper()
	var events []Event
	summary := runner.Run(ctx, inputs, func(ev Event) { events = append(events, ev) })
	require.NotNil(t, summary, "a summary should always be returned")
	return events, summary
}

func logMessages(events []Event) []string {
	var msgs []string
	for _, ev := range events {
		if ev.Kind == EventLog {
			msgs = append(msgs, ev.Message)
		}
	}
	return msgs
}

func TestRunnerContinuesAfterFailure(t *testing.T) {
	tmp := t.TempDir()
	bad := filepath.Join(tmp, "notes.txt")
	require.NoError(t, os.WriteFile(bad, []byte("x"), 0644))
	good := filepath.Join(tmp, "vol2")
	writePages(t, good, 2)

	cfg := testConfig(t)
	cfg.OutputDir = filepath.Join(tmp, "out", "nested")

	events, summary := collect(t, NewRunner(NewProcessor(Options{}), cfg), context.Background(), []string{bad, good})

	assert.Equal(t, 1, summary.Count(status.StatusFailed), "the text file should fail")
	assert.Equal(t, 1, summary.Count(status.StatusDone), "the directory should convert")
	assert.False(t, summary.OK())

	_, err := os.Stat(filepath.Join(cfg.OutputDir, "vol2 - kindle.cbz"))
	assert.NoError(t, err, "the output folder should be created and hold the archive")

	msgs := logMessages(events)
	assert.Contains(t, msgs, "=== Processing notes.txt (1/2) ===")
	assert.Contains(t, msgs, "=== Processing vol2 (2/2) ===")
	assert.Contains(t, msgs, "Done: "+filepath.Join(cfg.OutputDir, "vol2 - kindle.cbz"))
	assert.Equal(t, "All done.", msgs[len(msgs)-1], "the batch should end with a final line")

	var kinds []EventKind
	for _, ev := range events {
		if ev.Kind != EventLog && ev.Kind != EventProgress && ev.Kind != EventPage {
			kinds = append(kinds, ev.Kind)
		}
	}
	assert.Equal(t, []EventKind{EventVolumeStarted, EventVolumeFailed, EventVolumeStarted, EventVolumeDone, EventBatchDone}, kinds,
		"volume events should arrive in order")

	last := events[len(events)-1]
	assert.Equal(t, EventBatchDone, last.Kind, "batch done should be the final event")
	assert.Same(t, summary, last.Summary)
}

func TestRunnerOverallProgress(t *testing.T) {
	tmp := t.TempDir()
	a := filepath.Join(tmp, "a")
	b := filepath.Join(tmp, "b")
	writePages(t, a, 2)
	writePages(t, b, 4)

	events, summary := collect(t, NewRunner(NewProcessor(Options{}), testConfig(t)), context.Background(), []string{a, b})
	assert.True(t, summary.OK())

	var progress []float64
	pages := 0
	for _, ev := range events {
		switch ev.Kind {
		case EventProgress:
			progress = append(progress, ev.Percent)
		case EventPage:
			pages++
			require.NotNil(t, ev.Page)
		}
	}

	assert.Equal(t, []float64{25, 50, 62.5, 75, 87.5, 100}, progress, "page progress should map onto the batch")
	assert.Equal(t, 6, pages, "every page should be reported")
}

func TestRunnerCancelled(t *testing.T) {
	tmp := t.TempDir()
	a := filepath.Join(tmp, "a")
	writePages(t, a, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := testConfig(t)
	events, summary := collect(t, NewRunner(NewProcessor(Options{}), cfg), ctx, []string{a, a})

	assert.Equal(t, 2, summary.Count(status.StatusCancelled), "nothing should run after cancellation")

	var skipped, failed []Event
	for _, ev := range events {
		assert.NotEqual(t, EventVolumeStarted, ev.Kind, "no volume should start")
		switch {
		case ev.Kind == EventLog && strings.HasPrefix(ev.Message, "SKIPPED "):
			skipped = append(skipped, ev)
		case ev.Kind == EventVolumeFailed:
			failed = append(failed, ev)
		}
	}
	assert.Len(t, skipped, 2, "every skipped volume should get a log line")
	require.Len(t, failed, 2, "every skipped volume should be reported")
	for i, ev := range failed {
		assert.Equal(t, i+1, ev.Index, "skipped volumes should keep their batch index")
		assert.Equal(t, status.StatusCancelled, ev.Info.Status, "skipped volumes should be cancelled")
		assert.ErrorIs(t, ev.Err, context.Canceled, "the cancellation should be attached")
	}

	entries, err := os.ReadDir(cfg.OutputDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no archive should be written")
}

func TestRunnerOutputDirUnusable(t *testing.T) {
	tmp := t.TempDir()
	file := filepath.Join(tmp, "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	cfg := testConfig(t)
	cfg.OutputDir = filepath.Join(file, "out")

	events, summary := collect(t, NewRunner(NewProcessor(Options{}), cfg), context.Background(), []string{"a", "b"})
	assert.Equal(t, 2, summary.Count(status.StatusFailed), "every volume should be failed")
	assert.Equal(t, EventBatchDone, events[len(events)-1].Kind)
}

func TestEventKindString(t *testing.T) {
	assert.Equal(t, "volume_started", EventVolumeStarted.String())
	assert.Equal(t, "batch_done", EventBatchDone.String())
	assert.Equal(t, "unknown", EventKind(0).String())
}
