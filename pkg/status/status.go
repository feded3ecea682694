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

package status

import (
	"sync"
)

// 📊 VolumeStatus represents where a volume is in the batch
type VolumeStatus int

const (
	StatusUnknown   VolumeStatus = iota
	StatusPending                // Queued, not started
	StatusRunning                // Pages are being processed
	StatusDone                   // Archive written
	StatusFailed                 // Volume-level error, no archive
	StatusCancelled              // Batch was cancelled before or during this volume
)

// String returns a string representation of VolumeStatus
func (s VolumeStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusDone:
		return "done"
	case StatusFailed:
		return "failed"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// 📄 VolumeInfo is the outcome of one volume
type VolumeInfo struct {
	Input       string       // Input path as given
	Status      VolumeStatus // Final status
	ArchivePath string       // Written archive, empty unless done
	Attempted   int          // Pages attempted
	Written     int          // Pages written to the archive
	Failed      int          // Pages that failed
	Error       error        // Volume-level error, if any
}

// 📋 Summary collects volume outcomes in batch order
type Summary struct {
	mu      sync.RWMutex
	volumes []VolumeInfo
}

// 🏭 NewSummary creates an empty summary
func NewSummary() *Summary {
	return &Summary{}
}

// Record appends a volume outcome.
func (s *Summary) Record(info VolumeInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volumes = append(s.volumes, info)
}

// Volumes returns a copy of the recorded outcomes.
func (s *Summary) Volumes() []VolumeInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]VolumeInfo(nil), s.volumes...)
}

// Count returns how many volumes ended with the given status.
func (s *Summary) Count(status VolumeStatus) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, v := range s.volumes {
		if v.Status == status {
			n++
		}
	}
	return n
}

// Pages returns the total pages written and failed across all volumes.
func (s *Summary) Pages() (written, failed int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, v := range s.volumes {
		written += v.Written
		failed += v.Failed
	}
	return written, failed
}

// OK reports whether every recorded volume produced an archive.
func (s *Summary) OK() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, v := range s.volumes {
		if v.Status != StatusDone {
			return false
		}
	}
	return true
}

// 📈 Tracker turns per-volume page progress into an overall batch percentage
type Tracker struct {
	mu      sync.Mutex
	total   int
	current int
	percent float64
}

// 🏭 NewTracker creates a tracker for a batch of total volumes
func NewTracker(total int) *Tracker {
	return &Tracker{total: total}
}

// StartVolume marks volume index (1-based) as active and returns the overall percent at its start.
func (t *Tracker) StartVolume(index int) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.current = index
	t.percent = t.overall(0)
	return t.percent
}

// Update records the active volume's page progress p (0-100) and returns the overall percent.
func (t *Tracker) Update(p float64) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.percent = t.overall(p)
	return t.percent
}

// Percent returns the last computed overall percent.
func (t *Tracker) Percent() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.percent
}

// Total returns the number of volumes in the batch.
func (t *Tracker) Total() int {
	return t.total
}

func (t *Tracker) overall(p float64) float64 {
	if t.total <= 0 || t.current <= 0 {
		return 0
	}
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	return float64(t.current-1)/float64(t.total)*100 + p/float64(t.total)
}
