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

package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/walteh/kindlecbz/pkg/status"
)

// 🎯 PageOperation represents one processed page for logging
type PageOperation struct {
	Index  int    // 1-based attempt ordinal
	Total  int    // Pages in the volume
	Name   string // Source name
	Output string // Written page file, empty on failure
	Err    error  // Failure, if any
}

// 📦 VolumeOperation represents a volume being converted
type VolumeOperation struct {
	Name  string // Input base name
	Input string // Input path
	Index int    // 1-based position in the batch
	Total int    // Volumes in the batch
}

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog      zerolog.Logger
	console   io.Writer
	mu        sync.Mutex
	currentOp *VolumeOperation
	pages     []PageOperation
}

// 🏭 New creates a new logger; structured records go to stderr at level
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger().Level(level)
	return NewWithZerolog(console, zlog)
}

// 🏭 NewWithZerolog creates a logger that mirrors into an existing zerolog logger
func NewWithZerolog(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 StartVolume starts a new volume and prints its batch header
func (l *Logger) StartVolume(ctx context.Context, op VolumeOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.currentOp = &op
	l.pages = nil

	fmt.Fprintf(l.console, "%s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprint(op.Name),
		color.New(color.Faint).Sprintf("(%d/%d)", op.Index, op.Total))

	l.zlog.Info().
		Str("volume", op.Name).
		Str("input", op.Input).
		Int("index", op.Index).
		Int("total", op.Total).
		Msg("starting volume")
}

// 📝 LogPage logs one processed page
func (l *Logger) LogPage(ctx context.Context, op PageOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.pages = append(l.pages, op)

	state := "ok"
	if op.Err != nil {
		state = "failed"
	}
	fmt.Fprintln(l.console, status.FormatPageLine(op.Index, op.Total, op.Name, state, op.Err != nil))

	ev := l.zlog.Info()
	if op.Err != nil {
		ev = l.zlog.Warn().Err(op.Err)
	}
	ev.Int("page", op.Index).
		Int("total", op.Total).
		Str("name", op.Name).
		Str("output", op.Output).
		Msg("page processed")
}

// 📝 EndVolume ends the current volume
func (l *Logger) EndVolume(ctx context.Context, info status.VolumeInfo) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.currentOp == nil {
		return
	}

	l.zlog.Info().
		Str("volume", l.currentOp.Name).
		Str("status", info.Status.String()).
		Str("archive", info.ArchivePath).
		Int("pages", len(l.pages)).
		Int("written", info.Written).
		Int("failed", info.Failed).
		Msg("volume complete")

	l.currentOp = nil
	l.pages = nil
}

// 📝 Line prints a pipeline log line as is
func (l *Logger) Line(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "%s %s\n", color.New(color.Faint).Sprint("│"), msg)
	l.zlog.Debug().Msg(msg)
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("kindlecbz")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}
