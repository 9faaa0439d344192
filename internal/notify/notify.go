// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package notify is the process-wide toast channel. Any layer may push a
// human-readable message into a Sink; delivery is fire-and-forget.
package notify

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/google/uuid"
)

type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Notification is a single toast.
type Notification struct {
	ID          string
	Title       string
	Description string
	Variant     Variant
	At          time.Time
}

// Sink receives notifications. Notify must not block for long and must not
// fail; sinks that can fail log and drop.
type Sink interface {
	Notify(Notification)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(Notification)

func (f SinkFunc) Notify(n Notification) { f(n) }

// Discard drops everything.
var Discard Sink = SinkFunc(func(Notification) {})

// New stamps a notification with an ID and time.
func New(title, description string, variant Variant) Notification {
	return Notification{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Variant:     variant,
		At:          time.Now(),
	}
}

// Error builds the destructive toast used for every failed read or write.
func Error(description string) Notification {
	return New("Error", description, VariantDestructive)
}

// Success builds the toast used for configured mutation success messages.
func Success(description string) Notification {
	return New("Success", description, VariantDefault)
}

// Multi fans a notification out to every sink in order.
type Multi []Sink

func (m Multi) Notify(n Notification) {
	for _, s := range m {
		if s != nil {
			s.Notify(n)
		}
	}
}

// Recorder keeps every notification it receives. It is safe for concurrent
// use.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

// All returns a copy of the recorded notifications.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}

// Variant returns the recorded notifications of one variant.
func (r *Recorder) Variant(v Variant) []Notification {
	var out []Notification
	for _, n := range r.All() {
		if n.Variant == v {
			out = append(out, n)
		}
	}
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = nil
}

// LogSink mirrors notifications into the apex logger. Failures log at warn
// so the default error level does not print them a second time.
type LogSink struct{}

func (LogSink) Notify(n Notification) {
	entry := log.WithFields(log.Fields{"title": n.Title, "variant": string(n.Variant)})
	if n.Variant == VariantDestructive {
		entry.Warn(n.Description)
		return
	}
	entry.Info(n.Description)
}

// Writer prints toasts as single lines, styled when Color is set.
type Writer struct {
	W     io.Writer
	Color bool

	mu sync.Mutex
}

// NewWriter returns a Writer on stderr.
func NewWriter(color bool) *Writer {
	return &Writer{W: os.Stderr, Color: color}
}

var (
	destructiveStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff5f5f"))
	defaultStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00c8f0"))
)

func (w *Writer) Notify(n Notification) {
	title := n.Title
	if w.Color {
		if n.Variant == VariantDestructive {
			title = destructiveStyle.Render(title)
		} else {
			title = defaultStyle.Render(title)
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	out := w.W
	if out == nil {
		out = os.Stderr
	}
	if _, err := fmt.Fprintf(out, "%s: %s\n", title, n.Description); err != nil {
		log.WithError(err).Warn("failed to write notification")
	}
}
