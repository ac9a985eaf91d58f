package server

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "debug", "info", "warning", "error"
}

// ConsoleHandler is a slog.Handler that forwards records to a console
// channel and to an optional next handler for the server logs
type ConsoleHandler struct {
	next        slog.Handler
	consoleChan chan<- ConsoleMessage
	level       slog.Leveler
	attrs       []slog.Attr
	group       string
}

// NewConsoleHandler creates a handler sending records at or above level to
// consoleChan. A nil next handler only feeds the console.
func NewConsoleHandler(next slog.Handler, consoleChan chan<- ConsoleMessage, level slog.Leveler) *ConsoleHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &ConsoleHandler{next: next, consoleChan: consoleChan, level: level}
}

// Enabled implements slog.Handler
func (h *ConsoleHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if level >= h.level.Level() {
		return true
	}
	return h.next != nil && h.next.Enabled(ctx, level)
}

// Handle implements slog.Handler
func (h *ConsoleHandler) Handle(ctx context.Context, record slog.Record) error {
	if h.next != nil && h.next.Enabled(ctx, record.Level) {
		if err := h.next.Handle(ctx, record); err != nil {
			return err
		}
	}

	// Send to web console if channel is available (non-blocking)
	if h.consoleChan == nil || record.Level < h.level.Level() {
		return nil
	}
	select {
	case h.consoleChan <- ConsoleMessage{
		Message:   h.format(record),
		Timestamp: record.Time,
		Level:     levelName(record.Level),
	}:
	default:
		// Channel full, skip (don't block)
	}
	return nil
}

// WithAttrs implements slog.Handler
func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	if h.next != nil {
		clone.next = h.next.WithAttrs(attrs)
	}
	for _, attr := range attrs {
		if h.group != "" {
			attr.Key = h.group + "." + attr.Key
		}
		clone.attrs = append(clone.attrs[:len(clone.attrs):len(clone.attrs)], attr)
	}
	return &clone
}

// WithGroup implements slog.Handler
func (h *ConsoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	if h.next != nil {
		clone.next = h.next.WithGroup(name)
	}
	if h.group != "" {
		clone.group = h.group + "." + name
	} else {
		clone.group = name
	}
	return &clone
}

// format renders the message followed by key=value pairs
func (h *ConsoleHandler) format(record slog.Record) string {
	var b strings.Builder
	b.WriteString(record.Message)
	for _, attr := range h.attrs {
		fmt.Fprintf(&b, " %s=%v", attr.Key, attr.Value)
	}
	record.Attrs(func(attr slog.Attr) bool {
		key := attr.Key
		if h.group != "" {
			key = h.group + "." + key
		}
		fmt.Fprintf(&b, " %s=%v", key, attr.Value)
		return true
	})
	return b.String()
}

func levelName(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "error"
	case level >= slog.LevelWarn:
		return "warning"
	case level >= slog.LevelInfo:
		return "info"
	default:
		return "debug"
	}
}

// runConsole fans console messages out to the stream subscribers until ctx is done
func (s *Server) runConsole(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-s.console:
			s.consoleMu.Lock()
			for ch := range s.consoleSub {
				select {
				case ch <- msg:
				default:
				}
			}
			s.consoleMu.Unlock()
		}
	}
}

// subscribeConsole registers a console listener. The returned function
// unregisters it; the channel is never closed.
func (s *Server) subscribeConsole(buffer int) (<-chan ConsoleMessage, func()) {
	ch := make(chan ConsoleMessage, buffer)
	s.consoleMu.Lock()
	s.consoleSub[ch] = struct{}{}
	s.consoleMu.Unlock()
	return ch, func() {
		s.consoleMu.Lock()
		delete(s.consoleSub, ch)
		s.consoleMu.Unlock()
	}
}
