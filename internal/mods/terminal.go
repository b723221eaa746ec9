package mods

import (
	"strings"
	"sync"
)

// TerminalOutputs holds captured process output per mod id.
// It has its own lock and never touches the Registry.
type TerminalOutputs struct {
	mu      sync.Mutex
	outputs map[string]*strings.Builder
}

// NewTerminalOutputs creates an empty output store
func NewTerminalOutputs() *TerminalOutputs {
	return &TerminalOutputs{
		outputs: make(map[string]*strings.Builder),
	}
}

// Append adds chunk to the output of id, creating the entry if needed
func (t *TerminalOutputs) Append(id, chunk string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	b, ok := t.outputs[id]
	if !ok {
		b = &strings.Builder{}
		t.outputs[id] = b
	}
	b.WriteString(chunk)
}

// Get returns a snapshot of the output captured for id
func (t *TerminalOutputs) Get(id string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	b, ok := t.outputs[id]
	if !ok {
		return "", false
	}
	return b.String(), true
}

// Clear drops the output captured for id
func (t *TerminalOutputs) Clear(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.outputs, id)
}

// Writer returns an io.Writer that appends to the output of id
func (t *TerminalOutputs) Writer(id string) *TerminalWriter {
	return &TerminalWriter{id: id, outputs: t}
}

// TerminalWriter streams process output into TerminalOutputs
type TerminalWriter struct {
	id      string
	outputs *TerminalOutputs
}

// Write implements io.Writer
func (w *TerminalWriter) Write(p []byte) (int, error) {
	w.outputs.Append(w.id, string(p))
	return len(p), nil
}
