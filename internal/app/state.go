package app

import (
	"github.com/bnema/modctl/internal/mods"
)

// State is the shared state of a running modctl process. It is built once
// in main and passed to every component that needs it.
type State struct {
	Mods     *mods.Registry
	Terminal *mods.TerminalOutputs
	Handle   *Slot
}

// NewState creates an empty state with no handle set
func NewState() *State {
	return &State{
		Mods:     mods.NewRegistry(),
		Terminal: mods.NewTerminalOutputs(),
		Handle:   &Slot{},
	}
}
