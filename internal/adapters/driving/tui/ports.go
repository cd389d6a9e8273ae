// Package tui provides an interactive terminal chat with Ayten.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/roswate/ayten-bot/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the TUI.
type Ports struct {
	// Ask answers chat messages.
	Ask driving.AskService

	// AppName is shown as the window and view title.
	AppName string
}

// NewPorts creates a new Ports aggregate.
func NewPorts(ask driving.AskService, appName string) *Ports {
	return &Ports{
		Ask:     ask,
		AppName: appName,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Ask == nil {
		return ErrMissingAskService
	}
	return nil
}
