//go:build !nogui

package gui

import (
	"filecat/internal/config"
	"filecat/internal/organize"
)

// Interface defines the contract for GUI operations
type Interface interface {
	Run()
	ShowError(title string, err error)
	ShowInfo(message string)
}

var _ Interface = (*App)(nil)

// Factory creates GUI instances
type Factory struct {
	config *config.Config
	engine organize.Organizer
}

// NewFactory creates a new GUI factory
func NewFactory(cfg *config.Config, engine organize.Organizer) *Factory {
	return &Factory{
		config: cfg,
		engine: engine,
	}
}

// Create returns a new GUI instance
func (f *Factory) Create() (Interface, error) {
	return NewApp(f.config, f.engine), nil
}

// StartGUI opens the desktop front end and blocks until it is closed
func StartGUI(cfg *config.Config) error {
	ui, err := NewFactory(cfg, nil).Create()
	if err != nil {
		return err
	}
	ui.Run()
	return nil
}

// IsGUIAvailable returns whether the GUI is available in this build
func IsGUIAvailable() bool {
	return true
}
