// Package wizard holds the interactive terminal forms used by init and
// typemap.
package wizard

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/reloquent/modelts/internal/config"
	"github.com/reloquent/modelts/internal/schema"
	"github.com/reloquent/modelts/internal/typemap"
)

// ErrCancelled is returned when the user leaves a form without confirming.
var ErrCancelled = errors.New("cancelled")

// RunSource shows the connection form and returns a source configuration
// that connected successfully.
func RunSource(connect ConnectFunc) (*config.SourceConfig, error) {
	p := tea.NewProgram(NewSourceModel(connect), tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("running source form: %w", err)
	}

	sm := finalModel.(SourceModel)
	if sm.Cancelled() || sm.Result() == nil {
		return nil, ErrCancelled
	}
	return sm.Result(), nil
}

// RunTypeMapping shows the type mapping review over the storage types used
// in s and returns the edited map.
func RunTypeMapping(s *schema.Schema, dbType string, existing *typemap.TypeMap) (*typemap.TypeMap, error) {
	p := tea.NewProgram(NewTypeMapModel(s, dbType, existing), tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("running type mapping review: %w", err)
	}

	tmm := finalModel.(TypeMapModel)
	if tmm.Cancelled() {
		return nil, ErrCancelled
	}
	return tmm.Result(), nil
}
