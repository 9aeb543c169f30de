package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/archlens/archlens"
	"github.com/archlens/archlens/tui"
)

// Run executes the browse command.
func (c *BrowseCmd) Run(deps *Dependencies) error {
	// Fail fast with a useful message rather than opening an empty UI.
	if err := deps.Catalog.Healthy(deps.Ctx); err != nil {
		fmt.Fprintf(deps.Stderr, "Hint: Is the API server running at %s?\n", deps.Config.BaseURL)
		return fmt.Errorf("API server unreachable: %s", archlens.ErrorMessage(err))
	}

	model := tui.NewModel(deps.Config, deps.Catalog, deps.Diagnostic, tui.WithStore(deps.Store))
	defer model.Close()

	program := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithContext(deps.Ctx),
	)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("browse UI failed: %w", err)
	}
	return nil
}
