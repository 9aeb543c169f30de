package main

import (
	"fmt"

	"github.com/archlens/archlens"
)

// Run executes the health command.
func (c *HealthCmd) Run(deps *Dependencies) error {
	if err := deps.Catalog.Healthy(deps.Ctx); err != nil {
		fmt.Fprintf(deps.Stderr, "API server at %s is unreachable: %s\n",
			deps.Config.BaseURL, archlens.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "API server at %s is healthy.\n", deps.Config.BaseURL)
	return nil
}
