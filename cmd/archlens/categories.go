package main

import (
	"fmt"

	"github.com/archlens/archlens"
)

// Run executes the categories command.
func (c *CategoriesCmd) Run(deps *Dependencies) error {
	key := archlens.CategoriesKey()

	if c.Refresh {
		deps.Categories.Invalidate(deps.Ctx, key)
	}
	if err := deps.Categories.Ensure(deps.Ctx, key); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", archlens.ErrorMessage(err))
		return err
	}

	state := deps.Categories.State(key)
	if len(state.Items) == 0 {
		fmt.Fprintln(deps.Stdout, "No categories found.")
		return nil
	}

	for _, category := range state.Items {
		fmt.Fprintf(deps.Stdout, "%-40s %d packages\n", category.Name, category.Count)
	}
	return nil
}
