package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/archlens/archlens"
)

// Run executes the export command. It walks every category's full page
// stream concurrently and writes the catalog as one JSON document.
func (c *ExportCmd) Run(deps *Dependencies) error {
	categories, err := deps.Catalog.FetchCategories(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", archlens.ErrorMessage(err))
		return err
	}

	export := struct {
		Categories []archlens.Category           `json:"categories"`
		Packages   map[string][]archlens.Package `json:"packages"`
	}{
		Categories: categories,
		Packages:   make(map[string][]archlens.Package, len(categories)),
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(deps.Ctx)
	g.SetLimit(c.Concurrency)

	for _, category := range categories {
		category := category
		g.Go(func() error {
			packages, err := walkCategory(ctx, deps, category.Name)
			if err != nil {
				return fmt.Errorf("category %q: %w", category.Name, err)
			}
			mu.Lock()
			export.Packages[category.Name] = packages
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", archlens.ErrorMessage(err))
		return err
	}

	out := deps.Stdout
	if c.Output != "" {
		f, err := os.Create(c.Output)
		if err != nil {
			return fmt.Errorf("failed to create %q: %w", c.Output, err)
		}
		defer f.Close()
		out = f
	}
	if err := writeJSON(out, export); err != nil {
		return err
	}
	if c.Output != "" {
		fmt.Fprintf(deps.Stdout, "Exported %d categories to %s\n", len(categories), c.Output)
	}
	return nil
}

// walkCategory fetches every page of one category.
func walkCategory(ctx context.Context, deps *Dependencies, name string) ([]archlens.Package, error) {
	var packages []archlens.Package
	for page := 1; ; page++ {
		result, err := deps.Catalog.FetchPackages(ctx, name, page, deps.Config.PageSize)
		if err != nil {
			return nil, err
		}
		packages = append(packages, result.Packages...)
		if !result.Pagination.HasNext {
			return packages, nil
		}
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
