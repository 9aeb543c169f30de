package main

import (
	"context"
	"io"

	"github.com/archlens/archlens"
	"github.com/archlens/archlens/cache"
	"github.com/archlens/archlens/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx        context.Context
	Stdout     io.Writer
	Stderr     io.Writer
	Config     archlens.Config
	DB         *sqlite.DB
	Store      archlens.PageStore
	Catalog    archlens.CatalogService
	Diagnostic archlens.DiagnosticService

	// Query caches backed by Store. One-shot invocations within a key's
	// freshness window serve from the persistent cache without a request.
	Categories *cache.Cache[archlens.Category]
	Packages   *cache.Cache[archlens.Package]
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Categories CategoriesCmd `cmd:"" help:"List package categories"`
	Packages   PackagesCmd   `cmd:"" help:"List packages in a category"`
	Search     SearchCmd     `cmd:"" help:"Search packages by name or description"`
	Diagnose   DiagnoseCmd   `cmd:"" help:"Describe a problem and get package suggestions"`
	Export     ExportCmd     `cmd:"" help:"Export the full catalog as JSON"`
	Browse     BrowseCmd     `cmd:"" help:"Browse the catalog interactively"`
	Health     HealthCmd     `cmd:"" help:"Check API server health"`
}

// CategoriesCmd is the "categories" subcommand.
type CategoriesCmd struct {
	Refresh bool `short:"r" help:"Bypass the cache and refetch"`
}

// PackagesCmd is the "packages" subcommand.
type PackagesCmd struct {
	Category string `arg:"" help:"Category name"`
	Pages    int    `short:"p" default:"1" help:"Number of pages to fetch"`
	All      bool   `short:"a" help:"Fetch every page"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Query string `arg:"" help:"Search term"`
	Pages int    `short:"p" default:"1" help:"Number of pages to fetch"`
	All   bool   `short:"a" help:"Fetch every page"`
}

// DiagnoseCmd is the "diagnose" subcommand.
type DiagnoseCmd struct {
	Problem []string `arg:"" optional:"" help:"Problem description in plain English"`
}

// ExportCmd is the "export" subcommand.
type ExportCmd struct {
	Output      string `short:"o" help:"Write to a file instead of stdout"`
	Concurrency int    `short:"c" default:"4" help:"Concurrent category walks"`
}

// BrowseCmd is the "browse" subcommand.
type BrowseCmd struct{}

// HealthCmd is the "health" subcommand.
type HealthCmd struct{}
