package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/archlens/archlens"
	"github.com/archlens/archlens/cache"
	archhttp "github.com/archlens/archlens/http"
	archslog "github.com/archlens/archlens/slog"
	"github.com/archlens/archlens/sqlite"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path for the persistent page cache. Set before calling Run().
	DBPath string

	// SQLite database backing the page store.
	DB *sqlite.DB

	// Services for end-to-end testing.
	CatalogService    archlens.CatalogService
	DiagnosticService archlens.DiagnosticService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	// .env is optional; environment variables win either way.
	_ = godotenv.Load()
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg := archlens.ConfigFromEnv()

	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
		Config: cfg,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("archlens"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'archlens --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set ARCHLENS_DB to use a different database path\n")
		return fmt.Errorf("failed to open cache database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	logger := newLogger(stderr)

	clientOpts := []archhttp.Option{archhttp.WithTimeout(cfg.RequestTimeout)}
	if cfg.RateLimit > 0 {
		clientOpts = append(clientOpts, archhttp.WithRateLimit(cfg.RateLimit))
	}
	client, err := archhttp.NewClient(cfg.BaseURL, clientOpts...)
	if err != nil {
		fmt.Fprintf(stderr, "Hint: Set ARCHLENS_API_URL to point at the API server\n")
		return fmt.Errorf("invalid API URL %q: %w", cfg.BaseURL, err)
	}

	m.CatalogService = archslog.NewLoggingCatalogService(client, logger)
	m.DiagnosticService = archslog.NewLoggingDiagnosticService(client, logger)

	deps.DB = m.DB
	deps.Store = sqlite.NewPageStore(m.DB)
	deps.Catalog = m.CatalogService
	deps.Diagnostic = m.DiagnosticService
	deps.Categories = cache.New(cfg,
		cache.CategoriesFetch(m.CatalogService),
		cache.WithStore[archlens.Category](deps.Store))
	deps.Packages = cache.New(cfg,
		cache.PackagesFetch(m.CatalogService, cfg.PageSize),
		cache.WithStore[archlens.Package](deps.Store))

	return kongCtx.Run(deps)
}

// newLogger builds the CLI logger. Request logging stays quiet unless
// ARCHLENS_VERBOSE is set.
func newLogger(stderr io.Writer) *slog.Logger {
	level := slog.LevelError
	if os.Getenv("ARCHLENS_VERBOSE") != "" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
}

func defaultDBPath() string {
	if path := os.Getenv("ARCHLENS_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "archlens.db"
	}
	dir := filepath.Join(home, ".archlens")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "cache.db")
}
