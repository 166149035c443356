package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/bouttime/internal/catalog"
	"github.com/roach88/bouttime/internal/round"
	"github.com/roach88/bouttime/internal/sampler"
	"github.com/roach88/bouttime/internal/store"
)

// CatalogSummary is the result of catalog validate and import.
type CatalogSummary struct {
	Source string `json:"source"`
	Events int    `json:"events"`
	DB     string `json:"db,omitempty"`
}

// NewCatalogCommand creates the catalog command group.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and convert event catalogs",
		Long: `Inspect and convert event catalogs.

A catalog is a YAML, JSON or CUE file listing events with a name, a detail
link and an order key (usually the year), or a SQLite database written by
'catalog import'. Without a path the built-in catalog is used.`,
	}

	cmd.AddCommand(newCatalogValidateCommand(rootOpts))
	cmd.AddCommand(newCatalogListCommand(rootOpts))
	cmd.AddCommand(newCatalogImportCommand(rootOpts))

	return cmd
}

func sourceName(path string) string {
	if path == "" {
		return "built-in"
	}
	return path
}

func newCatalogValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [path]",
		Short: "Check that a catalog loads and can fill a round",
		Long: `Check that a catalog loads and has enough events for a round.

Exit codes:
  0 - Catalog is valid
  1 - Catalog is malformed or too small
  2 - Catalog could not be read`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalogValidate(rootOpts, firstArg(args), cmd)
		},
	}
}

func runCatalogValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	cat, err := LoadCatalog(cmd.Context(), path)
	if err != nil {
		return failLoad(formatter, err)
	}
	if cat.Len() < round.Size {
		err := &sampler.InsufficientDataError{Need: round.Size, Available: cat.Len()}
		return formatter.Fail(ExitFailure, "catalog cannot fill a round", err)
	}

	summary := CatalogSummary{Source: sourceName(path), Events: cat.Len()}
	return formatter.Success(summary, func(w io.Writer) {
		fmt.Fprintf(w, "✓ %s: %d events\n", summary.Source, summary.Events)
	})
}

func newCatalogListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list [path]",
		Short:         "List catalog events in chronological order",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalogList(rootOpts, firstArg(args), cmd)
		},
	}
}

func runCatalogList(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	cat, err := LoadCatalog(cmd.Context(), path)
	if err != nil {
		return failLoad(formatter, err)
	}
	formatter.VerboseLog("Loaded %d events from %s", cat.Len(), sourceName(path))

	events := cat.Chronological()
	return formatter.Success(events, func(w io.Writer) {
		for _, ev := range events {
			fmt.Fprintf(w, "%6d  %s\n", ev.Order, ev.Name)
		}
	})
}

// ImportOptions holds flags for the catalog import command.
type ImportOptions struct {
	*RootOptions
	Database string
}

func newCatalogImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import [path] --db FILE",
		Short: "Copy a catalog into a SQLite database",
		Long: `Copy a catalog into a SQLite database, replacing any events already
stored there. The database is created if it does not exist.

Example:
  bouttime catalog import ./events.yaml --db ./catalog.db
  bouttime play --catalog ./catalog.db`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalogImport(opts, firstArg(args), cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runCatalogImport(opts *ImportOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	ctx := cmd.Context()

	cat, err := LoadCatalog(ctx, path)
	if err != nil {
		return failLoad(formatter, err)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	n, err := st.ImportCatalog(ctx, cat)
	if err != nil {
		return formatter.Fail(ExitCommandError, "failed to import catalog", err)
	}
	if err := st.SetMeta(ctx, "source", sourceName(path)); err != nil {
		return formatter.Fail(ExitCommandError, "failed to import catalog", err)
	}
	formatter.VerboseLog("Imported %d events into %s", n, st.Path())

	summary := CatalogSummary{Source: sourceName(path), Events: n, DB: opts.Database}
	return formatter.Success(summary, func(w io.Writer) {
		fmt.Fprintf(w, "✓ Imported %d events from %s into %s\n", n, summary.Source, summary.DB)
	})
}

// failLoad reports a catalog load error: exit 1 for a malformed catalog,
// exit 2 when it could not be read at all.
func failLoad(formatter *OutputFormatter, err error) error {
	if catalog.IsFormatError(err) {
		return formatter.Fail(ExitFailure, "invalid catalog", err)
	}
	return formatter.Fail(ExitCommandError, "failed to load catalog", err)
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
