package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rohits-web03/modvault/internal/catalog"
	"github.com/rohits-web03/modvault/internal/config"
	"github.com/rohits-web03/modvault/internal/logger"
	"github.com/rohits-web03/modvault/internal/repositories"
)

// bootstrapCmd reconciles a local data directory without a running server
var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Rebuild the catalog from files already in a data directory",
	Long: `Scans the modlists and mods stored under the data directory and
ingests every file the catalog does not know yet. Running it twice over the
same files changes nothing. The catalog database is taken from DB_URL, or
db.db inside the data directory.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if dir, _ := cmd.Flags().GetString("data-dir"); dir != "" {
			cfg.DataDir = dir
		}
		if cmd.Flags().Changed("workers") {
			cfg.BootstrapWorkers, _ = cmd.Flags().GetInt("workers")
		}
		scope, _ := cmd.Flags().GetString("scope")

		report, err := runBootstrap(cmd.Context(), cfg, catalog.Scope(scope))
		if err != nil {
			return err
		}
		printReport(cmd.OutOrStdout(), report)
		if len(report.Failures) > 0 {
			return fmt.Errorf("%d files failed to ingest", len(report.Failures))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(bootstrapCmd)
	bootstrapCmd.Flags().StringP("data-dir", "d", "", "Data directory holding Modlists/ and Downloads/ (default $DATA_DIR)")
	bootstrapCmd.Flags().IntP("workers", "w", 4, "Files hashed concurrently (default $BOOTSTRAP_WORKERS)")
	bootstrapCmd.Flags().String("scope", string(catalog.ScopeAll), "What to scan: all, modlists or mods")
}

// runBootstrap always works on local storage.
func runBootstrap(ctx context.Context, cfg config.Config, scope catalog.Scope) (*catalog.Report, error) {
	switch scope {
	case catalog.ScopeAll, catalog.ScopeModlists, catalog.ScopeMods:
	default:
		return nil, fmt.Errorf("unknown scope %q", scope)
	}
	cfg.StorageBackend = config.StorageLocal
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := repositories.ConnectDatabase(cfg.DB_URL, cfg.SQLitePath(), logger.Named("gorm"))
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	defer sqlDB.Close()

	store, err := repositories.NewLocalStore(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	engine := catalog.NewEngine(repositories.NewCatalog(db), store, logger.Named("catalog"))
	b := catalog.NewBootstrapper(engine, store, cfg.BootstrapWorkers, logger.Named("bootstrap"))
	return b.Run(ctx, scope)
}

func printReport(w io.Writer, r *catalog.Report) {
	fmt.Fprintf(w, "%s bootstrap: %d scanned, %d ingested, %d duplicates, %d missing, %d failed in %s\n",
		r.Scope, r.Scanned, r.Ingested, r.Duplicates, len(r.Missing), len(r.Failures), r.Duration)
	for _, name := range r.Missing {
		fmt.Fprintf(w, "  missing: %s\n", extraneousStyle.Render(name))
	}
	for _, f := range r.Failures {
		fmt.Fprintf(w, "  %s/%s: %s\n", f.Bucket, f.Name, missingStyle.Render(f.Err))
	}
}
