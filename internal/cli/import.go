package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/startpage/internal/app"
	"github.com/MrSnakeDoc/startpage/internal/config"
	"github.com/MrSnakeDoc/startpage/internal/logger"
	"github.com/MrSnakeDoc/startpage/internal/sources/homepage"
)

type importOptions struct {
	file    string
	kind    string
	profile string
	dataDir string
}

func newImportCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a Homepage bookmarks.yaml or services.yaml into a profile",
		Long: `Import merges the entries of a Homepage (gethomepage.dev) bookmarks.yaml
or services.yaml file into a profile. URLs the profile already has are skipped.

Run it while the server is stopped: the server keeps its own copy of the
data in memory and would overwrite the import on its next save.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.file, "file", "f", "", "path to the Homepage YAML file")
	f.StringVarP(&opts.kind, "kind", "k", string(homepage.KindBookmarks), "file kind: bookmarks or services")
	f.StringVarP(&opts.profile, "profile", "p", "", "target profile (default: first profile)")
	f.StringVar(&opts.dataDir, "data-dir", "", "data directory (overrides STARTPAGE_DATA_DIR)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runImport(cmd *cobra.Command, opts importOptions) error {
	kind, err := homepage.ParseKind(opts.kind)
	if err != nil {
		return err
	}

	cfg := config.Load()
	if opts.dataDir != "" {
		cfg.DataDir = opts.dataDir
		if os.Getenv("STARTPAGE_ASSETS_DIR") == "" {
			cfg.AssetsDir = filepath.Join(opts.dataDir, "assets")
		}
	}
	log := logger.New(cfg.LogLevel, cfg.PrettyLog)

	bookmarks, err := homepage.LoadFile(kind, opts.file)
	if err != nil {
		return err
	}

	store, err := app.OpenStorage(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}

	target := opts.profile
	if target == "" {
		p, err := store.Profile("")
		if err != nil {
			return err
		}
		target = p.Name
	}

	added, _, err := store.ImportBookmarks(target, bookmarks)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "imported %d of %d bookmarks into %q\n", added, len(bookmarks), target)
	return nil
}
