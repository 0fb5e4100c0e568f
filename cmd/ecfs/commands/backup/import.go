package backup

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/ecfs/internal/cli/prompt"
	pkgbackup "github.com/marmos91/ecfs/pkg/backup"
	"github.com/marmos91/ecfs/pkg/config"
	"github.com/marmos91/ecfs/pkg/namespace"
)

var (
	importInput string
	importForce bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Restore a snapshot into the namespace store",
	Long: `Restore a snapshot written by 'ecfs backup export'.

Entries in the snapshot replace entries at the same paths; other entries are
kept. Every policy named in the snapshot must be known to this server,
though it need not be enabled. Stop the server before importing.

Examples:
  # Import from a local file
  ecfs backup import --input /backups/namespace.json

  # Import from S3 without confirmation
  ecfs backup import --input s3://backups/ecfs/namespace.json --force`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVarP(&importInput, "input", "i", "", "Snapshot file path or s3://bucket/key (required)")
	importCmd.Flags().BoolVar(&importForce, "force", false, "Skip confirmation prompt")
	_ = importCmd.MarkFlagRequired("input")
}

func runImport(cmd *cobra.Command, args []string) error {
	loc, err := parseLocation(importInput)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := context.Background()

	snap, err := readSnapshot(ctx, loc)
	if err != nil {
		return err
	}

	catalog, err := namespace.NewCatalog(cfg.Policies.Enabled)
	if err != nil {
		return err
	}
	if err := snap.Validate(catalog); err != nil {
		return fmt.Errorf("invalid snapshot %s: %w", loc, err)
	}

	ok, err := prompt.ConfirmWithForce(
		fmt.Sprintf("Restore %d entries from %s into the %s store", len(snap.Entries), loc, cfg.Database.Type), importForce)
	if err != nil {
		return err
	}
	if !ok {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Import cancelled")
		return nil
	}

	store, err := config.OpenStore(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.Database.Type, err)
	}
	defer func() { _ = store.Close() }()

	n, err := pkgbackup.Import(ctx, store, catalog, snap)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entries from %s (snapshot taken %s)\n",
		n, loc, snap.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	return nil
}

func readSnapshot(ctx context.Context, loc location) (*pkgbackup.Snapshot, error) {
	if loc.bucket != "" {
		s3Cfg := s3Flags
		s3Cfg.Bucket, s3Cfg.Key = loc.bucket, loc.key
		client, err := pkgbackup.NewS3Client(ctx, s3Cfg)
		if err != nil {
			return nil, err
		}
		return pkgbackup.Download(ctx, client, loc.bucket, loc.key)
	}

	f, err := os.Open(loc.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer func() { _ = f.Close() }()
	return pkgbackup.Read(f)
}
