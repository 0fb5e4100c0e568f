package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	pkgbackup "github.com/marmos91/ecfs/pkg/backup"
	"github.com/marmos91/ecfs/pkg/config"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a snapshot of the namespace",
	Long: `Write every namespace entry with its policy to a JSON snapshot.

Embedded stores (sqlite, badger) allow a single process, so stop the server
before exporting from them.

Examples:
  # Export to a local file
  ecfs backup export --output /backups/namespace.json

  # Export to S3
  ecfs backup export --output s3://backups/ecfs/namespace.json

  # Export to MinIO
  ecfs backup export --output s3://backups/ns.json --s3-endpoint http://localhost:9000`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Snapshot file path or s3://bucket/key (required)")
	_ = exportCmd.MarkFlagRequired("output")
}

func runExport(cmd *cobra.Command, args []string) error {
	loc, err := parseLocation(exportOutput)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx := context.Background()
	start := time.Now()

	store, err := config.OpenStore(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.Database.Type, err)
	}
	defer func() { _ = store.Close() }()

	snap, err := pkgbackup.Export(ctx, store)
	if err != nil {
		return err
	}

	if loc.bucket != "" {
		s3Cfg := s3Flags
		s3Cfg.Bucket, s3Cfg.Key = loc.bucket, loc.key
		client, err := pkgbackup.NewS3Client(ctx, s3Cfg)
		if err != nil {
			return err
		}
		if err := pkgbackup.Upload(ctx, client, loc.bucket, loc.key, snap); err != nil {
			return err
		}
	} else if err := writeFile(loc.path, snap); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries to %s in %s\n",
		len(snap.Entries), loc, time.Since(start).Round(time.Millisecond))
	return nil
}

func writeFile(path string, snap *pkgbackup.Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	if err := pkgbackup.Write(f, snap); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return f.Close()
}
