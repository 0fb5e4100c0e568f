// Package backup implements the namespace backup subcommands.
package backup

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marmos91/ecfs/internal/logger"
	pkgbackup "github.com/marmos91/ecfs/pkg/backup"
	"github.com/marmos91/ecfs/pkg/config"
)

// Cmd is the backup subcommand.
var Cmd = &cobra.Command{
	Use:   "backup",
	Short: "Export and import namespace snapshots",
	Long: `Export the namespace with its policy assignments to a JSON snapshot,
or restore one into the configured store.

Snapshots are written to a local file or, with an s3:// location, to an S3
bucket. S3 credentials come from the flags or the default AWS chain
(AWS_ACCESS_KEY_ID, ~/.aws/credentials, instance roles).

Subcommands:
  export  Write a snapshot of the namespace
  import  Restore a snapshot into the namespace store`,
}

var s3Flags pkgbackup.S3Config

func init() {
	for _, c := range []*cobra.Command{exportCmd, importCmd} {
		c.Flags().StringVar(&s3Flags.Region, "s3-region", "", "S3 region (default: us-east-1)")
		c.Flags().StringVar(&s3Flags.Endpoint, "s3-endpoint", "", "S3 endpoint for S3-compatible services such as MinIO")
		c.Flags().StringVar(&s3Flags.AccessKeyID, "s3-access-key-id", "", "S3 access key (default: AWS credential chain)")
		c.Flags().StringVar(&s3Flags.SecretAccessKey, "s3-secret-access-key", "", "S3 secret key (default: AWS credential chain)")
	}

	Cmd.AddCommand(exportCmd)
	Cmd.AddCommand(importCmd)
}

// location is a parsed snapshot destination.
type location struct {
	path   string // local file, when bucket is empty
	bucket string
	key    string
}

func (l location) String() string {
	if l.bucket != "" {
		return fmt.Sprintf("s3://%s/%s", l.bucket, l.key)
	}
	return l.path
}

func parseLocation(s string) (location, error) {
	rest, ok := strings.CutPrefix(s, "s3://")
	if !ok {
		if s == "" {
			return location{}, fmt.Errorf("snapshot location is required")
		}
		return location{path: s}, nil
	}
	bucket, key, _ := strings.Cut(rest, "/")
	if bucket == "" || key == "" || strings.HasSuffix(key, "/") {
		return location{}, fmt.Errorf("invalid S3 location %q (expected s3://bucket/key)", s)
	}
	return location{bucket: bucket, key: key}, nil
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.MustLoad(configPath)
	if err != nil {
		return nil, err
	}
	loggerCfg := logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
	if err := logger.Init(loggerCfg); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}
