package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marmos91/ecfs/internal/cli/output"
	"github.com/marmos91/ecfs/pkg/apiclient"
	"github.com/marmos91/ecfs/pkg/namespace"
)

var namespaceOutput string

var namespaceCmd = &cobra.Command{
	Use:     "namespace",
	Aliases: []string{"ns"},
	Short:   "Create and inspect namespace entries",
	Long: `Create and inspect entries of a running ecfs server.

The server URL and token come from the ecfsctl client configuration
(see 'ecfs login'). Files take the effective erasure coding policy of their
parent directory when they are created.

Examples:
  ecfs namespace mkdir /data/cold
  ecfs namespace touch /data/cold/part-0
  ecfs namespace stat /data/cold/part-0 -o json`,
}

var namespaceMkdirCmd = &cobra.Command{
	Use:   "mkdir <path>",
	Short: "Create a directory and any missing parents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runNamespace(cmd, args[0], (*apiclient.Client).Mkdirs)
	},
}

var namespaceTouchCmd = &cobra.Command{
	Use:   "touch <path>",
	Short: "Create an empty file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		err := runNamespace(cmd, args[0], (*apiclient.Client).CreateFile)
		var apiErr *apiclient.APIError
		if errors.As(err, &apiErr) && apiErr.IsNotFound() {
			return fmt.Errorf("%w (create the parent with 'ecfs namespace mkdir')", err)
		}
		return err
	},
}

var namespaceStatCmd = &cobra.Command{
	Use:   "stat <path>",
	Short: "Show an entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runNamespace(cmd, args[0], (*apiclient.Client).Stat)
	},
}

func init() {
	namespaceCmd.PersistentFlags().StringVar(&clientConfigFile, "client-config", "", "Path to the ecfsctl configuration file")
	namespaceCmd.PersistentFlags().StringVarP(&namespaceOutput, "output", "o", "table", "Output format (table|json|yaml)")
	namespaceCmd.AddCommand(namespaceMkdirCmd)
	namespaceCmd.AddCommand(namespaceTouchCmd)
	namespaceCmd.AddCommand(namespaceStatCmd)
}

type entryCall func(*apiclient.Client, context.Context, string) (*namespace.Entry, error)

func runNamespace(cmd *cobra.Command, path string, call entryCall) error {
	format, err := output.ParseFormat(namespaceOutput)
	if err != nil {
		return err
	}
	cfg, _, err := loadClientConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
	defer cancel()

	client := apiclient.New(cfg.ServerURL).WithToken(cfg.Token).WithTimeout(cfg.Timeout)
	entry, err := call(client, ctx, path)
	if err != nil {
		var apiErr *apiclient.APIError
		if errors.As(err, &apiErr) && apiErr.IsAuthError() {
			return fmt.Errorf("%w (run 'ecfs login')", err)
		}
		return err
	}

	printer := output.NewPrinter(cmd.OutOrStdout(), format)
	if format == output.FormatJSON || format == output.FormatYAML {
		return printer.Print(entry)
	}
	return printer.Print(entryView{entry})
}

// entryView renders a namespace entry.
type entryView struct {
	*namespace.Entry
}

func (e entryView) RenderText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%s\t%s\t%s\n", e.Type, e.Path, policyOrDash(e.Policy))
	return err
}

func (e entryView) Headers() []string {
	return []string{"Path", "Type", "Policy", "Updated"}
}

func (e entryView) Rows() [][]string {
	return [][]string{{e.Path, string(e.Type), policyOrDash(e.Policy), e.UpdatedAt.Local().Format("2006-01-02 15:04:05")}}
}

func policyOrDash(p string) string {
	if strings.TrimSpace(p) == "" {
		return "-"
	}
	return p
}
