package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/marmos91/ecfs/internal/cli/output"
	"github.com/marmos91/ecfs/pkg/apiclient"
	"github.com/marmos91/ecfs/pkg/config"
)

var (
	statusOutput string
	statusURL    string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server status",
	Long: `Display the status of a running ecfs server.

This command calls the liveness and readiness probes of the control plane
and reports uptime and namespace store health.

Examples:
  # Check the server configured on this host
  ecfs status

  # Check a remote server
  ecfs status --url http://ns1:8080

  # Output as JSON
  ecfs status --output json`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusURL, "url", "", "Server URL (default: http://localhost:<controlplane.port>)")
	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", "table", "Output format (table|json|yaml)")
}

// ServerStatus represents the server status information.
type ServerStatus struct {
	URL       string `json:"url" yaml:"url"`
	Running   bool   `json:"running" yaml:"running"`
	Ready     bool   `json:"ready" yaml:"ready"`
	Message   string `json:"message" yaml:"message"`
	StartedAt string `json:"started_at,omitempty" yaml:"started_at,omitempty"`
	Uptime    string `json:"uptime,omitempty" yaml:"uptime,omitempty"`
	Policies  int    `json:"policies,omitempty" yaml:"policies,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(statusOutput)
	if err != nil {
		return err
	}

	url := statusURL
	if url == "" {
		cfg, err := config.Load(GetConfigFile())
		if err != nil {
			return err
		}
		url = fmt.Sprintf("http://localhost:%d", cfg.ControlPlane.Port)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	status := probe(ctx, apiclient.New(url).WithTimeout(2*time.Second))

	switch format {
	case output.FormatJSON, output.FormatYAML:
		return output.NewPrinter(cmd.OutOrStdout(), format).Print(status)
	default:
		printStatus(cmd.OutOrStdout(), status)
	}
	return nil
}

func probe(ctx context.Context, client *apiclient.Client) ServerStatus {
	status := ServerStatus{URL: client.BaseURL(), Message: "Server is not running"}

	live, err := client.Health(ctx)
	if err != nil {
		return status
	}
	status.Running = true
	status.StartedAt = live.Data.StartedAt
	status.Uptime = formatUptime(time.Duration(live.Data.UptimeSec) * time.Second)

	ready, err := client.Ready(ctx)
	switch {
	case err != nil:
		status.Message = fmt.Sprintf("Server is running but readiness probe failed: %v", err)
	case !ready.Healthy():
		status.Message = fmt.Sprintf("Server is running but not ready: %s", ready.Error)
	default:
		status.Ready = true
		status.Policies = ready.Data.Policies
		status.Message = "Server is running and ready"
	}
	return status
}

func printStatus(w io.Writer, s ServerStatus) {
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "ecfs Server Status")
	_, _ = fmt.Fprintln(w, "==================")
	_, _ = fmt.Fprintln(w)

	switch {
	case s.Ready:
		_, _ = fmt.Fprintf(w, "  Status:     \033[32m● Running\033[0m\n")
	case s.Running:
		_, _ = fmt.Fprintf(w, "  Status:     \033[33m● Running (not ready)\033[0m\n")
	default:
		_, _ = fmt.Fprintf(w, "  Status:     \033[31m○ Stopped\033[0m\n")
	}
	_, _ = fmt.Fprintf(w, "  URL:        %s\n", s.URL)
	if s.StartedAt != "" {
		if t, err := time.Parse(time.RFC3339, s.StartedAt); err == nil {
			_, _ = fmt.Fprintf(w, "  Started:    %s\n", t.Local().Format("Mon Jan 2 15:04:05 2006"))
		}
	}
	if s.Uptime != "" {
		_, _ = fmt.Fprintf(w, "  Uptime:     %s\n", s.Uptime)
	}
	if s.Policies > 0 {
		_, _ = fmt.Fprintf(w, "  Policies:   %d\n", s.Policies)
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "  %s\n", s.Message)
	_, _ = fmt.Fprintln(w)
}

// formatUptime renders d as "3d 0h 30m 15s", dropping leading zero units.
func formatUptime(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}
