package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marmos91/ecfs/internal/cli/prompt"
	"github.com/marmos91/ecfs/pkg/apiclient"
	"github.com/marmos91/ecfs/pkg/config"
	"github.com/marmos91/ecfs/pkg/controlplane/api/auth"
)

var (
	loginServer        string
	loginUsername      string
	loginPasswordStdin bool
	loginRefresh       bool
	clientConfigFile   string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate with an ecfs server",
	Long: `Authenticate with an ecfs server and store the tokens in the ecfsctl
client configuration, so that ecfsctl and 'ecfs namespace' use them.

Examples:
  # Log in to a server
  ecfs login --server http://ns1:8080 --username alice

  # Log in from a script
  echo "$PASSWORD" | ecfs login -u alice --password-stdin

  # Exchange the stored refresh token for a new token pair
  ecfs login --refresh`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVar(&loginServer, "server", "", "Server URL (default: server_url from the client configuration)")
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username")
	loginCmd.Flags().BoolVar(&loginPasswordStdin, "password-stdin", false, "Read the password from stdin")
	loginCmd.Flags().BoolVar(&loginRefresh, "refresh", false, "Use the stored refresh token instead of a password")
	loginCmd.Flags().StringVar(&clientConfigFile, "client-config", "", "Path to the ecfsctl configuration file")
}

func runLogin(cmd *cobra.Command, args []string) error {
	cfg, path, err := loadClientConfig()
	if err != nil {
		return err
	}
	if loginServer != "" {
		cfg.ServerURL = strings.TrimRight(loginServer, "/")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
	defer cancel()

	client := apiclient.New(cfg.ServerURL).WithTimeout(cfg.Timeout)

	var tokens *apiclient.TokenResponse
	if loginRefresh {
		if cfg.RefreshToken == "" {
			return errors.New("no refresh token stored; log in with a username first")
		}
		tokens, err = client.RefreshToken(ctx, cfg.RefreshToken)
	} else {
		var username, password string
		username, password, err = readCredentials(cmd.InOrStdin())
		if err != nil {
			return err
		}
		tokens, err = client.Login(ctx, username, password)
	}
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	me, err := client.WithToken(tokens.AccessToken).Me(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify token: %w", err)
	}

	cfg.Token = tokens.AccessToken
	cfg.RefreshToken = tokens.RefreshToken
	if err := config.SaveConfig(cfg, path); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(w, "Logged in to %s as %s (%s)\n", cfg.ServerURL, me.Subject, me.Role)
	_, _ = fmt.Fprintf(w, "Token expires at %s\n", tokens.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
	_, _ = fmt.Fprintf(w, "Credentials saved to: %s\n", path)
	return nil
}

func readCredentials(stdin io.Reader) (string, string, error) {
	username := loginUsername
	if username == "" {
		if loginPasswordStdin || !isInteractive() {
			return "", "", errors.New("--username is required")
		}
		u, err := prompt.InputWithValidation("Username", "", func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("username is required")
			}
			return nil
		})
		if err != nil {
			return "", "", err
		}
		username = u
	}

	if loginPasswordStdin {
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && err != io.EOF {
			return "", "", fmt.Errorf("failed to read password: %w", err)
		}
		return username, strings.TrimRight(line, "\r\n"), nil
	}
	if !isInteractive() {
		return "", "", errors.New("no terminal to prompt for a password; use --password-stdin")
	}
	password, err := prompt.Password("Password", auth.MinPasswordLength)
	return username, password, err
}

// loadClientConfig loads the ecfsctl configuration and returns the path it
// is saved back to.
func loadClientConfig() (*config.ClientConfig, string, error) {
	cfg, err := config.LoadClient(clientConfigFile)
	if err != nil {
		return nil, "", err
	}
	path := clientConfigFile
	if path == "" {
		path = config.GetDefaultClientConfigPath()
	}
	return cfg, path, nil
}
