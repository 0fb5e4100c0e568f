package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/marmos91/ecfs/internal/cli/output"
	"github.com/marmos91/ecfs/internal/cli/prompt"
	"github.com/marmos91/ecfs/pkg/config"
	"github.com/marmos91/ecfs/pkg/controlplane/api/auth"
)

var (
	userRole          string
	userPasswordStdin bool
	userOutput        string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage control plane users",
	Long: `Manage the users that may log in to the control plane API.

Users live in the server configuration file under controlplane.users with
bcrypt password hashes. Restart the server to apply changes.

Examples:
  ecfs user add alice --role admin
  echo "$PASSWORD" | ecfs user passwd alice --password-stdin
  ecfs user list
  ecfs user delete alice`,
}

var userAddCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Add a user (prompts for password)",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserAdd,
}

var userPasswdCmd = &cobra.Command{
	Use:   "passwd <username>",
	Short: "Change a user's password",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserPasswd,
}

var userDeleteCmd = &cobra.Command{
	Use:     "delete <username>",
	Aliases: []string{"remove"},
	Short:   "Delete a user",
	Args:    cobra.ExactArgs(1),
	RunE:    runUserDelete,
}

var userListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List users",
	Args:    cobra.NoArgs,
	RunE:    runUserList,
}

func init() {
	userAddCmd.Flags().StringVar(&userRole, "role", string(auth.RoleUser), "User role (admin|user)")
	for _, c := range []*cobra.Command{userAddCmd, userPasswdCmd} {
		c.Flags().BoolVar(&userPasswordStdin, "password-stdin", false, "Read the password from stdin")
	}
	userListCmd.Flags().StringVarP(&userOutput, "output", "o", "table", "Output format (table|json|yaml)")

	userCmd.AddCommand(userAddCmd, userPasswdCmd, userDeleteCmd, userListCmd)
}

// userTable renders users without their password hashes.
type userTable []auth.User

func (t userTable) Headers() []string { return []string{"USERNAME", "ROLE"} }

func (t userTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, u := range t {
		role := u.Role
		if role == "" {
			role = auth.RoleUser
		}
		rows = append(rows, []string{u.Username, string(role)})
	}
	return rows
}

func runUserAdd(cmd *cobra.Command, args []string) error {
	username := args[0]
	role := auth.Role(userRole)
	if !role.Valid() {
		return fmt.Errorf("invalid role %q (valid: admin, user)", userRole)
	}

	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}
	if findUser(cfg.ControlPlane.Users, username) >= 0 {
		return fmt.Errorf("user %q already exists", username)
	}

	hash, err := readPasswordHash(cmd.InOrStdin())
	if err != nil {
		return err
	}

	cfg.ControlPlane.Users = append(cfg.ControlPlane.Users, auth.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	})
	if err := config.WriteConfig(configPath(), cfg, true); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "User %s added with role %s\n", username, role)
	return nil
}

func runUserPasswd(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}
	i := findUser(cfg.ControlPlane.Users, args[0])
	if i < 0 {
		return fmt.Errorf("user %q not found", args[0])
	}

	hash, err := readPasswordHash(cmd.InOrStdin())
	if err != nil {
		return err
	}
	cfg.ControlPlane.Users[i].PasswordHash = hash
	if err := config.WriteConfig(configPath(), cfg, true); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Password of %s updated\n", args[0])
	return nil
}

func runUserDelete(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}
	i := findUser(cfg.ControlPlane.Users, args[0])
	if i < 0 {
		return fmt.Errorf("user %q not found", args[0])
	}

	cfg.ControlPlane.Users = slices.Delete(cfg.ControlPlane.Users, i, i+1)
	if err := config.WriteConfig(configPath(), cfg, true); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "User %s deleted\n", args[0])
	return nil
}

func runUserList(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(userOutput)
	if err != nil {
		return err
	}

	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	users := userTable(cfg.ControlPlane.Users)
	switch format {
	case output.FormatJSON, output.FormatYAML:
		// Hashes stay in the config file.
		listed := make([]map[string]string, 0, len(users))
		for _, row := range users.Rows() {
			listed = append(listed, map[string]string{"username": row[0], "role": row[1]})
		}
		return output.NewPrinter(cmd.OutOrStdout(), format).Print(listed)
	default:
		if len(users) == 0 {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No users configured")
			return nil
		}
		return output.PrintTable(cmd.OutOrStdout(), users)
	}
}

func findUser(users []auth.User, username string) int {
	return slices.IndexFunc(users, func(u auth.User) bool { return u.Username == username })
}

// readPasswordHash reads a password from stdin or an interactive prompt and
// returns its bcrypt hash.
func readPasswordHash(stdin io.Reader) (string, error) {
	var password string
	if userPasswordStdin {
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && err != io.EOF {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	} else {
		if !isInteractive() {
			return "", fmt.Errorf("no terminal to prompt for a password; use --password-stdin")
		}
		p, err := prompt.NewPassword(auth.MinPasswordLength)
		if err != nil {
			return "", err
		}
		password = p
	}
	return auth.HashPassword(password)
}

func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
