// AngelaMos | 2026
// cmd_users.go

package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shyam-international/exportsite/internal/auth"
	"github.com/shyam-international/exportsite/internal/core"
	"github.com/shyam-international/exportsite/internal/user"
)

const passwordEnv = "SITEADM_PASSWORD"

var (
	adminUsername string
	adminRole     string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create a stored user for the stored auth mode",
	Long: "Create a stored user. The password is read from $" + passwordEnv +
		" or, when unset, from the first line of stdin.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		password, err := readPassword()
		if err != nil {
			return err
		}

		req := user.CreateUserRequest{
			Username: adminUsername,
			Password: password,
			Role:     adminRole,
		}
		if err := core.NewValidator().Struct(req); err != nil {
			return errors.New(core.FormatValidationError(err))
		}

		db, err := core.NewDatabase(cmd.Context(), cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close() //nolint:errcheck

		svc := user.NewService(user.NewRepository(db.DB), nil)
		u, err := svc.Create(cmd.Context(), req)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "created %s user %q (%s)\n", u.Role, u.Username, u.ID)
		return nil
	},
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Print an argon2id hash of a password",
	RunE: func(cmd *cobra.Command, _ []string) error {
		password, err := readPassword()
		if err != nil {
			return err
		}

		hash, err := core.HashPassword(password)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&adminUsername, "username", "", "login name")
	createAdminCmd.Flags().StringVar(&adminRole, "role", auth.RoleAdmin, "user or admin")
	//nolint:errcheck // flag is defined above
	_ = createAdminCmd.MarkFlagRequired("username")
}

func readPassword() (string, error) {
	if p := os.Getenv(passwordEnv); p != "" {
		return p, nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}

	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	return password, nil
}
