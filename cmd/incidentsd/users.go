package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"incidents-dashboard/core/appbootstrap"
	"incidents-dashboard/core/auth"
	"incidents-dashboard/core/store"
)

var (
	userEmail string
	userName  string
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage accounts of the local identity provider",
}

var usersAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a local account; the password is read from stdin",
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readPassword(cmd.InOrStdin())
		if err != nil {
			return err
		}
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		defer logger.Sync()
		db, err := appbootstrap.OpenDB(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		hash, err := auth.HashPassword(password)
		if err != nil {
			return err
		}
		id, err := store.NewUsersStore(db).Create(cmd.Context(), &store.User{
			Email:        userEmail,
			DisplayName:  userName,
			PasswordHash: hash,
		})
		if errors.Is(err, store.ErrConflict) {
			return fmt.Errorf("user %s already exists", userEmail)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", userEmail, id)
		return nil
	},
}

var usersDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Disable a local account",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		defer logger.Sync()
		db, err := appbootstrap.OpenDB(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		users := store.NewUsersStore(db)
		u, err := users.FindByEmail(cmd.Context(), userEmail)
		if err != nil {
			return err
		}
		if u == nil {
			return fmt.Errorf("user %s not found", userEmail)
		}
		return users.SetDisabled(cmd.Context(), u.ID, true)
	},
}

func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("empty password on stdin")
	}
	return password, nil
}

func init() {
	for _, c := range []*cobra.Command{usersAddCmd, usersDisableCmd} {
		c.Flags().StringVar(&userEmail, "email", "", "Account email")
		_ = c.MarkFlagRequired("email")
	}
	usersAddCmd.Flags().StringVar(&userName, "name", "", "Display name")
	usersCmd.AddCommand(usersAddCmd, usersDisableCmd)
}
