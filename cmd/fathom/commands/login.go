package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/fathomdive/fathom/internal/auth"
	"github.com/fathomdive/fathom/internal/config"
)

var loginEmail string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the community service",
	RunE: func(cmd *cobra.Command, args []string) error {
		email := loginEmail
		if email == "" {
			fmt.Print("Email: ")
			reader := bufio.NewReader(os.Stdin)
			line, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("reading email: %w", err)
			}
			email = strings.TrimSpace(line)
		}

		fmt.Print("Password: ")
		pw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("reading password: %w", err)
		}

		client := auth.NewClient(cfg.API.BaseURL, cfg.API.Timeout)
		session, err := client.Login(context.Background(), email, string(pw))
		if err != nil {
			return err
		}

		if err := auth.NewFileStore(config.Dir()).Save(session); err != nil {
			return fmt.Errorf("saving session: %w", err)
		}

		logger.Debug("logged in", zap.String("email", session.Email), zap.String("role", session.Role))
		fmt.Printf("Logged in as %s", session.Name)
		if session.IsAdmin() {
			fmt.Print(" (admin)")
		}
		fmt.Println(".")
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and clear the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := auth.NewFileStore(config.Dir())
		session, err := store.Load()
		if errors.Is(err, auth.ErrNoSession) {
			fmt.Println("Not logged in.")
			return nil
		}
		if err == nil {
			client := auth.NewClient(cfg.API.BaseURL, cfg.API.Timeout)
			if err := client.Logout(context.Background(), session.Token); err != nil {
				// Clear locally even when the server call fails.
				logger.Warn("server logout failed", zap.Error(err))
			}
		}
		if err := store.Clear(); err != nil {
			return fmt.Errorf("clearing session: %w", err)
		}
		fmt.Println("Logged out.")
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}
