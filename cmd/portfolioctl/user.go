package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vincentyu/portfolio-backend/pkg/audit"
	"github.com/vincentyu/portfolio-backend/pkg/config"
	"github.com/vincentyu/portfolio-backend/pkg/db"
	"github.com/vincentyu/portfolio-backend/pkg/logging"
	"github.com/vincentyu/portfolio-backend/pkg/model"
	"github.com/vincentyu/portfolio-backend/pkg/password"
	"github.com/vincentyu/portfolio-backend/pkg/server/store"
	gormstore "github.com/vincentyu/portfolio-backend/pkg/server/store/gorm"
)

// userCmd represents the user command
var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
	Long:  `Create administrator accounts and produce password hashes.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'user' requires a subcommand (create-admin, hash-password)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

var userCreateAdminCmd = &cobra.Command{
	Use:   "create-admin <username> <email>",
	Short: "Create an administrator account",
	Long: `Create an administrator account directly in the database.

The password is taken from --password or, when omitted, read from stdin.

Example:
  portfolioctl user create-admin vincent vincent@example.com
  echo "$ADMIN_PASSWORD" | portfolioctl user create-admin vincent vincent@example.com`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		plaintext, _ := cmd.Flags().GetString("password")
		if plaintext == "" {
			var err error
			plaintext, err = readSecret(os.Stdin, "Password: ")
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to read password: %v\n", err)
				os.Exit(1)
			}
		}

		user, err := createAdmin(args[0], args[1], plaintext)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create administrator %s: %v\n", args[0], err)
			os.Exit(1)
		}
		fmt.Printf("Created administrator %s (id %d)\n", user.Username, user.ID)
	},
}

var userHashPasswordCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Print a bcrypt hash of a password",
	Long: `Print a bcrypt hash of a password read from stdin, using BCRYPT_ROUNDS.

Example:
  portfolioctl user hash-password`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		plaintext, err := readSecret(os.Stdin, "Password: ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read password: %v\n", err)
			os.Exit(1)
		}
		if plaintext == "" {
			fmt.Fprintln(os.Stderr, "Password must not be empty")
			os.Exit(1)
		}

		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}
		hash, err := password.NewHasher(cfg.BcryptRounds).Hash(plaintext)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to hash password: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(hash)
	},
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userCreateAdminCmd)
	userCmd.AddCommand(userHashPasswordCmd)

	userCreateAdminCmd.Flags().String("password", "", "password for the new account (read from stdin when empty)")
}

// readSecret reads a password from the terminal without echo, or the first
// line of r when r is not a terminal.
func readSecret(r io.Reader, prompt string) (string, error) {
	if f, ok := r.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(os.Stderr, prompt)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func createAdmin(username, email, plaintext string) (*model.User, error) {
	if len(plaintext) < password.MinLength {
		return nil, fmt.Errorf("password must be at least %d characters", password.MinLength)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.DBFile == "" {
		return nil, fmt.Errorf("DB_FILE environment variable is required")
	}

	log := logging.Logger()
	logging.Configure(log, cfg.Environment, cfg.LogLevel)

	database, err := db.Connect(db.Config{Path: cfg.DBFile, LogLevel: cfg.LogLevel})
	if err != nil {
		return nil, err
	}
	defer closeDB(database)
	configureAudit(cfg, database, log)

	hash, err := password.NewHasher(cfg.BcryptRounds).Hash(plaintext)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username: username,
		Email:    email,
		Password: hash,
		Role:     model.RoleAdmin,
	}
	err = gormstore.NewCredentialStore(database).CreateUser(user)

	event := audit.UserAdminEvent{
		ActorEmail: "portfolioctl",
		TargetID:   user.ID,
		Action:     audit.ActionCreateAdmin,
		Detail:     email,
		Success:    err == nil,
	}
	if err != nil {
		event.ErrorMessage = err.Error()
	}
	audit.Log(event)

	switch {
	case errors.Is(err, store.ErrDuplicateEmail):
		return nil, fmt.Errorf("user with email '%s' already exists", email)
	case errors.Is(err, store.ErrDuplicateUsername):
		return nil, fmt.Errorf("username '%s' is already taken", username)
	case err != nil:
		return nil, err
	}
	return user, nil
}
