package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "portfolioctl",
	Short: "Portfolio and blog backend",
	Long:  `Run and administer the portfolio backend: HTTP server, database, backups and users.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// A missing .env is normal in production
		_ = godotenv.Load()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}
