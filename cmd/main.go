package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/maxaizer/jobmatch/internal/clients/api"
	"github.com/maxaizer/jobmatch/internal/config"
	"github.com/maxaizer/jobmatch/internal/repositories"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "jobmatch",
	Short: "Job matching client",
	Long:  "Telegram front end and maintenance tools for the job matching service.",
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newAPIClient(cfg config.APIConfig) *api.Client {
	client := api.NewClient(cfg.BaseURL)
	client.SetRateLimit(cfg.MaxRequestsPerSecond)
	return client
}

func openDb(cfg config.DBConfig) (*repositories.DbContext, error) {

	dbContext, err := repositories.NewDbContext(cfg.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("can't create db context: %w", err)
	}

	if err = dbContext.Migrate(); err != nil {
		_ = dbContext.Close()
		return nil, fmt.Errorf("can't migrate db context: %w", err)
	}
	return dbContext, nil
}

func closeDb(dbContext *repositories.DbContext) {
	if err := dbContext.Close(); err != nil {
		log.Errorf("failed to close db: %v", err)
	}
}
