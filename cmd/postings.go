package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/jobmatch/internal/config"
	"github.com/maxaizer/jobmatch/internal/repositories"
	"github.com/maxaizer/jobmatch/internal/services"
	"github.com/spf13/cobra"
)

var postingsCmd = &cobra.Command{
	Use:   "postings",
	Short: "Inspect and repair job postings",
}

var postingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List jobs that were allocated but never populated",
	RunE:  runPostingsList,
}

var postingsRetryCmd = &cobra.Command{
	Use:   "retry <job_id>",
	Short: "Populate an allocated job again from its recorded form",
	Args:  cobra.ExactArgs(1),
	RunE:  runPostingsRetry,
}

func init() {
	postingsCmd.AddCommand(postingsListCmd, postingsRetryCmd)
	rootCmd.AddCommand(postingsCmd)
}

func newPipeline(cfg *config.Config, dbContext *repositories.DbContext) *services.JobPostingPipeline {
	postings := repositories.NewPostingsRepository(dbContext.DB)
	return services.NewJobPostingPipeline(newAPIClient(cfg.API), postings, EventBus.New())
}

func runPostingsList(cmd *cobra.Command, _ []string) error {

	cfg := config.Get()
	dbContext, err := openDb(cfg.DB)
	if err != nil {
		return err
	}
	defer closeDb(dbContext)

	pending, err := newPipeline(cfg, dbContext).Pending(context.Background())
	if err != nil {
		return err
	}

	if len(pending) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No unfinished postings.")
		return nil
	}

	for _, posting := range pending {
		fmt.Fprintf(cmd.OutOrStdout(), "job %d\t%s\tattempts: %d\tcreated: %s\t%s\n", posting.JobID, posting.State, posting.Attempts,
			posting.CreatedAt.Format("2006-01-02 15:04"), posting.LastError)
	}
	return nil
}

func runPostingsRetry(cmd *cobra.Command, args []string) error {

	jobID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid job id %q: %w", args[0], err)
	}

	cfg := config.Get()
	dbContext, err := openDb(cfg.DB)
	if err != nil {
		return err
	}
	defer closeDb(dbContext)

	if err = newPipeline(cfg, dbContext).Retry(context.Background(), jobID); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "job %d populated\n", jobID)
	return nil
}
