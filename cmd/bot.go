package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/jobmatch/internal/auth"
	"github.com/maxaizer/jobmatch/internal/bot"
	"github.com/maxaizer/jobmatch/internal/config"
	"github.com/maxaizer/jobmatch/internal/logger"
	"github.com/maxaizer/jobmatch/internal/metrics"
	"github.com/maxaizer/jobmatch/internal/repositories"
	"github.com/maxaizer/jobmatch/internal/services"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram bot",
	RunE:  runBot,
}

func init() {
	rootCmd.AddCommand(botCmd)
}

func runBot(_ *cobra.Command, _ []string) error {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Get()
	if cfg.Bot.Token == "" {
		return errors.New("bot token is required, set TG_TOKEN")
	}

	logger.Setup(ctx, cfg.Logger)
	defer logger.Cleanup()

	metrics.StartMetricsServer(cfg.Metrics.Addr)

	dbContext, err := openDb(cfg.DB)
	if err != nil {
		return err
	}
	defer closeDb(dbContext)

	postings := repositories.NewPostingsRepository(dbContext.DB)
	sessionLinks := repositories.NewSessionLinksRepository(dbContext.DB)

	client := newAPIClient(cfg.API)
	verifier := auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	bus := EventBus.New()
	if err = services.SubscribeAudit(bus); err != nil {
		return err
	}

	privileges, err := services.NewPrivilegeManager(client, bus, cfg.API.RosterCacheTTL)
	if err != nil {
		return err
	}

	cleaner, err := services.NewPostingsCleaner(postings, cfg.Postings.ExpirationInDays)
	if err != nil {
		return err
	}
	defer cleaner.Stop()

	tgbot, err := bot.NewBot(cfg.Bot.Token, bus, bot.Services{
		NewIdentity:  func() bot.Identity { return services.NewIdentityResolver(verifier, client, bus) },
		Privileges:   privileges,
		Jobs:         services.NewJobPostingPipeline(client, postings, bus),
		Applications: services.NewApplicationService(client, bus),
		Profiles:     services.NewProfileService(client),
		Sessions:     sessionLinks,
	})
	if err != nil {
		return err
	}
	go tgbot.Run()

	<-ctx.Done()

	log.Info("Shutting down services...")
	tgbot.Stop()
	bus.WaitAsync()
	log.Info("Services stopped.")
	return nil
}
