package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Checker-Finance/rdp-pricing/internal/app"
	"github.com/Checker-Finance/rdp-pricing/internal/metrics"
	"github.com/Checker-Finance/rdp-pricing/internal/rdp"
	internalsecrets "github.com/Checker-Finance/rdp-pricing/internal/secrets"
	"github.com/Checker-Finance/rdp-pricing/pkg/config"
	"github.com/Checker-Finance/rdp-pricing/pkg/logger"
	"github.com/Checker-Finance/rdp-pricing/pkg/secrets"
	"github.com/Checker-Finance/rdp-pricing/pkg/utils"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Load configuration ---
	cfg := config.Load()

	logger.Init(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	defer logger.Sync()
	logg := logger.With(zap.String("run_id", uuid.NewString())).Sugar()

	if err := cfg.Validate(); err != nil {
		logg.Errorw("invalid configuration", "error", err)
		return 2
	}

	logg.Infow("starting [rdp-pricing]...",
		"base_url", utils.MaskDSN(cfg.BaseURL),
		"universe", cfg.Universe,
		"mode", cfg.Mode,
		"credential_source", cfg.CredentialSource)

	// --- Credential resolver ---
	var resolver internalsecrets.CredentialResolver
	switch cfg.CredentialSource {
	case config.CredentialSourceAWS:
		awsProvider, err := secrets.NewAWSProvider(ctx, cfg.AWSRegion)
		if err != nil {
			logg.Errorw("failed to create AWS Secrets Manager provider", "error", err)
			return 1
		}
		awsResolver := internalsecrets.NewAWSResolver(
			logg.Desugar(),
			cfg.Env,
			cfg.CredentialProfile,
			awsProvider,
			secrets.NewCache[rdp.Credentials](cfg.CacheTTL),
		)
		if profiles, err := awsResolver.DiscoverProfiles(ctx); err != nil {
			logg.Warnw("failed to discover RDP profiles from AWS Secrets Manager", "error", err)
		} else {
			logg.Infow("discovered RDP profiles", "count", len(profiles), "profiles", profiles)
		}
		resolver = awsResolver
	default:
		resolver = internalsecrets.NewEnvResolver(rdp.Credentials{
			AppKey:       cfg.AppKey,
			Username:     cfg.Username,
			Password:     cfg.Password,
			ClientSecret: cfg.ClientSecret,
		})
	}

	runner := app.NewRunner(
		logg.Desugar(),
		cfg,
		resolver,
		&http.Client{Timeout: cfg.HTTPTimeout},
		os.Stdout,
	)

	runErr := runner.Run(ctx)

	if err := metrics.WriteTextfile(cfg.MetricsTextfile); err != nil {
		logg.Warnw("metrics.textfile_write_failed", "path", cfg.MetricsTextfile, "error", err)
	}

	if runErr != nil {
		logg.Errorw("[rdp-pricing] finished with errors", "error", runErr)
		return 1
	}
	logg.Info("[rdp-pricing] done")
	return 0
}
