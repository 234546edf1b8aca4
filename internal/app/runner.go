package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/Checker-Finance/rdp-pricing/internal/rdp"
	"github.com/Checker-Finance/rdp-pricing/internal/report"
	"github.com/Checker-Finance/rdp-pricing/internal/secrets"
	"github.com/Checker-Finance/rdp-pricing/pkg/config"
)

// Runner executes the configured call paths one after another.
type Runner struct {
	logger     *zap.Logger
	cfg        *config.Config
	resolver   secrets.CredentialResolver
	httpClient *http.Client
	printer    *report.Printer
}

// NewRunner wires a runner. Results and failures are printed to out.
func NewRunner(
	logger *zap.Logger,
	cfg *config.Config,
	resolver secrets.CredentialResolver,
	httpClient *http.Client,
	out io.Writer,
) *Runner {
	return &Runner{
		logger:     logger,
		cfg:        cfg,
		resolver:   resolver,
		httpClient: httpClient,
		printer:    report.New(out),
	}
}

// Params builds the events parameters from configuration.
func (r *Runner) Params() (rdp.EventsParams, error) {
	eventTypes, err := rdp.ParseEventTypes(r.cfg.EventTypes)
	if err != nil {
		return rdp.EventsParams{}, err
	}
	adjustments, err := rdp.ParseAdjustments(r.cfg.Adjustments)
	if err != nil {
		return rdp.EventsParams{}, err
	}
	return rdp.EventsParams{
		Universe:    r.cfg.Universe,
		EventTypes:  eventTypes,
		Adjustments: adjustments,
		Start:       r.cfg.StartOffset,
		Count:       r.cfg.Count,
	}, nil
}

// paths lists the call paths to run, library first.
func (r *Runner) paths() []string {
	var paths []string
	if r.cfg.RunLibrary() {
		paths = append(paths, rdp.PathLibrary)
	}
	if r.cfg.RunDirect() {
		paths = append(paths, rdp.PathDirect)
	}
	return paths
}

// Run executes every configured path. A failing path is reported and does not
// stop the next one; the returned error joins all path failures.
func (r *Runner) Run(ctx context.Context) error {
	params, err := r.Params()
	if err != nil {
		return fmt.Errorf("invalid request parameters: %w", err)
	}

	client := rdp.NewClient(r.logger, r.httpClient, r.cfg.BaseURL)

	var errs []error
	for _, path := range r.paths() {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := r.runPath(ctx, client, path, params); err != nil {
			errs = append(errs, fmt.Errorf("%s path: %w", path, err))
		}
	}
	return errors.Join(errs...)
}

func (r *Runner) runPath(ctx context.Context, client *rdp.Client, path string, params rdp.EventsParams) error {
	log := r.logger.With(zap.String("path", path), zap.String("universe", params.Universe))

	creds, err := r.resolver.Resolve(ctx)
	if err != nil {
		r.printer.Failure(path, err)
		log.Error("rdp.credentials_unavailable", zap.Error(err))
		return err
	}

	auth := rdp.AuthConfig{
		Credentials:         creds,
		Scope:               r.cfg.Scope,
		TakeExclusiveSignOn: r.cfg.TakeExclusiveSignOn,
	}

	var fetcher rdp.EventsFetcher
	switch path {
	case rdp.PathLibrary:
		session := rdp.NewSession(log, client, auth)
		defer session.Close()
		fetcher = rdp.NewLibraryFetcher(session, rdp.NewHistoricalPricing(session))
	default:
		fetcher = rdp.NewDirectFetcher(log, client, auth)
	}

	res, err := fetcher.FetchEvents(ctx, params)
	if err != nil {
		if errors.Is(err, rdp.ErrAuthentication) {
			r.resolver.Invalidate()
		}
		r.printer.Failure(path, err)
		log.Error("rdp.pricing.request_failed", zap.Error(err))
		return err
	}

	log.Info("rdp.pricing.request_succeeded", zap.Int("bytes", len(res.Raw)))
	if err := r.printer.Result(res); err != nil {
		return fmt.Errorf("print result: %w", err)
	}
	return nil
}
