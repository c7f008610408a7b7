package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"f1insights/internal/analytics"
	"f1insights/internal/config"
	apierrors "f1insights/internal/errors"
	"f1insights/internal/infrastructure"
	"f1insights/internal/middleware"
	"f1insights/internal/services"
	"f1insights/pkg/contracts"
	"f1insights/pkg/contracts/domain"
)

// globalOptions are the persistent flags shared by every subcommand
type globalOptions struct {
	dataDir  string
	logLevel string
}

// paramFlags maps CLI flag names onto analytics query params
var paramFlags = []struct {
	flag  string
	param string
	usage string
}{
	{"driver", analytics.ParamDriver, "driver id"},
	{"driver-b", analytics.ParamDriverB, "second driver id for head-to-head"},
	{"constructor", analytics.ParamConstructor, "constructor id"},
	{"grid", analytics.ParamGrid, "grid position (1-20)"},
	{"laps", analytics.ParamLaps, "race laps (30-80)"},
	{"milliseconds", analytics.ParamMilliseconds, "race time in ms (50000-200000)"},
	{"qualifying-position", analytics.ParamQualifying, "qualifying position (1-50)"},
	{"stops", analytics.ParamStops, "pit stops (0-10)"},
	{"stop-seconds", analytics.ParamStopSeconds, "pit stop duration in seconds (0-300)"},
	{"target-year", analytics.ParamTargetYear, "forecast year"},
	{"top-n", analytics.ParamTopN, "rows in ranked tables"},
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:           "f1report",
		Short:         "Formula 1 analytics in the terminal",
		Long:          `f1report runs the F1 Insights analytics over a directory of CSV tables and prints the results as terminal tables, JSON, or spreadsheets.`,
		Version:       contracts.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "directory holding the nine CSV tables (default from F1_PATHS_DATA_DIR)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(
		newMenuCmd(),
		newDatasetsCmd(opts),
		newRunCmd(opts),
		newExportCmd(opts),
	)
	return root
}

// addParamFlags registers one string flag per analytics param. Values are
// parsed and validated like HTTP query params.
func addParamFlags(cmd *cobra.Command) {
	for _, pf := range paramFlags {
		cmd.Flags().String(pf.flag, "", pf.usage)
	}
}

// queryFromFlags collects the param flags the user set
func queryFromFlags(cmd *cobra.Command) url.Values {
	q := url.Values{}
	for _, pf := range paramFlags {
		if !cmd.Flags().Changed(pf.flag) {
			continue
		}
		v, _ := cmd.Flags().GetString(pf.flag)
		q.Set(pf.param, v)
	}
	return q
}

// session is what a subcommand needs once the dataset is loaded
type session struct {
	logger    *slog.Logger
	service   *services.AnalyticsService
	validator *middleware.ValidationMiddleware
}

func openSession(ctx context.Context, opts *globalOptions) (*session, error) {
	logger := infrastructure.NewCLILogger(opts.logLevel)
	ctx = infrastructure.EnsureTraceID(ctx)

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if opts.dataDir != "" {
		cfg.Paths.DataDir = opts.dataDir
	}
	paths, err := cfg.GetPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}

	svc := services.NewAnalyticsService(cfg.Analytics, logger, nil)
	if err := svc.Load(ctx, paths.DataDir); err != nil {
		return nil, err
	}

	return &session{
		logger:    logger,
		service:   svc,
		validator: middleware.NewValidationMiddleware(logger, apierrors.NewErrorHandler(logger, false)),
	}, nil
}

// runAction validates the flags and runs action
func (s *session) runAction(ctx context.Context, cmd *cobra.Command, action string) (*domain.View, error) {
	if _, ok := analytics.Lookup(action); !ok {
		return nil, fmt.Errorf("unknown action %q, run \"f1report menu\" to list actions", action)
	}

	params, err := s.validator.ParseParams(queryFromFlags(cmd))
	if err != nil {
		return nil, describeValidation(err)
	}
	return s.service.Run(ctx, action, params)
}

// describeValidation flattens per-field validation errors into one line
func describeValidation(err error) error {
	var apiErr *apierrors.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	details, ok := apiErr.Details.(apierrors.ValidationErrors)
	if !ok || len(details.Errors) == 0 {
		return err
	}

	msgs := make([]string, 0, len(details.Errors))
	for _, e := range details.Errors {
		msgs = append(msgs, e.Message)
	}
	return fmt.Errorf("invalid parameters: %s", strings.Join(msgs, "; "))
}
