package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"loadwatch/internal/auth"
	"loadwatch/internal/coach"
	"loadwatch/internal/service"
	"loadwatch/internal/store"
	"loadwatch/internal/strava"
	"loadwatch/internal/tui"
)

func (a *app) syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Fetch new Strava activities and recompute risk",
		Args:  cobra.NoArgs,
		RunE: a.withStore(false, func(ctx context.Context, _ []string) error {
			client, err := a.stravaClient(ctx)
			if err != nil {
				return err
			}
			svc := service.NewSyncService(client, a.db, a.cfg.Sync.LookbackDays, log.StandardLogger())
			result, err := svc.SyncAll(ctx, nil)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Synced %d of %d activities (%d skipped)\n",
				result.ActivitiesStored, result.ActivitiesFetched, len(result.Skipped))
			return a.analyze()
		}),
	}
}

func (a *app) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Load a Garmin activity export and recompute risk",
		Args:  cobra.ExactArgs(1),
		RunE: a.withStore(false, func(_ context.Context, args []string) error {
			result, err := service.ImportGarmin(a.db, args[0], log.StandardLogger())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Imported %d activities (%d skipped)\n", result.Imported, len(result.Skipped))
			return a.analyze()
		}),
	}
}

func (a *app) analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Recompute risk from stored activities",
		Args:  cobra.NoArgs,
		RunE: a.withStore(false, func(context.Context, []string) error {
			return a.analyze()
		}),
	}
}

func (a *app) contextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "context",
		Short: "Print the coaching context block",
		Long:  "Print the system prompt a coaching assistant receives, built from the latest risk summary.",
		Args:  cobra.NoArgs,
		// only the summary file is read, no database
		RunE: a.withConfig(false, func(context.Context, []string) error {
			path, err := a.cfg.SummaryPath()
			if err != nil {
				return err
			}
			c := coach.LoadContext(path, time.Now(), a.cfg.Coach.Notes)
			fmt.Fprint(a.out, c.SystemPrompt())
			return nil
		}),
	}
}

func (a *app) authCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Log in to Strava",
		Args:  cobra.NoArgs,
		RunE: a.withStore(false, func(ctx context.Context, _ []string) error {
			if err := a.cfg.ValidateStrava(); err != nil {
				return err
			}
			return a.authenticate(ctx)
		}),
	}
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored Strava tokens",
		Args:  cobra.NoArgs,
		RunE: a.withStore(false, func(context.Context, []string) error {
			if err := a.db.ClearAuth(); err != nil {
				return fmt.Errorf("clearing auth: %w", err)
			}
			fmt.Fprintln(a.out, "Strava tokens removed.")
			return nil
		}),
	}
}

func (a *app) dashboard(ctx context.Context, _ []string) error {
	var syncSvc *service.SyncService
	if a.cfg.ValidateStrava() == nil {
		client, err := a.stravaClient(ctx)
		if err != nil {
			return err
		}
		syncSvc = service.NewSyncService(client, a.db, a.cfg.Sync.LookbackDays, log.StandardLogger())
	}

	model := tui.NewApp(service.NewQueryService(a.db), syncSvc, a.analysis)
	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}

// analyze runs the analysis and prints the report. Too little history is
// reported, not treated as a failure.
func (a *app) analyze() error {
	result, err := a.analysis.Run()
	if service.IsInsufficient(err) {
		fmt.Fprintln(a.out, "Insufficient data: no chronic load yet, so no ratio was computed.")
		fmt.Fprintln(a.out, "Sync or import at least a few weeks of activities and try again.")
		return nil
	}
	if err != nil {
		return err
	}
	printReport(a.out, result)
	return nil
}

func (a *app) oauthConfig() *oauth2.Config {
	return auth.NewOAuthConfig(auth.Config{
		ClientID:     a.cfg.Strava.ClientID,
		ClientSecret: a.cfg.Strava.ClientSecret,
	})
}

// stravaClient builds an API client from stored tokens. It runs the
// browser login when there are none, or when they no longer refresh.
func (a *app) stravaClient(ctx context.Context) (*strava.Client, error) {
	if err := a.cfg.ValidateStrava(); err != nil {
		return nil, err
	}
	oauthCfg := a.oauthConfig()

	for attempt := 0; ; attempt++ {
		stored, err := a.db.GetAuth()
		if errors.Is(err, store.ErrNoAuth) && attempt == 0 {
			fmt.Fprintln(a.out, "Not logged in to Strava.")
			if err := a.authenticate(ctx); err != nil {
				return nil, fmt.Errorf("authentication: %w", err)
			}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading stored tokens: %w", err)
		}

		ts := auth.NewTokenSource(oauthCfg, stored.Token(), a.db.UpdateToken)
		// an expired token is refreshed here so a revoked one fails before the sync starts
		if _, err := ts.Token(); err != nil {
			if attempt > 0 {
				return nil, fmt.Errorf("using fresh tokens: %w", err)
			}
			log.WithError(err).Warn("stored token rejected, logging in again")
			if err := a.authenticate(ctx); err != nil {
				return nil, fmt.Errorf("re-authentication: %w", err)
			}
			continue
		}
		return strava.NewClient(ts), nil
	}
}

func (a *app) authenticate(ctx context.Context) error {
	result, err := auth.Login(ctx, a.oauthConfig(), func(authURL string) {
		fmt.Fprintf(a.out, "Open this URL in your browser to authorize loadwatch:\n\n  %s\n\nWaiting for authorization...\n", authURL)
	})
	if err != nil {
		return err
	}

	if err := a.db.SaveToken(result.AthleteID, result.Token); err != nil {
		return fmt.Errorf("saving tokens: %w", err)
	}
	fmt.Fprintf(a.out, "\nLogged in as Strava athlete %d.\n", result.AthleteID)
	return nil
}
