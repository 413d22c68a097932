package cli

import (
	"context"

	"github.com/dmitrijs2005/medtrack/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/medtrack/internal/client/session"
)

var features = []struct{ title, text string }{
	{"Smart Reminders", "Schedule all your medications and stay on track."},
	{"Adherence Tracking", "Log every dose with a single command and review your history."},
	{"AI-Powered Insights", "Ask questions in plain language about your medication habits."},
	{"Medication Management", "Keep dosages and schedules of all your medications in one place."},
}

// openOnboardingOnFirstVisit shows the onboarding page until this device
// has been past it once. An unreadable flag falls back to the login page.
func (a *App) openOnboardingOnFirstVisit(ctx context.Context) {
	if a.prefs == nil {
		return
	}
	v, err := a.prefs.Get(ctx, metadata.KeyVisited)
	if err != nil {
		a.logger.Warn(ctx, "read onboarding flag", "error", err)
		return
	}
	if v != "true" {
		a.Go(session.LocationOnboarding)
	}
}

func (a *App) showOnboarding() {
	printlnFn("MedTrack is a simple medication reminder. Never miss a dose again.")
	for _, f := range features {
		printlnFn("  * " + f.title + ": " + f.text)
	}
	printlnFn("Type 'start' to create an account or 'login' to sign in.")
}

// leaveOnboarding remembers the visit and moves on to location.
func (a *App) leaveOnboarding(location string) func(context.Context, []string) error {
	return func(ctx context.Context, _ []string) error {
		if a.prefs != nil {
			if err := a.prefs.Set(ctx, metadata.KeyVisited, "true"); err != nil {
				a.logger.Warn(ctx, "store onboarding flag", "error", err)
			}
		}
		a.Go(location)
		return nil
	}
}
