package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/medtrack/internal/client/session"
)

const awaitTick = 200 * time.Millisecond

func (a *App) Current() (string, session.Gating) {
	return a.router.Current()
}

func (a *App) Go(location string) {
	a.router.Go(location)
}

func (a *App) Await(ctx context.Context) {
	t := time.NewTimer(awaitTick)
	defer t.Stop()
	select {
	case <-a.nav.Changed():
	case <-t.C:
	case <-ctx.Done():
	}
}

func (a *App) Status() string {
	s := ""
	if p := a.store.Principal(); p != nil {
		s = p.Name() + " "
	}
	if m := a.getMode(); m != "" {
		s += string(m)
	}
	if s != "" {
		s = fmt.Sprintf("(%s) ", s)
	}
	return s
}

// Enter shows the page body for location.
func (a *App) Enter(ctx context.Context, location string) {
	switch session.Path(location) {
	case session.LocationOnboarding:
		a.showOnboarding()
	case session.LocationLogin:
		printlnFn("Sign in to MedTrack. Type 'help' for options.")
	case session.LocationSignup:
		printlnFn("Create a MedTrack account with 'register'.")
	case session.LocationForgotPassword:
		printlnFn("Request a password reset link with 'reset'.")
	case session.LocationVerifyEmail:
		a.enterVerifyEmail(ctx, location)
	case session.LocationDashboard:
		a.showToday()
	case session.LocationMedications:
		a.showMedications()
	case session.LocationLogs:
		a.showLogs()
	case session.LocationAskAI:
		printlnFn("Ask a question about your medication history with 'ask'.")
	case session.LocationGuardians:
		a.showGuardians()
	case session.LocationSettings:
		a.showSettings()
	default:
		printlnFn("Nothing here. Try 'go /dashboard'.")
	}
}

func (a *App) Leave(location string) {
	if session.Path(location) == session.LocationVerifyEmail {
		a.poller.Stop()
	}
}

func (a *App) Commands(path string) []command {
	switch path {
	case session.LocationOnboarding:
		return []command{
			{"start", "get started with a new account", a.leaveOnboarding(session.LocationSignup)},
			{"login", "sign in to an existing account", a.leaveOnboarding(session.LocationLogin)},
		}
	case session.LocationLogin:
		return []command{
			{"signin", "sign in with email and password", a.signIn},
			{"phone", "sign in with a one-time code sent by SMS", a.phoneSignIn},
			{"google", "sign in through the browser", a.federatedSignIn},
			{"signup", "create an account", a.goTo(session.LocationSignup)},
			{"forgot", "reset a forgotten password", a.goTo(session.LocationForgotPassword)},
		}
	case session.LocationSignup:
		return []command{
			{"register", "create an account with email and password", a.register},
			{"login", "back to sign in", a.goTo(session.LocationLogin)},
		}
	case session.LocationForgotPassword:
		return []command{
			{"reset", "email a password reset link", a.resetPassword},
			{"login", "back to sign in", a.goTo(session.LocationLogin)},
		}
	case session.LocationVerifyEmail:
		return []command{
			{"resend", "send the verification email again", a.resendVerification},
			{"check", "check whether the email is verified", a.checkVerified},
			{"signout", "sign out", a.signOut},
		}
	case session.LocationDashboard:
		return append([]command{
			{"today", "medications scheduled for today", a.show(a.showToday)},
		}, a.dashboardNav()...)
	case session.LocationMedications:
		return append([]command{
			{"list", "list medications", a.show(a.showMedications)},
			{"add", "add a medication", a.addMedication},
			{"edit", "edit <id>", a.editMedication},
			{"delete", "delete <id>", a.deleteMedication},
		}, a.dashboardNav()...)
	case session.LocationLogs:
		return append([]command{
			{"list", "list dose logs", a.show(a.showLogs)},
			{"take", "take <medication id>: log a taken dose", a.logDose(true)},
			{"miss", "miss <medication id>: log a missed dose", a.logDose(false)},
		}, a.dashboardNav()...)
	case session.LocationAskAI:
		return append([]command{
			{"ask", "ask about your dose logs", a.ask},
		}, a.dashboardNav()...)
	case session.LocationGuardians:
		return append([]command{
			{"list", "list guardians", a.show(a.showGuardians)},
			{"add", "invite a guardian", a.addGuardian},
		}, a.dashboardNav()...)
	case session.LocationSettings:
		return append([]command{
			{"profile", "change display name and photo", a.updateProfile},
			{"password", "change password", a.changePassword},
			{"resend", "send the verification email again", a.resendVerification},
			{"signout", "sign out", a.signOut},
		}, a.dashboardNav()...)
	}
	return nil
}

func (a *App) dashboardNav() []command {
	return []command{
		{"dashboard", "today's overview", a.goTo(session.LocationDashboard)},
		{"meds", "manage medications", a.goTo(session.LocationMedications)},
		{"logs", "dose history", a.goTo(session.LocationLogs)},
		{"ai", "ask AI about your history", a.goTo(session.LocationAskAI)},
		{"guardians", "people who follow your doses", a.goTo(session.LocationGuardians)},
		{"settings", "account settings", a.goTo(session.LocationSettings)},
	}
}

func (a *App) goTo(location string) func(context.Context, []string) error {
	return func(context.Context, []string) error {
		a.Go(location)
		return nil
	}
}

func (a *App) show(fn func()) func(context.Context, []string) error {
	return func(context.Context, []string) error {
		fn()
		return nil
	}
}
