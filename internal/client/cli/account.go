package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/medtrack/internal/client/services"
	"github.com/dmitrijs2005/medtrack/internal/client/session"
	"github.com/dmitrijs2005/medtrack/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func (a *App) prompt(label string) (string, error) {
	return getSimpleText(a.reader, label, os.Stdout)
}

func readSecret(prompt string) (string, error) {
	pw, err := getPassword(prompt, os.Stdout)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(pw)
	return string(pw), nil
}

// signIn authenticates with email and password. The router moves the viewer
// on once the session store learns about the new principal.
func (a *App) signIn(ctx context.Context, _ []string) error {
	email, err := a.prompt("Enter email")
	if err != nil {
		return err
	}
	password, err := readSecret("Enter password")
	if err != nil {
		return err
	}

	if err := a.auth.SignIn(ctx, email, password); err != nil {
		a.logger.Debug(ctx, "sign in failed", "error", err)
		printlnFn(services.SignInMessage(err))
		return nil
	}
	printlnFn("Signed in.")
	return nil
}

func (a *App) register(ctx context.Context, _ []string) error {
	email, err := a.prompt("Enter email")
	if err != nil {
		return err
	}
	name, err := a.prompt("Enter display name (optional)")
	if err != nil {
		return err
	}
	password, err := readSecret("Enter password")
	if err != nil {
		return err
	}
	confirm, err := readSecret("Confirm password")
	if err != nil {
		return err
	}
	if password != confirm {
		printlnFn("Passwords do not match.")
		return nil
	}

	if err := a.auth.Register(ctx, email, password, name); err != nil {
		a.logger.Debug(ctx, "sign up failed", "error", err)
		printlnFn(services.SignUpMessage(err))
		return nil
	}
	printlnFn("Account created. Check your inbox for a verification email.")
	return nil
}

func (a *App) phoneSignIn(ctx context.Context, _ []string) error {
	phone, err := a.prompt("Enter phone number (e.g. +15551234567)")
	if err != nil {
		return err
	}
	id, err := a.auth.StartPhoneSignIn(ctx, phone)
	if err != nil {
		printlnFn(services.OTPMessage(err))
		return nil
	}
	printlnFn("OTP sent to " + phone + ".")

	code, err := a.prompt("Enter OTP")
	if err != nil {
		return err
	}
	if err := a.auth.ConfirmPhoneSignIn(ctx, id, code); err != nil {
		printlnFn(services.OTPMessage(err))
		return nil
	}
	printlnFn("Signed in.")
	return nil
}

func (a *App) federatedSignIn(ctx context.Context, _ []string) error {
	authURL, state, err := a.auth.StartFederatedSignIn(ctx)
	if err != nil {
		printlnFn(services.FederatedMessage(err))
		return nil
	}
	printlnFn("Open this link in your browser to continue:")
	printlnFn(authURL)

	if _, err := a.prompt("Press Enter once you have signed in"); err != nil {
		return err
	}
	if err := a.auth.CompleteFederatedSignIn(ctx, state); err != nil {
		printlnFn(services.FederatedMessage(err))
		return nil
	}
	printlnFn("Signed in.")
	return nil
}

func (a *App) resetPassword(ctx context.Context, _ []string) error {
	email, err := a.prompt("Enter email")
	if err != nil {
		return err
	}
	if err := a.auth.SendPasswordReset(ctx, email); err != nil {
		printlnFn(services.ForgotPasswordMessage(err))
		return nil
	}
	printlnFn("Password reset email sent. Check your inbox.")
	return nil
}

// enterVerifyEmail polls for verification while the page is shown.
func (a *App) enterVerifyEmail(ctx context.Context, location string) {
	email := session.Query(location, "email")
	if email == "" {
		if p := a.store.Principal(); p != nil {
			email = p.Email
		}
	}
	printlnFn(fmt.Sprintf("We sent a verification link to %s. Waiting for you to open it...", email))
	a.poller.Start(ctx)
}

func (a *App) resendVerification(ctx context.Context, _ []string) error {
	if err := a.auth.SendVerificationEmail(ctx); err != nil {
		a.logger.Warn(ctx, "send verification email", "error", err)
		printlnFn("Failed to send verification email.")
		return nil
	}
	printlnFn("Verification email sent.")
	return nil
}

func (a *App) checkVerified(ctx context.Context, _ []string) error {
	p, err := a.auth.Reload(ctx)
	if err != nil {
		return err
	}
	if p.Verified() {
		printlnFn("Email verified.")
	} else {
		printlnFn("Not verified yet.")
	}
	return nil
}

func (a *App) signOut(ctx context.Context, _ []string) error {
	_ = a.auth.SignOut(ctx)
	printlnFn("Signed out.")
	return nil
}

func (a *App) updateProfile(ctx context.Context, _ []string) error {
	name, err := a.prompt("Enter display name")
	if err != nil {
		return err
	}
	photo, err := a.prompt("Enter photo URL (optional)")
	if err != nil {
		return err
	}
	if err := a.auth.UpdateProfile(ctx, name, photo); err != nil {
		a.logger.Warn(ctx, "update profile", "error", err)
		printlnFn("Failed to update profile.")
		return nil
	}
	printlnFn("Profile updated.")
	return nil
}

func (a *App) changePassword(ctx context.Context, _ []string) error {
	current, err := readSecret("Current password")
	if err != nil {
		return err
	}
	next, err := readSecret("New password")
	if err != nil {
		return err
	}
	confirm, err := readSecret("Confirm new password")
	if err != nil {
		return err
	}
	if next != confirm {
		printlnFn("Passwords do not match.")
		return nil
	}

	if err := a.auth.ChangePassword(ctx, current, next); err != nil {
		printlnFn(services.ChangePasswordMessage(err))
		return nil
	}
	printlnFn("Password updated.")
	return nil
}
