package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dmitrijs2005/medtrack/internal/client/models"
)

const timeLayout = "2006-01-02 15:04"

func (a *App) showLogs() {
	if !a.mirror.LogsSynced() {
		printlnFn("Loading logs...")
		return
	}
	logs := a.mirror.Logs()
	if len(logs) == 0 {
		printlnFn("No doses logged yet.")
		return
	}
	for _, l := range logs {
		printlnFn(formatLog(l))
	}
}

func formatLog(l models.LogEntry) string {
	s := fmt.Sprintf("%s  %-6s %s", l.TakenAt.Local().Format(timeLayout), l.Status, l.MedicationName)
	if l.Note != "" {
		s += " - " + l.Note
	}
	return s
}

// logDose records a dose for the medication named by args[0]; the rest of
// args becomes the note.
func (a *App) logDose(taken bool) func(context.Context, []string) error {
	status := models.LogMissed
	if taken {
		status = models.LogTaken
	}
	return func(ctx context.Context, args []string) error {
		med, ok := a.lookupMedication(args)
		if !ok {
			return nil
		}
		a.mirror.AddLog(ctx, models.LogInput{
			MedicationID:   med.ID,
			MedicationName: med.Name,
			TakenAt:        nowFn(),
			Status:         status,
			Note:           strings.Join(args[1:], " "),
		})
		printlnFn(fmt.Sprintf("Logged %s as %s.", med.Name, status))
		return nil
	}
}

func (a *App) ask(ctx context.Context, args []string) error {
	query := strings.Join(args, " ")
	if query == "" {
		q, err := GetMultiline(a.reader, "Your question", os.Stdout)
		if err != nil {
			return err
		}
		query = q
	}
	if query == "" {
		return nil
	}
	printlnFn("Thinking...")
	printlnFn(a.insights.Ask(ctx, query, a.mirror.Logs()))
	return nil
}

func (a *App) showGuardians() {
	if !a.roster.Synced() {
		printlnFn("Loading guardians...")
		return
	}
	gs := a.roster.Guardians()
	if len(gs) == 0 {
		printlnFn("No guardians yet. Use 'add' to invite one.")
		return
	}
	for _, g := range gs {
		perms := make([]string, 0, len(g.Permissions))
		for _, p := range g.Permissions {
			perms = append(perms, string(p))
		}
		printlnFn(fmt.Sprintf("%s (%s) %s", g.Email, g.Status, strings.Join(perms, ", ")))
	}
}

func parsePermissions(items []string) ([]models.Permission, error) {
	var perms []models.Permission
	for _, s := range items {
		switch p := models.Permission(s); p {
		case models.PermissionViewLogs, models.PermissionReceiveAlerts:
			perms = append(perms, p)
		default:
			return nil, fmt.Errorf("unknown permission %q", s)
		}
	}
	return perms, nil
}

func (a *App) addGuardian(ctx context.Context, _ []string) error {
	email, err := a.prompt("Guardian email")
	if err != nil {
		return err
	}
	items, err := GetList(a.reader, fmt.Sprintf("Permissions, comma separated: %s, %s [%s]",
		models.PermissionViewLogs, models.PermissionReceiveAlerts, models.PermissionViewLogs), os.Stdout)
	if err != nil {
		return err
	}
	perms, err := parsePermissions(items)
	if err != nil {
		printlnFn(err.Error())
		return nil
	}

	if _, err := a.roster.AddGuardian(ctx, email, perms); err != nil {
		return nil
	}
	printlnFn("Invitation sent to " + strings.TrimSpace(email) + ".")
	return nil
}

func (a *App) showSettings() {
	p := a.store.Principal()
	if p == nil {
		return
	}
	printlnFn("Name:    ", p.Name())
	if p.Email != "" {
		verified := "not verified"
		if p.EmailVerified {
			verified = "verified"
		}
		printlnFn("Email:   ", p.Email, "("+verified+")")
	}
	if p.PhoneNumber != "" {
		printlnFn("Phone:   ", p.PhoneNumber)
	}
	if p.PhotoURL != "" {
		printlnFn("Photo:   ", p.PhotoURL)
	}
	printlnFn("Provider:", p.Provider)
}
