package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/medtrack/internal/client/mirror"
	"github.com/dmitrijs2005/medtrack/internal/client/models"
	"github.com/dmitrijs2005/medtrack/internal/filex"
)

const dateLayout = "2006-01-02"

var nowFn = time.Now

func (a *App) showToday() {
	if a.mirror.Readiness() != mirror.Synced {
		printlnFn("Loading medications...")
		return
	}
	now := nowFn()
	meds := a.mirror.TodaysMedications(now)
	printlnFn(fmt.Sprintf("Today, %s", now.Format("Monday, January 2")))
	if len(meds) == 0 {
		printlnFn("No medications scheduled for today.")
		return
	}
	for _, m := range meds {
		printlnFn(formatMedication(m))
	}
}

func (a *App) showMedications() {
	if a.mirror.Readiness() != mirror.Synced {
		printlnFn("Loading medications...")
		return
	}
	meds := a.mirror.Medications()
	if len(meds) == 0 {
		printlnFn("No medications yet. Use 'add' to create one.")
		return
	}
	for _, m := range meds {
		printlnFn(formatMedication(m))
	}
}

func formatMedication(m models.Medication) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", m.ID, m.Name)
	if m.Dosage != "" {
		fmt.Fprintf(&b, " %s", m.Dosage)
	}
	if len(m.Times) > 0 {
		fmt.Fprintf(&b, " at %s", strings.Join(m.Times, ", "))
	}
	fmt.Fprintf(&b, " (%s, %s)", m.Repeat, m.Status)
	if m.EndDate != nil {
		fmt.Fprintf(&b, " until %s", m.EndDate.Format(dateLayout))
	}
	if m.ImageURL != "" {
		fmt.Fprintf(&b, "\n    image: %s", m.ImageURL)
	}
	return b.String()
}

func parseRepeat(s string) (models.Repeat, error) {
	switch r := models.Repeat(strings.ToLower(strings.TrimSpace(s))); r {
	case "":
		return models.RepeatDaily, nil
	case models.RepeatDaily, models.RepeatWeekly, models.RepeatCustom:
		return r, nil
	}
	return "", fmt.Errorf("unknown repeat %q, use daily, weekly or custom", s)
}

func parseEndDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return nil, fmt.Errorf("end date must look like %s", dateLayout)
	}
	return &t, nil
}

// readImage returns nil when path is empty or unreadable.
func readImage(path string) *filex.Image {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	img, err := filex.ReadImage(path)
	if err != nil {
		printlnFn("Skipping image:", err.Error())
		return nil
	}
	return img
}

func (a *App) addMedication(ctx context.Context, _ []string) error {
	name, err := a.prompt("Name")
	if err != nil {
		return err
	}
	if name == "" {
		printlnFn("Name is required.")
		return nil
	}
	dosage, err := a.prompt("Dosage (e.g. 10mg)")
	if err != nil {
		return err
	}
	times, err := GetList(a.reader, "Times, comma separated (e.g. 08:00, 20:00)", os.Stdout)
	if err != nil {
		return err
	}
	rs, err := a.prompt("Repeat: daily, weekly or custom [daily]")
	if err != nil {
		return err
	}
	repeat, err := parseRepeat(rs)
	if err != nil {
		printlnFn(err.Error())
		return nil
	}
	es, err := a.prompt("End date YYYY-MM-DD (optional)")
	if err != nil {
		return err
	}
	end, err := parseEndDate(es)
	if err != nil {
		printlnFn(err.Error())
		return nil
	}
	ip, err := a.prompt("Image file (optional)")
	if err != nil {
		return err
	}

	in := models.MedicationInput{Name: name, Dosage: dosage, Times: times, Repeat: repeat, EndDate: end}
	saved, err := a.mirror.AddMedication(ctx, in, readImage(ip))
	if err != nil {
		return nil
	}
	printlnFn("Medication saved:", saved.ID)
	return nil
}

func (a *App) lookupMedication(args []string) (models.Medication, bool) {
	if len(args) == 0 {
		printlnFn("Usage: <command> <medication id>")
		return models.Medication{}, false
	}
	m, ok := a.mirror.Medication(args[0])
	if !ok {
		printlnFn("No medication with id", args[0])
	}
	return m, ok
}

// editMedication asks for each field with the current value as default.
func (a *App) editMedication(ctx context.Context, args []string) error {
	rec, ok := a.lookupMedication(args)
	if !ok {
		return nil
	}
	keep := func(label, cur string) (string, error) {
		s, err := a.prompt(fmt.Sprintf("%s [%s]", label, cur))
		if err != nil || s == "" {
			return cur, err
		}
		return s, nil
	}

	var err error
	if rec.Name, err = keep("Name", rec.Name); err != nil {
		return err
	}
	if rec.Dosage, err = keep("Dosage", rec.Dosage); err != nil {
		return err
	}
	ts, err := keep("Times", strings.Join(rec.Times, ", "))
	if err != nil {
		return err
	}
	rec.Times = splitList(ts)
	rs, err := keep("Repeat", string(rec.Repeat))
	if err != nil {
		return err
	}
	if rec.Repeat, err = parseRepeat(rs); err != nil {
		printlnFn(err.Error())
		return nil
	}
	cur := ""
	if rec.EndDate != nil {
		cur = rec.EndDate.Format(dateLayout)
	}
	es, err := keep("End date, '-' to clear", cur)
	if err != nil {
		return err
	}
	if es == "-" {
		rec.EndDate = nil
	} else if rec.EndDate, err = parseEndDate(es); err != nil {
		printlnFn(err.Error())
		return nil
	}
	st, err := keep("Status: active or inactive", string(rec.Status))
	if err != nil {
		return err
	}
	switch s := models.MedicationStatus(st); s {
	case models.MedicationActive, models.MedicationInactive:
		rec.Status = s
	default:
		printlnFn("Status must be active or inactive.")
		return nil
	}
	ip, err := a.prompt("New image file (optional)")
	if err != nil {
		return err
	}

	if err := a.mirror.UpdateMedication(ctx, rec, readImage(ip)); err != nil {
		return nil
	}
	printlnFn("Medication updated.")
	return nil
}

func (a *App) deleteMedication(ctx context.Context, args []string) error {
	rec, ok := a.lookupMedication(args)
	if !ok {
		return nil
	}
	answer, err := a.prompt(fmt.Sprintf("Delete %s? (y/N)", rec.Name))
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "y") {
		return nil
	}
	a.mirror.DeleteMedication(ctx, rec.ID)
	return nil
}

func splitList(s string) []string {
	var items []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			items = append(items, p)
		}
	}
	return items
}
