package service

import (
	"fmt"
	"strings"

	"github.com/habitedge/habitedge/internal/model"
)

// greeting degrades to a plain "Hi," for the first magic link, which
// goes out before onboarding has asked for a name.
func greeting(name string) string {
	if name == "" {
		return "Hi,"
	}
	return fmt.Sprintf("Hi %s,", name)
}

func magicLinkEmailTemplate(name, magicURL, appName string) (string, string) {
	subject := fmt.Sprintf("Your sign-in link for %s", appName)
	body := fmt.Sprintf(`%s

Tap the link below to open your training journal:
%s

The link works once and expires in 10 minutes. If you didn't ask for
it, delete this email; nobody gets in without it.

The %s Team`, greeting(name), magicURL, appName)

	return subject, body
}

func forgotPasswordEmailTemplate(name, signInURL, appName string) (string, string) {
	subject := fmt.Sprintf("Reset access to %s", appName)
	body := fmt.Sprintf(`%s

This link signs you in and removes your password, so a forgotten one
can't lock you out:
%s

You can set a new password afterwards under Account. The link works
once and expires in 10 minutes.

If you didn't ask for this, delete this email and your password stays
as it is.

The %s Team`, greeting(name), signInURL, appName)

	return subject, body
}

func welcomeEmailTemplate(name, serverURL, appName string) (string, string) {
	subject := fmt.Sprintf("Welcome to %s!", appName)
	body := fmt.Sprintf(`%s

Your account is active. Time to set your first target and log your
first session.

Your server lives at %s - point the app there and you're in.

Consistency beats intensity. See you in the journal.

The %s Team`, greeting(name), serverURL, appName)

	return subject, body
}

func weeklyDigestEmailTemplate(name string, d *WeeklyDigest, serverURL, appName string) (string, string) {
	subject := fmt.Sprintf("Your training week on %s", appName)

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", greeting(name))
	fmt.Fprintf(&b, "Here's your week at a glance (%s to %s):\n\n",
		d.WeekStart.Format("Jan 2"), d.WeekEnd.Format("Jan 2"))

	fmt.Fprintf(&b, "Sessions logged: %d\n", d.EntriesThisWeek)
	for _, t := range model.EntryTypes {
		if n := d.EntryTypeCounts[t]; n > 0 {
			fmt.Fprintf(&b, "  %s: %d\n", t, n)
		}
	}
	fmt.Fprintf(&b, "Current streak: %d day(s)\n", d.CurrentStreak)

	if len(d.CompletedThisWeek) > 0 {
		b.WriteString("\nTargets hit this week:\n")
		for _, title := range d.CompletedThisWeek {
			fmt.Fprintf(&b, "  - %s\n", title)
		}
	}

	if len(d.UpcomingDeadlines) > 0 {
		b.WriteString("\nComing up:\n")
		for _, dl := range d.UpcomingDeadlines {
			writeDeadlineLine(&b, dl)
		}
	}

	fmt.Fprintf(&b, "\nKeep the chain going: %s\n\nThe %s Team", serverURL, appName)

	return subject, b.String()
}

func writeDeadlineLine(b *strings.Builder, dl DeadlineSummary) {
	switch {
	case dl.DaysRemaining < 0:
		fmt.Fprintf(b, "  - %s (overdue, %.0f%% there)\n", dl.Title, dl.PercentComplete)
	case dl.DaysRemaining == 0:
		fmt.Fprintf(b, "  - %s (due today, %.0f%% there)\n", dl.Title, dl.PercentComplete)
	default:
		fmt.Fprintf(b, "  - %s (%d day(s) left, %.0f%% there)\n", dl.Title, dl.DaysRemaining, dl.PercentComplete)
	}
}

func deadlineReminderEmailTemplate(name string, due []DeadlineSummary, appName string) (string, string) {
	subject := fmt.Sprintf("%d target deadline(s) coming up", len(due))

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", greeting(name))
	b.WriteString("Deadlines on your board:\n\n")
	for _, dl := range due {
		writeDeadlineLine(&b, dl)
	}
	fmt.Fprintf(&b, "\nA focused session today keeps them in reach.\n\nThe %s Team", appName)

	return subject, b.String()
}

func accountDeletedEmailTemplate(name, appName string) (string, string) {
	subject := fmt.Sprintf("Your %s account has been deleted", appName)
	body := fmt.Sprintf(`%s

Your %s account is gone, along with everything in it: profile,
targets, journal entries, streaks and uploads. None of it can be
restored.

If this wasn't you, reply to this email right away so we can lock the
server down.

The server seat is free again; a new magic link request starts a
fresh account.

The %s Team`, greeting(name), appName, appName)

	return subject, body
}
