package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/fatefinder/internal/i18n"
	"github.com/aretw0/fatefinder/pkg/domain"
)

// Markdown renders the screen described by snap.
func Markdown(snap domain.Snapshot, l *i18n.Localizer) string {
	var b strings.Builder
	switch snap.Screen {
	case domain.ScreenHome:
		fmt.Fprintf(&b, "# %s\n\n%s\n", l.T(i18n.AppTitle), l.T(i18n.HomeLead))
	case domain.ScreenInput:
		fmt.Fprintf(&b, "## %s\n", l.T(i18n.InputHeading))
		if snap.Validation != nil {
			fmt.Fprintf(&b, "\n> %s\n", l.Error(snap.Validation))
		}
	case domain.ScreenLoading:
		fmt.Fprintf(&b, "_%s_\n", l.T(i18n.LoadingMessage))
	case domain.ScreenResult:
		if snap.LastResult != nil {
			b.WriteString(ResultMarkdown(snap.LastResult, l))
		}
		if snap.PersistError != "" {
			fmt.Fprintf(&b, "\n> %s\n", l.T(i18n.ResultPersistFailed))
		} else {
			fmt.Fprintf(&b, "\n_%s_\n", l.T(i18n.ResultSaved))
		}
	case domain.ScreenError:
		fmt.Fprintf(&b, "## %s\n", l.T(i18n.ErrorMessage))
		if snap.LastError != "" {
			fmt.Fprintf(&b, "\n`%s`\n", snap.LastError)
		}
	}
	return b.String()
}

// ResultMarkdown renders a prefecture as a heading, a fact table and its brief.
func ResultMarkdown(r *domain.FortuneResult, l *i18n.Localizer) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s: %s\n\n", l.T(i18n.ResultHeading), r.Name)
	b.WriteString("| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| %s | %s |\n", l.T(i18n.ResultCapital), r.Capital)
	if r.CitizenDay != nil {
		fmt.Fprintf(&b, "| %s | %s |\n", l.T(i18n.ResultCitizenDay), r.CitizenDay)
	}
	coast := l.T(i18n.ResultCoastlineNo)
	if r.HasCoastLine {
		coast = l.T(i18n.ResultCoastlineYes)
	}
	fmt.Fprintf(&b, "| %s | %s |\n", l.T(i18n.ResultCoastline), coast)
	fmt.Fprintf(&b, "| %s | %s |\n\n", l.T(i18n.ResultLogo), r.LogoURL)
	fmt.Fprintf(&b, "### %s\n\n%s\n", l.T(i18n.ResultBrief), r.Brief)
	return b.String()
}
