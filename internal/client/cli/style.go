package cli

import (
	"errors"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dmitrijs2005/dreamtracer/internal/common"
	"github.com/dmitrijs2005/dreamtracer/internal/validation"
)

var (
	cPrimary = lipgloss.Color("63")
	cGood    = lipgloss.Color("42")
	cWarn    = lipgloss.Color("214")
	cBad     = lipgloss.Color("196")
	cMuted   = lipgloss.Color("244")
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	goodStyle  = lipgloss.NewStyle().Foreground(cGood)
	warnStyle  = lipgloss.NewStyle().Foreground(cWarn)
	badStyle   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	mutedStyle = lipgloss.NewStyle().Foreground(cMuted)
)

var errNotLoggedIn = errors.New("not logged in, run `dreamtracer login` first")

// ErrorLine renders err for the terminal with a hint for the common cases.
func ErrorLine(err error) string {
	msg := err.Error()
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		msg = strings.TrimPrefix(verr.Error(), "validation failed: ")
		msg = "invalid input: " + msg
	case errors.Is(err, common.ErrQuotaExceeded):
		msg += " (upgrade your plan to continue)"
	case errors.Is(err, common.ErrTokenExpired), errors.Is(err, common.ErrUnauthorized):
		msg += " (log in again)"
	case errors.Is(err, common.ErrUnavailable):
		msg += " (server unreachable, changes stay on this device)"
	}
	return badStyle.Render("error: " + msg)
}

func syncBadge(synced bool, syncErr string) string {
	switch {
	case synced:
		return goodStyle.Render("synced")
	case syncErr != "":
		return badStyle.Render("failed")
	default:
		return warnStyle.Render("pending")
	}
}
