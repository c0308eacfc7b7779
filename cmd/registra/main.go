package main

import (
	"context"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/registradesk/registra/internal/logger"
	"github.com/registradesk/registra/internal/tui/theme"
	"github.com/spf13/cobra"
)

const (
	logoText1 = "█▀█ █▀▀ █▀▀ █ █▀▀ ▀█▀ █▀█ ▄▀█"
	logoText2 = "█▀▄ ██▄ █▄█ █ ▄▄█  █  █▀▄ █▀█"
)

// Version set via ldflags during build
var version = "dev"

func main() {
	// Ensure logger is closed on exit
	defer func() { _ = logger.Close() }()

	if err := fang.Execute(context.Background(), rootCmd, fang.WithVersion(version)); err != nil {
		logger.Error("Command execution failed: %v", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "registra",
	Short: "Civil registry record intake with duplicate detection",
}

// renderLogo creates the logo with gradient colors
func renderLogo() string {
	t := theme.NewCatppuccinMocha()
	line1 := theme.ApplyGradient(logoText1, t.Primary, t.Secondary)
	line2 := theme.ApplyGradient(logoText2, t.Primary, t.Secondary)
	return strings.Join([]string{line1, line2}, "\n")
}

func init() {
	// Set Long description with logo
	rootCmd.Long = renderLogo() + `

registra is the clerk-facing intake tool for a local civil registry office.
It walks death and marriage record entry through a multi-step wizard with
field validation, background duplicate detection against the registry, and
an unsaved-change guard, then persists records via the registry API.

Configuration is loaded with the following precedence:
  ENV vars > Project config > Global config > Defaults

Project config: ./registra.yml
Global config: ~/.config/registra/registra.yml`

	rootCmd.AddCommand(intakeCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(setupCmd)
}
