package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/Alby-Shinoj7/docker-setup/internal/config"
	"github.com/Alby-Shinoj7/docker-setup/internal/models"
)

// Confirm asks the operator before mutating the host. Dry runs and --yes
// skip the prompt; a non-interactive stdin without --yes is fatal rather
// than silently proceeding.
func Confirm(prompt string, cfg config.Config) (bool, error) {
	if cfg.AssumeYes || cfg.DryRun {
		return true, nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, &models.SetupError{
			Kind: models.ErrPrecondition,
			Step: "confirm",
			Err:  errors.New("stdin is not a terminal; pass --yes for unattended runs"),
		}
	}

	fmt.Printf("%s [y/N]: ", color.YellowString(prompt))
	answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
