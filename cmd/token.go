package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"authmcp/internal/credentials"
	"authmcp/internal/tools"
)

var tokenCmd = &cobra.Command{
	Use:   "token [NAME]",
	Short: "Check that a credential token resolves",
	Long: `Resolve NAME from the environment or the .env file and report the
username it carries. The password is never printed. Without NAME the
command prompts for one when attached to a terminal.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runToken,
}

func init() {
	RootCmd.AddCommand(tokenCmd)
	tokenCmd.SetOut(os.Stdout)
}

var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stderr.Fd()))
}

var askTokenName = func() (string, error) {
	var name string
	if err := survey.AskOne(&survey.Input{
		Message: "Token name",
	}, &name, survey.WithValidator(survey.Required), survey.WithStdio(os.Stdin, os.Stderr, os.Stderr)); err != nil {
		return "", err
	}
	return strings.TrimSpace(name), nil
}

func runToken(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	var name string
	if len(args) == 1 {
		name = args[0]
	} else {
		if !stdinIsTerminal() {
			return fmt.Errorf("token name required when not attached to a terminal")
		}
		if name, err = askTokenName(); err != nil {
			return err
		}
	}

	return checkToken(cmd.OutOrStdout(), credentials.NewResolver(settings.EnvFile), name)
}

func checkToken(w io.Writer, r tools.CredentialResolver, name string) error {
	cred, err := r.Resolve(name)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "token %s resolves (username: %s)\n", name, cred.Username)
	return nil
}
