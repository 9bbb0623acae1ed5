package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/shlex"
	"github.com/spf13/cobra"

	"authmcp/internal/appdirs"
	"authmcp/internal/tools"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Drive the MCP tools interactively",
	Long: `Start a prompt that calls the same tools the MCP server exposes,
in-process. Type a tool name followed by key=value arguments, for example:

  connect endpoint=http://localhost:9222 sessionId=work
  fill_credentials tokenName=GITHUB usernameSelector=#login passwordSelector=#password sessionId=work

Other commands: list, sessions, help, exit.`,
	Args: cobra.NoArgs,
	RunE: runShell,
}

func init() {
	RootCmd.AddCommand(shellCmd)
}

func runShell(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	disp, stop := newDispatcher(settings)
	defer func() {
		if err := stop(); err != nil {
			log.Printf("driver shutdown: %v", err)
		}
	}()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "authmcp> ",
		HistoryFile:     shellHistoryPath(),
		AutoComplete:    shellCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("start shell: %w", err)
	}
	defer rl.Close()

	if Verbose {
		log.SetOutput(rl.Stderr())
	} else {
		log.SetOutput(io.Discard)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if len(line) == 0 {
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		done, err := evalShellLine(ctx, rl.Stdout(), disp, line)
		if err != nil {
			fmt.Fprintln(rl.Stderr(), err)
		}
		if done {
			return nil
		}
	}
}

// evalShellLine runs one shell line. It reports true when the shell should
// exit.
func evalShellLine(ctx context.Context, w io.Writer, disp *tools.Dispatcher, line string) (bool, error) {
	name, args, err := parseShellLine(line)
	if err != nil {
		return false, err
	}

	switch name {
	case "":
	case "exit", "quit":
		return true, nil
	case "help", "list":
		return false, printCatalog(w, false)
	case "sessions":
		ids := disp.Sessions().IDs()
		if len(ids) == 0 {
			fmt.Fprintln(w, "no sessions")
		}
		for _, id := range ids {
			fmt.Fprintln(w, id)
		}
	default:
		env := disp.Invoke(ctx, name, args)
		fmt.Fprintln(w, env.Text)
	}
	return false, nil
}

// parseShellLine splits a line into a tool name and its key=value
// arguments. Quoting follows shell rules, so values may contain spaces.
func parseShellLine(line string) (string, map[string]interface{}, error) {
	fields, err := shlex.Split(line)
	if err != nil {
		return "", nil, fmt.Errorf("parse line: %w", err)
	}
	if len(fields) == 0 {
		return "", nil, nil
	}

	args := make(map[string]interface{}, len(fields)-1)
	for _, f := range fields[1:] {
		key, val, ok := strings.Cut(f, "=")
		if !ok || key == "" {
			return "", nil, fmt.Errorf("argument %q is not key=value", f)
		}
		args[key] = val
	}
	return fields[0], args, nil
}

func shellCompleter() *readline.PrefixCompleter {
	items := []readline.PrefixCompleterInterface{
		readline.PcItem("list"),
		readline.PcItem("sessions"),
		readline.PcItem("help"),
		readline.PcItem("exit"),
	}
	for _, def := range tools.List() {
		var params []readline.PrefixCompleterInterface
		for _, p := range def.Parameters {
			params = append(params, readline.PcItem(p.Name+"="))
		}
		items = append(items, readline.PcItem(def.Name, params...))
	}
	return readline.NewPrefixCompleter(items...)
}

func shellHistoryPath() string {
	base, err := appdirs.BaseDir()
	if err != nil {
		return ""
	}
	if err := appdirs.EnsureDir(base); err != nil {
		return ""
	}
	return filepath.Join(base, "shell_history")
}
