package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"authmcp/internal/appdirs"
	"authmcp/internal/config"
	"authmcp/internal/tools"
)

// path to the MCP debug log file, override with --log
var mcpLogPath string

const defaultLogName = "authmcp-mcp.log"

// mcpCmd is the cobra subcommand which will start our MCP server.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run authmcp in MCP-server mode over stdio",
	Args:  cobra.NoArgs,
	RunE:  runMCP,
}

func init() {
	RootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().StringVarP(&mcpLogPath, "log", "l", "", "path to the MCP debug log file")

	// ensure cobra’s own help/errors go to stderr
	mcpCmd.SetOut(os.Stderr)
	mcpCmd.SetErr(os.Stderr)
}

func runMCP(cmd *cobra.Command, args []string) error {
	// FORCE the standard logger to stderr
	log.SetOutput(os.Stderr)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	logPath := resolveLogPath(settings)
	if f, err := openLog(logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warning: cannot open mcp log %q: %v\n", logPath, err)
	} else {
		log.SetOutput(io.MultiWriter(os.Stderr, f))
		defer f.Close()
	}

	disp, stop := newDispatcher(settings)
	defer func() {
		if err := stop(); err != nil {
			log.Printf("driver shutdown: %v", err)
		}
	}()

	srv := tools.NewServer(serverName, Version, disp)
	srv.ErrorLog = log.New(log.Writer(), "stdio: ", log.LstdFlags|log.Lmicroseconds)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Printf("%s %s running on stdio (driver=%s env_file=%s)", serverName, Version, settings.Driver, settings.EnvFile)
	if err := srv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("server.Listen() error: %v", err)
		return err
	}
	log.Printf("server.Listen() exited cleanly")
	return nil
}

// resolveLogPath prefers --log, then the settings, then the per-user logs
// directory. An empty result means stderr only.
func resolveLogPath(s config.Settings) string {
	if p := strings.TrimSpace(mcpLogPath); p != "" {
		return p
	}
	if p := strings.TrimSpace(s.LogPath); p != "" {
		return p
	}
	dir, err := appdirs.LogsDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, defaultLogName)
}

func openLog(path string) (*os.File, error) {
	if path == "" {
		return nil, fmt.Errorf("no log path")
	}
	if err := appdirs.EnsureDir(filepath.Dir(path)); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
}
