package cmd

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"authmcp/internal/automation"
	"authmcp/internal/automation/pwdriver"
	"authmcp/internal/automation/roddriver"
	"authmcp/internal/config"
	"authmcp/internal/credentials"
	"authmcp/internal/session"
	"authmcp/internal/tools"
)

// Version is reported to MCP clients during initialization.
var Version = "1.0.0"

const serverName = "auth-mcp-server"

var Verbose bool

var (
	driverName string
	envFile    string
	configPath string
)

var RootCmd = &cobra.Command{
	Use:   "authmcp",
	Short: "MCP server that fills stored credentials into a running Chrome",
	Long: `authmcp attaches to a Chrome started with --remote-debugging-port and
exposes a small set of MCP tools over stdio: connect, get_credentials,
fill_text, fill_credentials and get_page_info. Credentials are JSON tokens
({"username":..., "password":...}) read from the environment or a .env file.

Run without arguments to serve MCP on stdin/stdout.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runMCP,
}

func init() {
	RootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "v", false, "Enable verbose mode")
	RootCmd.PersistentFlags().StringVar(&driverName, "driver", "", "browser driver: rod or playwright")
	RootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "fallback file for credential tokens (default .env)")
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "settings file (default <config dir>/authmcp/config.yaml)")
	RootCmd.Flags().StringVarP(&mcpLogPath, "log", "l", "", "path to the MCP debug log file")

	// stdout belongs to the JSON-RPC stream
	RootCmd.SetOut(os.Stderr)
	RootCmd.SetErr(os.Stderr)
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadSettings applies command-line flags on top of the settings file and
// environment.
func loadSettings() (config.Settings, error) {
	loader := config.Loader{ConfigPath: configPath}
	s, err := loader.Load()
	if err != nil {
		return config.Settings{}, err
	}
	if driverName != "" {
		s.Driver = strings.ToLower(strings.TrimSpace(driverName))
	}
	if envFile != "" {
		s.EnvFile = envFile
	}
	if err := s.Validate(); err != nil {
		return config.Settings{}, err
	}
	return s, nil
}

// newConnector picks the automation driver. The returned stop function
// releases driver resources; it never closes the attached browser.
var newConnector = func(s config.Settings) (automation.Connector, func() error) {
	switch s.Driver {
	case config.DriverPlaywright:
		c := pwdriver.New(s.PlaywrightInstall, os.Stderr)
		return c, c.Stop
	default:
		return roddriver.New(debugf), func() error { return nil }
	}
}

// newDispatcher wires resolver, registry and driver into one dispatcher.
func newDispatcher(s config.Settings) (*tools.Dispatcher, func() error) {
	conn, stop := newConnector(s)
	d := tools.NewDispatcher(session.NewRegistry(conn), credentials.NewResolver(s.EnvFile))
	if Verbose {
		d.Debugf = debugf
	}
	return d, stop
}

func debugf(format string, args ...interface{}) {
	if Verbose {
		log.Printf("[debug] "+format, args...)
	}
}
