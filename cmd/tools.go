package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"authmcp/internal/tools"
)

var toolsJSON bool

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Print the tool catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printCatalog(cmd.OutOrStdout(), toolsJSON)
	},
}

func init() {
	RootCmd.AddCommand(toolsCmd)
	toolsCmd.Flags().BoolVar(&toolsJSON, "json", false, "print the MCP tool schemas as JSON")
	toolsCmd.SetOut(os.Stdout)
}

func printCatalog(w io.Writer, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(tools.MCPTools())
	}

	for _, def := range tools.List() {
		fmt.Fprintf(w, "%s\n    %s\n", def.Name, def.Description)
		for _, p := range def.Parameters {
			var notes []string
			if p.Required {
				notes = append(notes, "required")
			}
			if p.Default != "" {
				notes = append(notes, "default "+p.Default)
			}
			line := fmt.Sprintf("    - %s (%s", p.Name, p.Type)
			if len(notes) > 0 {
				line += ", " + strings.Join(notes, ", ")
			}
			fmt.Fprintf(w, "%s) %s\n", line, p.Description)
		}
	}
	return nil
}
