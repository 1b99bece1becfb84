package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tidwall/jsonc"
)

var (
	argsFile string

	errToolFailed = errors.New("tool returned an error")
)

var callCmd = &cobra.Command{
	Use:   "call <tool> [json-arguments]",
	Short: "Run one tool and print its result",
	Long: `Runs a single tool the way an MCP client would and prints the text result.
Arguments are a JSON object given inline or read from --args-file, which may
contain comments and trailing commas.`,
	Example: `  linear-mcp call linear_list_issues '{"teamKey": "ENG", "status": "In Progress"}'
  linear-mcp --mock call linear_get_active_cycle --args-file cycle.jsonc`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		arguments, err := readArguments(args[1:], argsFile)
		if err != nil {
			return err
		}
		res := server.Call(cmd.Context(), args[0], arguments)
		fmt.Fprintln(cmd.OutOrStdout(), res.Text)
		if res.IsError {
			return errToolFailed
		}
		return nil
	},
}

func init() {
	callCmd.Flags().StringVarP(&argsFile, "args-file", "f", "", "read tool arguments from a JSON or JSONC file")
}

func readArguments(inline []string, path string) (map[string]any, error) {
	var raw []byte
	switch {
	case len(inline) > 0 && path != "":
		return nil, errors.New("pass arguments inline or with --args-file, not both")
	case len(inline) > 0:
		raw = []byte(inline[0])
	case path != "":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read arguments: %w", err)
		}
		raw = jsonc.ToJSON(data)
	default:
		return map[string]any{}, nil
	}

	var arguments map[string]any
	if err := json.Unmarshal(raw, &arguments); err != nil {
		return nil, fmt.Errorf("arguments must be a JSON object: %w", err)
	}
	return arguments, nil
}
