package commands

import (
	"errors"
	"fmt"
	"os"

	"linear-mcp/internal/linear"

	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var openCmd = &cobra.Command{
	Use:   "open <issue>",
	Short: "Open an issue in the browser",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		issue, err := api.Issue(cmd.Context(), args[0])
		if errors.Is(err, linear.ErrNotFound) {
			return fmt.Errorf("issue %s not found", args[0])
		}
		if err != nil {
			return err
		}
		log.Info().Str("issue", issue.Identifier).Str("url", issue.URL).Msg("Opening issue")
		// Keep stdout free of launcher chatter.
		browser.Stdout = os.Stderr
		return browser.OpenURL(issue.URL)
	},
}
