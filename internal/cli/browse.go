/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cli

import (
	"fmt"
	"os"

	"github.com/allbin/go-commport/internal/tui/models"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// browseCmd represents the browse command
var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse ports in an interactive terminal interface",
	Long: `Browse the communications ports known to the active backend in an
interactive terminal interface.

The port table refreshes automatically and shows live ownership, so claims
made by other applications appear as they happen.`,
	Run: func(cmd *cobra.Command, args []string) {
		p := tea.NewProgram(models.NewBrowserModel(), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error running browser: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}
