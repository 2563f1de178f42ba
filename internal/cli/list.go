/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cli

import (
	"fmt"
	"os"

	commport "github.com/allbin/go-commport"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	listHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	listOwnedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	listFreeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List communications ports known to the active backend",
	Long: `List the communications ports known to the active backend.

Each port is shown with its type (serial or parallel) and current ownership.
A fresh snapshot is taken on every invocation; on the commx backend the
backend's port-list cache is refreshed first.

Examples:
  commport list
  commport list --type serial`,
	Run: func(cmd *cobra.Command, args []string) {
		ports, err := commport.GetPortIdentifiers()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing ports: %v\n", err)
			os.Exit(1)
		}

		typeFilter, _ := cmd.Flags().GetString("type")

		var shown int
		fmt.Println(listHeaderStyle.Render(fmt.Sprintf("%-16s %-10s %s", "PORT", "TYPE", "OWNER")))
		for _, p := range ports {
			if typeFilter != "" && p.PortType().String() != typeFilter {
				continue
			}
			shown++

			status := listFreeStyle.Render("-")
			if owned, err := p.CurrentlyOwned(); err == nil && owned {
				owner, _ := p.CurrentOwner()
				if owner == "" {
					owner = "(unknown)"
				}
				status = listOwnedStyle.Render(owner)
			}
			fmt.Printf("%-16s %-10s %s\n", p.Name(), p.PortType(), status)
		}

		if shown == 0 {
			if typeFilter != "" {
				fmt.Printf("No %s ports found\n", typeFilter)
			} else {
				fmt.Println("No ports found")
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().String("type", "", "only show ports of this type (serial|parallel)")
}
