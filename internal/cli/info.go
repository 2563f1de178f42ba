/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cli

import (
	"errors"
	"fmt"
	"os"

	commport "github.com/allbin/go-commport"
	"github.com/spf13/cobra"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info <port>",
	Short: "Display information about a single port",
	Long: `Display information about a single communications port.

Examples:
  commport info ttyUSB0
  commport info COM1`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name := args[0]

		p, err := commport.GetPortIdentifier(name)
		if err != nil {
			if errors.Is(err, commport.ErrNoSuchPort) {
				fmt.Fprintf(os.Stderr, "No such port: %s\n", name)
			} else {
				fmt.Fprintf(os.Stderr, "Error resolving port: %v\n", err)
			}
			os.Exit(1)
		}

		fmt.Printf("Port Information: %s\n\n", p.Name())
		fmt.Printf("  Type:  %s\n", p.PortType())

		owned, err := p.CurrentlyOwned()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading ownership: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("  Owned: %v\n", owned)
		if owned {
			owner, _ := p.CurrentOwner()
			fmt.Printf("  Owner: %s\n", owner)
		}

		if id, ok := commport.ActiveProvider(); ok {
			fmt.Printf("\nServed by backend: %s\n", id)
		}
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
