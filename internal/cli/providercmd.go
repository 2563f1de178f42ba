/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cli

import (
	"fmt"
	"os"

	commport "github.com/allbin/go-commport"
	"github.com/spf13/cobra"
)

// providerCmd represents the provider command
var providerCmd = &cobra.Command{
	Use:   "provider",
	Short: "Show which port backend serves this host",
	Run: func(cmd *cobra.Command, args []string) {
		// Force the one-time backend selection.
		if _, err := commport.GetPortIdentifiers(); err != nil {
			fmt.Fprintf(os.Stderr, "Error selecting backend: %v\n", err)
			os.Exit(1)
		}

		id, ok := commport.ActiveProvider()
		if !ok {
			fmt.Fprintln(os.Stderr, "No backend selected")
			os.Exit(1)
		}
		fmt.Println(id)
	},
}

func init() {
	rootCmd.AddCommand(providerCmd)
}
