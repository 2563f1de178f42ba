/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	commport "github.com/allbin/go-commport"
	"github.com/spf13/cobra"
)

// claimCmd represents the claim command
var claimCmd = &cobra.Command{
	Use:   "claim <port>",
	Short: "Claim a port exclusively and hold it until interrupted",
	Long: `Claim a communications port exclusively and hold the claim until
interrupted with Ctrl+C.

Useful for testing contention handling in other applications, and for
parking a port so nothing else grabs it.

Examples:
  commport claim ttyUSB0
  commport claim COM1 --app provisioning --timeout 5000 --baud 9600`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name := args[0]

		appName, _ := cmd.Flags().GetString("app")
		timeoutMs, _ := cmd.Flags().GetInt("timeout")
		baud, _ := cmd.Flags().GetInt("baud")

		p, err := commport.GetPortIdentifier(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error resolving port: %v\n", err)
			os.Exit(1)
		}

		port, err := p.Open(appName, time.Duration(timeoutMs)*time.Millisecond,
			commport.WithBaudRate(baud))
		if err != nil {
			var inUse *commport.PortInUseError
			if errors.As(err, &inUse) && inUse.Owner != "" {
				fmt.Fprintf(os.Stderr, "Port %s is held by %s\n", name, inUse.Owner)
			} else {
				fmt.Fprintf(os.Stderr, "Error opening port: %v\n", err)
			}
			os.Exit(1)
		}

		fmt.Printf("Claimed %s as %q. Press Ctrl+C to release.\n", port.Name(), appName)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh

		if err := port.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error releasing port: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("\nReleased.")
	},
}

func init() {
	rootCmd.AddCommand(claimCmd)

	claimCmd.Flags().String("app", "commport", "application name recorded on the claim")
	claimCmd.Flags().Int("timeout", 2000, "claim acquisition timeout in milliseconds")
	claimCmd.Flags().Int("baud", 115200, "baud rate applied at open")
}
