/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cli

import (
	"fmt"
	"os"

	"github.com/allbin/go-commport/provider/commx"
	"github.com/allbin/go-commport/provider/devfs"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/allbin/go-commport/provider"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "commport",
	Short: "Inspect and claim communications ports",
	Long: `commport enumerates, inspects, and claims the communications ports known
to the active port backend.

Which backend serves the host is decided once at startup: the native devfs
backend is preferred; the legacy commx backend is used where its driver
properties file is installed.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		applyConfig()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("commx-properties", "", "path to the commx driver properties file")
	rootCmd.PersistentFlags().String("lock-dir", "", "directory for port claim lock files")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")

	viper.BindPFlag("commx_properties", rootCmd.PersistentFlags().Lookup("commx-properties"))
	viper.BindPFlag("lock_dir", rootCmd.PersistentFlags().Lookup("lock-dir"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	home, err := os.UserHomeDir()
	if err == nil {
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".commport")
	}

	viper.SetEnvPrefix("COMMPORT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// applyConfig pushes CLI/config values into the library's environment knobs
// before the backend selection happens.
func applyConfig() {
	if p := viper.GetString("commx_properties"); p != "" {
		os.Setenv(commx.PropertiesEnv, p)
	}
	if d := viper.GetString("lock_dir"); d != "" {
		os.Setenv(devfs.LockDirEnv, d)
	}
	if viper.GetBool("verbose") {
		provider.SetLogger(zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			With().Timestamp().Logger().Level(zerolog.DebugLevel))
	}
}
