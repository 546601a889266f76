// Package cmd implements CLI commands using the cobra framework.
package cmd

import (
	"github.com/spf13/cobra"
)

var configFile string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "acparse",
	Short: "acparse reconstructs Asheron's Call protocol messages from packet captures",
	Long: `acparse reads a pcap or pcapng capture of Asheron's Call client-server
traffic, strips the link/IP/UDP framing, reassembles fragmented application
messages, dissects the resulting opcode stream into typed messages, and
folds the stream into a database of in-world entities and their properties.`,
	Version: "0.1.0",
}

// Execute adds all child commands to the root command and runs it. Called
// once from main.main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "",
		"config file path (optional; defaults and env vars apply if omitted)")

	rootCmd.AddCommand(parseCaptureCmd)
}
