package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bristot/linux-rt-rtsl/internal/probe"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "read the rtsl control file and list available probes",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(controlFilePath)
		if err != nil {
			return fmt.Errorf("read control file %s: %w", controlFilePath, err)
		}

		enabled := strings.TrimSpace(string(data)) == "1"
		fmt.Printf("control file: %s\n", controlFilePath)
		fmt.Printf("enabled: %v\n", enabled)
		fmt.Printf("available metrics probes: %s\n", strings.Join(probe.ListMetricsProbes(), ", "))
		fmt.Printf("available event probes: %s\n", strings.Join(probe.ListEventProbes(), ", "))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
