package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rtsl",
	Short: "real-time scheduling-latency tracer",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debug {
			log.SetLevel(log.DebugLevel)
		} else {
			log.SetLevel(log.InfoLevel)
		}
	},
}

var (
	debug           bool
	controlFilePath string
)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug log information")
	rootCmd.PersistentFlags().StringVarP(&controlFilePath, "control-file", "f", "/sys/kernel/debug/rtsl/enable",
		"path to the rtsl control file")
}
