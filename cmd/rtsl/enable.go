package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var enableCmd = &cobra.Command{
	Use:   "enable",
	Short: "enable rtsl tracking by writing to the control file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := os.WriteFile(controlFilePath, []byte("1"), 0644); err != nil {
			return fmt.Errorf("enable rtsl: %w", err)
		}
		fmt.Println("rtsl tracking enabled")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(enableCmd)
}
