package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var disableCmd = &cobra.Command{
	Use:   "disable",
	Short: "disable rtsl tracking by writing to the control file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := os.WriteFile(controlFilePath, []byte("0"), 0644); err != nil {
			return fmt.Errorf("disable rtsl: %w", err)
		}
		fmt.Println("rtsl tracking disabled")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(disableCmd)
}
