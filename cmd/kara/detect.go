package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kara-xyz/go-kara/interchange"
)

var detectCmd = &cobra.Command{
	Use:   "detect <file>...",
	Short: "Report the detected interchange format of files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			fmt.Printf("%s: %s\n", path, interchange.DetectFormat(data))
		}
		return nil
	},
}
