package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kara-xyz/go-kara/interchange"
	"github.com/kara-xyz/go-kara/lang"
)

var (
	extractWorldPath string
	extractDialect   string
	extractLimit     int
)

var extractCmd = &cobra.Command{
	Use:   "extract <program>",
	Short: "Expand a mini-language program into its command sequence",
	Long: `Run a mini-language program against a simulated copy of a world and
print the primitive command sequence it produces, one command per line.
The world itself is not modified; blocked commands still appear in the
sequence.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&extractWorldPath, "world", "w", "", "world file (.world XML or JSON)")
	extractCmd.Flags().StringVarP(&extractDialect, "dialect", "d", "", "mini-language dialect (default: by extension)")
	extractCmd.Flags().IntVar(&extractLimit, "limit", 0, "command budget (default 10000)")
	_ = extractCmd.MarkFlagRequired("world")
}

func runExtract(cmd *cobra.Command, args []string) error {
	path := args[0]
	source, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	d, err := dialectFor(extractDialect, path)
	if err != nil {
		return err
	}

	worldData, err := os.ReadFile(extractWorldPath)
	if err != nil {
		return err
	}
	w, err := interchange.ReadWorld(worldData)
	if err != nil {
		return err
	}

	cmds, err := lang.Extract(string(source), d, w, extractLimit)
	if err != nil {
		return err
	}
	for _, c := range cmds {
		fmt.Println(c)
	}
	return nil
}
