package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kara-xyz/go-kara/fsm"
	"github.com/kara-xyz/go-kara/interchange"
	"github.com/kara-xyz/go-kara/lang"
)

var validateDialect string

var validateCmd = &cobra.Command{
	Use:   "validate <program>",
	Short: "Check a program without running it",
	Long: `Validate a state machine document or mini-language source file.

State machines are checked for a start state, resolvable targets, and
reachability; mini-language source is parsed and its routine calls
resolved. Warnings do not fail validation.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVarP(&validateDialect, "dialect", "d", "", "mini-language dialect (default: by extension)")
}

func runValidate(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if isMiniProgram(path) {
		d, err := dialectFor(validateDialect, path)
		if err != nil {
			return err
		}
		if err := lang.Validate(string(data), d); err != nil {
			return err
		}
		fmt.Printf("%s: valid %s program\n", path, d)
		return nil
	}

	prog, err := interchange.ReadProgram(data)
	if err != nil {
		return err
	}
	report := fsm.Validate(prog)
	for _, w := range report.Warnings {
		fmt.Printf("warning: %s\n", w.Message)
	}
	if !report.Valid {
		for _, e := range report.Errors {
			fmt.Printf("error: %s\n", e.Message)
		}
		return fmt.Errorf("%s: %d validation error(s)", path, len(report.Errors))
	}
	fmt.Printf("%s: valid state machine (%d states)\n", path, len(prog.States))
	return nil
}
