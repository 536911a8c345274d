package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kara-xyz/go-kara/interchange"
)

var (
	convertKind string
	convertTo   string
	convertOut  string
)

var convertCmd = &cobra.Command{
	Use:   "convert <file>",
	Short: "Convert a world or program between XML and JSON",
	Long: `Convert a world or state machine document between the legacy XML
format and its JSON mirror. The input format is auto-detected; without
--to, the opposite format is produced.

Converting a program with explicit "don't care" conditions to XML drops
them; each drop is reported on stderr.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(&convertKind, "kind", "k", "world", "document kind: world or program")
	convertCmd.Flags().StringVar(&convertTo, "to", "", "target format: xml or json (default: the other one)")
	convertCmd.Flags().StringVarP(&convertOut, "out", "o", "", "output file (default: stdout)")
}

func runConvert(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	from := interchange.DetectFormat(data)
	if from == interchange.FormatUnknown {
		return interchange.ErrUnknownFormat
	}
	target, err := targetFormat(from)
	if err != nil {
		return err
	}

	var out []byte
	switch convertKind {
	case "world":
		w, err := interchange.ReadWorld(data)
		if err != nil {
			return err
		}
		if target == interchange.FormatXML {
			out, err = interchange.EncodeWorld(w)
		} else {
			out, err = interchange.EncodeWorldJSON(w)
		}
		if err != nil {
			return err
		}
	case "program":
		p, err := interchange.ReadProgram(data)
		if err != nil {
			return err
		}
		if target == interchange.FormatXML {
			var warnings []string
			out, warnings, err = interchange.EncodeProgram(p)
			for _, w := range warnings {
				fmt.Fprintf(os.Stderr, "warning: %s\n", w)
			}
		} else {
			out, err = interchange.EncodeProgramJSON(p)
		}
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown kind %q (want world or program)", convertKind)
	}

	if convertOut == "" {
		_, err = os.Stdout.Write(out)
		return err
	}
	return os.WriteFile(convertOut, out, 0o644)
}

func targetFormat(from interchange.Format) (interchange.Format, error) {
	switch convertTo {
	case "":
		if from == interchange.FormatXML {
			return interchange.FormatJSON, nil
		}
		return interchange.FormatXML, nil
	case "xml":
		return interchange.FormatXML, nil
	case "json":
		return interchange.FormatJSON, nil
	default:
		return interchange.FormatUnknown, fmt.Errorf("unknown target format %q (want xml or json)", convertTo)
	}
}
