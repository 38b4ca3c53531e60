package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/volleyhq/volley/internal/collection"
	"github.com/volleyhq/volley/internal/output"
	"github.com/volleyhq/volley/internal/payload"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate collection and data files without running them",
	Long: `Check that a collection file and/or a data file parse and satisfy their
schemas, without sending any requests.

Examples:
  volley validate -f checkout.json
  volley validate -f checkout.json -d bodies.json`,
	Run: func(cmd *cobra.Command, args []string) {
		file := resolveString(cmd, "file")
		data := resolveString(cmd, "data")

		if file == "" && data == "" {
			fmt.Fprintln(os.Stderr, "Error: at least one of --file or --data is required")
			cmd.Help()
			os.Exit(1)
		}

		if !runValidations(os.Stdout, noColor, file, data) {
			os.Exit(1)
		}
	},
}

func init() {
	validateCmd.Flags().StringP("file", "f", "", "collection file to validate")
	validateCmd.Flags().StringP("data", "d", "", "request body data file to validate")
}

// runValidations checks each given file and prints one line per result.
// It returns false if any file fails.
func runValidations(w io.Writer, noColor bool, file, data string) bool {
	ok := true

	if file != "" {
		if coll, err := collection.Load(file); err != nil {
			fmt.Fprintf(w, "%s %s: %v\n", output.ErrorIcon(noColor), file, err)
			ok = false
		} else {
			fmt.Fprintf(w, "%s %s: collection %q, %d items\n", output.SuccessIcon(noColor), file, coll.Name, len(coll.Items))
		}
	}

	if data != "" {
		if set, err := payload.Load(data); err != nil {
			fmt.Fprintf(w, "%s %s: %v\n", output.ErrorIcon(noColor), data, err)
			ok = false
		} else {
			fmt.Fprintf(w, "%s %s: %d entries\n", output.SuccessIcon(noColor), data, set.Len())
		}
	}

	return ok
}
