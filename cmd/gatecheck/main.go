// Command gatecheck runs the input gates on a symptom description locally,
// without calling the model, and reports what the service would decide.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// errRejected marks a text the gates turned away. It maps to exit code 1.
var errRejected = errors.New("text rejected by gate")

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "gatecheck",
		Short: "Inspect how symptom text is gated before analysis",
		Long: `gatecheck applies the same text-quality, medical-relevance and meta-input
checks the analysis service uses, so thresholds can be tuned offline.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newCheckCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errRejected) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
