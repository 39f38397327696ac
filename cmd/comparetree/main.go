// Command comparetree compares two directory trees file-by-file and
// writes a structured report of what matches, what differs, and how.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "comparetree",
		Short: "Compare two directory trees file-by-file",
	}
	root.AddCommand(newCompareCmd())
	return root
}
