// infolistgen - генератор и отладочный рендер инфолистов DSL.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "infolistgen",
		Short: "Scaffold, lint and render kalita infolists",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("dsl", "dsl", "Path to DSL directory")
	root.AddCommand(newMakeCmd(), newRenderCmd(), newLintCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
