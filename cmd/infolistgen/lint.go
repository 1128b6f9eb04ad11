package main

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"

	"kalita/internal/dsl"
	"kalita/internal/schema"
)

func newLintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lint",
		Short: "Check infolists against their entities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			root, _ := cmd.Flags().GetString("dsl")
			model, err := dsl.LoadAll(root)
			if err != nil {
				return err
			}
			issues := schema.LintAll(model)
			w := cmd.OutOrStdout()
			for _, it := range issues {
				fmt.Fprintf(w, "%s %s:%d %s: %s (%s)\n", it.Severity, it.Infolist, it.Line, it.Path, it.Message, it.Code)
			}
			fmt.Fprintf(w, "%s, %s checked, %s\n",
				english.Plural(len(model.Infolists), "infolist", ""),
				english.Plural(len(model.Entities), "entity", "entities"),
				english.Plural(len(issues), "issue", ""))
			if schema.HasErrors(issues) {
				return errors.New("lint failed")
			}
			return nil
		},
	}
}
