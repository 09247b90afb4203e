package main

import (
	"encoding/json"
	"fmt"

	"github.com/bissquit/incident-tracker/internal/version"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			if output == "json" {
				data, err := json.MarshalIndent(version.Get(), "", "  ")
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(w, string(data))
				return err
			}
			_, err := fmt.Fprintln(w, version.String())
			return err
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "plain", "output format (plain, json)")
	return cmd
}
