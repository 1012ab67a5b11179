package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teilomillet/tastelever/dataset"
)

const schemaFileName = "compiled-prompt-schema.json"

func schemaCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Write the JSON schema of a compiled takeaways prompt",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := dataset.WriteBundleSchema[Takeaway, Materiality](out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema written to %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", schemaFileName, "Output path")
	return cmd
}
