package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-vortex/pkg/openapi"
)

func newOpenAPICommand(env *environment) *cobra.Command {
	var (
		list bool
		file string
	)
	cmd := &cobra.Command{
		Use:   "openapi",
		Short: "Print the JSON API description",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := contextOf(cmd)
			var (
				doc *openapi.Document
				err error
			)
			if file != "" {
				doc, err = openapi.LoadFile(ctx, file)
			} else {
				doc, err = openapi.Default(ctx)
			}
			if err != nil {
				return err
			}

			if list {
				w := tabwriter.NewWriter(env.out, 0, 4, 2, ' ', 0)
				for _, op := range doc.Operations() {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", op.Method, op.Path, op.ID, op.Summary)
				}
				return w.Flush()
			}

			raw, err := doc.JSON()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(env.out, string(raw))
			return err
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "list operations instead of printing the document")
	cmd.Flags().StringVar(&file, "file", "", "validate and print this document instead of the embedded one")
	return cmd
}
