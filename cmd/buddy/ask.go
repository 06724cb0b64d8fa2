package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xhad/buddy/pkg/pipeline"
	"github.com/xhad/buddy/server"
)

func askCMD(cfgPath *string) *cobra.Command {
	var asJSON bool
	ask := &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer a single question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, *cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()

			p, err := a.pipeline(ctx)
			if err != nil {
				return err
			}

			res, err := p.Run(ctx, pipeline.NewRequest(strings.Join(args, " ")))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(server.AskResponse{Result: res, Documents: res.RelatedDocuments()})
			}

			if err := printAnswer(ctx, out, a.presenter(), res.Chunks); err != nil {
				return err
			}
			printRelated(out, res)
			fmt.Fprintln(out)
			return nil
		},
	}
	ask.Flags().BoolVar(&asJSON, "json", false, "print the full result as JSON")
	return ask
}
