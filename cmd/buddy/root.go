package main

import (
	"github.com/spf13/cobra"
)

func rootCMD() *cobra.Command {
	var cfgPath string
	root := &cobra.Command{
		Use:          "buddy",
		Short:        "Answer student questions from uploaded documents",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is ./config.yaml)")

	root.AddCommand(
		askCMD(&cfgPath),
		chatCMD(&cfgPath),
		ingestCMD(&cfgPath),
		docsCMD(&cfgPath),
		serveCMD(&cfgPath),
	)
	return root
}
