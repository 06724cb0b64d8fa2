package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/xhad/buddy/internal/models"
)

func docsCMD(cfgPath *string) *cobra.Command {
	docs := &cobra.Command{
		Use:   "docs",
		Short: "Manage document metadata used for keyword matching",
	}
	docs.AddCommand(docsAddCMD(cfgPath), docsListCMD(cfgPath), docsSeedCMD(cfgPath))
	return docs
}

func docsAddCMD(cfgPath *string) *cobra.Command {
	var title, tags, link string
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a document record",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, *cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()

			rec, err := a.docs.Insert(ctx, title, models.ParseTags(tags), link)
			if err != nil {
				return err
			}
			color.Green("✓ Added document %d: %s\n", rec.ID, rec.Title)
			return nil
		},
	}
	add.Flags().StringVar(&title, "title", "", "document title")
	add.Flags().StringVar(&tags, "tags", "", "comma separated tags")
	add.Flags().StringVar(&link, "link", "", "document link")
	return add
}

func docsListCMD(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List document records with tags and links",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, *cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()

			recs, err := a.docs.All(ctx)
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				color.Yellow("No documents. Run 'buddy docs seed' or 'buddy docs add'.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tTAGS\tLINK")
			for _, r := range recs {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.ID, r.Title, models.JoinTags(r.Tags), r.Link)
			}
			return w.Flush()
		},
	}
}

func docsSeedCMD(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the initial document record",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, *cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.docs.Seed(ctx); err != nil {
				return err
			}
			color.Green("✓ Seeded documents table\n")
			return nil
		},
	}
}
