package main

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/xhad/buddy/pkg/pipeline"
)

func chatCMD(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Chat with your documents",
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
			presenter := a.presenter()
			history := pipeline.NewHistory(pipeline.DefaultHistorySize)
			out := cmd.OutOrStdout()

			questions := pickQuestions(rand.New(rand.NewSource(time.Now().UnixNano())), exampleQuestions, 3)
			color.Cyan("\nChat with College Buddy (type 'exit' to quit, 'history' for recent questions)")
			color.Cyan("Popular questions:")
			for i, q := range questions {
				fmt.Fprintf(out, "  %d. %s\n", i+1, q)
			}

			scanner := bufio.NewScanner(os.Stdin)
			userPrompt := color.New(color.FgGreen).PrintfFunc()
			assistantPrompt := color.New(color.FgCyan).PrintfFunc()

			for {
				userPrompt("\nYou: ")
				if !scanner.Scan() {
					break
				}

				query := strings.TrimSpace(scanner.Text())
				switch strings.ToLower(query) {
				case "exit":
					return nil
				case "":
					color.Yellow("Please enter a question or pick a popular question.")
					continue
				case "history":
					entries := history.Entries()
					if len(entries) == 0 {
						color.Yellow("No questions yet.")
					}
					for _, e := range entries {
						color.Green("Q: %s", e.Question)
						fmt.Fprintf(out, "A: %s\n\n", e.Answer)
					}
					continue
				}
				if n, err := strconv.Atoi(query); err == nil && n >= 1 && n <= len(questions) {
					query = questions[n-1]
					color.Blue("%s", query)
				}

				spinner := getSpinner(" Thinking...")
				res, err := p.Run(ctx, pipeline.NewRequest(query))
				_ = spinner.Finish()
				if err != nil {
					color.Red("Error: %v\n", err)
					if ctx.Err() != nil {
						return ctx.Err()
					}
					continue
				}

				assistantPrompt("\nAssistant:\n")
				if err := printAnswer(ctx, out, presenter, res.Chunks); err != nil {
					return err
				}
				printRelated(out, res)
				history.Add(query, res.Answer)
			}
			return scanner.Err()
		},
	}
}
