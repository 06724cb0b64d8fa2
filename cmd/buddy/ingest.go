package main

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xhad/buddy/internal/models"
	"github.com/xhad/buddy/pkg/ingest"
	"github.com/xhad/buddy/pkg/scraper"
)

func ingestCMD(cfgPath *string) *cobra.Command {
	var (
		crawlURL string
		maxDepth int
	)
	cmd := &cobra.Command{
		Use:   "ingest [files...]",
		Short: "Embed documents into the similarity index",
		Long:  fmt.Sprintf("Ingest local files (%v) or crawl a site with --url.", ingest.SupportedExtensions),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && crawlURL == "" {
				return fmt.Errorf("nothing to ingest: pass files or --url")
			}

			ctx := cmd.Context()
			a, err := newApp(ctx, *cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()

			var bar *progressbar.ProgressBar
			in, err := a.ingester(ctx, ingest.WithProgress(func(p ingest.Progress) {
				if bar == nil {
					return
				}
				bar.ChangeMax(p.Total)
				_ = bar.Set(p.Stored)
			}))
			if err != nil {
				return err
			}

			var docs []models.Document
			failed := 0
			for _, path := range args {
				doc, err := ingest.ExtractFile(path)
				if err != nil {
					color.Red("✗ %s: %v\n", path, err)
					failed++
					continue
				}
				docs = append(docs, doc)
			}

			if crawlURL != "" {
				if cmd.Flags().Changed("max-depth") {
					a.cfg.Ingest.MaxDepth = maxDepth
				}
				pages, err := crawl(cmd, a, crawlURL)
				if err != nil {
					return err
				}
				docs = append(docs, pages...)
			}

			var stored, totalTokens, totalChunks int
			for _, doc := range docs {
				label := doc.Title
				if label == "" {
					label = doc.URL
				}
				bar = getProgressBar(-1, " Storing "+label)
				report, err := in.Ingest(ctx, doc)
				_ = bar.Finish()
				bar = nil
				if err != nil {
					color.Red("\n✗ %s: %v\n", label, err)
					a.logger.Error("Failed to ingest document", zap.String("source", label), zap.Error(err))
					failed++
					if ctx.Err() != nil {
						return ctx.Err()
					}
					continue
				}
				stored++
				totalTokens += report.Tokens
				totalChunks += report.Chunks
				color.Green("\n✓ %s: %d chunks, %d tokens (file id %s)\n", report.Source, report.Chunks, report.Tokens, report.FileID)
			}

			color.Cyan("\nIngested %d of %d documents: %d chunks, %d tokens in total\n",
				stored, stored+failed, totalChunks, totalTokens)
			if failed > 0 {
				return fmt.Errorf("%d document(s) failed", failed)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&crawlURL, "url", "", "crawl this site instead of (or in addition to) files")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 1, "link depth to follow when crawling")
	return cmd
}

// crawl scrapes a site with a live page counter.
func crawl(cmd *cobra.Command, a *app, baseURL string) ([]models.Document, error) {
	var pages int32
	s, err := scraper.NewWithConfig(scraper.ScraperConfig{
		BaseURL:   baseURL,
		MaxDepth:  a.cfg.Ingest.MaxDepth,
		RateLimit: a.cfg.Ingest.RateLimit,
		Logger:    a.logger,
		OnProgress: func(string) {
			atomic.AddInt32(&pages, 1)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize scraper: %w", err)
	}

	color.Blue("\nCrawling %s\n", baseURL)
	bar := getProgressBar(-1, " Scraping pages...")
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				_ = bar.Set(int(atomic.LoadInt32(&pages)))
			}
		}
	}()

	docs, err := s.Scrape(cmd.Context())
	close(done)
	_ = bar.Finish()
	if err != nil {
		return nil, fmt.Errorf("failed to scrape %s: %w", baseURL, err)
	}
	color.Green("\n✓ Scraped %d pages\n", len(docs))
	return docs, nil
}
