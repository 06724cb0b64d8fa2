package main

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"regexp"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/xhad/buddy/internal/models"
	"github.com/xhad/buddy/pkg/format"
	"github.com/xhad/buddy/pkg/pipeline"
)

var exampleQuestions = []string{
	"What are the steps to declare a major at Texas Tech University",
	"What are the GPA and course requirements for declaring a major in the Rawls College of Business?",
	"How can new students register for the Red Raider Orientation (RRO)",
	"What are the key components of the Texas Tech University Code of Student Conduct",
	"What resources are available for students reporting incidents of misconduct at Texas Tech University",
	"What are the guidelines for amnesty provisions under the Texas Tech University Code of Student Conduct",
	"How does Texas Tech University handle academic misconduct, including plagiarism and cheating",
	"What are the procedures for resolving student misconduct through voluntary resolution or formal hearings",
	"What are the rights and responsibilities of students during the investigative process for misconduct at Texas Tech University",
	"How can students maintain a healthy lifestyle, including nutrition and fitness, while attending Texas Tech University",
}

// pickQuestions returns n distinct questions in random order.
func pickQuestions(r *rand.Rand, questions []string, n int) []string {
	if n > len(questions) {
		n = len(questions)
	}
	picked := make([]string, 0, n)
	for _, i := range r.Perm(len(questions))[:n] {
		picked = append(picked, questions[i])
	}
	return picked
}

func getProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("chunks"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func getSpinner(description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(color.CyanString(description)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(20),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// printAnswer writes the answer progressively, headers in bold.
func printAnswer(ctx context.Context, w io.Writer, presenter *format.Presenter, chunks []models.Chunk) error {
	header := color.New(color.Bold, color.FgCyan).SprintFunc()
	return presenter.Present(ctx, chunks, func(f format.Frame) error {
		delta := f.Delta
		if f.Chunk.Kind == models.ChunkHeader {
			delta = header(delta)
		}
		_, err := fmt.Fprint(w, delta)
		return err
	})
}

// printRelated lists the refined keywords and the documents both passes
// surfaced, with matched keywords highlighted in their tags.
func printRelated(w io.Writer, res *pipeline.Result) {
	if len(res.RefinedKeywords) > 0 {
		fmt.Fprintf(w, "\n%s %s\n", color.MagentaString("Related keywords:"), strings.Join(res.RefinedKeywords, ", "))
	}

	docs := res.RelatedDocuments()
	if len(docs) == 0 {
		return
	}
	fmt.Fprintln(w, color.MagentaString("Related documents:"))
	mark := color.New(color.Bold, color.FgYellow).SprintFunc()
	for _, doc := range docs {
		fmt.Fprintf(w, "  %s  %s\n", color.GreenString(doc.Title), doc.Link)
		fmt.Fprintf(w, "    tags: %s\n", highlight(models.JoinTags(doc.Tags), res.RefinedKeywords, mark))
	}
}

// highlight wraps every case-insensitive occurrence of a keyword in text
// with mark. Longer keywords win over the shorter ones they contain.
func highlight(text string, keywords []string, mark func(a ...interface{}) string) string {
	var alts []string
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			alts = append(alts, regexp.QuoteMeta(k))
		}
	}
	if len(alts) == 0 {
		return text
	}
	sort.SliceStable(alts, func(i, j int) bool { return len(alts[i]) > len(alts[j]) })

	re := regexp.MustCompile(`(?i)` + strings.Join(alts, "|"))
	return re.ReplaceAllStringFunc(text, func(m string) string {
		return mark(m)
	})
}
