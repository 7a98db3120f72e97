package table

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/funcinfra/pipelinectl/internal/build"
	"github.com/funcinfra/pipelinectl/internal/report"
)

var defaultTableStyle = table.Style{
	Name: "pipelinectl",
	Box: table.BoxStyle{
		BottomLeft:       "└",
		BottomRight:      "┘",
		BottomSeparator:  "",
		EmptySeparator:   text.RepeatAndTrim(" ", text.RuneCount("+")),
		Left:             "│",
		LeftSeparator:    "",
		MiddleHorizontal: "─",
		MiddleSeparator:  "",
		MiddleVertical:   "",
		PaddingLeft:      "  ",
		PaddingRight:     "  ",
		PageSeparator:    "\n",
		Right:            "│",
		RightSeparator:   "",
		TopLeft:          "┌",
		TopRight:         "┐",
		TopSeparator:     "",
		UnfinishedRow:    " ...",
	},
	Color: table.ColorOptionsDefault,
	Format: table.FormatOptions{
		Footer: text.FormatDefault,
		Header: text.FormatDefault,
		Row:    text.FormatDefault,
	},
	HTML: table.DefaultHTMLOptions,
	Options: table.Options{
		DrawBorder:      false,
		SeparateColumns: false,
		SeparateFooter:  true,
		SeparateHeader:  true,
		SeparateRows:    false,
	},
	Title: table.TitleOptionsDefault,
}

// Reporter is a table writer implementation for report.Reporter.
type Reporter struct {
	Results []report.InvocationResult
	Dst     io.Writer
}

// Add adds the invocation result to the summary table.
func (r *Reporter) Add(res report.InvocationResult) {
	r.Results = append(r.Results, res)
}

// Render renders out a summary table to the destination of Reporter.Dst.
func (r *Reporter) Render() error {
	t := table.NewWriter()
	t.SetOutputMirror(r.Dst)
	t.SetStyle(defaultTableStyle)
	t.SuppressEmptyColumns()

	t.AppendHeader(table.Row{"", "Name", "Type", "Build", "Status", "Tests"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{
			Number:   0, // the first nameless column holds the passed/fail icon
			WidthMax: 1,
		},
		{
			Name:     "Name",
			WidthMin: 30,
		},
		{
			Name:  "Build",
			Align: text.AlignRight,
		},
	})

	failures := 0
	for _, res := range r.Results {
		if !res.Passed() {
			failures++
		}
		// the order of values must match the order of the header
		t.AppendRow(table.Row{statusSymbol(res.Passed()), res.DisplayName, res.Type, res.BuildID,
			statusText(res.Status), testsText(res.TestResults)})
	}

	t.AppendFooter(footer(failures, len(r.Results)))

	_, _ = fmt.Fprintln(r.Dst)
	t.Render()
	return nil
}

func footer(failures, total int) table.Row {
	if failures != 0 {
		relative := float64(failures) / float64(total) * 100
		return table.Row{statusSymbol(false), fmt.Sprintf("%d of %d pipelines have failed (%.0f%%)", failures, total, relative)}
	}
	return table.Row{statusSymbol(true), "All pipelines have passed"}
}

func testsText(outcomes map[string]int) string {
	if len(outcomes) == 0 {
		return ""
	}
	keys := make([]string, 0, len(outcomes))
	for k := range outcomes {
		if k != "Total" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %d", strings.ToLower(k), outcomes[k]))
	}
	return strings.Join(parts, ", ")
}

func statusText(status string) string {
	switch build.Result(status) {
	case build.ResultSucceeded:
		return color.GreenString(status)
	case build.ResultPartiallySucceeded:
		return color.YellowString(status)
	}
	if build.Status(status).Pending() {
		return color.BlueString(status)
	}
	return color.RedString(status)
}

func statusSymbol(passed bool) string {
	if passed {
		return color.GreenString("✔")
	}
	return color.RedString("✖")
}
