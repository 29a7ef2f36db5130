package manifest

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"manifest-reconciler/core/reconcile"
	"manifest-reconciler/core/utils"

	"github.com/charmbracelet/lipgloss"
)

const (
	headerColumnWidth = 32
	countColumnWidth  = 9
	pathColumnWidth   = 48
)

var (
	accentColor  = lipgloss.Color("#8BC34A")
	warningColor = lipgloss.Color("#FFC107")
	mutedColor   = lipgloss.Color("#6B7280")
)

// Reporter renders run results for the console.
type Reporter struct {
	// Top bounds the rows of the summary sections. Zero shows all.
	Top int

	title  lipgloss.Style
	head   lipgloss.Style
	cell   lipgloss.Style
	number lipgloss.Style
	muted  lipgloss.Style
	warn   lipgloss.Style
	box    lipgloss.Style
}

// NewReporter creates a reporter styled for w. Colors are dropped when w is
// not a terminal.
func NewReporter(w io.Writer, top int) *Reporter {
	r := lipgloss.NewRenderer(w)
	return &Reporter{
		Top:    top,
		title:  r.NewStyle().Bold(true).Foreground(accentColor).MarginTop(1),
		head:   r.NewStyle().Bold(true).Border(lipgloss.NormalBorder(), false, false, true, false),
		cell:   r.NewStyle(),
		number: r.NewStyle().Align(lipgloss.Right),
		muted:  r.NewStyle().Foreground(mutedColor),
		warn:   r.NewStyle().Foreground(warningColor),
		box:    r.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
	}
}

// Render writes the report matching the result's mode.
func (r *Reporter) Render(w io.Writer, res *reconcile.Result) error {
	var out string
	switch {
	case res.Audit != nil:
		out = r.Audit(res.Audit)
	case res.Merge != nil:
		out = r.Merge(res.Merge)
	case res.Update != nil:
		out = r.Update(res.Update)
	default:
		return nil
	}
	_, err := fmt.Fprintln(w, out)
	return err
}

type headerTotals struct {
	header                string
	missing, unique, text int
}

func (h headerTotals) total() int { return h.missing + h.unique }

// Audit renders per-header difference counts sorted by total differences,
// followed by the key label table and the most common missing content.
func (r *Reporter) Audit(report *reconcile.AuditReport) string {
	rows := make([]headerTotals, 0, len(report.Headers))
	var sum headerTotals
	for _, h := range report.Headers {
		t := headerTotals{
			header:  h,
			missing: len(report.MissingContent[h]),
			unique:  len(report.UniqueContent[h]),
			text:    len(report.TextDiff[h]),
		}
		sum.missing += t.missing
		sum.unique += t.unique
		sum.text += t.text
		rows = append(rows, t)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].total() != rows[j].total() {
			return rows[i].total() > rows[j].total()
		}
		return rows[i].header < rows[j].header
	})

	var b strings.Builder
	b.WriteString(r.title.Render("Header differences"))
	b.WriteString("\n")
	b.WriteString(r.row(r.head, "Header", "Missing", "Unique", "Text", "Total"))
	for _, t := range rows {
		b.WriteString(r.row(r.cell, t.header, strconv.Itoa(t.missing), strconv.Itoa(t.unique), strconv.Itoa(t.text), strconv.Itoa(t.total())))
	}
	sum.header = fmt.Sprintf("%d %s", len(rows), utils.Plural(len(rows), "header"))
	b.WriteString(r.row(r.head.BorderBottom(false).BorderTop(true), sum.header, strconv.Itoa(sum.missing), strconv.Itoa(sum.unique), strconv.Itoa(sum.text), strconv.Itoa(sum.total())))

	if len(report.KeyLabelSummary) > 0 {
		b.WriteString(r.title.Render("Key labels"))
		b.WriteString("\n")
		b.WriteString(r.labelRow(r.head, "Key", "Total", "Headers"))
		for _, e := range r.limit(len(report.KeyLabelSummary)) {
			l := report.KeyLabelSummary[e]
			b.WriteString(r.labelRow(r.cell, l.Key, strconv.Itoa(l.TotalCount), strconv.Itoa(l.HeaderCount)))
		}
	}

	b.WriteString(r.summary("Most common missing content", report.Summary))
	b.WriteString(r.summary("Most common unique content", report.UniqueSummary))

	if missing := len(report.Headers) - len(report.Prefixes); missing > 0 {
		b.WriteString("\n")
		b.WriteString(r.warn.Render(fmt.Sprintf("%d %s without an analytics prefix", missing, utils.Plural(missing, "header"))))
	}
	return b.String()
}

// Merge renders the merged headers with their placeholder substitutions.
func (r *Reporter) Merge(report *reconcile.MergeReport) string {
	var b strings.Builder
	b.WriteString(r.title.Render("Merged headers"))
	b.WriteString("\n")
	b.WriteString(r.row(r.head, "Header", "AppID", "PATH", "AppPaths", "Left"))
	for _, h := range report.Manifest.Keys() {
		s := report.Substitutions[h]
		b.WriteString(r.row(r.cell, h, strconv.Itoa(s.AppID), strconv.Itoa(s.Path), strconv.Itoa(s.AppPaths), strconv.Itoa(s.Unresolved+s.UnresolvedAppID)))
	}
	return b.String()
}

// Update renders instruction outcomes per header.
func (r *Reporter) Update(report *reconcile.UpdateReport) string {
	var b strings.Builder
	changed := 0
	b.WriteString(r.title.Render("Updated headers"))
	b.WriteString("\n")
	b.WriteString(r.row(r.head, "Header", "Removed", "Added", "Override", "Skipped"))
	for _, h := range report.Headers {
		s := report.Stats[h]
		style := r.cell
		if s.Changed() {
			changed++
		} else {
			style = r.muted
		}
		b.WriteString(r.row(style, h, strconv.Itoa(s.Removed), strconv.Itoa(s.Added), strconv.Itoa(s.Overridden), strconv.Itoa(s.Skipped)))
	}
	b.WriteString("\n")
	b.WriteString(r.box.Render(fmt.Sprintf("%d of %d %s changed", changed, len(report.Headers), utils.Plural(len(report.Headers), "header"))))
	return b.String()
}

func (r *Reporter) summary(title string, entries []reconcile.SummaryEntry) string {
	if len(entries) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(r.title.Render(title))
	b.WriteString("\n")
	b.WriteString(r.labelRow(r.head, "Path", "Count", "Headers"))
	for _, i := range r.limit(len(entries)) {
		e := entries[i]
		b.WriteString(r.labelRow(r.cell, e.Path.String(), strconv.Itoa(e.Count), strings.Join(e.Headers, ", ")))
	}
	if r.Top > 0 && len(entries) > r.Top {
		b.WriteString(r.muted.Render(fmt.Sprintf("... %d more", len(entries)-r.Top)))
		b.WriteString("\n")
	}
	return b.String()
}

func (r *Reporter) limit(n int) []int {
	if r.Top > 0 && n > r.Top {
		n = r.Top
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

func (r *Reporter) row(style lipgloss.Style, name string, counts ...string) string {
	cells := []string{r.cell.Width(headerColumnWidth).Render(utils.Truncate(name, headerColumnWidth-1))}
	for _, c := range counts {
		cells = append(cells, r.number.Width(countColumnWidth).Render(c))
	}
	return style.Render(lipgloss.JoinHorizontal(lipgloss.Top, cells...)) + "\n"
}

func (r *Reporter) labelRow(style lipgloss.Style, name, count, rest string) string {
	line := lipgloss.JoinHorizontal(lipgloss.Top,
		r.cell.Width(pathColumnWidth).Render(utils.Truncate(name, pathColumnWidth-1)),
		r.number.Width(countColumnWidth).Render(count),
		r.cell.PaddingLeft(2).Render(utils.Truncate(rest, 60)),
	)
	return style.Render(line) + "\n"
}
