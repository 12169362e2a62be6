package inspect

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/bnema/lineserver/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const (
	defaultPreview  = 5
	defaultMaxWidth = 72
	barWidth        = 24
)

// Summary describes a loaded line store.
type Summary struct {
	Source  string
	Stats   domain.LineStats
	Preview []PreviewLine
}

type PreviewLine struct {
	Index int
	Text  string
}

type RenderOptions struct {
	// MaxWidth truncates preview lines; zero uses a default.
	MaxWidth int
}

// Summarize collects stats and up to preview leading lines from lines.
func Summarize(source string, lines *domain.Lines, preview int) Summary {
	if preview <= 0 {
		preview = defaultPreview
	}

	summary := Summary{Source: source, Stats: lines.Stats()}
	for i := 0; i < min(preview, lines.Len()); i++ {
		text, err := lines.Line(i)
		if err != nil {
			break
		}
		summary.Preview = append(summary.Preview, PreviewLine{Index: i, Text: text})
	}

	return summary
}

func renderView(summary Summary, opts RenderOptions, s styles) string {
	stats := summary.Stats
	lines := []string{
		s.title.Render("Line Store"),
		s.header.Render(fmt.Sprintf("source: %s", summary.Source)),
	}

	if stats.Total == 0 {
		lines = append(lines, s.empty.Render("No lines loaded. Every GET will be out of range."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	facts := []string{
		fact(s, "lines", fmt.Sprintf("%d", stats.Total)),
		fact(s, "blank", fmt.Sprintf("%d", stats.Blank)),
		fact(s, "bytes", fmt.Sprintf("%d", stats.Bytes)),
		fact(s, "longest", fmt.Sprintf("%d bytes (line %d)", stats.Longest, stats.LongestIndex)),
		coverageLine(stats, s),
	}
	lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left, facts...)))

	if len(summary.Preview) > 0 {
		preview := []string{s.key.Render("preview:")}
		for _, p := range summary.Preview {
			preview = append(preview, lipgloss.JoinHorizontal(
				lipgloss.Top,
				s.index.Render(fmt.Sprintf("%5d ", p.Index)),
				s.line.Render(truncate(p.Text, opts.MaxWidth)),
			))
		}
		lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left, preview...)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func fact(s styles, key, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, s.key.Render(key+": "), s.value.Render(value))
}

func coverageLine(stats domain.LineStats, s styles) string {
	percent := 100 * float64(stats.Addressable) / float64(stats.Total)
	line := lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.key.Render("addressable: "),
		renderProgressBar(percent, barWidth, s),
		" ",
		s.value.Render(fmt.Sprintf("%d (%.0f%%)", stats.Addressable, percent)),
	)

	if stats.Addressable < stats.Total {
		line += " " + s.warning.Render(fmt.Sprintf("[%d beyond GET range]", stats.Total-stats.Addressable))
	}

	return line
}

func renderProgressBar(percent float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	filled := int(math.Round(float64(width) * clampPercent(percent) / 100))
	filled = min(max(filled, 0), width)

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", width-filled)),
		s.barBracket.Render("]"),
	)
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func truncate(text string, width int) string {
	if width <= 0 {
		width = defaultMaxWidth
	}
	if utf8.RuneCountInString(text) <= width {
		return text
	}

	runes := []rune(text)
	return string(runes[:width-1]) + "…"
}
