package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sandevgo/tuskmem/internal/service/memory"
)

const labelWidth = 20

func row(b *strings.Builder, label, value string) {
	b.WriteString("  ")
	b.WriteString(DescStyle.Width(labelWidth).Render(label))
	b.WriteString(value)
	b.WriteByte('\n')
}

// RenderHealth formats a health report for the terminal.
func RenderHealth(h memory.Health) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("MEMORY STORE"))
	b.WriteByte('\n')

	row(&b, "database", h.DBPath)
	row(&b, "memories", fmt.Sprintf("%d", h.Total))
	row(&b, "feedback", fmt.Sprintf("%d helped / %d failed (%d with feedback)", h.Helped, h.Failed, h.WithFeedback))
	row(&b, "effectiveness", fmt.Sprintf("%.2f", h.Effectiveness))
	row(&b, "embeddings", coverage(h))
	row(&b, "relationships", fmt.Sprintf("%d", h.Edges))
	row(&b, "embedder", availability(h.EmbedderAvailable))

	if len(h.ByKind) > 0 {
		b.WriteByte('\n')
		b.WriteString(TitleStyle.Render("BY KIND"))
		b.WriteByte('\n')
		for _, st := range h.ByKind {
			row(&b, st.Kind.String(), fmt.Sprintf("%d (%d helped, %d failed, %d embedded)",
				st.Count, st.Helped, st.Failed, st.WithEmbedding))
		}
	}
	return b.String()
}

// RenderVerification formats the verify verdict followed by its issues.
func RenderVerification(v memory.Verification) string {
	var b strings.Builder

	status := ErrorStyle.Render(string(v.Status))
	if v.Status == memory.VerifyClosed {
		status = OKStyle.Render(string(v.Status))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, TitleStyle.UnsetMarginBottom().Render("learning loop "), status))
	b.WriteString("\n\n")

	if len(v.Issues) == 0 {
		b.WriteString("  no issues\n")
	}
	for _, issue := range v.Issues {
		b.WriteString("  ")
		b.WriteString(WarnStyle.Render("! " + issue))
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	b.WriteString(RenderHealth(v.Health))
	return b.String()
}

func coverage(h memory.Health) string {
	s := fmt.Sprintf("%d of %d (%.1f%%)", h.WithEmbedding, h.Total, h.EmbeddingCoverage)
	if h.Total > 0 && h.EmbeddingCoverage < 50 {
		return WarnStyle.Render(s)
	}
	return s
}

func availability(ok bool) string {
	if ok {
		return OKStyle.Render("available")
	}
	return WarnStyle.Render("unavailable")
}
