package dashboard

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"strings"
	texttemplate "text/template"

	"github.com/charmbracelet/glamour"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"finboard/internal/core"
	"finboard/web"
)

const barWidth = 10

var markdownFuncs = texttemplate.FuncMap{
	"pct":  percent,
	"cell": escapeCell,
	"bar":  progressBar,
}

var markdownTemplate = texttemplate.Must(
	texttemplate.New("dashboard.md.tmpl").Funcs(markdownFuncs).ParseFS(web.TemplatesFS, "templates/dashboard.md.tmpl"),
)

var pageTemplate = template.Must(template.ParseFS(web.TemplatesFS, "templates/page.html"))

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

func percent(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}

var cellEscaper = strings.NewReplacer(
	"\\", "\\\\", "|", "\\|", "*", "\\*", "_", "\\_", "`", "\\`",
	"[", "\\[", "]", "\\]", "<", "\\<", ">", "\\>", "#", "\\#",
	"\r", " ", "\n", " ",
)

// escapeCell makes user text safe inside a Markdown table cell.
func escapeCell(s string) string {
	return cellEscaper.Replace(s)
}

func progressBar(pct float64) string {
	filled := int(pct/100*barWidth + 0.5)
	filled = max(0, min(barWidth, filled))
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}

// RenderMarkdown writes v as a GitHub flavoured Markdown document.
func RenderMarkdown(w io.Writer, v View) error {
	if err := markdownTemplate.Execute(w, v); err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	return nil
}

// RenderHTML writes v as an HTML fragment.
func RenderHTML(w io.Writer, v View) error {
	var md bytes.Buffer
	if err := RenderMarkdown(&md, v); err != nil {
		return err
	}
	if err := markdown.Convert(md.Bytes(), w); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

// RenderPage writes a complete HTML page with a currency selector around
// the dashboard fragment.
func RenderPage(w io.Writer, v View) error {
	var body bytes.Buffer
	if err := RenderHTML(&body, v); err != nil {
		return err
	}
	data := struct {
		Currencies []core.CurrencyCode
		Selected   core.CurrencyCode
		Body       template.HTML
	}{
		Currencies: core.SupportedCurrencies(),
		Selected:   v.Currency,
		Body:       template.HTML(body.String()),
	}
	if err := pageTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}

// RenderTerminal renders v for a terminal. style is a glamour style name
// such as "auto", "dark" or "notty".
func RenderTerminal(v View, style string) (string, error) {
	var md bytes.Buffer
	if err := RenderMarkdown(&md, v); err != nil {
		return "", err
	}
	if style == "" {
		style = "auto"
	}
	out, err := glamour.Render(md.String(), style)
	if err != nil {
		return "", fmt.Errorf("render terminal: %w", err)
	}
	return out, nil
}
