// Package renderer renders reports as markdown.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
	"time"

	"github.com/etnz/fintrack"
	"github.com/shopspring/decimal"
)

//go:embed templates/*.md
var templates embed.FS

// RenderDashboard renders the dashboard report to a markdown string.
func RenderDashboard(r *fintrack.Report) string {
	partials := map[string]string{
		"dashboard_summary":  "dashboard_summary.md",
		"dashboard_holdings": "dashboard_holdings.md",
		"dashboard_kinds":    "dashboard_kinds.md",
	}
	return renderTemplate("dashboard", "dashboard.md", partials, r)
}

// funcs are the formatting helpers available to every template.
func funcs(cur fintrack.Currency) template.FuncMap {
	return template.FuncMap{
		"money": func(v decimal.Decimal) string { return fintrack.M(v, cur).String() },
		"signed": func(v decimal.Decimal) string {
			return fintrack.M(v, cur).SignedString()
		},
		"native": func(v decimal.Decimal, c fintrack.Currency) string { return fintrack.M(v, c).String() },
		"pct": func(v decimal.Decimal) string {
			if v.IsZero() {
				return "-"
			}
			s := v.Shift(2).StringFixed(2) + "%"
			if v.IsPositive() {
				return "+" + s
			}
			return s
		},
		"qty": func(v decimal.Decimal) string { return v.String() },
		"when": func(t *time.Time) string {
			if t == nil {
				return "never"
			}
			return t.Local().Format("2006-01-02 15:04:05")
		},
	}
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, r *fintrack.Report) string {
	mainContent, err := fs.ReadFile(templates, "templates/"+mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Funcs(funcs(r.ReportingCurrency)).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		content, err := fs.ReadFile(templates, "templates/"+file)
		if err != nil {
			return fmt.Sprintf("error reading partial template %q: %v", file, err)
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, r); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
