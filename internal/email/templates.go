package email

import (
	"bytes"
	"fmt"
	"html/template"

	"spendwise/web"
)

const (
	templateBudgetAlert = "budget_alert.html"
	templateReport      = "monthly_report.html"
)

type budgetAlertView struct {
	RecipientName string
	CategoryName  string
	MonthLabel    string
	Percentage    string
	Spent         string
	Budget        string
	Remaining     string
	OverThreshold bool
	FromName      string
}

type reportView struct {
	Title         string
	RecipientName string
	Start         string
	End           string
	FromName      string
}

type templates struct {
	t *template.Template
}

func loadTemplates() (*templates, error) {
	t, err := template.ParseFS(web.EmailTemplatesFS, "templates/email/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse email templates: %w", err)
	}
	return &templates{t: t}, nil
}

func (t *templates) render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.t.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
