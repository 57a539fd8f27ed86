package core

import "github.com/shopspring/decimal"

// XLSXContentType is the MIME type of generated workbooks.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Notification payloads. They travel through every notifier transport,
// including as JSON over AMQP, so they carry no behavior.
type (
	Attachment struct {
		FileName    string `json:"fileName"`
		ContentType string `json:"contentType"`
		Data        []byte `json:"data"`
	}

	BudgetAlertNotice struct {
		To            string          `json:"to"`
		RecipientName string          `json:"recipientName"`
		CategoryName  string          `json:"categoryName"`
		Month         string          `json:"month"`
		Spent         decimal.Decimal `json:"spent"`
		Budget        decimal.Decimal `json:"budget"`
		Percentage    decimal.Decimal `json:"percentage"`
	}

	MonthlyReportNotice struct {
		To            string     `json:"to"`
		RecipientName string     `json:"recipientName"`
		Year          int        `json:"year"`
		Month         int        `json:"month"`
		Attachment    Attachment `json:"attachment"`
	}

	ExpenseReportNotice struct {
		To            string     `json:"to"`
		RecipientName string     `json:"recipientName"`
		Title         string     `json:"title"`
		Period        Period     `json:"period"`
		Attachment    Attachment `json:"attachment"`
	}

	// Notice is a free-form message.
	Notice struct {
		To      string `json:"to"`
		Subject string `json:"subject"`
		Body    string `json:"body"`
	}
)
