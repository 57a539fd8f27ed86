package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"spendwise/internal/core"
)

// NotificationKind selects which payload a NotificationMessage carries.
type NotificationKind string

const (
	KindBudgetAlert   NotificationKind = "budget_alert"
	KindMonthlyReport NotificationKind = "monthly_report"
	KindExpenseReport NotificationKind = "expense_report"
	KindNotice        NotificationKind = "notice"
)

// ErrInvalidMessage marks a delivery that can never be handled.
var ErrInvalidMessage = errors.New("invalid notification message")

// NotificationMessage is the envelope published for every outbound
// notification. Exactly one payload matches Kind.
type NotificationMessage struct {
	ID            string                    `json:"id"`
	Kind          NotificationKind          `json:"kind"`
	Timestamp     time.Time                 `json:"timestamp"`
	BudgetAlert   *core.BudgetAlertNotice   `json:"budgetAlert,omitempty"`
	MonthlyReport *core.MonthlyReportNotice `json:"monthlyReport,omitempty"`
	ExpenseReport *core.ExpenseReportNotice `json:"expenseReport,omitempty"`
	Notice        *core.Notice              `json:"notice,omitempty"`
}

func newMessage(kind NotificationKind) *NotificationMessage {
	return &NotificationMessage{
		ID:        uuid.NewString(),
		Kind:      kind,
		Timestamp: time.Now().UTC(),
	}
}

func NewBudgetAlertMessage(n core.BudgetAlertNotice) *NotificationMessage {
	m := newMessage(KindBudgetAlert)
	m.BudgetAlert = &n
	return m
}

func NewMonthlyReportMessage(n core.MonthlyReportNotice) *NotificationMessage {
	m := newMessage(KindMonthlyReport)
	m.MonthlyReport = &n
	return m
}

func NewExpenseReportMessage(n core.ExpenseReportNotice) *NotificationMessage {
	m := newMessage(KindExpenseReport)
	m.ExpenseReport = &n
	return m
}

func NewNoticeMessage(n core.Notice) *NotificationMessage {
	m := newMessage(KindNotice)
	m.Notice = &n
	return m
}

// Recipient returns the address of the payload, for logging.
func (m *NotificationMessage) Recipient() string {
	switch {
	case m.BudgetAlert != nil:
		return m.BudgetAlert.To
	case m.MonthlyReport != nil:
		return m.MonthlyReport.To
	case m.ExpenseReport != nil:
		return m.ExpenseReport.To
	case m.Notice != nil:
		return m.Notice.To
	}
	return ""
}

// Validate checks that the payload matching Kind is present.
func (m *NotificationMessage) Validate() error {
	var ok bool
	switch m.Kind {
	case KindBudgetAlert:
		ok = m.BudgetAlert != nil
	case KindMonthlyReport:
		ok = m.MonthlyReport != nil
	case KindExpenseReport:
		ok = m.ExpenseReport != nil
	case KindNotice:
		ok = m.Notice != nil
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidMessage, m.Kind)
	}
	if !ok {
		return fmt.Errorf("%w: missing %s payload", ErrInvalidMessage, m.Kind)
	}
	return nil
}

// ToJSON converts the message to JSON bytes
func (m *NotificationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// NotificationMessageFromJSON decodes and validates a delivery body.
func NotificationMessageFromJSON(data []byte) (*NotificationMessage, error) {
	var msg NotificationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
