package core

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/badoux/checkmail"
	"github.com/shopspring/decimal"
)

const DateLayout = "2006-01-02"

const (
	ReportMonthly   ReportType = "monthly"
	ReportQuarterly ReportType = "quarterly"
	ReportYearly    ReportType = "yearly"
	ReportWeekly    ReportType = "weekly"
)

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

const (
	FormatXLSX   ReportFormat = "xlsx"
	FormatSheets ReportFormat = "sheets"
)

type (
	ReportType   string
	JobStatus    string
	ReportFormat string

	// Date is a calendar day in UTC.
	Date struct {
		time.Time
	}

	User struct {
		ID           int64     `json:"id"`
		Email        string    `json:"email"`
		FullName     string    `json:"fullName"`
		CurrencyCode string    `json:"currencyCode"`
		CreatedAt    time.Time `json:"createdAt"`
	}

	Category struct {
		ID            int64           `json:"id"`
		UserID        int64           `json:"userId"`
		Name          string          `json:"name"`
		Icon          string          `json:"icon"`
		ColorHex      string          `json:"colorHex"`
		MonthlyBudget decimal.Decimal `json:"monthlyBudget"`
		IsActive      bool            `json:"isActive"`
	}

	// CategoryRef is the denormalized category carried by an expense.
	CategoryRef struct {
		ID       int64  `json:"id"`
		Name     string `json:"name"`
		ColorHex string `json:"colorHex"`
	}

	Expense struct {
		ID          int64           `json:"id"`
		UserID      int64           `json:"userId"`
		CategoryID  int64           `json:"categoryId"`
		Category    CategoryRef     `json:"category"`
		Amount      decimal.Decimal `json:"amount"`
		Description string          `json:"description"`
		Date        Date            `json:"expenseDate"`
		CreatedAt   time.Time       `json:"createdAt"`
		UpdatedAt   time.Time       `json:"updatedAt"`
	}

	// BudgetedCategory is an active category with a positive budget and
	// the contact details of its owner.
	BudgetedCategory struct {
		Category
		OwnerEmail string
		OwnerName  string
	}

	// BudgetAlert is one row of the alert ledger.
	BudgetAlert struct {
		ID             int64           `json:"id"`
		UserID         int64           `json:"userId"`
		CategoryID     int64           `json:"categoryId"`
		Month          string          `json:"month"`
		PercentageUsed decimal.Decimal `json:"percentageUsed"`
		AlertSentAt    time.Time       `json:"alertSentAt"`
	}

	ReportJob struct {
		ID          int64        `json:"id"`
		UserID      int64        `json:"userId"`
		ReportType  ReportType   `json:"reportType"`
		Format      ReportFormat `json:"format"`
		Status      JobStatus    `json:"status"`
		FileURL     string       `json:"fileUrl,omitempty"`
		Error       string       `json:"error,omitempty"`
		CreatedAt   time.Time    `json:"createdAt"`
		CompletedAt *time.Time   `json:"completedAt,omitempty"`
	}

	// ExpenseQuery filters, orders and pages expense reads.
	ExpenseQuery struct {
		UserID     int64
		From       *Date
		To         *Date
		CategoryID *int64
		Offset     int
		Limit      int
	}
)

var currencyPattern = regexp.MustCompile(`^[A-Za-z]{3}$`)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its UTC calendar day.
func DateOf(t time.Time) Date {
	t = t.UTC()
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return DateOf(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, NewValidationError("date", "date must be YYYY-MM-DD or RFC 3339")
	}
	return DateOf(t), nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// AddDays returns the date n days later (or earlier for negative n).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// Validate normalizes and checks a new user.
func (u *User) Validate() error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.FullName = strings.TrimSpace(u.FullName)
	u.CurrencyCode = strings.ToUpper(strings.TrimSpace(u.CurrencyCode))

	if u.Email == "" {
		return NewValidationError("email", "Email is required")
	}
	if len(u.Email) > 255 {
		return NewValidationError("email", "Email cannot exceed 255 characters")
	}
	if err := checkmail.ValidateFormat(u.Email); err != nil {
		return NewValidationError("email", "Invalid email format")
	}
	return u.validateProfile()
}

func (u *User) validateProfile() error {
	if u.FullName == "" {
		return NewValidationError("fullName", "Full name is required")
	}
	if len(u.FullName) > 255 {
		return NewValidationError("fullName", "Full name cannot exceed 255 characters")
	}
	if !currencyPattern.MatchString(u.CurrencyCode) {
		return NewValidationError("currencyCode", "Currency code must be exactly 3 letters (e.g., USD, EUR, GEL)")
	}
	return nil
}

// ValidateProfile checks the mutable profile fields of an existing user.
func (u *User) ValidateProfile() error {
	u.FullName = strings.TrimSpace(u.FullName)
	u.CurrencyCode = strings.ToUpper(strings.TrimSpace(u.CurrencyCode))
	return u.validateProfile()
}

// Validate normalizes and checks a category before it is stored.
func (c *Category) Validate() error {
	c.Name = strings.TrimSpace(c.Name)
	c.Icon = strings.TrimSpace(c.Icon)
	c.ColorHex = strings.TrimSpace(c.ColorHex)
	if c.ColorHex == "" {
		c.ColorHex = "#000000"
	}

	if c.UserID <= 0 {
		return NewValidationError("userId", "Invalid user ID")
	}
	if c.Name == "" {
		return NewValidationError("name", "Category name cannot be empty")
	}
	if c.MonthlyBudget.IsNegative() {
		return NewValidationError("monthlyBudget", "Monthly budget cannot be negative")
	}
	return nil
}

// Validate normalizes and checks an expense against the current time.
func (e *Expense) Validate(now time.Time) error {
	e.Description = strings.TrimSpace(e.Description)

	if e.UserID <= 0 {
		return NewValidationError("userId", "Invalid user ID")
	}
	if e.CategoryID <= 0 {
		return NewValidationError("categoryId", "Invalid category ID")
	}
	if !e.Amount.IsPositive() {
		return NewValidationError("amount", "Amount must be greater than 0")
	}
	if e.Description == "" {
		return NewValidationError("description", "Description cannot be empty")
	}
	if e.Date.IsZero() {
		return NewValidationError("expenseDate", "Expense date is required")
	}
	if e.Date.After(now.UTC().AddDate(0, 0, 1)) {
		return NewValidationError("expenseDate", "Expense date cannot be in the future")
	}
	return nil
}

// Normalize maps unknown report types to monthly.
func (t ReportType) Normalize() ReportType {
	switch t {
	case ReportMonthly, ReportQuarterly, ReportYearly, ReportWeekly:
		return t
	default:
		return ReportMonthly
	}
}

func (f ReportFormat) IsValid() bool {
	return f == FormatXLSX || f == FormatSheets
}
