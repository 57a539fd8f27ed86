package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want Date
		ok   bool
	}{
		{"2024-02-29", NewDate(2024, 2, 29), true},
		{" 2025-01-01 ", NewDate(2025, 1, 1), true},
		{"2025-03-10T23:30:00Z", NewDate(2025, 3, 10), true},
		{"2025-03-10T01:30:00+02:00", NewDate(2025, 3, 9), true},
		{"10/03/2025", Date{}, false},
		{"", Date{}, false},
	}
	for _, tc := range cases {
		got, err := ParseDate(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(tc.want.Time) {
				t.Fatalf("%q expected %v, got %v (err=%v)", tc.in, tc.want, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestDateJSON(t *testing.T) {
	b, err := json.Marshal(NewDate(2024, 7, 4))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2024-07-04"` {
		t.Fatalf("unexpected json %s", b)
	}
	var d Date
	if err := json.Unmarshal([]byte(`"2024-07-04"`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !d.Equal(NewDate(2024, 7, 4).Time) {
		t.Fatalf("unexpected date %v", d)
	}
}

func TestUserValidate(t *testing.T) {
	u := User{Email: "  Ana@Example.COM ", FullName: " Ana ", CurrencyCode: "eur"}
	if err := u.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if u.Email != "ana@example.com" || u.FullName != "Ana" || u.CurrencyCode != "EUR" {
		t.Fatalf("user not normalized: %+v", u)
	}

	bads := []User{
		{Email: "", FullName: "a", CurrencyCode: "USD"},
		{Email: "not-an-email", FullName: "a", CurrencyCode: "USD"},
		{Email: "a@b.com", FullName: " ", CurrencyCode: "USD"},
		{Email: "a@b.com", FullName: "a", CurrencyCode: "US"},
		{Email: "a@b.com", FullName: "a", CurrencyCode: "U1D"},
	}
	for i, b := range bads {
		err := b.Validate()
		if err == nil {
			t.Fatalf("case %d expected error", i)
		}
		if !IsValidationError(err) {
			t.Fatalf("case %d expected validation error, got %T", i, err)
		}
	}
}

func TestCategoryValidate(t *testing.T) {
	c := Category{UserID: 1, Name: "  Food "}
	if err := c.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if c.Name != "Food" || c.ColorHex != "#000000" {
		t.Fatalf("category not normalized: %+v", c)
	}

	neg := Category{UserID: 1, Name: "x", MonthlyBudget: decimal.NewFromInt(-1)}
	if err := neg.Validate(); err == nil {
		t.Fatalf("expected error for negative budget")
	}
	empty := Category{UserID: 1, Name: "   "}
	if err := empty.Validate(); err == nil {
		t.Fatalf("expected error for empty name")
	}
}

func TestExpenseValidate(t *testing.T) {
	now := time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)
	good := Expense{
		UserID:      1,
		CategoryID:  2,
		Amount:      decimal.RequireFromString("9.99"),
		Description: " lunch ",
		Date:        NewDate(2025, 5, 11),
	}
	if err := good.Validate(now); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if good.Description != "lunch" {
		t.Fatalf("description not trimmed: %q", good.Description)
	}

	bads := []Expense{
		{UserID: 0, CategoryID: 2, Amount: decimal.NewFromInt(1), Description: "a", Date: NewDate(2025, 5, 1)},
		{UserID: 1, CategoryID: 0, Amount: decimal.NewFromInt(1), Description: "a", Date: NewDate(2025, 5, 1)},
		{UserID: 1, CategoryID: 2, Amount: decimal.Zero, Description: "a", Date: NewDate(2025, 5, 1)},
		{UserID: 1, CategoryID: 2, Amount: decimal.NewFromInt(1), Description: " ", Date: NewDate(2025, 5, 1)},
		{UserID: 1, CategoryID: 2, Amount: decimal.NewFromInt(1), Description: "a", Date: NewDate(2025, 5, 13)},
	}
	for i, b := range bads {
		if err := b.Validate(now); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestReportTypeNormalize(t *testing.T) {
	if ReportType("daily").Normalize() != ReportMonthly {
		t.Fatalf("unknown type should default to monthly")
	}
	if ReportWeekly.Normalize() != ReportWeekly {
		t.Fatalf("weekly should be kept")
	}
}
