package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"spendwise/internal/core"
)

// memStore is an in-memory implementation of every store port.
type memStore struct {
	mu         sync.Mutex
	nextID     int64
	users      map[int64]core.User
	categories map[int64]core.Category
	expenses   map[int64]core.Expense
	alerts     map[int64]core.BudgetAlert
	jobs       map[int64]core.ReportJob

	queries    int
	insertErr  error
	sumErr     map[int64]error
	claimLost map[int64]bool
}

func newMemStore() *memStore {
	return &memStore{
		users:      map[int64]core.User{},
		categories: map[int64]core.Category{},
		expenses:   map[int64]core.Expense{},
		alerts:     map[int64]core.BudgetAlert{},
		jobs:       map[int64]core.ReportJob{},
		sumErr:     map[int64]error{},
		claimLost:  map[int64]bool{},
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func notFound(entity string, id int64) error {
	return fmt.Errorf("%s %d: %w", entity, id, core.ErrNotFound)
}

// seed helpers

func (m *memStore) addUser(email, name string) core.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := core.User{ID: m.id(), Email: email, FullName: name, CurrencyCode: "USD"}
	m.users[u.ID] = u
	return u
}

func (m *memStore) addCategory(userID int64, name, budget string) core.Category {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := core.Category{ID: m.id(), UserID: userID, Name: name, ColorHex: "#000000",
		MonthlyBudget: decimal.RequireFromString(budget), IsActive: true}
	m.categories[c.ID] = c
	return c
}

func (m *memStore) addExpense(userID, categoryID int64, amount string, d core.Date) core.Expense {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.categories[categoryID]
	e := core.Expense{ID: m.id(), UserID: userID, CategoryID: categoryID,
		Category: core.CategoryRef{ID: c.ID, Name: c.Name, ColorHex: c.ColorHex},
		Amount:   decimal.RequireFromString(amount), Description: "item", Date: d}
	m.expenses[e.ID] = e
	return e
}

func (m *memStore) alertCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.alerts)
}

// UserStore

func (m *memStore) CreateUser(_ context.Context, u *core.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return fmt.Errorf("insert user: %w", core.ErrConstraintViolation)
		}
	}
	u.ID = m.id()
	m.users[u.ID] = *u
	return nil
}

func (m *memStore) GetUser(_ context.Context, id int64) (core.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return core.User{}, notFound("user", id)
	}
	return u, nil
}

func (m *memStore) UpdateUser(_ context.Context, u core.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.users[u.ID]
	if !ok {
		return notFound("user", u.ID)
	}
	existing.FullName, existing.CurrencyCode = u.FullName, u.CurrencyCode
	m.users[u.ID] = existing
	return nil
}

// CategoryStore

func (m *memStore) CreateCategory(_ context.Context, c *core.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.categories {
		if existing.UserID == c.UserID && existing.IsActive && strings.EqualFold(existing.Name, c.Name) {
			return fmt.Errorf("insert category: %w", core.ErrConstraintViolation)
		}
	}
	c.ID = m.id()
	c.IsActive = true
	m.categories[c.ID] = *c
	return nil
}

func (m *memStore) GetCategory(_ context.Context, id int64) (core.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categories[id]
	if !ok {
		return core.Category{}, notFound("category", id)
	}
	return c, nil
}

func (m *memStore) FindActiveCategoryByName(_ context.Context, userID int64, name string) (core.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.categories {
		if c.UserID == userID && c.IsActive && strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	return core.Category{}, fmt.Errorf("find category %q: %w", name, core.ErrNotFound)
}

func (m *memStore) ListCategories(_ context.Context, userID int64) ([]core.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries++
	out := []core.Category{}
	for _, c := range m.categories {
		if c.UserID == userID && c.IsActive {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name) })
	return out, nil
}

func (m *memStore) UpdateCategoryBudget(_ context.Context, id int64, budget decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categories[id]
	if !ok {
		return notFound("category", id)
	}
	c.MonthlyBudget = budget
	m.categories[id] = c
	return nil
}

func (m *memStore) CountCategoryExpenses(_ context.Context, id int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.expenses {
		if e.CategoryID == id {
			n++
		}
	}
	return n, nil
}

func (m *memStore) DeleteCategory(_ context.Context, id int64, cascade bool) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[id]; !ok {
		return 0, notFound("category", id)
	}
	deleted := 0
	if cascade {
		for eid, e := range m.expenses {
			if e.CategoryID == id {
				delete(m.expenses, eid)
				deleted++
			}
		}
	}
	delete(m.categories, id)
	return deleted, nil
}

// ExpenseStore

func (m *memStore) CreateExpense(_ context.Context, e *core.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = m.id()
	c := m.categories[e.CategoryID]
	e.Category = core.CategoryRef{ID: c.ID, Name: c.Name, ColorHex: c.ColorHex}
	m.expenses[e.ID] = *e
	return nil
}

func (m *memStore) GetExpense(_ context.Context, id int64) (core.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.expenses[id]
	if !ok {
		return core.Expense{}, notFound("expense", id)
	}
	return e, nil
}

func (m *memStore) UpdateExpense(_ context.Context, e *core.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.expenses[e.ID]; !ok {
		return notFound("expense", e.ID)
	}
	m.expenses[e.ID] = *e
	return nil
}

func (m *memStore) DeleteExpense(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.expenses[id]; !ok {
		return notFound("expense", id)
	}
	delete(m.expenses, id)
	return nil
}

func (m *memStore) matching(q core.ExpenseQuery) []core.Expense {
	var out []core.Expense
	for _, e := range m.expenses {
		if e.UserID != q.UserID {
			continue
		}
		if q.From != nil && e.Date.Before(q.From.Time) {
			continue
		}
		if q.To != nil && e.Date.After(q.To.Time) {
			continue
		}
		if q.CategoryID != nil && e.CategoryID != *q.CategoryID {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (m *memStore) QueryExpenses(_ context.Context, q core.ExpenseQuery) ([]core.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries++
	out := m.matching(q)
	if q.Limit > 0 {
		if q.Offset >= len(out) {
			return []core.Expense{}, nil
		}
		end := q.Offset + q.Limit
		if end > len(out) {
			end = len(out)
		}
		out = out[q.Offset:end]
	}
	return out, nil
}

func (m *memStore) CountExpenses(_ context.Context, q core.ExpenseQuery) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.matching(q)), nil
}

// AlertStore

func (m *memStore) ListBudgetedCategories(_ context.Context) ([]core.BudgetedCategory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []core.BudgetedCategory
	for _, c := range m.categories {
		if c.IsActive && c.MonthlyBudget.IsPositive() {
			u := m.users[c.UserID]
			out = append(out, core.BudgetedCategory{Category: c, OwnerEmail: u.Email, OwnerName: u.FullName})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) SumCategorySpend(_ context.Context, categoryID int64, p core.Period) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.sumErr[categoryID]; err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, e := range m.expenses {
		if e.CategoryID == categoryID && p.Contains(e.Date) {
			total = total.Add(e.Amount)
		}
	}
	return total, nil
}

func (m *memStore) AlertExists(_ context.Context, categoryID int64, month string, minPct decimal.Decimal) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.alerts {
		if a.CategoryID == categoryID && a.Month == month {
			return a.PercentageUsed.GreaterThanOrEqual(minPct), nil
		}
	}
	return false, nil
}

func (m *memStore) InsertAlert(_ context.Context, a *core.BudgetAlert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	for _, existing := range m.alerts {
		if existing.CategoryID == a.CategoryID && existing.Month == a.Month {
			return fmt.Errorf("insert budget alert: %w", core.ErrConstraintViolation)
		}
	}
	a.ID = m.id()
	m.alerts[a.ID] = *a
	return nil
}

func (m *memStore) DeleteAlert(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.alerts[id]; !ok {
		return notFound("budget alert", id)
	}
	delete(m.alerts, id)
	return nil
}

func (m *memStore) ListAlerts(_ context.Context, userID int64, limit int) ([]core.BudgetAlert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []core.BudgetAlert{}
	for _, a := range m.alerts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AlertSentAt.Equal(out[j].AlertSentAt) {
			return out[i].AlertSentAt.After(out[j].AlertSentAt)
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// MonthlyEmailStore

func (m *memStore) ListUsersWithEmail(_ context.Context) ([]core.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []core.User
	for _, u := range m.users {
		if u.Email != "" {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) HasExpenses(_ context.Context, userID int64, p core.Period) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.expenses {
		if e.UserID == userID && p.Contains(e.Date) {
			return true, nil
		}
	}
	return false, nil
}

// ReportJobStore

func (m *memStore) CreateReportJob(_ context.Context, j *core.ReportJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j.ID = m.id()
	j.Status = core.JobPending
	if j.Format == "" {
		j.Format = core.FormatXLSX
	}
	j.CreatedAt = time.Now().UTC()
	m.jobs[j.ID] = *j
	return nil
}

func (m *memStore) GetReportJob(_ context.Context, id int64) (core.ReportJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return core.ReportJob{}, notFound("report job", id)
	}
	return j, nil
}

func (m *memStore) sortedJobs() []core.ReportJob {
	var out []core.ReportJob
	for _, j := range m.jobs {
		out = append(out, j)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memStore) ListPendingReportJobs(_ context.Context, limit int) ([]core.ReportJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []core.ReportJob
	for _, j := range m.sortedJobs() {
		if j.Status == core.JobPending && len(out) < limit {
			out = append(out, j)
		}
	}
	return out, nil
}

func (m *memStore) ListReportJobs(_ context.Context, userID int64) ([]core.ReportJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []core.ReportJob{}
	jobs := m.sortedJobs()
	for i := len(jobs) - 1; i >= 0; i-- {
		if jobs[i].UserID == userID {
			out = append(out, jobs[i])
		}
	}
	return out, nil
}

func (m *memStore) ClaimReportJob(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok || j.Status != core.JobPending || m.claimLost[id] {
		return false, nil
	}
	j.Status = core.JobProcessing
	m.jobs[id] = j
	return true, nil
}

func (m *memStore) finishJob(id int64, status core.JobStatus, url, reason string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return notFound("report job", id)
	}
	j.Status, j.FileURL, j.Error, j.CompletedAt = status, url, reason, &at
	m.jobs[id] = j
	return nil
}

func (m *memStore) CompleteReportJob(_ context.Context, id int64, fileURL string, at time.Time) error {
	return m.finishJob(id, core.JobCompleted, fileURL, "", at)
}

func (m *memStore) FailReportJob(_ context.Context, id int64, reason string, at time.Time) error {
	return m.finishJob(id, core.JobFailed, "", reason, at)
}

func (m *memStore) ResetStaleReportJobs(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, j := range m.jobs {
		if j.Status == core.JobProcessing {
			j.Status = core.JobPending
			m.jobs[id] = j
			n++
		}
	}
	return n, nil
}

// fakeNotifier records what it was asked to send.
type fakeNotifier struct {
	mu      sync.Mutex
	err     error
	alerts  []core.BudgetAlertNotice
	monthly []core.MonthlyReportNotice
	reports []core.ExpenseReportNotice
	notices []core.Notice
}

var errSMTPDown = errors.New("smtp: connection refused")

func (n *fakeNotifier) SendBudgetAlert(_ context.Context, a core.BudgetAlertNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return core.NewTransportError("send budget alert", n.err)
	}
	n.alerts = append(n.alerts, a)
	return nil
}

func (n *fakeNotifier) SendMonthlyReport(_ context.Context, r core.MonthlyReportNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return core.NewTransportError("send monthly report", n.err)
	}
	n.monthly = append(n.monthly, r)
	return nil
}

func (n *fakeNotifier) SendExpenseReport(_ context.Context, r core.ExpenseReportNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return core.NewTransportError("send expense report", n.err)
	}
	n.reports = append(n.reports, r)
	return nil
}

func (n *fakeNotifier) SendNotification(_ context.Context, msg core.Notice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return core.NewTransportError("send notification", n.err)
	}
	n.notices = append(n.notices, msg)
	return nil
}

// fakeRenderer encodes the expense count so tests can inspect the output.
type fakeRenderer struct{}

func (fakeRenderer) Render(r core.ExpenseReport) ([]byte, error) {
	return []byte(fmt.Sprintf("xlsx:%d", r.ExpenseCount)), nil
}

// fakePublisher stands in for the Sheets publisher.
type fakePublisher struct {
	url string
	err error
}

func (p fakePublisher) PublishReport(_ context.Context, r core.ExpenseReport) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	return p.url, nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
