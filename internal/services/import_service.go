package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"spendwise/internal/cache"
	"spendwise/internal/core"
	"spendwise/internal/importer"
)

const maxReportedImportErrors = 20

// ImportResult summarizes a spreadsheet import.
type ImportResult struct {
	Message             string   `json:"message"`
	FileName            string   `json:"fileName"`
	FileType            string   `json:"fileType"`
	ImportedCount       int      `json:"importedCount"`
	SkippedRows         int      `json:"skippedRows"`
	TotalRows           int      `json:"totalRows"`
	Errors              []string `json:"errors"`
	HasMoreErrors       bool     `json:"hasMoreErrors"`
	AvailableCategories []string `json:"availableCategories"`
}

// ImportService loads expenses from uploaded CSV or XLSX files.
type ImportService struct {
	categories CategoryStore
	expenses   ExpenseStore
	users      UserStore
	cache      *cache.Store
	now        func() time.Time
}

func NewImportService(categories CategoryStore, expenses ExpenseStore, users UserStore, c *cache.Store) *ImportService {
	return &ImportService{
		categories: categories,
		expenses:   expenses,
		users:      users,
		cache:      c,
		now:        time.Now,
	}
}

// Import parses r and stores every valid row as an expense of userID.
// Categories named in the file that the user lacks are created with a zero
// budget. The returned error is non-nil only when nothing could be read;
// per-row problems are reported in the result.
func (s *ImportService) Import(ctx context.Context, userID int64, fileName string, r io.Reader) (ImportResult, error) {
	if userID <= 0 {
		return ImportResult{}, core.NewValidationError("userId", "Invalid user ID")
	}
	if !importer.Supported(fileName) {
		return ImportResult{}, core.NewValidationError("file", importer.ErrUnsupportedType.Error())
	}
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return ImportResult{}, err
	}

	records, err := importer.Parse(r, fileName)
	if err != nil {
		slog.WarnContext(ctx, "Failed to parse import file",
			"component", "importer",
			"user_id", userID,
			"file_name", fileName,
			"error", err)
		return ImportResult{}, core.NewValidationError("file", "No valid data found in file. "+importer.ExpectedFormat)
	}
	if len(records) == 0 {
		return ImportResult{}, core.NewValidationError("file", "No valid data found in file. "+importer.ExpectedFormat)
	}

	existing, err := s.categories.ListCategories(ctx, userID)
	if err != nil {
		return ImportResult{}, err
	}
	byName := make(map[string]int64, len(existing))
	var names []string
	for _, c := range existing {
		key := strings.ToLower(strings.TrimSpace(c.Name))
		if _, ok := byName[key]; !ok {
			byName[key] = c.ID
			names = append(names, key)
		}
	}

	result := ImportResult{
		FileName:  fileName,
		FileType:  importer.FileType(fileName),
		TotalRows: len(records),
	}
	var rowErrors []string
	createdCategory := false

	for _, rec := range records {
		if ctx.Err() != nil {
			return ImportResult{}, ctx.Err()
		}

		key := strings.ToLower(rec.Category)
		categoryID, ok := byName[key]
		if !ok {
			c := core.Category{UserID: userID, Name: rec.Category, MonthlyBudget: decimal.Zero}
			if err := c.Validate(); err != nil {
				rowErrors = append(rowErrors, fmt.Sprintf("Row %d: %s", rec.RowNumber, importErrorText(err)))
				result.SkippedRows++
				continue
			}
			if err := s.categories.CreateCategory(ctx, &c); err != nil {
				rowErrors = append(rowErrors, fmt.Sprintf("Row %d: %s", rec.RowNumber, importErrorText(err)))
				result.SkippedRows++
				continue
			}
			categoryID = c.ID
			byName[key] = c.ID
			names = append(names, key)
			createdCategory = true
		}

		e := core.Expense{
			UserID:      userID,
			CategoryID:  categoryID,
			Amount:      rec.Amount,
			Description: rec.Description,
			Date:        rec.Date,
		}
		if err := e.Validate(s.now()); err != nil {
			rowErrors = append(rowErrors, fmt.Sprintf("Row %d: %s", rec.RowNumber, importErrorText(err)))
			result.SkippedRows++
			continue
		}
		if err := s.expenses.CreateExpense(ctx, &e); err != nil {
			slog.ErrorContext(ctx, "Failed to save imported expense",
				"component", "importer",
				"user_id", userID,
				"row", rec.RowNumber,
				"error", err)
			rowErrors = append(rowErrors, fmt.Sprintf("Failed to save expense: %s", e.Description))
			continue
		}
		result.ImportedCount++
	}

	if createdCategory {
		s.cache.Invalidate(categoriesKey(userID))
	}

	result.HasMoreErrors = len(rowErrors) > maxReportedImportErrors
	if result.HasMoreErrors {
		rowErrors = rowErrors[:maxReportedImportErrors]
	}
	result.Errors = rowErrors
	if result.Errors == nil {
		result.Errors = []string{}
	}
	result.AvailableCategories = names
	if result.ImportedCount > 0 {
		result.Message = fmt.Sprintf("Import completed. %d expenses imported successfully.", result.ImportedCount)
	} else {
		result.Message = "Import completed but no valid expenses were found."
	}

	slog.InfoContext(ctx, "Expense import finished",
		"component", "importer",
		"user_id", userID,
		"file_name", fileName,
		"imported", result.ImportedCount,
		"skipped", result.SkippedRows,
		"total_rows", result.TotalRows)
	return result, nil
}

func importErrorText(err error) string {
	var verr *core.ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	if errors.Is(err, core.ErrConstraintViolation) {
		return "category already exists"
	}
	return err.Error()
}
