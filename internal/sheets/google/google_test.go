package google

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendwise/internal/core"
)

func TestNewPublisher_MissingSpreadsheetID(t *testing.T) {
	_, err := NewPublisher(context.Background(), "  ")
	require.Error(t, err)
	assert.Equal(t, "missing GOOGLE_SPREADSHEET_ID", err.Error())
}

func TestLoadCredentials(t *testing.T) {
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	_, err := loadCredentials()
	assert.ErrorContains(t, err, "missing service account credentials")

	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", `{"type":"service_account"}`)
	got, err := loadCredentials()
	require.NoError(t, err)
	assert.Equal(t, `{"type":"service_account"}`, string(got))

	path := filepath.Join(t.TempDir(), "sa.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"from":"file"}`), 0o600))
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", path)
	got, err = loadCredentials()
	require.NoError(t, err)
	assert.Equal(t, `{"from":"file"}`, string(got))
}

func TestPublishWithoutService(t *testing.T) {
	p := &Publisher{spreadsheetID: "sheet"}
	_, err := p.PublishReport(context.Background(), core.ExpenseReport{})
	assert.Error(t, err)
}

func TestSheetURL(t *testing.T) {
	assert.Equal(t, "https://docs.google.com/spreadsheets/d/abc/edit#gid=42", SheetURL("abc", 42))
}

func TestQuoteTab(t *testing.T) {
	assert.Equal(t, "'2024 Report 1'", quoteTab("2024 Report 1"))
	assert.Equal(t, "'Ana''s'", quoteTab("Ana's"))
}
