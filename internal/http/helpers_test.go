package http

import (
	"fmt"
	"strconv"

	"spendwise/internal/core"
)

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func wrapConflict(msg string) error {
	return fmt.Errorf("%s: %w", msg, core.ErrConflict)
}
