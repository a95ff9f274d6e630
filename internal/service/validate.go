package service

import (
	"sort"
	"strings"

	"github.com/stemsi/edulink/internal/apperror"
	"github.com/stemsi/edulink/internal/validator"
)

// validateInput applies the binding rules of req, including the column length limits,
// so library callers get the same validation as HTTP callers.
func validateInput(req interface{}) error {
	fields := validator.Struct(req)
	if fields == nil {
		return nil
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	msgs := make([]string, len(names))
	for i, name := range names {
		msgs[i] = fields[name]
	}
	return apperror.Validation(strings.Join(msgs, "; "))
}
