package utils

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

func ProcessValidationErrors(err error) map[string]string {

	validationErrors := err.(validator.ValidationErrors)

	errorResponse := make(map[string]string)

	for _, ve := range validationErrors {
		errorResponse[ve.Field()] = ve.Tag()
	}

	return errorResponse
}

// SanitizeSheetName makes an arbitrary label safe for use as an Excel sheet
// name: path separators replaced, truncated to Excel's 31-character limit.
func SanitizeSheetName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	for _, ch := range []string{"?", "*", "[", "]", ":"} {
		name = strings.ReplaceAll(name, ch, "_")
	}
	if name == "" {
		name = "Sheet"
	}
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}
