package utils

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/GriffinCanCode/formfill/internal/shared/types"
)

// Size limits for data received from the driver
const (
	MaxHTMLSize        = 2 * 1024 * 1024 // 2MB - HTML documents submitted for extraction
	MaxFieldsPerForm   = 512
	MaxFormsPerRequest = 64
	MaxSelectOptions   = 512
	MaxStringLength    = 1024
	MaxEmailLength     = 255
	MaxGUIDLength      = 128
)

// EmailPattern is a basic email validation
var EmailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidateString validates a string field with length and content checks
func ValidateString(value, fieldName string, maxLen int, required bool) error {
	if required && value == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	if utf8.RuneCountInString(value) > maxLen {
		return fmt.Errorf("%s must not exceed %d characters", fieldName, maxLen)
	}
	if strings.Contains(value, "\x00") {
		return fmt.Errorf("%s contains invalid characters", fieldName)
	}
	return nil
}

// ValidateEmail validates an email address
func ValidateEmail(email string, required bool) error {
	if err := ValidateString(email, "email", MaxEmailLength, required); err != nil {
		return err
	}
	if email != "" && !EmailPattern.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidateGUID validates a record identifier
func ValidateGUID(guid string) error {
	return ValidateString(guid, "record_guid", MaxGUIDLength, true)
}

// ValidateHTMLSize checks a document against MaxHTMLSize
func ValidateHTMLSize(data []byte) error {
	if len(data) > MaxHTMLSize {
		return fmt.Errorf("HTML size %d bytes exceeds maximum %d bytes", len(data), MaxHTMLSize)
	}
	return nil
}

// ValidateForm rejects malformed form snapshots at the boundary
func ValidateForm(form *types.Form) error {
	if form == nil {
		return fmt.Errorf("form is required")
	}
	if len(form.Fields) > MaxFieldsPerForm {
		return fmt.Errorf("form has %d fields, maximum is %d", len(form.Fields), MaxFieldsPerForm)
	}
	for _, s := range []struct{ name, value string }{
		{"form.name", form.Name},
		{"form.url", form.URL},
		{"form.action", form.Action},
	} {
		if err := ValidateString(s.value, s.name, MaxStringLength, false); err != nil {
			return err
		}
	}

	seen := make(types.FieldIDSet, len(form.Fields))
	for i := range form.Fields {
		f := &form.Fields[i]
		if seen.Contains(f.GlobalID) {
			return fmt.Errorf("field[%d] has duplicate id %s", i, f.GlobalID)
		}
		seen.Add(f.GlobalID)

		for _, s := range []struct{ name, value string }{
			{"name", f.Name},
			{"label", f.Label},
			{"placeholder", f.Placeholder},
			{"value", f.Value},
		} {
			if err := ValidateString(s.value, fmt.Sprintf("field[%d].%s", i, s.name), MaxStringLength, false); err != nil {
				return err
			}
		}
		if len(f.Options) > MaxSelectOptions {
			return fmt.Errorf("field[%d] has %d options, maximum is %d", i, len(f.Options), MaxSelectOptions)
		}
	}
	return nil
}
