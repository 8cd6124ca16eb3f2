package config

import (
	"fmt"
	"strings"
)

// Error types reported in ConfigurationError.ErrorType.
const (
	ErrorTypeIO         = "io"
	ErrorTypeParse      = "parse"
	ErrorTypeValidation = "validation"
)

// ConfigurationError represents a structured error that occurs during configuration loading
type ConfigurationError struct {
	FilePath    string   `json:"filePath"`    // Full path to the file that caused the error
	FileName    string   `json:"fileName"`    // Base name of the file
	Section     string   `json:"section"`     // Configuration section (catalog, logging, metrics, watch)
	Field       string   `json:"field"`       // Offending field within the section, if any
	ErrorType   string   `json:"errorType"`   // Type of error (parse, validation, io)
	Message     string   `json:"message"`     // Human-readable error message
	Details     string   `json:"details"`     // Additional details about the error
	Suggestions []string `json:"suggestions"` // Actionable suggestions to fix the error
}

// Error implements the error interface
func (ce ConfigurationError) Error() string {
	location := ce.FileName
	if ce.Section != "" {
		location = fmt.Sprintf("%s %s", location, ce.path())
	}
	if location == "" {
		return ce.Message
	}
	return fmt.Sprintf("%s: %s", strings.TrimSpace(location), ce.Message)
}

func (ce ConfigurationError) path() string {
	if ce.Field == "" {
		return ce.Section
	}
	return ce.Section + "." + ce.Field
}

// DetailedError returns a detailed error message with all context
func (ce ConfigurationError) DetailedError() string {
	var parts []string

	parts = append(parts, fmt.Sprintf("Configuration Error in %s", ce.FileName))
	if ce.FilePath != "" {
		parts = append(parts, fmt.Sprintf("  File: %s", ce.FilePath))
	}
	if ce.Section != "" {
		parts = append(parts, fmt.Sprintf("  Field: %s", ce.path()))
	}
	parts = append(parts, fmt.Sprintf("  Type: %s", ce.ErrorType))
	parts = append(parts, fmt.Sprintf("  Error: %s", ce.Message))

	if ce.Details != "" {
		parts = append(parts, fmt.Sprintf("  Details: %s", ce.Details))
	}

	if len(ce.Suggestions) > 0 {
		parts = append(parts, "  Suggestions:")
		for _, suggestion := range ce.Suggestions {
			parts = append(parts, fmt.Sprintf("    - %s", suggestion))
		}
	}

	return strings.Join(parts, "\n")
}

// ConfigurationErrorCollection holds multiple configuration errors
type ConfigurationErrorCollection struct {
	Errors []ConfigurationError `json:"errors"`
}

// Error implements the error interface for the collection
func (cec ConfigurationErrorCollection) Error() string {
	if len(cec.Errors) == 0 {
		return "no configuration errors"
	}

	if len(cec.Errors) == 1 {
		return cec.Errors[0].Error()
	}

	return fmt.Sprintf("%d configuration errors: %s (and %d more)",
		len(cec.Errors), cec.Errors[0].Error(), len(cec.Errors)-1)
}

// HasErrors returns true if there are any errors in the collection
func (cec ConfigurationErrorCollection) HasErrors() bool {
	return len(cec.Errors) > 0
}

// Add adds a new error to the collection
func (cec *ConfigurationErrorCollection) Add(err ConfigurationError) {
	cec.Errors = append(cec.Errors, err)
}

// AddValidation records a validation failure for section.field.
func (cec *ConfigurationErrorCollection) AddValidation(section, field, message string, suggestions ...string) {
	cec.Add(ConfigurationError{
		Section:     section,
		Field:       field,
		ErrorType:   ErrorTypeValidation,
		Message:     message,
		Suggestions: suggestions,
	})
}

// GetDetailedReport returns a detailed report of all errors
func (cec ConfigurationErrorCollection) GetDetailedReport() string {
	if len(cec.Errors) == 0 {
		return "No configuration errors to report"
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("Detailed Configuration Error Report (%d errors):", len(cec.Errors)))
	parts = append(parts, strings.Repeat("=", 60))

	for i, err := range cec.Errors {
		parts = append(parts, fmt.Sprintf("\nError %d:", i+1))
		parts = append(parts, err.DetailedError())

		if i < len(cec.Errors)-1 {
			parts = append(parts, strings.Repeat("-", 40))
		}
	}

	return strings.Join(parts, "\n")
}
