// Package core provides the mapping engine: regions, mappings, validation,
// dimension resolution and tuple generation.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When users encounter errors, they can quote the error code to support staff
// for faster diagnosis.
//
// Error codes are grouped by category:
//
// # Mapping Errors (MAP001-MAP099)
//
//	MAP001 - Missing values: No indicator-values mapping was declared
//	         Action: Select the block of values and mark it as indicator values
//	         Patterns: "missing value mapping"
//
//	MAP002 - Duplicate dimension: A dimension type is mapped more than once
//	         Action: Remove one of the mappings for that dimension
//	         Patterns: "duplicate dimension type"
//
//	MAP003 - Custom name: An additional dimension has no name
//	         Action: Give every additional dimension a name
//	         Patterns: "custom name"
//
//	MAP004 - Unknown dimension: The dimension type is not recognized
//	         Action: Use time, location, indicator-name, indicator-value, source, unit or custom
//	         Patterns: "unknown dimension type"
//
//	MAP005 - Mapping not found: The mapping no longer exists
//	         Action: Refresh the mapping list
//	         Patterns: "mapping not found"
//
// # Grid Errors (GRID001-GRID099)
//
//	GRID001 - File too large     Patterns: "file too large"
//	GRID002 - Invalid CSV        Patterns: "invalid csv"
//	GRID003 - Empty file         Patterns: "empty file"
//	GRID004 - No file            Patterns: "no file provided"
//	GRID005 - Encoding           Patterns: "unsupported charset", "encoding error"
//
// # Template Errors (TPL001-TPL099)
//
//	TPL001 - Template not found      Patterns: "template not found"
//	TPL002 - Template exists         Patterns: "template already exists"
//	TPL003 - Templates unavailable   Patterns: "templates unavailable"
//	TPL004 - Template name required  Patterns: "template name is required"
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Invalid request body   Patterns: "invalid request body"
//
// # System Errors (SYS001-SYS099, DB004, RATE001)
//
//	SYS001 - Busy: Too many concurrent requests     Patterns: "too many concurrent requests"
//	SYS002 - Request cancelled                      Patterns: "context canceled"
//	SYS003 - Request timeout                        Patterns: "context deadline exceeded"
//	DB004  - Database unreachable                   Patterns: "connection refused"
//	RATE001 - Rate limited                          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches. Support staff should check
// application logs for the original technical error.
//
// # Pattern Matching
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns should be
// defined before general ones.
package core

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Mapping Errors (MAP001-MAP005)
	// =========================================================================
	{
		pattern: "missing value mapping",
		msg: UserMessage{
			Message: "At least one indicator-values mapping is required",
			Action:  "Select the block of values and mark it as indicator values",
			Code:    "MAP001",
		},
	},
	{
		pattern: "duplicate dimension type",
		msg: UserMessage{
			Message: "A dimension type is mapped more than once",
			Action:  "Remove one of the mappings for that dimension",
			Code:    "MAP002",
		},
	},
	{
		pattern: "custom name",
		msg: UserMessage{
			Message: "Additional dimensions must have a custom name",
			Action:  "Give every additional dimension a name",
			Code:    "MAP003",
		},
	},
	{
		pattern: "unknown dimension type",
		msg: UserMessage{
			Message: "The dimension type is not recognized",
			Action:  "Use time, location, indicator-name, indicator-value, source, unit or custom",
			Code:    "MAP004",
		},
	},
	{
		pattern: "mapping not found",
		msg: UserMessage{
			Message: "The mapping no longer exists",
			Action:  "Refresh the mapping list",
			Code:    "MAP005",
		},
	},

	// =========================================================================
	// Grid Errors (GRID001-GRID005)
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Split the file into smaller chunks",
			Code:    "GRID001",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Ensure file is comma-separated with consistent quoting",
			Code:    "GRID002",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Please upload a CSV file with data rows",
			Code:    "GRID003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV file to upload",
			Code:    "GRID004",
		},
	},
	{
		pattern: "unsupported charset",
		msg: UserMessage{
			Message: "The requested character set is not supported",
			Action:  "Use auto, utf-8, windows-1252 or iso-8859-1",
			Code:    "GRID005",
		},
	},
	{
		pattern: "encoding error",
		msg: UserMessage{
			Message: "File contains invalid characters",
			Action:  "Save file as UTF-8 encoding",
			Code:    "GRID005",
		},
	},

	// =========================================================================
	// Template Errors (TPL001-TPL004)
	// =========================================================================
	{
		pattern: "template not found",
		msg: UserMessage{
			Message: "Template not found",
			Action:  "Verify the template still exists",
			Code:    "TPL001",
		},
	},
	{
		pattern: "template already exists",
		msg: UserMessage{
			Message: "A template with this name already exists",
			Action:  "Choose a different name or update the existing template",
			Code:    "TPL002",
		},
	},
	{
		pattern: "templates unavailable",
		msg: UserMessage{
			Message: "Saved templates are not available",
			Action:  "Configure DATABASE_URL to enable templates",
			Code:    "TPL003",
		},
	},
	{
		pattern: "template name is required",
		msg: UserMessage{
			Message: "Template name is required",
			Action:  "Enter a name for the template",
			Code:    "TPL004",
		},
	},

	// =========================================================================
	// Request Errors (REQ001)
	// =========================================================================
	{
		pattern: "invalid request body",
		msg: UserMessage{
			Message: "The request could not be read",
			Action:  "Send a JSON body with mappings and grid",
			Code:    "REQ001",
		},
	},

	// =========================================================================
	// System Errors (SYS001-SYS003, DB004, RATE001)
	// =========================================================================
	{
		pattern: "too many concurrent requests",
		msg: UserMessage{
			Message: "System is busy processing other requests",
			Action:  "Please wait a moment and try again",
			Code:    "SYS001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "SYS002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "SYS003",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It searches through known error patterns (case-insensitive) and returns
// the first match. If no pattern matches, a generic fallback message with
// code ERR000 is returned.
//
// Example:
//
//	msg := MapError(ErrMissingValueMapping)
//	// msg.Code == "MAP001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing checks if an error matches a known pattern and should be shown to users.
// Returns true if the error matches a specific pattern (not the generic ERR000 fallback).
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	msg := MapError(err)
	return msg.Code != defaultMessage.Code
}

// UserError wraps a technical error with a user-friendly message.
// The original error is preserved for logging while providing a clean message for users.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError creates a UserError by mapping a technical error to a user-friendly message.
// Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
