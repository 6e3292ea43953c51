// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support
// reference. Users quote the code to support staff for faster diagnosis.
//
// Known sentinel errors are matched first with errors.Is. Anything else is
// matched against technical message patterns.
//
// # Lead Errors (LEAD001-LEAD099)
//
//	LEAD001 - Not found: The lead does not exist
//	          Sentinel: ErrLeadNotFound
//
//	LEAD002 - Conflict: The lead changed since it was loaded
//	          Action: Reload the lead and apply your changes again
//	          Sentinel: ErrConcurrencyConflict
//
// # Authorization Errors (AUTH001-AUTH099)
//
//	AUTH001 - Not signed in
//	          Sentinel: ErrAuthRequired
//
//	AUTH002 - Not the owner of the lead
//	          Sentinel: ErrPermissionDenied
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - One or more fields are invalid
//	         Type: ValidationErrors
//
//	VAL002 - Invalid version token
//	         Sentinel: ErrInvalidVersion
//
//	VAL003 - Request body is not valid JSON
//	         Patterns: "malformed request body"
//
// # Import Errors (IMP001-IMP099)
//
//	IMP001 - Too many rows in one file
//	         Sentinel: ErrBatchTooLarge
//
//	IMP002 - Too many imports running
//	         Sentinel: ErrTooManyImports
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large           Patterns: "file too large", "request body too large"
//	FILE002 - Invalid CSV              Sentinel: ErrInvalidCSV
//	FILE004 - No file                  Patterns: "no file provided"
//	FILE005 - Empty file               Sentinel: ErrEmptyFile
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Duplicate lead             Sentinel: ErrDuplicateLead
//	DB002 - Unique constraint          Patterns: "unique constraint", "violates unique"
//	DB004 - Connection refused         Patterns: "connection refused"
//	DB005 - Connection reset           Patterns: "connection reset"
//	DB006 - Timeout                    Patterns: "timeout"
//	DB007 - Deadlock                   Patterns: "deadlock"
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Request cancelled         Sentinel: context.Canceled
//	REQ002 - Request timed out         Sentinel: context.DeadlineExceeded
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Too many requests        Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when nothing matches. Check application logs for the original
// technical error when users report ERR000.
package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// sentinelMessage maps a sentinel error to its user message.
type sentinelMessage struct {
	target error
	msg    UserMessage
}

// sentinelMessages are checked in order with errors.Is. More specific
// sentinels come first: a duplicate lead wraps a PersistenceError and must
// not fall through to the pattern table.
var sentinelMessages = []sentinelMessage{
	{ErrLeadNotFound, UserMessage{
		Message: "Lead not found",
		Action:  "Check the link or go back to the lead list",
		Code:    "LEAD001",
	}},
	{ErrConcurrencyConflict, UserMessage{
		Message: "This lead was changed by someone else",
		Action:  "Reload the lead and apply your changes again",
		Code:    "LEAD002",
	}},
	{ErrAuthRequired, UserMessage{
		Message: "You must be signed in",
		Action:  "Sign in and try again",
		Code:    "AUTH001",
	}},
	{ErrPermissionDenied, UserMessage{
		Message: "You can only edit leads you own",
		Action:  "Ask the lead owner to make this change",
		Code:    "AUTH002",
	}},
	{ErrInvalidVersion, UserMessage{
		Message: "The lead version is missing or malformed",
		Action:  "Reload the lead and try again",
		Code:    "VAL002",
	}},
	{ErrBatchTooLarge, UserMessage{
		Message: "The CSV has too many rows",
		Action:  "Split the file and import each part separately",
		Code:    "IMP001",
	}},
	{ErrTooManyImports, UserMessage{
		Message: "Too many imports are running",
		Action:  "Please wait a moment and try again",
		Code:    "IMP002",
	}},
	{ErrInvalidCSV, UserMessage{
		Message: "File is not a valid CSV",
		Action:  "Ensure file is comma-separated and uses the template headers",
		Code:    "FILE002",
	}},
	{ErrEmptyFile, UserMessage{
		Message: "The uploaded file is empty",
		Action:  "Please upload a CSV file with a header row",
		Code:    "FILE005",
	}},
	{ErrDuplicateLead, UserMessage{
		Message: "A lead with this phone number already exists",
		Action:  "Search for the existing lead and update it instead",
		Code:    "DB001",
	}},
	{context.Canceled, UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "REQ001",
	}},
	{context.DeadlineExceeded, UserMessage{
		Message: "Request timed out",
		Action:  "Try a smaller file or check your connection",
		Code:    "REQ002",
	}},
}

// validationMessage is returned for ValidationErrors.
var validationMessage = UserMessage{
	Message: "Some fields are invalid",
	Action:  "Correct the highlighted fields and submit again",
	Code:    "VAL001",
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user
// messages. The first matching pattern wins, so specific patterns come
// before general ones.
var errorPatterns = []errorPattern{
	{
		pattern: "unique constraint",
		msg: UserMessage{
			Message: "This value must be unique but already exists",
			Action:  "Check for duplicate entries",
			Code:    "DB002",
		},
	},
	{
		pattern: "violates unique",
		msg: UserMessage{
			Message: "A duplicate value was found",
			Action:  "Review your data for duplicate phone numbers",
			Code:    "DB002",
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
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Please try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB007",
		},
	},
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Split the file into smaller parts",
			Code:    "FILE001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Split the file into smaller parts",
			Code:    "FILE001",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV file to import",
			Code:    "FILE004",
		},
	},
	{
		pattern: "malformed request body",
		msg: UserMessage{
			Message: "The request could not be read",
			Action:  "Send a valid JSON body",
			Code:    "VAL003",
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

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
// Example:
//
//	msg := MapError(fmt.Errorf("update: %w", ErrConcurrencyConflict))
//	// msg.Code == "LEAD002"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, sm := range sentinelMessages {
		if errors.Is(err, sm.target) {
			return sm.msg
		}
	}

	var vErrs ValidationErrors
	if errors.As(err, &vErrs) {
		return validationMessage
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

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError wraps a technical error with a user-friendly message.
// The original error is preserved for logging.
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

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
