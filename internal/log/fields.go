// SPDX-License-Identifier: MIT

package log

// Canonical field name constants for structured logging.
const (
	FieldPassID    = "pass_id"
	FieldSportID   = "sport_id"
	FieldComponent = "component"

	FieldSource      = "source"
	FieldDestination = "destination"

	FieldPattern = "pattern"
	FieldReason  = "reason"
)
