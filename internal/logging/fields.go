package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID is the standardized structured logging key for batch run identifiers.
	FieldRunID = "run_id"
	// FieldSubject is the standardized structured logging key for the UPI subject number.
	FieldSubject = "subject"
	// FieldVisit is the standardized structured logging key for the visit number.
	FieldVisit = "visit"
	// FieldRecord is the standardized structured logging key for the record number.
	FieldRecord = "record"
	// FieldFile is the standardized structured logging key for the file being processed.
	FieldFile = "file"
	// FieldEventType classifies a warning or error for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint carries a short operator-facing next step.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
)
