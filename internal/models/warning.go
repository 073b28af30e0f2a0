package models

// DataQualityKind classifies non-fatal problems found in backend rows.
type DataQualityKind string

const (
	WarningInvalidTimestamp    DataQualityKind = "invalid_timestamp"
	WarningUnknownEmployee     DataQualityKind = "unknown_employee"
	WarningUnrecognizedStatus  DataQualityKind = "unrecognized_status"
	WarningInvalidEmployeeID   DataQualityKind = "invalid_employee_id"
	WarningDuplicateEmployeeID DataQualityKind = "duplicate_employee_id"
	WarningInvalidProduction   DataQualityKind = "invalid_production"
)

// DataQualityWarning reports a row that was skipped or coerced.
type DataQualityWarning struct {
	Kind       DataQualityKind `json:"kind"`
	Sheet      string          `json:"sheet,omitempty"`
	Row        int             `json:"row,omitempty"`
	EmployeeID int             `json:"employee_id,omitempty"`
	Value      string          `json:"value,omitempty"`
	Message    string          `json:"message"`
}
