package domain

import "time"

const (
	ActionProcessForm    = "process_form"
	ActionGenerateReport = "generate_report"

	MessageProcessed        = "Data processed successfully"
	MessageFormFieldsNeeded = "title and description are required"
	MessageProcessFailed    = "A server error occurred"
	MessageReportGenerated  = "Report generated successfully"
	MessageReportFailed     = "An error occurred while generating the report"
)

// Result is what every server action returns. Failures are values, never
// errors.
type Result struct {
	Success   bool           `json:"success"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp string         `json:"timestamp"`
}

// FormInput is the submitted action form. Priority is echoed as given.
type FormInput struct {
	Title       string `json:"title" schema:"title" validate:"required"`
	Description string `json:"description" schema:"description" validate:"required"`
	Priority    string `json:"priority" schema:"priority"`
}

type ProcessedRecord struct {
	ID          int
	Title       string
	Description string
	Priority    string
	CreatedAt   time.Time
	ProcessedBy string
	Environment string
}

type ReportStats struct {
	TotalUsers  int
	ActiveUsers int
	SystemLoad  float64
	UptimeHours int
}

type Report struct {
	ID          string
	GeneratedAt time.Time
	Stats       ReportStats
	Environment string
	Location    string
}
