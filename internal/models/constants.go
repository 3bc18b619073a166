package models

// ReportStatus константы статусов обращений. Значения — публичный контракт
// (отдаются наружу в трекинге), поэтому не переводятся.
const (
	ReportStatusPending    = "Pending"
	ReportStatusInProgress = "In Progress"
	ReportStatusResolved   = "Resolved"
	ReportStatusClosed     = "Closed"
	ReportStatusWithdrawn  = "Withdrawn"
)

// ReportPriority константы приоритетов обращений
const (
	ReportPriorityLow      = "Low"
	ReportPriorityMedium   = "Medium"
	ReportPriorityHigh     = "High"
	ReportPriorityCritical = "Critical"
)

// ValidReportStatuses список валидных статусов обращений
var ValidReportStatuses = map[string]struct{}{
	ReportStatusPending:    {},
	ReportStatusInProgress: {},
	ReportStatusResolved:   {},
	ReportStatusClosed:     {},
	ReportStatusWithdrawn:  {},
}

// ValidReportPriorities список валидных приоритетов обращений
var ValidReportPriorities = map[string]struct{}{
	ReportPriorityLow:      {},
	ReportPriorityMedium:   {},
	ReportPriorityHigh:     {},
	ReportPriorityCritical: {},
}
