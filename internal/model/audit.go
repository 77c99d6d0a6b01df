package model

// Audit statuses. New audits default to posted.
const (
	AuditStatusDraft  = "draft"
	AuditStatusPosted = "posted"
)

// AuditStatuses lists the allowed audit statuses.
var AuditStatuses = []string{AuditStatusDraft, AuditStatusPosted}
