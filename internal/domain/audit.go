package domain

import "time"

// AuditRecord describes one handled request for the audit trail.
type AuditRecord struct {
	Action    string        `json:"action"`
	Subject   string        `json:"subject"`
	Method    string        `json:"method"`
	Path      string        `json:"path"`
	Status    int           `json:"status"`
	Duration  time.Duration `json:"duration"`
	IP        string        `json:"ip"`
	UserAgent string        `json:"user_agent"`
}

// Audit action constants.
const (
	AuditActionHTTPRequest = "http_request"
	AuditActionRejected    = "auth_rejected"
)

// AnonymousSubject marks requests without a verified identity.
const AnonymousSubject = "anonymous"
