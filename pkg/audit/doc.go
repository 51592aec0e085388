// Package audit records security-relevant operations of the portfolio
// server.
//
// Events are written as RFC5424 syslog lines to DefaultLogger and, when a
// Store is configured, persisted to the audit_events table.
//
// # Event Types
//
//   - LoginEvent: password login attempts
//   - RegisterEvent: account registrations
//   - TokenRefreshEvent: session token re-issue
//   - UserAdminEvent: administrator changes to other accounts
//   - BackupEvent: database snapshots and SQL exports
//
// # Usage
//
//	audit.Log(audit.LoginEvent{Email: email, ClientIP: ip, Success: true})
package audit
