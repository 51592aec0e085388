// Package notify delivers contact form submissions to the site owner by
// email.
//
// Delivery is best effort: callers log failures and carry on. A notifier
// without SMTP settings returns ErrNotConfigured from every method.
package notify
