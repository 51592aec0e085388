package audit

import "fmt"

func outcome(success bool) Severity {
	if success {
		return SeverityInfo
	}
	return SeverityWarning
}

// LoginEvent represents a password login attempt
type LoginEvent struct {
	Email        string
	UserID       uint
	ClientIP     string
	Success      bool
	ErrorMessage string
}

func (e LoginEvent) MessageID() string { return "login" }

func (e LoginEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s successfully logged in", e.Email)
	}
	msg := fmt.Sprintf("%s failed to log in", e.Email)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e LoginEvent) Severity() Severity { return outcome(e.Success) }

func (e LoginEvent) Facility() int { return FacilityAuthPriv }

func (e LoginEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDAuth:   {"method": "password", "user": e.Email},
		SDIDClient: {"ip": e.ClientIP},
	}
	if e.UserID != 0 {
		sd[SDIDAuth]["id"] = fmt.Sprint(e.UserID)
	}
	return sd
}

// RegisterEvent represents a self-service account registration
type RegisterEvent struct {
	Username     string
	Email        string
	ClientIP     string
	Success      bool
	ErrorMessage string
}

func (e RegisterEvent) MessageID() string { return "register" }

func (e RegisterEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s registered as %s", e.Email, e.Username)
	}
	msg := fmt.Sprintf("%s failed to register", e.Email)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e RegisterEvent) Severity() Severity { return outcome(e.Success) }

func (e RegisterEvent) Facility() int { return FacilityAuth }

func (e RegisterEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDSubject: {"username": e.Username, "email": e.Email},
		SDIDClient:  {"ip": e.ClientIP},
	}
}

// TokenRefreshEvent represents a session token being re-issued
type TokenRefreshEvent struct {
	UserID   uint
	Email    string
	ClientIP string
}

func (e TokenRefreshEvent) MessageID() string { return "token-refresh" }

func (e TokenRefreshEvent) Message() string {
	return fmt.Sprintf("%s refreshed their session token", e.Email)
}

func (e TokenRefreshEvent) Severity() Severity { return SeverityInfo }

func (e TokenRefreshEvent) Facility() int { return FacilityAuthPriv }

func (e TokenRefreshEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDAuth:   {"id": fmt.Sprint(e.UserID), "user": e.Email},
		SDIDClient: {"ip": e.ClientIP},
	}
}

// User administration actions
const (
	ActionCreate        = "create"
	ActionUpdate        = "update"
	ActionDelete        = "delete"
	ActionChangeRole    = "change-role"
	ActionResetPassword = "reset-password"
	ActionCreateAdmin   = "create-admin"
)

// UserAdminEvent represents an administrator acting on another account
type UserAdminEvent struct {
	ActorID      uint
	ActorEmail   string
	TargetID     uint
	Action       string
	Detail       string
	ClientIP     string
	Success      bool
	ErrorMessage string
}

func (e UserAdminEvent) MessageID() string { return "user-admin" }

func (e UserAdminEvent) Message() string {
	target := fmt.Sprintf("user %d", e.TargetID)
	if e.Success {
		msg := fmt.Sprintf("%s performed %s on %s", e.ActorEmail, e.Action, target)
		if e.Detail != "" {
			msg += " (" + e.Detail + ")"
		}
		return msg
	}
	msg := fmt.Sprintf("%s tried to perform %s on %s", e.ActorEmail, e.Action, target)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e UserAdminEvent) Severity() Severity {
	if e.Success {
		return SeverityNotice
	}
	return SeverityWarning
}

func (e UserAdminEvent) Facility() int { return FacilityAuth }

func (e UserAdminEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDSubject: {"actor": e.ActorEmail, "actor_id": fmt.Sprint(e.ActorID), "target_id": fmt.Sprint(e.TargetID)},
		SDIDAction:  {"operation": e.Action, "result": resultString(e.Success)},
	}
	if e.ClientIP != "" {
		sd[SDIDClient] = map[string]string{"ip": e.ClientIP}
	}
	return sd
}

// BackupEvent represents a database snapshot or SQL export
type BackupEvent struct {
	Kind         string // "snapshot" or "export"
	Path         string
	Trigger      string // "schedule", "startup", "shutdown" or "manual"
	Success      bool
	ErrorMessage string
}

func (e BackupEvent) MessageID() string { return "backup" }

func (e BackupEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s written to %s (%s)", e.Kind, e.Path, e.Trigger)
	}
	msg := fmt.Sprintf("%s failed (%s)", e.Kind, e.Trigger)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e BackupEvent) Severity() Severity {
	if e.Success {
		return SeverityInfo
	}
	return SeverityError
}

func (e BackupEvent) Facility() int { return FacilityLocal0 }

func (e BackupEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDAction: {"operation": e.Kind, "trigger": e.Trigger, "result": resultString(e.Success)},
	}
}

func resultString(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
