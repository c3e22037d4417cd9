package notification

import (
	"fmt"
	"time"
)

// Type tags a notification payload so clients can route it.
type Type string

const (
	// session status updates
	TypeSessionConfirmed   Type = "SESSION_CONFIRMED"
	TypeSessionRescheduled Type = "SESSION_RESCHEDULED"
	TypeSessionCancelled   Type = "SESSION_CANCELLED"
	TypeSessionReminder24H Type = "SESSION_REMINDER_24H"
	TypeSessionReminder1H  Type = "SESSION_REMINDER_1H"

	// new submissions
	TypeNewCounselingRequest Type = "NEW_COUNSELING_REQUEST"
	TypeNewFacultyReferral   Type = "NEW_FACULTY_REFERRAL"

	// urgent
	TypeHighPriorityCase Type = "HIGH_PRIORITY_CASE"
	TypeNoShowFollowup   Type = "NO_SHOW_FOLLOWUP"

	// system
	TypeSystemUpdate Type = "SYSTEM_UPDATE"
	TypeMaintenance  Type = "MAINTENANCE_NOTIFICATION"

	TypeTest Type = "TEST_NOTIFICATION"

	// lifecycle engine payload tags
	TypeNewRequest    Type = "NEW_REQUEST"
	TypeSessionUpdate Type = "SESSION_UPDATE"
)

// Data is the structured payload attached to a notification.
type Data map[string]interface{}

func (d Data) str(key string) string {
	if v, ok := d[key].(string); ok {
		return v
	}
	return ""
}

// Compose resolves a catalog type to its title/body, interpolating the
// given data. Unknown types get a generic message rather than failing.
func Compose(typ Type, data Data) (title, body string, payload Data) {
	payload = Data{"type": string(typ)}
	for k, v := range data {
		payload[k] = v
	}

	switch typ {
	case TypeSessionConfirmed:
		title = "Session Confirmed"
		body = fmt.Sprintf("Your counseling session on %s at %s has been confirmed.",
			formatDate(data.str("date")), formatTime(data.str("time")))
	case TypeSessionRescheduled:
		title = "Session Rescheduled"
		body = fmt.Sprintf("Your counseling session has been rescheduled to %s at %s.",
			formatDate(data.str("new_date")), formatTime(data.str("new_time")))
	case TypeSessionCancelled:
		title = "Session Cancelled"
		body = fmt.Sprintf("Your counseling session on %s at %s has been cancelled.",
			formatDate(data.str("date")), formatTime(data.str("time")))
	case TypeSessionReminder24H:
		title = "Upcoming Session Reminder"
		body = fmt.Sprintf("Reminder: You have a counseling session tomorrow at %s with %s.",
			formatTime(data.str("time")), data.str("counselor_name"))
	case TypeSessionReminder1H:
		title = "Session Starting Soon"
		body = fmt.Sprintf("Your counseling session with %s starts in 1 hour.", data.str("counselor_name"))
	case TypeNewCounselingRequest:
		title = "New Counseling Request"
		body = "A new counseling request has been submitted and is awaiting review."
	case TypeNewFacultyReferral:
		title = "New Faculty Referral"
		body = fmt.Sprintf("You've been referred for counseling by %s.", data.str("faculty_name"))
	case TypeHighPriorityCase:
		title = "Urgent: Counseling Required"
		body = "You have been flagged for priority counseling. Please schedule a session as soon as possible."
	case TypeNoShowFollowup:
		title = "Missed Session Follow-up"
		body = fmt.Sprintf("You missed your scheduled session on %s. Please reschedule at your earliest convenience.",
			formatDate(data.str("date")))
	case TypeSystemUpdate:
		title = "System Update"
		body = fmt.Sprintf("New features available: %s", data.str("update_details"))
	case TypeMaintenance:
		title = "System Maintenance"
		body = fmt.Sprintf("The system will be unavailable on %s from %s to %s.",
			formatDate(data.str("date")), data.str("start_time"), data.str("end_time"))
	case TypeTest:
		title = "Test Notification"
		body = "This is a test notification from the admin panel."
	case TypeNewRequest:
		title = "Counseling Request Received"
		body = "Your counseling request has been submitted successfully. We will review it shortly."
	default:
		title = "New Notification"
		body = "You have a new notification from the counseling system."
		payload["type"] = "GENERIC"
	}
	return title, body, payload
}

// composeStatusChange builds the message for a case lifecycle
// transition. A non-empty remark takes the remark wording, otherwise
// the status wording applies.
func composeStatusChange(status, remark, date, clock string) (title, body string) {
	if remark != "" {
		switch remark {
		case "Attended":
			return "Session Attended", "Your counseling session has been marked as attended. Thank you for your participation."
		case "No Show":
			return "Missed Session", "You were marked as absent for your counseling session. Please contact the office to reschedule."
		case "No Response":
			return "No Response Recorded", "You did not respond to your counseling session confirmation. Please contact the office for assistance."
		case "Terminated":
			return "Session Terminated", "Your counseling session has been terminated. Please contact the counseling office for more information."
		}
		return "Session Update", fmt.Sprintf("Your counseling session status has been updated to %s.", remark)
	}

	switch status {
	case "Confirmed":
		return "Session Confirmed", "Your counseling session has been confirmed. Please check your schedule for details."
	case "Rescheduled":
		if date == "" {
			date = "the new date"
		}
		if clock == "" {
			clock = "the scheduled time"
		}
		return "Session Rescheduled", fmt.Sprintf("Your counseling session has been rescheduled to %s at %s.", date, clock)
	case "Cancelled":
		return "Session Cancelled", "Your counseling session has been cancelled. Please contact the counseling office for more information."
	case "Completed":
		return "Session Completed", "Your counseling session has been marked as completed. Thank you for attending."
	case "No-show", "No Show":
		return "Missed Session", "You were marked as absent for your counseling session. Please contact the office to reschedule."
	case "Reviewed":
		return "Request Reviewed", "Your counseling request has been reviewed. Please check your schedule for details."
	case "Pending":
		return "Request Pending", "Your counseling request is pending review. We will notify you once it has been processed."
	}
	return "Session Update", fmt.Sprintf("Your counseling session status has been updated to %s.", status)
}

func formatDate(s string) string {
	if s == "" {
		return "N/A"
	}
	day, err := time.Parse("2006-01-02", s)
	if err != nil {
		return s
	}
	return day.Format("Monday, January 2")
}

func formatTime(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
