package casefile

import (
	"github.com/pkg/errors"

	"github.com/gabayhq/gabay/core"
)

type (
	// Event is an administrator-requested change to a case's
	// status/remark axes.
	Event struct {
		Status       Status
		Remark       Remark
		FollowUpDate string
		FollowUpTime string
	}

	// Change is the computed outcome of applying an Event. RemarkSet
	// distinguishes "remark unchanged" from "remark cleared".
	Change struct {
		Status         Status
		PreviousStatus Status
		Remark         Remark
		RemarkSet      bool
		FollowUpDate   string
		FollowUpTime   string
	}
)

// Transition computes the next lifecycle state of a case without touching
// storage. Rules, in order:
//
//   - a "Follow up" remark requires a follow-up date and keeps the case
//     active, status untouched;
//   - any other remark that differs from the current one completes the
//     case, overriding a caller-supplied status;
//   - a bare status is applied directly (pre-session phase);
//   - a remark identical to the current one counts as not supplied.
//
// PreviousStatus always records the status the case held before the event.
func Transition(current Case, ev Event) (Change, error) {
	ch := Change{
		Status:         current.Status,
		PreviousStatus: current.Status,
	}

	remark := ev.Remark
	if remark != RemarkNone && remark == current.Remarks {
		remark = RemarkNone
	}

	switch {
	case ev.Remark == RemarkFollowUp:
		if ev.FollowUpDate == "" {
			return Change{}, core.NewValidationError(
				errors.New("follow-up date is required"),
				core.FieldError{Field: "follow_up_date", Error: "required when remark is Follow up"},
			)
		}
		ch.Remark = RemarkFollowUp
		ch.RemarkSet = true
		ch.FollowUpDate = ev.FollowUpDate
		ch.FollowUpTime = ev.FollowUpTime

	case remark != RemarkNone:
		ch.Status = StatusCompleted
		ch.Remark = remark
		ch.RemarkSet = true

	case ev.Status != "":
		ch.Status = ev.Status

	default:
		return Change{}, core.NewValidationError(
			errors.New("nothing to update"),
			core.FieldError{Field: "status", Error: "a status or remark is required"},
		)
	}
	return ch, nil
}
