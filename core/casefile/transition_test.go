package casefile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabayhq/gabay/core"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		name    string
		current Case
		event   Event
		want    Change
		wantErr bool
	}{
		{
			name:    "empty event rejected",
			current: Case{Status: StatusPending},
			event:   Event{},
			wantErr: true,
		},
		{
			name:    "follow up without date rejected",
			current: Case{Status: StatusConfirmed, Remarks: RemarkNone},
			event:   Event{Remark: RemarkFollowUp},
			wantErr: true,
		},
		{
			name:    "follow up keeps case active",
			current: Case{Status: StatusConfirmed, Remarks: RemarkNone},
			event:   Event{Remark: RemarkFollowUp, FollowUpDate: "2026-09-15", FollowUpTime: "10:30"},
			want: Change{
				Status:         StatusConfirmed,
				PreviousStatus: StatusConfirmed,
				Remark:         RemarkFollowUp,
				RemarkSet:      true,
				FollowUpDate:   "2026-09-15",
				FollowUpTime:   "10:30",
			},
		},
		{
			name:    "completing remark forces completion",
			current: Case{Status: StatusConfirmed, Remarks: RemarkNone},
			event:   Event{Remark: RemarkNoShow},
			want: Change{
				Status:         StatusCompleted,
				PreviousStatus: StatusConfirmed,
				Remark:         RemarkNoShow,
				RemarkSet:      true,
			},
		},
		{
			name:    "completing remark overrides supplied status",
			current: Case{Status: StatusConfirmed, Remarks: RemarkNone},
			event:   Event{Status: StatusRescheduled, Remark: RemarkAttended},
			want: Change{
				Status:         StatusCompleted,
				PreviousStatus: StatusConfirmed,
				Remark:         RemarkAttended,
				RemarkSet:      true,
			},
		},
		{
			name:    "unchanged remark counts as not supplied",
			current: Case{Status: StatusCompleted, Remarks: RemarkAttended},
			event:   Event{Remark: RemarkAttended},
			wantErr: true,
		},
		{
			name:    "unchanged remark falls through to status",
			current: Case{Status: StatusCompleted, Remarks: RemarkAttended},
			event:   Event{Status: StatusReviewed, Remark: RemarkAttended},
			want: Change{
				Status:         StatusReviewed,
				PreviousStatus: StatusCompleted,
			},
		},
		{
			name:    "bare status applied directly",
			current: Case{Status: StatusPending, Remarks: RemarkNone},
			event:   Event{Status: StatusConfirmed},
			want: Change{
				Status:         StatusConfirmed,
				PreviousStatus: StatusPending,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Transition(tt.current, tt.event)
			if tt.wantErr {
				require.Error(t, err)
				assert.IsType(t, &core.ValidationError{}, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTransitionLeavesNoPartialChange(t *testing.T) {
	current := Case{Status: StatusConfirmed, Remarks: RemarkNone}
	ch, err := Transition(current, Event{Remark: RemarkFollowUp})
	require.Error(t, err)
	assert.Zero(t, ch)
	assert.Equal(t, StatusConfirmed, current.Status)
	assert.Equal(t, RemarkNone, current.Remarks)
}
