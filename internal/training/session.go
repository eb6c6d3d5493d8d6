package training

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrSessionNotFound      = errors.New("training session not found")
	ErrInvalidRecurrence    = errors.New("invalid recurrence")
	ErrMissingRecurrenceEnd = errors.New("recurring session without recurrence end date")
	ErrDuplicateOccurrence  = errors.New("occurrence already exists for parent and date")
	ErrSourceNotActive      = errors.New("recurrence source is no longer active")
)

// Recurrence can be one of:
//   - none
//   - weekly
//   - monthly
type Recurrence string

const (
	RecurrenceNone    Recurrence = "none"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
)

func (r Recurrence) String() string {
	return string(r)
}

func (r Recurrence) IsValid() bool {
	switch r {
	case RecurrenceNone, RecurrenceWeekly, RecurrenceMonthly:
		return true
	default:
		return false
	}
}

func (r Recurrence) IsRepeating() bool {
	return r == RecurrenceWeekly || r == RecurrenceMonthly
}

type RecurrenceStatus string

const (
	RecurrenceStatusActive   RecurrenceStatus = "active"
	RecurrenceStatusInactive RecurrenceStatus = "inactive"
)

// TrainingSession is one dated training activity. Recurring sessions form a
// chain: only the newest link is active, older ones are flipped to inactive
// in the same step their successor is created.
type TrainingSession struct {
	ID        int    `json:"id"`
	UserID    int    `json:"userId"`
	Name      string `json:"name"`
	Sport     string `json:"sport"`
	Category  string `json:"category"`
	Skill     string `json:"skill"`
	Scope     string `json:"scope"`
	Notes     string `json:"notes"`
	Coaches   []int  `json:"coaches"`
	Attendees []int  `json:"attendees"`

	Date time.Time `json:"date"`

	Recurrence Recurrence `json:"recurrence"`
	// RecurrenceEndDate is the moment the next occurrence has to be spawned
	RecurrenceEndDate *time.Time `json:"recurrenceEndDate,omitempty"`
	// RecurrenceDay anchors monthly chains to a day of month, so a chain
	// started on the 31st goes back to the 31st after a short month.
	// Zero means the day of RecurrenceEndDate.
	RecurrenceDay       int              `json:"recurrenceDay,omitempty"`
	RecurrenceStatus    RecurrenceStatus `json:"recurrenceStatus"`
	ParentTrainingID    *int             `json:"parentTrainingId,omitempty"`
	IsRecurringInstance bool             `json:"isRecurringInstance"`

	CreatedAt time.Time `json:"createdAt"`
}

// NextOccurrence builds the clone that continues the recurrence chain.
// The clone happens on the source's RecurrenceEndDate and carries the next
// end date forward; descriptive fields are copied as they are.
func (s TrainingSession) NextOccurrence(now time.Time) (TrainingSession, error) {
	if !s.Recurrence.IsRepeating() {
		return TrainingSession{}, fmt.Errorf("session %d: %w: %q", s.ID, ErrInvalidRecurrence, s.Recurrence)
	}
	if s.RecurrenceEndDate == nil || s.RecurrenceEndDate.IsZero() {
		return TrainingSession{}, fmt.Errorf("session %d: %w", s.ID, ErrMissingRecurrenceEnd)
	}

	occursAt := s.RecurrenceEndDate.UTC()
	anchorDay := s.RecurrenceDay
	if anchorDay == 0 && s.Recurrence == RecurrenceMonthly {
		anchorDay = occursAt.Day()
	}

	nextEnd, err := NextRecurrenceEnd(occursAt, s.Recurrence, anchorDay)
	if err != nil {
		return TrainingSession{}, fmt.Errorf("session %d: %w", s.ID, err)
	}

	parentID := s.ID
	return TrainingSession{
		UserID:              s.UserID,
		Name:                s.Name,
		Sport:               s.Sport,
		Category:            s.Category,
		Skill:               s.Skill,
		Scope:               s.Scope,
		Notes:               s.Notes,
		Coaches:             append([]int(nil), s.Coaches...),
		Attendees:           append([]int(nil), s.Attendees...),
		Date:                occursAt,
		Recurrence:          s.Recurrence,
		RecurrenceEndDate:   &nextEnd,
		RecurrenceDay:       anchorDay,
		RecurrenceStatus:    RecurrenceStatusActive,
		ParentTrainingID:    &parentID,
		IsRecurringInstance: true,
		CreatedAt:           now.UTC(),
	}, nil
}

// AttendanceGoal is owned by the goals CRUD, it is only read here.
type AttendanceGoal struct {
	ID      int        `json:"id"`
	UserID  int        `json:"userId"`
	Type    string     `json:"type"`
	Status  string     `json:"status"`
	Target  int        `json:"target"`
	EndDate *time.Time `json:"endDate,omitempty"`
}
