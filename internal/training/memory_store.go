package training

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps sessions and goals in memory. It mirrors the uniqueness
// and status rules of Repo and is used by tests and local tooling.
type MemoryStore struct {
	// session ID to session
	Sessions map[int]TrainingSession
	Goals    []AttendanceGoal

	// CloneErrors makes CloneAndDeactivate fail for the given source IDs
	CloneErrors map[int]error
	// DatesErrors makes ListTrainingDatesForUser fail for the given user IDs
	DatesErrors map[int]error

	nextID int
	mutex  sync.Mutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		Sessions:    map[int]TrainingSession{},
		CloneErrors: map[int]error{},
		DatesErrors: map[int]error{},
		nextID:      1,
	}
}

func (m *MemoryStore) CreateTrainingSession(_ context.Context, s TrainingSession) (*TrainingSession, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if !s.Recurrence.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRecurrence, s.Recurrence)
	}
	if s.RecurrenceStatus == "" {
		s.RecurrenceStatus = RecurrenceStatusInactive
		if s.Recurrence.IsRepeating() {
			s.RecurrenceStatus = RecurrenceStatusActive
		}
	}
	if m.occurrenceExists(s) {
		return nil, ErrDuplicateOccurrence
	}

	s = m.insert(s)
	return &s, nil
}

// AddRawSession stores s as it is, skipping validation. Used to simulate
// rows written by older clients.
func (m *MemoryStore) AddRawSession(s TrainingSession) TrainingSession {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.insert(s)
}

func (m *MemoryStore) GetTrainingSession(_ context.Context, id int) (*TrainingSession, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	s, ok := m.Sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return &s, nil
}

func (m *MemoryStore) DeactivateSession(_ context.Context, id int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	s, ok := m.Sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	s.RecurrenceStatus = RecurrenceStatusInactive
	m.Sessions[id] = s
	return nil
}

func (m *MemoryStore) ListActiveRecurringSessionsDueOn(_ context.Context, day time.Time) ([]TrainingSession, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	from, to := DayBounds(day)
	due := make([]TrainingSession, 0)
	for _, s := range m.Sessions {
		if s.RecurrenceStatus != RecurrenceStatusActive || s.Recurrence == RecurrenceNone {
			continue
		}
		if s.RecurrenceEndDate == nil {
			continue
		}
		end := s.RecurrenceEndDate.UTC()
		if end.Before(from) || end.After(to) {
			continue
		}
		due = append(due, s)
	}

	sort.Slice(due, func(i, j int) bool {
		return due[i].ID < due[j].ID
	})
	return due, nil
}

func (m *MemoryStore) CloneAndDeactivate(_ context.Context, sourceID int, clone TrainingSession) (bool, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if err, ok := m.CloneErrors[sourceID]; ok {
		return false, err
	}

	source, ok := m.Sessions[sourceID]
	if !ok || source.RecurrenceStatus != RecurrenceStatusActive {
		return false, ErrSourceNotActive
	}

	created := false
	if !m.occurrenceExists(clone) {
		m.insert(clone)
		created = true
	}

	source.RecurrenceStatus = RecurrenceStatusInactive
	m.Sessions[sourceID] = source
	return created, nil
}

func (m *MemoryStore) ListTrainingDatesForUser(_ context.Context, userID int) ([]time.Time, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if err, ok := m.DatesErrors[userID]; ok {
		return nil, err
	}

	dates := make([]time.Time, 0)
	for _, s := range m.Sessions {
		if s.UserID == userID {
			dates = append(dates, s.Date.UTC())
		}
	}
	sort.Slice(dates, func(i, j int) bool {
		return dates[i].Before(dates[j])
	})
	return dates, nil
}

func (m *MemoryStore) CreateAttendanceGoal(_ context.Context, goal AttendanceGoal) (*AttendanceGoal, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	goal.ID = len(m.Goals) + 1
	m.Goals = append(m.Goals, goal)
	return &goal, nil
}

func (m *MemoryStore) ListAttendanceGoalsForUser(_ context.Context, userID int) ([]AttendanceGoal, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	goals := make([]AttendanceGoal, 0)
	for _, g := range m.Goals {
		if g.UserID == userID {
			goals = append(goals, g)
		}
	}
	return goals, nil
}

func (m *MemoryStore) ListUserIDsWithActivity(_ context.Context) ([]int, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	seen := map[int]bool{}
	for _, s := range m.Sessions {
		seen[s.UserID] = true
	}

	ids := make([]int, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, nil
}

// SessionsByParent returns the clones spawned from parentID.
func (m *MemoryStore) SessionsByParent(parentID int) []TrainingSession {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	var children []TrainingSession
	for _, s := range m.Sessions {
		if s.ParentTrainingID != nil && *s.ParentTrainingID == parentID {
			children = append(children, s)
		}
	}
	sort.Slice(children, func(i, j int) bool {
		return children[i].ID < children[j].ID
	})
	return children
}

func (m *MemoryStore) occurrenceExists(s TrainingSession) bool {
	if s.ParentTrainingID == nil {
		return false
	}
	for _, existing := range m.Sessions {
		if existing.ParentTrainingID != nil &&
			*existing.ParentTrainingID == *s.ParentTrainingID &&
			existing.Date.Equal(s.Date) {
			return true
		}
	}
	return false
}

func (m *MemoryStore) insert(s TrainingSession) TrainingSession {
	s.ID = m.nextID
	m.nextID++
	m.Sessions[s.ID] = s
	return s
}
