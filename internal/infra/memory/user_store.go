package memory

import (
	"context"
	"sync"

	"quiz-attempt-service/internal/domain"
)

// UserRecord mirrors the per-user counters the submit path increments.
type UserRecord struct {
	TotalAttempts    int
	CorrectAnswers   int
	IncorrectAnswers int
	RankPoints       int
	WeeklyPoints     int
}

// UserStore is an in-memory user stat store for demos and tests.
type UserStore struct {
	mu    sync.Mutex
	users map[string]*UserRecord
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]*UserRecord)}
}

func (s *UserStore) IncrementStats(_ context.Context, userID string, attempts, correct, incorrect int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record := s.record(userID)
	record.TotalAttempts += attempts
	record.CorrectAnswers += correct
	record.IncorrectAnswers += incorrect
	return nil
}

func (s *UserStore) IncrementPoints(_ context.Context, userID string, points int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record := s.record(userID)
	record.RankPoints += points
	record.WeeklyPoints += points
	return nil
}

// Snapshot returns a copy of the user's counters.
func (s *UserStore) Snapshot(userID string) UserRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record, ok := s.users[userID]; ok {
		return *record
	}
	return UserRecord{}
}

func (s *UserStore) record(userID string) *UserRecord {
	record, ok := s.users[userID]
	if !ok {
		record = &UserRecord{}
		s.users[userID] = record
	}
	return record
}

// ResultStore keeps grading results in memory, newest last.
type ResultStore struct {
	mu      sync.Mutex
	results []domain.GradingResult
}

func NewResultStore() *ResultStore {
	return &ResultStore{}
}

func (s *ResultStore) SaveResult(_ context.Context, result domain.GradingResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, result)
	return nil
}

// Results returns a copy of everything saved so far.
func (s *ResultStore) Results() []domain.GradingResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.GradingResult, len(s.results))
	copy(out, s.results)
	return out
}
