// Package session keeps per-conversation state for the chat channel.
package session

import (
	"time"

	"github.com/Krrish0621/Mind-Care-sub000/internal/assessment"
)

// Mode is the conversation state the router dispatches on.
type Mode int

const (
	Idle Mode = iota
	AwaitingAffirmation
	InAssessment
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case AwaitingAffirmation:
		return "awaiting_affirmation"
	case InAssessment:
		return "in_assessment"
	}
	return "unknown"
}

// Pending records which question a bare "yes" would be answering.
type Pending int

const (
	PendingNone Pending = iota
	PendingTalk
	PendingAnxietyAssessment
	PendingMentalHealthAssessment
	PendingBooking
)

func (p Pending) String() string {
	switch p {
	case PendingTalk:
		return "talk_to_someone"
	case PendingAnxietyAssessment:
		return "anxiety_assessment"
	case PendingMentalHealthAssessment:
		return "mental_health_assessment"
	case PendingBooking:
		return "book_counselor"
	}
	return "none"
}

// State is the mutable state of one conversation.  While Mode is
// InAssessment, QuestionIndex always equals len(Answers).
type State struct {
	ID             string
	Mode           Mode
	Pending        Pending
	Assessment     assessment.ID
	Answers        []int
	QuestionIndex  int
	LastBotMessage string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// New returns the zero-valued state for a never-seen session.
func New(id string, now time.Time) *State {
	return &State{ID: id, Answers: []int{}, CreatedAt: now, UpdatedAt: now}
}

// Clone returns a deep copy so callers can mutate without touching the store.
func (s *State) Clone() *State {
	c := *s
	c.Answers = append(make([]int, 0, len(s.Answers)), s.Answers...)
	return &c
}

// Reset returns the conversation to Idle and clears any assessment progress.
func (s *State) Reset() {
	s.Mode = Idle
	s.Pending = PendingNone
	s.Assessment = ""
	s.Answers = []int{}
	s.QuestionIndex = 0
}

// Await resets the state and waits for a reply to the given prompt.
func (s *State) Await(p Pending) {
	s.Reset()
	s.Mode = AwaitingAffirmation
	s.Pending = p
}

// StartAssessment begins instrument id from the first question.
func (s *State) StartAssessment(id assessment.ID) {
	s.Reset()
	s.Mode = InAssessment
	s.Assessment = id
}

// RecordAnswer appends an answer and advances to the next question.
func (s *State) RecordAnswer(v int) {
	s.Answers = append(s.Answers, v)
	s.QuestionIndex = len(s.Answers)
}
