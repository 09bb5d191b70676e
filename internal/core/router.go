package core

import (
	"strings"

	"github.com/Krrish0621/Mind-Care-sub000/internal/assessment"
	"github.com/Krrish0621/Mind-Care-sub000/internal/session"
)

// Intent is the transition the router selected for a message.
type Intent string

const (
	IntentStopAssessment Intent = "stop_assessment"
	IntentAnswer         Intent = "answer"
	IntentReprompt       Intent = "reprompt"
	IntentConfirmTalk    Intent = "confirm_talk"
	IntentStartGAD7      Intent = "start_gad7"
	IntentStartPHQ9      Intent = "start_phq9"
	IntentConfirmBooking Intent = "confirm_booking"
	IntentGenericYes     Intent = "generic_yes"
	IntentDecline        Intent = "decline"
	IntentFreeText       Intent = "free_text"
)

// Route is the router's decision for one message.
type Route struct {
	Intent Intent
	Answer int
	Topic  Topic
}

// input is a message classified by shape.
type input struct {
	lower string
	digit int
	isDig bool
}

func parseInput(text string) input {
	lower := strings.ToLower(strings.TrimSpace(text))
	in := input{lower: lower, digit: -1}
	if len(lower) == 1 && lower[0] >= '0' && lower[0] <= '9' {
		in.digit = int(lower[0] - '0')
		in.isDig = true
	}
	return in
}

func (in input) is(words ...string) bool {
	for _, w := range words {
		if in.lower == w {
			return true
		}
	}
	return false
}

type rule struct {
	intent Intent
	match  func(st *session.State, in input) bool
}

func inAssessment(st *session.State) bool { return st.Mode == session.InAssessment }

func awaiting(p session.Pending) func(st *session.State, in input) bool {
	return func(st *session.State, in input) bool {
		return in.is("yes") && st.Mode == session.AwaitingAffirmation && st.Pending == p
	}
}

// Router picks a transition for a message given the current session state.
// Rules are evaluated top to bottom and the first match wins; the last rule
// matches everything, so every message yields exactly one route.
type Router struct {
	rules []rule
}

// NewRouter builds the rule table.
func NewRouter() *Router {
	return &Router{rules: []rule{
		{IntentStopAssessment, func(st *session.State, in input) bool {
			return inAssessment(st) && in.is("stop", "cancel", "quit", "exit")
		}},
		{IntentAnswer, func(st *session.State, in input) bool {
			return inAssessment(st) && in.isDig && assessment.ValidAnswer(in.digit)
		}},
		{IntentReprompt, func(st *session.State, in input) bool {
			return inAssessment(st)
		}},
		{IntentConfirmTalk, awaiting(session.PendingTalk)},
		{IntentStartGAD7, awaiting(session.PendingAnxietyAssessment)},
		{IntentStartPHQ9, awaiting(session.PendingMentalHealthAssessment)},
		{IntentConfirmBooking, awaiting(session.PendingBooking)},
		{IntentGenericYes, func(st *session.State, in input) bool {
			return in.is("yes")
		}},
		{IntentDecline, func(st *session.State, in input) bool {
			return st.Mode == session.AwaitingAffirmation && in.is("no")
		}},
		{IntentFreeText, func(*session.State, input) bool { return true }},
	}}
}

// Route classifies text against st.  It never mutates st.
func (r *Router) Route(st *session.State, text string) Route {
	in := parseInput(text)
	for _, rl := range r.rules {
		if !rl.match(st, in) {
			continue
		}
		route := Route{Intent: rl.intent}
		switch rl.intent {
		case IntentAnswer:
			route.Answer = in.digit
		case IntentFreeText:
			route.Topic = DetectTopic(in.lower)
		}
		return route
	}
	// unreachable: the last rule always matches
	return Route{Intent: IntentFreeText, Topic: DetectTopic(in.lower)}
}
