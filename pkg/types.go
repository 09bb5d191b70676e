package pkg

import "time"

// ChatRequest is one user utterance in the chat channel.  SessionID is an
// opaque, client-supplied identifier; an empty value starts a one-off session.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

// ChatResponse carries the bot's reply for a single turn.  Timestamp is
// formatted as RFC 3339.  Escalation is only present when a screening has
// just completed with a high-risk score.
type ChatResponse struct {
	Response   string           `json:"response"`
	Timestamp  string           `json:"timestamp"`
	SessionID  string           `json:"sessionId"`
	Escalation *EscalationOffer `json:"escalation,omitempty"`
}

// EscalationOffer is the structured counterpart of the "book a counselor"
// sentence appended to a high-risk result.  The UI may render it as a button.
type EscalationOffer struct {
	Instrument string `json:"instrument"`
	Score      int    `json:"score"`
	Severity   string `json:"severity"`
	BookingURL string `json:"bookingUrl"`
}

// AssessmentRequest is sent by a UI that drives a screening outside the chat
// loop.  Tool is "PHQ-9" or "GAD-7" and Responses must hold exactly one
// answer per question.
type AssessmentRequest struct {
	UserToken string `json:"userToken"`
	Tool      string `json:"tool"`
	Responses []int  `json:"responses"`
}

// AssessmentResponse reports the scored outcome of an AssessmentRequest.
type AssessmentResponse struct {
	Score           int      `json:"score"`
	Severity        string   `json:"severity"`
	Recommendations []string `json:"recommendations"`
	Message         string   `json:"message"`
}

// ScreeningResult is the immutable record of a completed screening.  It is
// created once, handed to the result store and never mutated afterwards.
type ScreeningResult struct {
	ID         string    `json:"id"`
	UserToken  string    `json:"userToken"`
	Instrument string    `json:"instrumentId"`
	Answers    []int     `json:"answers"`
	TotalScore int       `json:"totalScore"`
	Severity   string    `json:"severityLabel"`
	CreatedAt  time.Time `json:"createdAt"`
}

// HistoryResponse lists the most recent results for a user token, newest first.
type HistoryResponse struct {
	UserToken string            `json:"userToken"`
	Results   []ScreeningResult `json:"results"`
}
