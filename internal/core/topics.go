package core

import (
	"strings"

	"github.com/Krrish0621/Mind-Care-sub000/internal/session"
)

// Topic is what a free-text message appears to be about.
type Topic string

const (
	TopicNone       Topic = ""
	TopicCrisis     Topic = "crisis"
	TopicBreathing  Topic = "breathing"
	TopicCounselor  Topic = "counselor"
	TopicAnxiety    Topic = "anxiety"
	TopicDepression Topic = "depression"
	TopicSleep      Topic = "sleep"
	TopicStress     Topic = "stress"
)

type topicRule struct {
	topic    Topic
	keywords []string
	reply    string
	pending  session.Pending
}

// topicRules are scanned in order; the first rule with a matching keyword
// wins.  Crisis language always comes first.
var topicRules = []topicRule{
	{
		topic: TopicCrisis,
		keywords: []string{
			"suicide", "suicidal", "kill myself", "end my life", "ending my life",
			"want to die", "self-harm", "self harm", "hurt myself", "no reason to live",
		},
		reply:   CrisisMessage,
		pending: session.PendingTalk,
	},
	{
		topic:    TopicBreathing,
		keywords: []string{"panic", "can't breathe", "cant breathe", "breathing", "breathe", "hyperventilat"},
		reply:    BreathingMessage + "\n" + BreathingMarker,
	},
	{
		topic:    TopicCounselor,
		keywords: []string{"counselor", "counsellor", "therapist", "therapy", "book a session", "appointment"},
		reply:    CounselorOffer,
		pending:  session.PendingBooking,
	},
	{
		topic:    TopicAnxiety,
		keywords: []string{"anxious", "anxiety", "worried", "worrying", "nervous", "on edge", "restless"},
		reply:    AnxietyOffer,
		pending:  session.PendingAnxietyAssessment,
	},
	{
		topic:    TopicDepression,
		keywords: []string{"depress", "hopeless", "worthless", "sad", "feeling down", "feel down", "empty", "lonely"},
		reply:    DepressionOffer,
		pending:  session.PendingMentalHealthAssessment,
	},
	{
		topic:    TopicSleep,
		keywords: []string{"sleep", "insomnia", "nightmare", "exhausted", "tired"},
		reply:    SleepOffer,
		pending:  session.PendingMentalHealthAssessment,
	},
	{
		topic:    TopicStress,
		keywords: []string{"stress", "overwhelm", "pressure", "burnout", "burned out", "burnt out"},
		reply:    StressOffer,
		pending:  session.PendingAnxietyAssessment,
	},
}

// DetectTopic scans lowercased text for the first matching topic.
func DetectTopic(text string) Topic {
	if r, ok := matchTopic(strings.ToLower(text)); ok {
		return r.topic
	}
	return TopicNone
}

func matchTopic(lower string) (topicRule, bool) {
	for _, r := range topicRules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return r, true
			}
		}
	}
	return topicRule{}, false
}

func topicFor(t Topic) (topicRule, bool) {
	for _, r := range topicRules {
		if r.topic == t {
			return r, true
		}
	}
	return topicRule{}, false
}
