package core

// prompts.go holds every sentence the bot says.  The router keys on session
// state rather than on these strings, but the phrases that end a question
// ("Would you like to talk to someone?", "anxiety assessment (GAD-7)",
// "mental health assessment (PHQ-9)", "book a counselor") are kept so that
// a transcript reads the same way the state machine behaves.

const (
	// BreathingMarker tells the UI to render the breathing-exercise widget
	// in place of the marker.
	BreathingMarker = "[[BREATHING_EXERCISE]]"

	// ApologyMessage is returned whenever a turn fails internally.
	ApologyMessage = "I'm sorry, something went wrong on my side. Could you please send that again?"

	GenericSupportMessage = "Thank you for sharing that with me. I'm here to listen. Can you tell me a bit more about how you've been feeling lately?"

	TalkSupportMessage = "I'm really glad you reached out. You don't have to go through this alone. " +
		"You can talk to a trained counselor any time by calling or texting your local crisis line (988 in the US), " +
		"and if you are in immediate danger please call your local emergency number. I'm also here to keep talking with you. What's on your mind right now?"

	// BookingMessage is formatted with the booking page URL.
	BookingMessage = "You can choose a time with one of our counselors on the booking page: %s. Is there anything else you'd like to talk about in the meantime?"

	DeclineMessage = "That's completely okay. I'm still here if you'd like to talk about anything."

	CrisisMessage = "I'm really sorry you're feeling this way. Your safety matters, and you deserve support right now. " +
		"If you are in immediate danger, please call your local emergency number. Would you like to talk to someone?"

	BreathingMessage = "It sounds like things feel really intense right now. Let's slow down together with a short breathing exercise."

	CounselorOffer = "Talking with a professional can really help. Would you like to book a counselor?"

	AnxietyOffer = "It sounds like you may be dealing with some anxiety, and that can be exhausting. " +
		"Would you like to take a short anxiety assessment (GAD-7)? It has 7 quick questions."

	DepressionOffer = "I'm sorry you're feeling this way. Feeling low can make everything harder. " +
		"Would you like to take a brief mental health assessment (PHQ-9)? It has 9 quick questions."

	SleepOffer = "Sleep troubles can affect how we feel in so many ways. A regular bedtime, less screen time before bed and a wind-down routine can help. " +
		"Sleep changes can also be linked to mood. Would you like to take a brief mental health assessment (PHQ-9)?"

	StressOffer = "Stress can build up quickly. Short breaks, a walk, or writing down what's on your mind can ease the pressure. " +
		"Would you like to take a short anxiety assessment (GAD-7) to understand it better?"

	// AssessmentIntro is formatted with the instrument name.
	AssessmentIntro = "Great, let's begin the %s. Please answer each question with a number from 0 to 3."

	RepromptMessage = "Please reply with a single number from 0 to 3, or type \"stop\" to end the assessment."

	AssessmentStoppedMessage = "No problem, I've stopped the assessment. We can pick it up again whenever you're ready."

	// ResultMessage is formatted with instrument name, score, max score,
	// severity label and recommendation text.
	ResultMessage = "Thank you for completing the %s. Your total score is %d out of %d, which indicates %s symptoms. %s"

	BookingOffer = "Would you like to book a counselor to talk this through?"

	// SubmissionMessage is formatted with instrument id, score and severity.
	SubmissionMessage = "Your %s score is %d (%s). %s"
)
