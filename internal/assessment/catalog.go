// Package assessment holds the static screening instruments and the rules
// used to score and classify them.
package assessment

import (
	"fmt"
	"math"
	"strings"
)

// ID names a screening instrument.  The string form is the one used on the
// wire and in persisted results.
type ID string

const (
	PHQ9 ID = "PHQ-9"
	GAD7 ID = "GAD-7"
)

// Every instrument shares the same four-point answer scale.
const (
	MinAnswer = 0
	MaxAnswer = 3
)

// ScaleLegend explains the answer scale and is appended to every question.
const ScaleLegend = "(0 = Not at all, 1 = Several days, 2 = More than half the days, 3 = Nearly every day)"

// Band is a contiguous score range.  Upper is inclusive; the last band of an
// instrument uses math.MaxInt so that every score lands somewhere.
type Band struct {
	Upper          int
	Label          string
	Recommendation string
	Advice         []string
}

// Definition describes one instrument.  Definitions are shared and must be
// treated as read-only.
type Definition struct {
	ID        ID
	Name      string
	Stem      string
	Questions []string
	Bands     []Band
}

// MaxScore is the highest total an instrument can produce.
func (d Definition) MaxScore() int { return len(d.Questions) * MaxAnswer }

// Len returns the number of questions.
func (d Definition) Len() int { return len(d.Questions) }

// Prompt renders the question at index i, numbered from one.
func (d Definition) Prompt(i int) string {
	return fmt.Sprintf("Question %d of %d: %s %s? %s", i+1, len(d.Questions), d.Stem, d.Questions[i], ScaleLegend)
}

var phq9 = Definition{
	ID:   PHQ9,
	Name: "PHQ-9 mental health assessment",
	Stem: "Over the last 2 weeks, how often have you been bothered by",
	Questions: []string{
		"little interest or pleasure in doing things",
		"feeling down, depressed, or hopeless",
		"trouble falling or staying asleep, or sleeping too much",
		"feeling tired or having little energy",
		"poor appetite or overeating",
		"feeling bad about yourself, or that you are a failure or have let yourself or your family down",
		"trouble concentrating on things, such as reading or watching television",
		"moving or speaking so slowly that other people could have noticed, or the opposite, being so fidgety or restless that you have been moving around a lot more than usual",
		"thoughts that you would be better off dead, or of hurting yourself in some way",
	},
	Bands: []Band{
		{Upper: 4, Label: "Minimal", Recommendation: "Your responses suggest minimal depressive symptoms. Keep looking after yourself and check in again if things change.", Advice: []string{
			"Keep up routines that support your mood, such as regular sleep and movement.",
			"Stay connected with people you trust.",
		}},
		{Upper: 9, Label: "Mild", Recommendation: "Your responses suggest mild depressive symptoms. Self-care and monitoring how you feel over the next few weeks may help.", Advice: []string{
			"Try to keep a regular daily structure and schedule small enjoyable activities.",
			"Consider journaling your mood to notice patterns.",
			"Retake this screening in two weeks to track changes.",
		}},
		{Upper: 14, Label: "Moderate", Recommendation: "Your responses suggest moderate depressive symptoms. Talking with a counselor could really help.", Advice: []string{
			"Consider speaking with a counselor or your doctor about how you have been feeling.",
			"Share what you are going through with someone you trust.",
			"Keep gentle routines around sleep, meals and activity.",
		}},
		{Upper: 19, Label: "Moderately Severe", Recommendation: "Your responses suggest moderately severe depressive symptoms. We strongly encourage you to reach out to a counselor.", Advice: []string{
			"Please reach out to a counselor or healthcare professional soon.",
			"Let someone close to you know how you are feeling.",
			"If you have thoughts of harming yourself, contact a crisis line right away.",
		}},
		{Upper: math.MaxInt, Label: "Severe", Recommendation: "Your responses suggest severe depressive symptoms. Please reach out to a mental health professional as soon as possible.", Advice: []string{
			"Contact a mental health professional as soon as possible.",
			"If you are in danger or thinking about ending your life, call your local emergency number or a crisis line now.",
			"Avoid being alone; reach out to someone you trust today.",
		}},
	},
}

var gad7 = Definition{
	ID:   GAD7,
	Name: "GAD-7 anxiety assessment",
	Stem: "Over the last 2 weeks, how often have you been bothered by",
	Questions: []string{
		"feeling nervous, anxious, or on edge",
		"not being able to stop or control worrying",
		"worrying too much about different things",
		"trouble relaxing",
		"being so restless that it is hard to sit still",
		"becoming easily annoyed or irritable",
		"feeling afraid, as if something awful might happen",
	},
	Bands: []Band{
		{Upper: 4, Label: "Minimal", Recommendation: "Your responses suggest minimal anxiety. Keep using the strategies that work for you.", Advice: []string{
			"Keep practising the habits that help you stay calm.",
			"Short breathing exercises can help on stressful days.",
		}},
		{Upper: 9, Label: "Mild", Recommendation: "Your responses suggest mild anxiety. Relaxation techniques and regular check-ins may help.", Advice: []string{
			"Try a daily breathing or relaxation exercise.",
			"Limit caffeine and keep a consistent sleep schedule.",
			"Retake this screening in two weeks to track changes.",
		}},
		{Upper: 14, Label: "Moderate", Recommendation: "Your responses suggest moderate anxiety. Speaking with a counselor could help you find ways to manage it.", Advice: []string{
			"Consider speaking with a counselor about what is worrying you.",
			"Practise grounding techniques when anxiety rises.",
			"Write down worries and set aside a short time each day to address them.",
		}},
		{Upper: math.MaxInt, Label: "Severe", Recommendation: "Your responses suggest severe anxiety. Please reach out to a mental health professional soon.", Advice: []string{
			"Please reach out to a mental health professional soon.",
			"Use a breathing exercise when you feel overwhelmed.",
			"If you feel unsafe, call your local emergency number or a crisis line.",
		}},
	},
}

var catalog = map[ID]Definition{
	PHQ9: phq9,
	GAD7: gad7,
}

// Lookup returns the definition for id.
func Lookup(id ID) (Definition, bool) {
	d, ok := catalog[id]
	return d, ok
}

// Get returns the definition for id.  An unknown id is a programming error.
func Get(id ID) Definition {
	d, ok := catalog[id]
	if !ok {
		panic(fmt.Sprintf("assessment: unknown instrument %q", id))
	}
	return d
}

// ParseID accepts the canonical names as well as the common spellings
// "phq9", "PHQ 9" and so on.
func ParseID(s string) (ID, bool) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "", " ", "", "_", "").Replace(norm)
	switch norm {
	case "PHQ9":
		return PHQ9, true
	case "GAD7":
		return GAD7, true
	}
	return "", false
}

// All lists the instruments in a stable order.
func All() []ID { return []ID{PHQ9, GAD7} }
