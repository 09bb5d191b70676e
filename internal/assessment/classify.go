package assessment

import "github.com/pkg/errors"

// HighRiskThreshold is the total score, for either instrument, at and above
// which the bot offers to book a counselor.
const HighRiskThreshold = 10

// ErrInvalidAnswers is wrapped by every error Validate returns.
var ErrInvalidAnswers = errors.New("invalid answers")

// Classification is the outcome of classifying a total score.
type Classification struct {
	Label          string
	HighRisk       bool
	Recommendation string
	Advice         []string
}

// Classify maps a total score onto the instrument's severity bands.  Scores
// outside the valid range never fail: anything above the maximum lands in
// the highest band and negative totals in the lowest.
func Classify(id ID, total int) Classification {
	d := Get(id)
	band := d.Bands[len(d.Bands)-1]
	for _, b := range d.Bands {
		if total <= b.Upper {
			band = b
			break
		}
	}
	return Classification{
		Label:          band.Label,
		HighRisk:       IsHighRisk(total),
		Recommendation: band.Recommendation,
		Advice:         append([]string(nil), band.Advice...),
	}
}

// IsHighRisk reports whether total meets the escalation threshold.
func IsHighRisk(total int) bool { return total >= HighRiskThreshold }

// Score sums a list of answers.
func Score(answers []int) int {
	total := 0
	for _, a := range answers {
		total += a
	}
	return total
}

// ValidAnswer reports whether v is on the shared answer scale.
func ValidAnswer(v int) bool { return v >= MinAnswer && v <= MaxAnswer }

// Validate checks that answers is a complete, in-range answer set for d.
func Validate(d Definition, answers []int) error {
	if len(answers) != d.Len() {
		return errors.Wrapf(ErrInvalidAnswers, "%s expects %d responses, got %d", d.ID, d.Len(), len(answers))
	}
	for i, a := range answers {
		if !ValidAnswer(a) {
			return errors.Wrapf(ErrInvalidAnswers, "response %d is %d, want %d..%d", i+1, a, MinAnswer, MaxAnswer)
		}
	}
	return nil
}
