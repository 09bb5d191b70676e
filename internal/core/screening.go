package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Krrish0621/Mind-Care-sub000/internal/assessment"
	"github.com/Krrish0621/Mind-Care-sub000/pkg"
)

// HistoryPageSize caps how many results History returns.
const HistoryPageSize = 10

var (
	// ErrInvalidSubmission is wrapped by every validation failure of Submit.
	ErrInvalidSubmission = errors.New("invalid assessment submission")
	// ErrMissingUserToken is returned when a request has no user token.
	ErrMissingUserToken = errors.New("userToken is required")
)

// ScreeningService scores screenings submitted outside the chat loop and
// serves a user's result history.
type ScreeningService struct {
	store     ResultStore
	escalator Escalator
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

// NewScreeningService constructs a service bound to store.  esc may be nil.
func NewScreeningService(store ResultStore, esc Escalator, logger *zap.Logger) *ScreeningService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScreeningService{
		store:     store,
		escalator: esc,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

// Submit validates and scores req.  Invalid requests are rejected before
// anything is recorded.  A storage failure does not fail the call.
func (s *ScreeningService) Submit(ctx context.Context, req pkg.AssessmentRequest) (*pkg.AssessmentResponse, error) {
	token := strings.TrimSpace(req.UserToken)
	if token == "" {
		return nil, errors.Wrap(ErrInvalidSubmission, ErrMissingUserToken.Error())
	}
	id, ok := assessment.ParseID(req.Tool)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidSubmission, "unknown tool %q", req.Tool)
	}
	def := assessment.Get(id)
	if err := assessment.Validate(def, req.Responses); err != nil {
		return nil, errors.Wrap(ErrInvalidSubmission, err.Error())
	}

	total := assessment.Score(req.Responses)
	c := assessment.Classify(id, total)
	res := &pkg.ScreeningResult{
		ID:         s.newID(),
		UserToken:  token,
		Instrument: string(id),
		Answers:    append([]int(nil), req.Responses...),
		TotalScore: total,
		Severity:   c.Label,
		CreatedAt:  s.now(),
	}
	recordResult(ctx, s.store, s.escalator, s.logger, res)

	return &pkg.AssessmentResponse{
		Score:           total,
		Severity:        c.Label,
		Recommendations: c.Advice,
		Message:         fmt.Sprintf(SubmissionMessage, id, total, c.Label, c.Recommendation),
	}, nil
}

// History returns the most recent results for userToken, newest first.
func (s *ScreeningService) History(ctx context.Context, userToken string) ([]pkg.ScreeningResult, error) {
	token := strings.TrimSpace(userToken)
	if token == "" {
		return nil, ErrMissingUserToken
	}
	results, err := s.store.ListResults(ctx, token, HistoryPageSize)
	if err != nil {
		return nil, errors.Wrap(err, "list screening results")
	}
	return results, nil
}
