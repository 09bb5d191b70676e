package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Krrish0621/Mind-Care-sub000/internal/assessment"
	"github.com/Krrish0621/Mind-Care-sub000/internal/session"
	"github.com/Krrish0621/Mind-Care-sub000/pkg"
)

// Responder writes a supportive reply to free text that matched no topic.
type Responder interface {
	Empathize(ctx context.Context, message string) (string, error)
}

// Reply is the bot's answer to one turn.
type Reply struct {
	SessionID  string
	Text       string
	Timestamp  time.Time
	Escalation *pkg.EscalationOffer
}

// ChatService runs the conversation: it routes each message against the
// session's state, advances screenings and scores them when complete.
// Turns for the same session are serialized; different sessions run in
// parallel.
type ChatService struct {
	sessions   session.Store
	locks      *session.Locker
	router     *Router
	results    ResultSink
	escalator  Escalator
	responder  Responder
	bookingURL string
	logger     *zap.Logger
	now        func() time.Time
	newID      func() string

	persistTimeout time.Duration
	inflight       sync.WaitGroup
}

// Option configures a ChatService.
type Option func(*ChatService)

// WithResultSink sets where completed screenings are recorded.
func WithResultSink(sink ResultSink) Option { return func(s *ChatService) { s.results = sink } }

// WithEscalator sets who is told about high-risk results.
func WithEscalator(esc Escalator) Option { return func(s *ChatService) { s.escalator = esc } }

// WithResponder enables generated replies for unmatched free text.
func WithResponder(r Responder) Option { return func(s *ChatService) { s.responder = r } }

// WithBookingURL sets the counselor booking page pointed to by the bot.
func WithBookingURL(url string) Option { return func(s *ChatService) { s.bookingURL = url } }

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option { return func(s *ChatService) { s.logger = l } }

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option { return func(s *ChatService) { s.now = now } }

// WithIDGenerator overrides how session and result ids are minted.
func WithIDGenerator(gen func() string) Option { return func(s *ChatService) { s.newID = gen } }

// NewChatService constructs a ChatService over the given session store.
func NewChatService(sessions session.Store, opts ...Option) *ChatService {
	s := &ChatService{
		sessions:       sessions,
		locks:          session.NewLocker(),
		router:         NewRouter(),
		bookingURL:     "/counseling/book",
		logger:         zap.NewNop(),
		now:            time.Now,
		newID:          uuid.NewString,
		persistTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reply handles one user message.  It always returns a usable Reply; when
// the turn fails internally the reply is ApologyMessage, the session is left
// as it was and the error is returned for the caller's information.  An
// empty sessionID starts a new one-off session whose id is in the Reply.
func (s *ChatService) Reply(ctx context.Context, sessionID, message string) (Reply, error) {
	if sessionID == "" {
		sessionID = s.newID()
	}
	out, res, err := s.turn(ctx, sessionID, message)
	if err != nil {
		s.logger.Error("chat turn failed", zap.String("session_id", sessionID), zap.Error(err))
		return Reply{SessionID: sessionID, Text: ApologyMessage, Timestamp: s.now()}, err
	}
	out.SessionID = sessionID
	out.Timestamp = s.now()
	if res != nil {
		s.dispatch(res)
	}
	return out, nil
}

// Wait blocks until every dispatched screening result has been handled.
func (s *ChatService) Wait() { s.inflight.Wait() }

// turn runs under the session lock.  The session is only written back once
// the reply is fully built.
func (s *ChatService) turn(ctx context.Context, id, message string) (out Reply, res *pkg.ScreeningResult, err error) {
	unlock := s.locks.Lock(id)
	defer unlock()
	defer func() {
		if r := recover(); r != nil {
			out, res, err = Reply{}, nil, errors.Errorf("turn panicked: %v", r)
		}
	}()

	st, err := s.sessions.GetOrCreate(ctx, id)
	if err != nil {
		return Reply{}, nil, errors.Wrap(err, "load session")
	}
	work := st.Clone()
	route := s.router.Route(work, message)
	out, res = s.apply(ctx, work, route, message)
	work.LastBotMessage = out.Text
	if err := s.sessions.Save(ctx, work); err != nil {
		return Reply{}, nil, errors.Wrap(err, "save session")
	}
	s.logger.Debug("chat turn",
		zap.String("session_id", id),
		zap.String("intent", string(route.Intent)),
		zap.Stringer("mode", work.Mode),
	)
	return out, res, nil
}

func (s *ChatService) apply(ctx context.Context, st *session.State, route Route, message string) (Reply, *pkg.ScreeningResult) {
	switch route.Intent {
	case IntentStopAssessment:
		st.Reset()
		return Reply{Text: AssessmentStoppedMessage}, nil
	case IntentAnswer:
		def := assessment.Get(st.Assessment)
		st.RecordAnswer(route.Answer)
		if st.QuestionIndex < def.Len() {
			return Reply{Text: def.Prompt(st.QuestionIndex)}, nil
		}
		return s.complete(st, def)
	case IntentReprompt:
		def := assessment.Get(st.Assessment)
		return Reply{Text: RepromptMessage + "\n\n" + def.Prompt(st.QuestionIndex)}, nil
	case IntentConfirmTalk:
		st.Reset()
		return Reply{Text: TalkSupportMessage}, nil
	case IntentStartGAD7:
		return s.start(st, assessment.GAD7), nil
	case IntentStartPHQ9:
		return s.start(st, assessment.PHQ9), nil
	case IntentConfirmBooking:
		st.Reset()
		return Reply{Text: fmt.Sprintf(BookingMessage, s.bookingURL)}, nil
	case IntentGenericYes:
		st.Reset()
		return Reply{Text: GenericSupportMessage}, nil
	case IntentDecline:
		st.Reset()
		return Reply{Text: DeclineMessage}, nil
	}
	return s.freeText(ctx, st, route.Topic, message), nil
}

func (s *ChatService) start(st *session.State, id assessment.ID) Reply {
	def := assessment.Get(id)
	st.StartAssessment(id)
	return Reply{Text: fmt.Sprintf(AssessmentIntro, def.Name) + "\n\n" + def.Prompt(0)}
}

func (s *ChatService) complete(st *session.State, def assessment.Definition) (Reply, *pkg.ScreeningResult) {
	total := assessment.Score(st.Answers)
	c := assessment.Classify(def.ID, total)
	res := &pkg.ScreeningResult{
		ID:         s.newID(),
		UserToken:  st.ID,
		Instrument: string(def.ID),
		Answers:    append([]int(nil), st.Answers...),
		TotalScore: total,
		Severity:   c.Label,
		CreatedAt:  s.now().UTC(),
	}
	out := Reply{Text: fmt.Sprintf(ResultMessage, def.Name, total, def.MaxScore(), c.Label, c.Recommendation)}
	if c.HighRisk {
		out.Text += " " + BookingOffer
		out.Escalation = &pkg.EscalationOffer{
			Instrument: string(def.ID),
			Score:      total,
			Severity:   c.Label,
			BookingURL: s.bookingURL,
		}
		st.Await(session.PendingBooking)
	} else {
		st.Reset()
	}
	return out, res
}

func (s *ChatService) freeText(ctx context.Context, st *session.State, topic Topic, message string) Reply {
	if r, ok := topicFor(topic); ok {
		if r.pending != session.PendingNone {
			st.Await(r.pending)
		} else {
			st.Reset()
		}
		return Reply{Text: r.reply}
	}
	st.Reset()
	if s.responder != nil {
		text, err := s.responder.Empathize(ctx, message)
		if err == nil {
			return Reply{Text: text}
		}
		s.logger.Warn("empathy responder failed, using canned reply", zap.String("session_id", st.ID), zap.Error(err))
	}
	return Reply{Text: GenericSupportMessage}
}

func (s *ChatService) dispatch(res *pkg.ScreeningResult) {
	if s.results == nil {
		return
	}
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.persistTimeout)
		defer cancel()
		recordResult(ctx, s.results, s.escalator, s.logger, res)
	}()
}
