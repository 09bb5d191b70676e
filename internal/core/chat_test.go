package core

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/Krrish0621/Mind-Care-sub000/internal/assessment"
	"github.com/Krrish0621/Mind-Care-sub000/internal/session"
	"github.com/Krrish0621/Mind-Care-sub000/pkg"
)

type recordingSink struct {
	mu       sync.Mutex
	results  []pkg.ScreeningResult
	err      error
	notified []string
}

func (r *recordingSink) SaveResult(_ context.Context, res *pkg.ScreeningResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.results = append(r.results, *res)
	return nil
}

func (r *recordingSink) ListResults(_ context.Context, token string, limit int) ([]pkg.ScreeningResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []pkg.ScreeningResult{}
	for i := len(r.results) - 1; i >= 0 && len(out) < limit; i-- {
		if r.results[i].UserToken == token {
			out = append(out, r.results[i])
		}
	}
	return out, nil
}

func (r *recordingSink) Notify(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notified = append(r.notified, id)
	return nil
}

func (r *recordingSink) saved() []pkg.ScreeningResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]pkg.ScreeningResult(nil), r.results...)
}

// flakyStore fails Save while fail is set.
type flakyStore struct {
	*session.MemoryStore
	mu   sync.Mutex
	fail bool
}

func (f *flakyStore) Save(ctx context.Context, st *session.State) error {
	f.mu.Lock()
	fail := f.fail
	f.mu.Unlock()
	if fail {
		return errors.New("session backend unavailable")
	}
	return f.MemoryStore.Save(ctx, st)
}

type panickingResponder struct{}

func (panickingResponder) Empathize(context.Context, string) (string, error) {
	panic("responder exploded")
}

type cannedResponder struct {
	text string
	err  error
}

func (c cannedResponder) Empathize(context.Context, string) (string, error) { return c.text, c.err }

type harness struct {
	svc      *ChatService
	sessions *session.MemoryStore
	sink     *recordingSink
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	sessions := session.NewMemoryStore(0, nil)
	sink := &recordingSink{}
	base := []Option{
		WithResultSink(sink),
		WithEscalator(sink),
		WithLogger(zaptest.NewLogger(t)),
		WithBookingURL("https://care.example/book"),
	}
	svc := NewChatService(sessions, append(base, opts...)...)
	t.Cleanup(svc.Wait)
	return &harness{svc: svc, sessions: sessions, sink: sink}
}

func (h *harness) say(t *testing.T, sessionID, msg string) Reply {
	t.Helper()
	out, err := h.svc.Reply(context.Background(), sessionID, msg)
	require.NoError(t, err)
	require.NotEmpty(t, out.Text)
	return out
}

func (h *harness) state(t *testing.T, id string) *session.State {
	t.Helper()
	st, err := h.sessions.GetOrCreate(context.Background(), id)
	require.NoError(t, err)
	return st
}

func TestAnxiousThenYesStartsGAD7(t *testing.T) {
	h := newHarness(t)

	out := h.say(t, "S1", "I feel anxious")
	assert.Contains(t, out.Text, "GAD-7")
	assert.Contains(t, out.Text, "anxiety assessment")
	assert.Equal(t, "S1", out.SessionID)

	out = h.say(t, "S1", "yes")
	assert.Contains(t, out.Text, "Question 1 of 7")
	assert.Contains(t, out.Text, assessment.Get(assessment.GAD7).Questions[0])

	st := h.state(t, "S1")
	assert.Equal(t, session.InAssessment, st.Mode)
	assert.Equal(t, assessment.GAD7, st.Assessment)
	assert.Empty(t, st.Answers)
	assert.Equal(t, out.Text, st.LastBotMessage)
}

func startPHQ9(t *testing.T, h *harness, id string) {
	t.Helper()
	h.say(t, id, "I've been feeling depressed")
	out := h.say(t, id, "yes")
	require.Contains(t, out.Text, "Question 1 of 9")
}

func TestCompletingPHQ9WithModerateScoreOffersBooking(t *testing.T) {
	h := newHarness(t)
	startPHQ9(t, h, "S2")

	previous := []int{1, 1, 1, 1, 1, 1, 1, 3}
	for i, a := range previous {
		out := h.say(t, "S2", fmt.Sprint(a))
		assert.Contains(t, out.Text, fmt.Sprintf("Question %d of 9", i+2))
	}
	st := h.state(t, "S2")
	require.Equal(t, 8, st.QuestionIndex)

	out := h.say(t, "S2", "2")
	assert.Contains(t, out.Text, "12 out of 27")
	assert.Contains(t, out.Text, "Moderate")
	assert.Contains(t, out.Text, "book a counselor")
	require.NotNil(t, out.Escalation)
	assert.Equal(t, pkg.EscalationOffer{Instrument: "PHQ-9", Score: 12, Severity: "Moderate", BookingURL: "https://care.example/book"}, *out.Escalation)

	st = h.state(t, "S2")
	assert.Equal(t, session.AwaitingAffirmation, st.Mode)
	assert.Equal(t, session.PendingBooking, st.Pending)
	assert.Empty(t, st.Answers)
	assert.Zero(t, st.QuestionIndex)

	out = h.say(t, "S2", "yes")
	assert.Contains(t, out.Text, "https://care.example/book")
	assert.Equal(t, session.Idle, h.state(t, "S2").Mode)

	h.svc.Wait()
	saved := h.sink.saved()
	require.Len(t, saved, 1)
	assert.Equal(t, "S2", saved[0].UserToken)
	assert.Equal(t, 12, saved[0].TotalScore)
	assert.Equal(t, append(previous, 2), saved[0].Answers)
	assert.Equal(t, []string{saved[0].ID}, h.sink.notified)
}

func TestLowScoreHasNoBookingOffer(t *testing.T) {
	h := newHarness(t)
	h.say(t, "S3", "I feel anxious")
	h.say(t, "S3", "yes")
	var out Reply
	for i := 0; i < 7; i++ {
		out = h.say(t, "S3", "1")
	}
	assert.Contains(t, out.Text, "7 out of 21")
	assert.Contains(t, out.Text, "Mild")
	assert.NotContains(t, out.Text, "book a counselor")
	assert.Nil(t, out.Escalation)
	assert.Equal(t, session.Idle, h.state(t, "S3").Mode)

	h.svc.Wait()
	assert.Len(t, h.sink.saved(), 1)
	assert.Empty(t, h.sink.notified)
}

func TestNonDigitMidAssessmentRepromptsSameQuestion(t *testing.T) {
	h := newHarness(t)
	startPHQ9(t, h, "S4")
	h.say(t, "S4", "2")

	out := h.say(t, "S4", "I don't know")
	assert.Contains(t, out.Text, RepromptMessage)
	assert.Contains(t, out.Text, "Question 2 of 9")
	st := h.state(t, "S4")
	assert.Equal(t, 1, st.QuestionIndex)
	assert.Equal(t, []int{2}, st.Answers)

	out = h.say(t, "S4", "7")
	assert.Contains(t, out.Text, "Question 2 of 9")
	assert.Equal(t, 1, h.state(t, "S4").QuestionIndex)
}

func TestStopAbandonsAssessment(t *testing.T) {
	h := newHarness(t)
	startPHQ9(t, h, "S5")
	h.say(t, "S5", "1")
	out := h.say(t, "S5", "stop")
	assert.Equal(t, AssessmentStoppedMessage, out.Text)
	st := h.state(t, "S5")
	assert.Equal(t, session.Idle, st.Mode)
	assert.Empty(t, st.Answers)
	h.svc.Wait()
	assert.Empty(t, h.sink.saved())
}

func TestDigitWhileIdleNeverAdvances(t *testing.T) {
	h := newHarness(t)
	for i := 0; i < 2; i++ {
		out := h.say(t, "S6", "2")
		assert.Equal(t, GenericSupportMessage, out.Text)
		st := h.state(t, "S6")
		assert.Zero(t, st.QuestionIndex)
		assert.Equal(t, session.Idle, st.Mode)
	}
}

func TestYesRows(t *testing.T) {
	cases := []struct {
		opener string
		want   string
	}{
		{"I want to kill myself", TalkSupportMessage},
		{"I need a counselor", "https://care.example/book"},
		{"hello", GenericSupportMessage},
	}
	for _, c := range cases {
		t.Run(c.opener, func(t *testing.T) {
			h := newHarness(t)
			h.say(t, "S7", c.opener)
			out := h.say(t, "S7", "yes")
			assert.Contains(t, out.Text, c.want)
			assert.Equal(t, session.Idle, h.state(t, "S7").Mode)
		})
	}
}

func TestCrisisAsksToTalk(t *testing.T) {
	h := newHarness(t)
	out := h.say(t, "S8", "I keep thinking about suicide")
	assert.Contains(t, out.Text, "Would you like to talk to someone?")
	assert.Equal(t, session.PendingTalk, h.state(t, "S8").Pending)
}

func TestDeclineReturnsToIdle(t *testing.T) {
	h := newHarness(t)
	h.say(t, "S9", "so stressed out")
	out := h.say(t, "S9", "No")
	assert.Equal(t, DeclineMessage, out.Text)
	assert.Equal(t, session.Idle, h.state(t, "S9").Mode)
}

func TestBreathingMarker(t *testing.T) {
	h := newHarness(t)
	out := h.say(t, "S10", "I think I'm having a panic attack")
	assert.Contains(t, out.Text, BreathingMarker)
	assert.Regexp(t, regexp.MustCompile(`^\S.*\n`+regexp.QuoteMeta(BreathingMarker)+`$`), out.Text)
}

func TestEmptySessionIDStartsOneOffSession(t *testing.T) {
	h := newHarness(t, WithIDGenerator(func() string { return "generated-1" }))
	out := h.say(t, "", "hello")
	assert.Equal(t, "generated-1", out.SessionID)
	assert.Equal(t, 1, h.sessions.Len())
}

func TestResponderUsedForUnmatchedText(t *testing.T) {
	h := newHarness(t, WithResponder(cannedResponder{text: "That sounds like a lot."}))
	assert.Equal(t, "That sounds like a lot.", h.say(t, "S11", "my day was odd").Text)
	// topics never reach the responder
	assert.Contains(t, h.say(t, "S11", "I feel anxious").Text, "GAD-7")
}

func TestResponderFailureFallsBack(t *testing.T) {
	h := newHarness(t, WithResponder(cannedResponder{err: errors.New("quota")}))
	assert.Equal(t, GenericSupportMessage, h.say(t, "S12", "my day was odd").Text)
}

func TestInternalFailureApologisesAndKeepsState(t *testing.T) {
	sessions := &flakyStore{MemoryStore: session.NewMemoryStore(0, nil)}
	sink := &recordingSink{}
	svc := NewChatService(sessions, WithResultSink(sink), WithLogger(zaptest.NewLogger(t)))
	defer svc.Wait()
	ctx := context.Background()

	_, err := svc.Reply(ctx, "F1", "I feel anxious")
	require.NoError(t, err)
	_, err = svc.Reply(ctx, "F1", "yes")
	require.NoError(t, err)

	sessions.mu.Lock()
	sessions.fail = true
	sessions.mu.Unlock()
	out, err := svc.Reply(ctx, "F1", "3")
	require.Error(t, err)
	assert.Equal(t, ApologyMessage, out.Text)
	assert.Equal(t, "F1", out.SessionID)
	assert.NotContains(t, out.Text, "unavailable")

	sessions.mu.Lock()
	sessions.fail = false
	sessions.mu.Unlock()
	st, _ := sessions.GetOrCreate(ctx, "F1")
	assert.Zero(t, st.QuestionIndex, "failed turn must not advance")

	out, err = svc.Reply(ctx, "F1", "3")
	require.NoError(t, err)
	assert.Contains(t, out.Text, "Question 2 of 7")
}

func TestPanicDuringTurnIsContained(t *testing.T) {
	h := newHarness(t, WithResponder(panickingResponder{}))
	h.say(t, "P1", "I need a therapist")

	out, err := h.svc.Reply(context.Background(), "P1", "tell me something")
	require.Error(t, err)
	assert.Equal(t, ApologyMessage, out.Text)
	st := h.state(t, "P1")
	assert.Equal(t, session.PendingBooking, st.Pending, "state must be untouched")

	// the lock was released
	done := make(chan struct{})
	go func() {
		h.say(t, "P1", "yes")
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("session lock leaked after panic")
	}
}

func TestPersistenceFailureStillReturnsScore(t *testing.T) {
	h := newHarness(t)
	h.sink.err = errors.New("disk full")
	h.say(t, "D1", "I feel anxious")
	h.say(t, "D1", "yes")
	var out Reply
	for i := 0; i < 7; i++ {
		out = h.say(t, "D1", "3")
	}
	assert.Contains(t, out.Text, "21 out of 21")
	assert.Contains(t, out.Text, "Severe")
	h.svc.Wait()
	assert.Empty(t, h.sink.saved())
}

func TestConcurrentAnswersSameSessionNoLostUpdate(t *testing.T) {
	defer goleak.VerifyNone(t)

	sessions := session.NewMemoryStore(0, nil)
	sink := &recordingSink{}
	svc := NewChatService(sessions, WithResultSink(sink))
	ctx := context.Background()
	_, err := svc.Reply(ctx, "C1", "feeling hopeless")
	require.NoError(t, err)
	_, err = svc.Reply(ctx, "C1", "yes")
	require.NoError(t, err)

	const n = 8
	var wg sync.WaitGroup
	replies := make(chan string, n)
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			<-start
			out, err := svc.Reply(ctx, "C1", fmt.Sprint(v%4))
			assert.NoError(t, err)
			replies <- out.Text
		}(i)
	}
	close(start)
	wg.Wait()
	close(replies)

	seen := map[string]bool{}
	for text := range replies {
		m := regexp.MustCompile(`Question (\d) of 9`).FindStringSubmatch(text)
		require.NotNil(t, m, text)
		assert.False(t, seen[m[1]], "two turns answered the same slot: %s", m[1])
		seen[m[1]] = true
	}
	assert.Len(t, seen, n)

	st, err := sessions.GetOrCreate(ctx, "C1")
	require.NoError(t, err)
	assert.Len(t, st.Answers, n)
	assert.Equal(t, n, st.QuestionIndex)

	svc.Wait()
}

func TestConcurrentSessionsAreIndependent(t *testing.T) {
	h := newHarness(t)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			out, err := h.svc.Reply(context.Background(), id, "I feel anxious")
			assert.NoError(t, err)
			out, err = h.svc.Reply(context.Background(), id, "yes")
			assert.NoError(t, err)
			assert.Contains(t, out.Text, "Question 1 of 7")
		}(fmt.Sprintf("multi-%d", i))
	}
	wg.Wait()
	assert.Equal(t, 10, h.sessions.Len())
}
