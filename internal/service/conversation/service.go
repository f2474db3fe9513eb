package conversation

import (
	"context"
	"errors"
	"log"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/insureassist/backend/internal/model/conversation"
	"github.com/insureassist/backend/internal/model/policy"
	"github.com/insureassist/backend/internal/service/recommend"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	// ErrReplyPending gates input while a deferred reply is outstanding;
	// at most one deferred completion is ever in flight per session.
	ErrReplyPending = errors.New("reply pending")
)

// Advisor optionally phrases the terminal-step reply. A nil Advisor means
// scripted replies only.
type Advisor interface {
	Reply(ctx context.Context, turns []conversation.Turn, userMessage string) (string, error)
}

// sessionState is the mutable record behind one session. epoch is bumped on
// every restart; deferred completions compare their captured epoch against
// it and discard themselves when stale.
type sessionState struct {
	id          string
	turns       []conversation.Turn
	requirement conversation.Requirement
	step        int
	offers      []policy.Offer
	busy        bool
	epoch       int
	createdAt   time.Time
}

// Service owns the scripted advisory conversations. Bot replies and offer
// generation are delayed to model backend latency; the delays are
// constructor options so tests can run the script instantly.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*sessionState
	watchers map[string]map[int]chan Event
	watchSeq int

	engine  *recommend.Engine
	advisor Advisor

	replyDelay  time.Duration
	replyJitter time.Duration
	genDelay    time.Duration

	newID func() string
	now   func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithDelays sets the simulated thinking and generation latency. A zero
// jitter disables the random component.
func WithDelays(reply, jitter, generation time.Duration) Option {
	return func(s *Service) {
		s.replyDelay = reply
		s.replyJitter = jitter
		s.genDelay = generation
	}
}

// WithAdvisor installs an optional reply advisor.
func WithAdvisor(a Advisor) Option {
	return func(s *Service) { s.advisor = a }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService bootstraps the in-memory conversation service.
func NewService(engine *recommend.Engine, opts ...Option) *Service {
	s := &Service{
		sessions:    make(map[string]*sessionState),
		watchers:    make(map[string]map[int]chan Event),
		engine:      engine,
		replyDelay:  time.Second,
		replyJitter: time.Second,
		genDelay:    2 * time.Second,
		newID:       uuid.NewString,
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSession provisions an empty session at the first step. The opening
// prompt travels on the snapshot; no turn exists until the user speaks.
func (s *Service) CreateSession(_ context.Context) (conversation.Session, error) {
	st := &sessionState{
		id:        s.newID(),
		step:      StepAge,
		createdAt: s.now(),
	}

	s.mu.Lock()
	s.sessions[st.id] = st
	s.mu.Unlock()

	return snapshot(st), nil
}

// GetSession returns a snapshot of the session.
func (s *Service) GetSession(_ context.Context, sessionID string) (conversation.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.sessions[sessionID]
	if !ok {
		return conversation.Session{}, ErrSessionNotFound
	}
	return snapshot(st), nil
}

// Submit records one user message and schedules the scripted bot reply.
// Whitespace-only input is ignored without touching the session. The
// returned channel closes when the deferred work has either landed or been
// discarded by a restart; it is nil when nothing was scheduled.
func (s *Service) Submit(_ context.Context, sessionID, text string) (<-chan struct{}, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	s.mu.Lock()
	st, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	if st.busy {
		s.mu.Unlock()
		return nil, ErrReplyPending
	}

	userTurn := conversation.Turn{
		ID:        s.newID(),
		Sender:    conversation.SenderUser,
		Text:      text,
		CreatedAt: s.now(),
	}
	st.turns = append(st.turns, userTurn)

	step := st.step
	tr := script[step]
	if tr.capture != nil {
		tr.capture(&st.requirement, text)
	}
	st.busy = true
	epoch := st.epoch
	s.mu.Unlock()

	s.notify(sessionID, Event{Type: EventTurn, Step: step, Turn: &userTurn})

	done := make(chan struct{})
	go s.completeReply(sessionID, epoch, step, text, done)
	return done, nil
}

// Restart clears the session back to the first step. Safe to call at any
// time, including while a reply or generation is pending: bumping the epoch
// orphans the in-flight completion.
func (s *Service) Restart(_ context.Context, sessionID string) error {
	s.mu.Lock()
	st, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return ErrSessionNotFound
	}
	st.epoch++
	st.turns = nil
	st.requirement = conversation.Requirement{}
	st.offers = nil
	st.step = StepAge
	st.busy = false
	s.mu.Unlock()

	s.notify(sessionID, Event{Type: EventReset, Step: StepAge})
	return nil
}

// Subscribe registers a watcher for session events. The returned cancel
// func must be called to release the channel. Slow watchers drop events
// rather than block the conversation.
func (s *Service) Subscribe(sessionID string) (<-chan Event, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return nil, nil, ErrSessionNotFound
	}

	s.watchSeq++
	id := s.watchSeq
	ch := make(chan Event, 16)
	if s.watchers[sessionID] == nil {
		s.watchers[sessionID] = make(map[int]chan Event)
	}
	s.watchers[sessionID][id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if set, ok := s.watchers[sessionID]; ok {
			delete(set, id)
			if len(set) == 0 {
				delete(s.watchers, sessionID)
			}
		}
	}
	return ch, cancel, nil
}

// completeReply is the single deferred task scheduled by Submit: the bot
// reply after the thinking delay, then offer generation when the script
// asks for it. Every session write re-checks the epoch so a restart in the
// interim discards the completion.
func (s *Service) completeReply(sessionID string, epoch, step int, userText string, done chan struct{}) {
	defer close(done)

	time.Sleep(s.thinkingDelay())

	tr := script[step]
	reply := tr.reply
	if step == StepDone && s.advisor != nil {
		if phrased, ok := s.advisorReply(sessionID, epoch, userText); ok {
			reply = phrased
		}
	}

	s.mu.Lock()
	st, ok := s.sessions[sessionID]
	if !ok || st.epoch != epoch {
		s.mu.Unlock()
		return
	}

	botTurn := conversation.Turn{
		ID:        s.newID(),
		Sender:    conversation.SenderBot,
		Text:      reply,
		CreatedAt: s.now(),
	}
	st.turns = append(st.turns, botTurn)

	var req conversation.Requirement
	if tr.generate {
		// Stay busy through generation; the step advances when offers land.
		req = st.requirement.Clone()
	} else {
		st.step = tr.next
		st.busy = false
	}
	curStep := st.step
	s.mu.Unlock()

	s.notify(sessionID, Event{Type: EventTurn, Step: curStep, Turn: &botTurn})
	if !tr.generate {
		return
	}

	time.Sleep(s.genDelay)

	offers := s.engine.GenerateOffers(req)

	s.mu.Lock()
	st, ok = s.sessions[sessionID]
	if !ok || st.epoch != epoch {
		s.mu.Unlock()
		return
	}
	st.offers = offers
	st.step = StepDone
	st.busy = false
	s.mu.Unlock()

	s.notify(sessionID, Event{Type: EventOffers, Step: StepDone, Offers: offers})
}

// advisorReply asks the advisor to phrase the terminal-step reply over the
// current transcript. Failures fall back to the scripted text.
func (s *Service) advisorReply(sessionID string, epoch int, userText string) (string, bool) {
	s.mu.RLock()
	st, ok := s.sessions[sessionID]
	if !ok || st.epoch != epoch {
		s.mu.RUnlock()
		return "", false
	}
	turns := append([]conversation.Turn(nil), st.turns...)
	s.mu.RUnlock()

	phrased, err := s.advisor.Reply(context.Background(), turns, userText)
	if err != nil {
		log.Printf("[conversation] advisor reply failed, using scripted text: %v", err)
		return "", false
	}
	phrased = strings.TrimSpace(phrased)
	return phrased, phrased != ""
}

func (s *Service) thinkingDelay() time.Duration {
	d := s.replyDelay
	if s.replyJitter > 0 {
		d += rand.N(s.replyJitter)
	}
	return d
}

func (s *Service) notify(sessionID string, ev Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.watchers[sessionID] {
		select {
		case ch <- ev:
		default:
			log.Printf("[conversation] dropping event for slow watcher, session=%s", sessionID)
		}
	}
}

// snapshot copies the state into the caller-visible session shape. Slices
// are always non-nil so JSON renders [] rather than null.
func snapshot(st *sessionState) conversation.Session {
	turns := make([]conversation.Turn, len(st.turns))
	copy(turns, st.turns)
	offers := make([]policy.Offer, len(st.offers))
	copy(offers, st.offers)

	return conversation.Session{
		ID:          st.id,
		Turns:       turns,
		Requirement: st.requirement.Clone(),
		Step:        st.step,
		Offers:      offers,
		Busy:        st.busy,
		Prompt:      Prompt(st.step),
		CreatedAt:   st.createdAt,
	}
}
