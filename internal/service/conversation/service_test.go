package conversation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	conversationModel "github.com/insureassist/backend/internal/model/conversation"
	conversation "github.com/insureassist/backend/internal/service/conversation"
	"github.com/insureassist/backend/internal/service/recommend"
)

func newInstantService(opts ...conversation.Option) *conversation.Service {
	opts = append([]conversation.Option{conversation.WithDelays(0, 0, 0)}, opts...)
	return conversation.NewService(recommend.NewEngine(), opts...)
}

// submitAndWait drives one exchange to completion.
func submitAndWait(t *testing.T, svc *conversation.Service, sessionID, text string) {
	t.Helper()
	done, err := svc.Submit(context.Background(), sessionID, text)
	if err != nil {
		t.Fatalf("Submit(%q) err: %v", text, err)
	}
	if done == nil {
		t.Fatalf("Submit(%q): expected scheduled reply", text)
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Submit(%q): reply did not complete", text)
	}
}

func TestScriptedFlow(t *testing.T) {
	svc := newInstantService()
	ctx := context.Background()

	session, err := svc.CreateSession(ctx)
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}
	if len(session.Turns) != 0 {
		t.Fatalf("fresh session must have no turns, got %d", len(session.Turns))
	}
	if session.Prompt == "" {
		t.Fatal("fresh session must carry the opening prompt")
	}

	steps := []struct {
		text      string
		wantTurns int
		wantStep  int
	}{
		{"34", 2, conversation.StepGender},
		{"female", 4, conversation.StepOccupation},
		{"engineer", 6, conversation.StepHealth},
		{"none", 8, conversation.StepDone},
	}

	for _, step := range steps {
		submitAndWait(t, svc, session.ID, step.text)

		got, err := svc.GetSession(ctx, session.ID)
		if err != nil {
			t.Fatalf("GetSession err: %v", err)
		}
		if len(got.Turns) != step.wantTurns {
			t.Fatalf("after %q: expected %d turns, got %d", step.text, step.wantTurns, len(got.Turns))
		}
		if got.Step != step.wantStep {
			t.Fatalf("after %q: expected step %d, got %d", step.text, step.wantStep, got.Step)
		}
		if got.Busy {
			t.Fatalf("after %q: session still busy", step.text)
		}

		last := got.Turns[len(got.Turns)-1]
		if last.Sender != conversationModel.SenderBot {
			t.Fatalf("after %q: expected last turn from bot, got %s", step.text, last.Sender)
		}
		user := got.Turns[len(got.Turns)-2]
		if user.Sender != conversationModel.SenderUser || user.Text != step.text {
			t.Fatalf("after %q: user turn mismatch: %+v", step.text, user)
		}
	}

	final, _ := svc.GetSession(ctx, session.ID)
	if len(final.Offers) != 3 {
		t.Fatalf("expected 3 offers at terminal step, got %d", len(final.Offers))
	}
	if !final.Offers[1].Recommended {
		t.Fatal("expected the middle offer to be recommended")
	}
}

func TestClockStampsTurns(t *testing.T) {
	frozen := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	svc := newInstantService(conversation.WithClock(func() time.Time { return frozen }))
	ctx := context.Background()

	session, err := svc.CreateSession(ctx)
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}
	if !session.CreatedAt.Equal(frozen) {
		t.Fatalf("expected session created at %v, got %v", frozen, session.CreatedAt)
	}

	submitAndWait(t, svc, session.ID, "34")

	got, _ := svc.GetSession(ctx, session.ID)
	for i, turn := range got.Turns {
		if !turn.CreatedAt.Equal(frozen) {
			t.Fatalf("turn %d: expected timestamp %v, got %v", i, frozen, turn.CreatedAt)
		}
	}
}

func TestAnswersFeedRequirement(t *testing.T) {
	svc := newInstantService()
	ctx := context.Background()

	session, _ := svc.CreateSession(ctx)
	submitAndWait(t, svc, session.ID, "I am 25 years old")
	submitAndWait(t, svc, session.ID, "female")
	submitAndWait(t, svc, session.ID, "engineer")
	submitAndWait(t, svc, session.ID, "diabetes and hypertension")

	got, _ := svc.GetSession(ctx, session.ID)
	req := got.Requirement
	if req.Age == nil || *req.Age != 25 {
		t.Fatalf("expected age 25, got %v", req.Age)
	}
	if req.Gender != "female" || req.Occupation != "engineer" {
		t.Fatalf("unexpected gender/occupation: %q/%q", req.Gender, req.Occupation)
	}
	if len(req.HealthConditions) != 2 {
		t.Fatalf("expected 2 health conditions, got %v", req.HealthConditions)
	}

	// age<30 discount: Basic yearly = round(1500 * 0.85 * 1.2) = 1530
	if got.Offers[0].YearlyPremium != 1530 {
		t.Fatalf("expected risk-adjusted Basic yearly 1530, got %d", got.Offers[0].YearlyPremium)
	}
}

func TestTerminalStepAbsorbsInput(t *testing.T) {
	svc := newInstantService()
	ctx := context.Background()

	session, _ := svc.CreateSession(ctx)
	for _, text := range []string{"34", "male", "teacher", "none"} {
		submitAndWait(t, svc, session.ID, text)
	}

	submitAndWait(t, svc, session.ID, "do I get dental cover?")

	got, _ := svc.GetSession(ctx, session.ID)
	if got.Step != conversation.StepDone {
		t.Fatalf("expected session to stay at terminal step, got %d", got.Step)
	}
	if len(got.Turns) != 10 {
		t.Fatalf("expected 10 turns after extra exchange, got %d", len(got.Turns))
	}
	if len(got.Offers) != 3 {
		t.Fatal("offers must not be regenerated at the terminal step")
	}
}

func TestEmptyInputIgnored(t *testing.T) {
	svc := newInstantService()
	ctx := context.Background()

	session, _ := svc.CreateSession(ctx)
	done, err := svc.Submit(ctx, session.ID, "   \t  ")
	if err != nil {
		t.Fatalf("whitespace submit must not error, got %v", err)
	}
	if done != nil {
		t.Fatal("whitespace submit must not schedule a reply")
	}

	got, _ := svc.GetSession(ctx, session.ID)
	if len(got.Turns) != 0 || got.Step != conversation.StepAge {
		t.Fatalf("whitespace submit must leave session untouched: %d turns, step %d", len(got.Turns), got.Step)
	}
}

func TestSubmitUnknownSession(t *testing.T) {
	svc := newInstantService()
	if _, err := svc.Submit(context.Background(), "missing", "hello"); !errors.Is(err, conversation.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestBusyGatesSecondSubmit(t *testing.T) {
	svc := conversation.NewService(recommend.NewEngine(), conversation.WithDelays(200*time.Millisecond, 0, 0))
	ctx := context.Background()

	session, _ := svc.CreateSession(ctx)
	done, err := svc.Submit(ctx, session.ID, "34")
	if err != nil {
		t.Fatalf("Submit err: %v", err)
	}

	if _, err := svc.Submit(ctx, session.ID, "35"); !errors.Is(err, conversation.ErrReplyPending) {
		t.Fatalf("expected ErrReplyPending while busy, got %v", err)
	}

	mid, _ := svc.GetSession(ctx, session.ID)
	if !mid.Busy {
		t.Fatal("session must report busy while a reply is pending")
	}

	<-done
	got, _ := svc.GetSession(ctx, session.ID)
	if len(got.Turns) != 2 {
		t.Fatalf("rejected submit must not leave turns behind, got %d", len(got.Turns))
	}
}

func TestRestartClearsSession(t *testing.T) {
	svc := newInstantService()
	ctx := context.Background()

	session, _ := svc.CreateSession(ctx)
	for _, text := range []string{"52", "male", "pilot", "hypertension"} {
		submitAndWait(t, svc, session.ID, text)
	}

	if err := svc.Restart(ctx, session.ID); err != nil {
		t.Fatalf("Restart err: %v", err)
	}

	got, _ := svc.GetSession(ctx, session.ID)
	if len(got.Turns) != 0 || len(got.Offers) != 0 || got.Step != conversation.StepAge || got.Busy {
		t.Fatalf("restart must fully clear the session: %+v", got)
	}
	if got.Requirement.Age != nil || got.Requirement.Gender != "" || len(got.Requirement.HealthConditions) != 0 {
		t.Fatalf("restart must reset the requirement: %+v", got.Requirement)
	}

	// Restart on an already-clean session is a no-op.
	if err := svc.Restart(ctx, session.ID); err != nil {
		t.Fatalf("idempotent Restart err: %v", err)
	}
}

func TestRestartDiscardsInFlightGeneration(t *testing.T) {
	svc := conversation.NewService(recommend.NewEngine(), conversation.WithDelays(0, 0, 150*time.Millisecond))
	ctx := context.Background()

	session, _ := svc.CreateSession(ctx)
	for _, text := range []string{"34", "male", "teacher"} {
		submitAndWait(t, svc, session.ID, text)
	}

	done, err := svc.Submit(ctx, session.ID, "none")
	if err != nil {
		t.Fatalf("Submit err: %v", err)
	}

	// Let the acknowledgment land, then reset while generation is pending.
	time.Sleep(50 * time.Millisecond)
	if err := svc.Restart(ctx, session.ID); err != nil {
		t.Fatalf("Restart err: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("deferred completion never finished")
	}

	got, _ := svc.GetSession(ctx, session.ID)
	if len(got.Offers) != 0 {
		t.Fatal("stale generation must not repopulate a reset session")
	}
	if len(got.Turns) != 0 || got.Step != conversation.StepAge || got.Busy {
		t.Fatalf("session must stay reset after stale completion: %+v", got)
	}
}

func TestSubscribeReceivesEvents(t *testing.T) {
	svc := newInstantService()
	ctx := context.Background()

	session, _ := svc.CreateSession(ctx)
	events, cancel, err := svc.Subscribe(session.ID)
	if err != nil {
		t.Fatalf("Subscribe err: %v", err)
	}
	defer cancel()

	submitAndWait(t, svc, session.ID, "34")

	first := waitEvent(t, events)
	if first.Type != conversation.EventTurn || first.Turn == nil || first.Turn.Sender != conversationModel.SenderUser {
		t.Fatalf("expected user turn event first, got %+v", first)
	}
	second := waitEvent(t, events)
	if second.Type != conversation.EventTurn || second.Turn == nil || second.Turn.Sender != conversationModel.SenderBot {
		t.Fatalf("expected bot turn event second, got %+v", second)
	}
}

func waitEvent(t *testing.T, events <-chan conversation.Event) conversation.Event {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return conversation.Event{}
	}
}

type stubAdvisor struct {
	reply string
	err   error
}

func (s *stubAdvisor) Reply(_ context.Context, _ []conversationModel.Turn, _ string) (string, error) {
	return s.reply, s.err
}

func TestAdvisorPhrasesTerminalReply(t *testing.T) {
	svc := newInstantService(conversation.WithAdvisor(&stubAdvisor{reply: "Happy to go over the offers with you."}))
	ctx := context.Background()

	session, _ := svc.CreateSession(ctx)
	for _, text := range []string{"34", "male", "teacher", "none"} {
		submitAndWait(t, svc, session.ID, text)
	}

	submitAndWait(t, svc, session.ID, "which one is best?")

	got, _ := svc.GetSession(ctx, session.ID)
	last := got.Turns[len(got.Turns)-1]
	if last.Text != "Happy to go over the offers with you." {
		t.Fatalf("expected advisor-phrased reply, got %q", last.Text)
	}
}

func TestAdvisorFailureFallsBackToScript(t *testing.T) {
	svc := newInstantService(conversation.WithAdvisor(&stubAdvisor{err: errors.New("model unavailable")}))
	ctx := context.Background()

	session, _ := svc.CreateSession(ctx)
	for _, text := range []string{"34", "male", "teacher", "none"} {
		submitAndWait(t, svc, session.ID, text)
	}

	before, _ := svc.GetSession(ctx, session.ID)
	scripted := before.Turns[len(before.Turns)-1]

	submitAndWait(t, svc, session.ID, "anything else?")

	got, _ := svc.GetSession(ctx, session.ID)
	last := got.Turns[len(got.Turns)-1]
	if last.Sender != conversationModel.SenderBot {
		t.Fatalf("expected bot reply, got %+v", last)
	}
	const wantFallback = "Thank you for the additional information. Is there anything else you'd like to tell me about your insurance needs?"
	if last.Text != wantFallback {
		t.Fatalf("expected scripted fallback %q, got %q", wantFallback, last.Text)
	}
	if scripted.Text == last.Text {
		t.Fatal("step-3 acknowledgment and terminal reply must differ")
	}
}
