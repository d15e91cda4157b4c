package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slotpoll/core/errors"
	evententity "slotpoll/modules/event/entity"
	"slotpoll/modules/participant/dto"
	"slotpoll/modules/participant/entity"
	rtentity "slotpoll/modules/realtime/entity"
	voteentity "slotpoll/modules/vote/entity"
)

type fakeEventDir struct {
	event *evententity.Event
}

func (d *fakeEventDir) GetEntity(_ context.Context, eventID string) (*evententity.Event, *errors.AppError) {
	if d.event == nil || d.event.EventID != eventID {
		return nil, errors.NewAppError(errors.ErrNotFound, "Event not found", nil)
	}
	cp := *d.event
	return &cp, nil
}

type fakeParticipantRepo struct {
	// keyed by event_id + normalized_name, mirroring the unique index
	byName map[string]*entity.Participant
	byID   map[string]*entity.Participant
	nextID int
}

func newFakeParticipantRepo() *fakeParticipantRepo {
	return &fakeParticipantRepo{
		byName: make(map[string]*entity.Participant),
		byID:   make(map[string]*entity.Participant),
	}
}

func (r *fakeParticipantRepo) Upsert(_ context.Context, p *entity.Participant) (*entity.Participant, error) {
	key := p.EventID + "/" + p.NormalizedName
	if existing, ok := r.byName[key]; ok {
		existing.IPAddress = p.IPAddress
		cp := *existing
		return &cp, nil
	}
	r.nextID++
	saved := *p
	saved.ParticipantID = fmt.Sprintf("p%d", r.nextID)
	r.byName[key] = &saved
	r.byID[saved.ParticipantID] = &saved
	cp := saved
	return &cp, nil
}

func (r *fakeParticipantRepo) GetByID(_ context.Context, participantID string) (*entity.Participant, error) {
	p, ok := r.byID[participantID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakeParticipantRepo) ListActive(_ context.Context, eventID string) ([]entity.Participant, error) {
	var out []entity.Participant
	for i := 1; i <= r.nextID; i++ {
		if p, ok := r.byID[fmt.Sprintf("p%d", i)]; ok && p.EventID == eventID && !p.IsBlocked {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeParticipantRepo) SetBlocked(_ context.Context, participantID string) error {
	if p, ok := r.byID[participantID]; ok {
		p.IsBlocked = true
	}
	return nil
}

type fakeVoteStore struct {
	ledgers map[string][]string
}

func (s *fakeVoteStore) DeleteByParticipant(_ context.Context, participantID string) error {
	delete(s.ledgers, participantID)
	return nil
}

func (s *fakeVoteStore) ListByEvent(_ context.Context, eventID string) ([]voteentity.Vote, error) {
	var votes []voteentity.Vote
	for id, slots := range s.ledgers {
		for _, slot := range slots {
			votes = append(votes, voteentity.Vote{EventID: eventID, ParticipantID: id, TimeSlot: slot})
		}
	}
	return votes, nil
}

type fakeBroadcaster struct {
	messages []rtentity.Message
}

func (b *fakeBroadcaster) Broadcast(_ context.Context, msg rtentity.Message) {
	b.messages = append(b.messages, msg)
}

func (b *fakeBroadcaster) byType(t rtentity.MessageType) []rtentity.Message {
	var out []rtentity.Message
	for _, m := range b.messages {
		if m.Type == t {
			out = append(out, m)
		}
	}
	return out
}

type fixture struct {
	svc   *ParticipantService
	repo  *fakeParticipantRepo
	votes *fakeVoteStore
	hub   *fakeBroadcaster
}

func newFixture() *fixture {
	event := &evententity.Event{
		EventID:       "abc1234",
		Title:         "Team sync",
		Type:          evententity.EventTypeDates,
		SelectedDates: pq.StringArray{"2025-03-15"},
		StartTime:     "09:00",
		EndTime:       "12:00",
		Timezone:      "Europe/Istanbul",
		OrganizerName: "Alice",
	}
	repo := newFakeParticipantRepo()
	votes := &fakeVoteStore{ledgers: make(map[string][]string)}
	hub := &fakeBroadcaster{}
	svc := NewParticipantService(repo, &fakeEventDir{event: event}, votes, hub)
	return &fixture{svc: svc, repo: repo, votes: votes, hub: hub}
}

func TestJoin(t *testing.T) {
	f := newFixture()

	resp, appErr := f.svc.Join(context.Background(), "abc1234", &dto.JoinRequest{Name: "Bob"}, "10.0.0.1")
	require.Nil(t, appErr)
	assert.NotEmpty(t, resp.ParticipantID)
	assert.Equal(t, "Bob", resp.Name)

	joined := f.hub.byType(rtentity.ParticipantJoined)
	require.Len(t, joined, 1)
	var payload rtentity.ParticipantJoinedPayload
	require.NoError(t, json.Unmarshal(joined[0].Payload, &payload))
	require.Len(t, payload.Participants, 1)
	assert.Equal(t, resp.ParticipantID, payload.Participants[0].ParticipantID)
}

func TestJoinSameNameResumesIdentity(t *testing.T) {
	f := newFixture()

	first, appErr := f.svc.Join(context.Background(), "abc1234", &dto.JoinRequest{Name: "Bob"}, "10.0.0.1")
	require.Nil(t, appErr)

	// Casing and padding do not create a second identity.
	second, appErr := f.svc.Join(context.Background(), "abc1234", &dto.JoinRequest{Name: "  BOB "}, "10.0.0.2")
	require.Nil(t, appErr)
	assert.Equal(t, first.ParticipantID, second.ParticipantID)

	roster, err := f.repo.ListActive(context.Background(), "abc1234")
	require.NoError(t, err)
	assert.Len(t, roster, 1)
}

func TestJoinValidation(t *testing.T) {
	f := newFixture()

	_, appErr := f.svc.Join(context.Background(), "abc1234", &dto.JoinRequest{Name: "   "}, "")
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrInvalidInput, appErr.Code)

	_, appErr = f.svc.Join(context.Background(), "missing", &dto.JoinRequest{Name: "Bob"}, "")
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrNotFound, appErr.Code)
}

func TestJoinBlockedName(t *testing.T) {
	f := newFixture()

	resp, appErr := f.svc.Join(context.Background(), "abc1234", &dto.JoinRequest{Name: "Bob"}, "")
	require.Nil(t, appErr)
	require.Nil(t, f.svc.Block(context.Background(), "abc1234", &dto.BlockRequest{
		ParticipantID: resp.ParticipantID,
		OrganizerName: "Alice",
	}))

	_, appErr = f.svc.Join(context.Background(), "abc1234", &dto.JoinRequest{Name: "bob"}, "")
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrForbidden, appErr.Code)
}

func TestList(t *testing.T) {
	f := newFixture()

	bob, _ := f.svc.Join(context.Background(), "abc1234", &dto.JoinRequest{Name: "Bob"}, "")
	_, appErr := f.svc.Join(context.Background(), "abc1234", &dto.JoinRequest{Name: "Carol"}, "")
	require.Nil(t, appErr)

	require.Nil(t, f.svc.Block(context.Background(), "abc1234", &dto.BlockRequest{
		ParticipantID: bob.ParticipantID,
		OrganizerName: "Alice",
	}))

	resp, appErr := f.svc.List(context.Background(), "abc1234")
	require.Nil(t, appErr)
	require.Len(t, resp.Participants, 1)
	assert.Equal(t, "Carol", resp.Participants[0].Name)
}

func TestBlock(t *testing.T) {
	f := newFixture()

	bob, _ := f.svc.Join(context.Background(), "abc1234", &dto.JoinRequest{Name: "Bob"}, "")
	carol, _ := f.svc.Join(context.Background(), "abc1234", &dto.JoinRequest{Name: "Carol"}, "")
	f.votes.ledgers[bob.ParticipantID] = []string{"2025-03-15 09:00"}
	f.votes.ledgers[carol.ParticipantID] = []string{"2025-03-15 09:00"}

	appErr := f.svc.Block(context.Background(), "abc1234", &dto.BlockRequest{
		ParticipantID: bob.ParticipantID,
		OrganizerName: "alice",
	})
	require.Nil(t, appErr, "organizer match is on the normalized name")

	assert.NotContains(t, f.votes.ledgers, bob.ParticipantID, "ledger cleared")
	assert.Contains(t, f.votes.ledgers, carol.ParticipantID)

	blockedMsgs := f.hub.byType(rtentity.UserBlocked)
	require.Len(t, blockedMsgs, 1)
	var blocked rtentity.UserBlockedPayload
	require.NoError(t, json.Unmarshal(blockedMsgs[0].Payload, &blocked))
	assert.Equal(t, bob.ParticipantID, blocked.ParticipantID)

	// The follow-up snapshot only carries the surviving votes.
	votesMsgs := f.hub.byType(rtentity.VotesUpdated)
	require.NotEmpty(t, votesMsgs)
	var votes rtentity.VotesUpdatedPayload
	require.NoError(t, json.Unmarshal(votesMsgs[len(votesMsgs)-1].Payload, &votes))
	require.Len(t, votes.Votes, 1)
	assert.Equal(t, carol.ParticipantID, votes.Votes[0].ParticipantID)
}

func TestBlockIsIdempotent(t *testing.T) {
	f := newFixture()

	bob, _ := f.svc.Join(context.Background(), "abc1234", &dto.JoinRequest{Name: "Bob"}, "")
	req := &dto.BlockRequest{ParticipantID: bob.ParticipantID, OrganizerName: "Alice"}

	require.Nil(t, f.svc.Block(context.Background(), "abc1234", req))
	require.Nil(t, f.svc.Block(context.Background(), "abc1234", req))
}

func TestBlockRejections(t *testing.T) {
	f := newFixture()
	bob, _ := f.svc.Join(context.Background(), "abc1234", &dto.JoinRequest{Name: "Bob"}, "")

	appErr := f.svc.Block(context.Background(), "abc1234", &dto.BlockRequest{
		ParticipantID: bob.ParticipantID,
		OrganizerName: "Mallory",
	})
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrNotOrganizer, appErr.Code)

	appErr = f.svc.Block(context.Background(), "abc1234", &dto.BlockRequest{
		ParticipantID: "ghost",
		OrganizerName: "Alice",
	})
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrNotFound, appErr.Code)
}
