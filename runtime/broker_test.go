package runtime

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"github.com/UDAVALAPATISURESH/app-chat/domain"
	"github.com/UDAVALAPATISURESH/app-chat/errors"
	"github.com/UDAVALAPATISURESH/app-chat/repositories"
)

type captureSink struct {
	mu       sync.Mutex
	payloads []domain.MessagePayload
}

func (s *captureSink) Consume(ctx context.Context, payload domain.MessagePayload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payloads = append(s.payloads, payload)
	return nil
}

func (s *captureSink) received() []domain.MessagePayload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.MessagePayload(nil), s.payloads...)
}

type brokerFixture struct {
	broker   *Broker
	registry *Registry
	messages repositories.MessageRepository
	users    repositories.IUserRepository
	groups   repositories.IGroupRepository
}

func newBrokerFixture(t *testing.T) brokerFixture {
	t.Helper()
	openDB := func() *badger.DB {
		db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })
		return db
	}
	hotDB, coldDB := openDB(), openDB()

	log := slog.Default()
	messages := repositories.NewMessageRepository(hotDB, log)
	archive := repositories.NewArchiveRepository(coldDB, log)
	users := repositories.NewUserRepository(hotDB)
	groups := repositories.NewGroupRepository(hotDB)
	registry := NewRegistry()

	return brokerFixture{
		broker:   NewBroker(log, messages, archive, users, groups, registry, time.Second),
		registry: registry,
		messages: messages,
		users:    users,
		groups:   groups,
	}
}

var (
	alice = domain.User{ID: "u-alice", Name: "Alice", Email: "a@x.com", Avatar: "alice.png"}
	bob   = domain.User{ID: "u-bob", Name: "Bob", Email: "b@x.com", Avatar: "bob.png"}
)

func Test_SendPersonal_Broadcasts_To_Subscribers_Only(t *testing.T) {
	req := require.New(t)
	f := newBrokerFixture(t)
	req.NoError(f.users.PutUser(alice))
	req.NoError(f.users.PutUser(bob))

	roomID := domain.PersonalRoomID(alice.Email, bob.Email)
	aliceSink := &captureSink{}
	bobSink := &captureSink{}
	strangerSink := &captureSink{}

	// Given both participants subscribed, and a stranger in another room
	f.registry.Subscribe("conn-alice", roomID, aliceSink)
	f.registry.Subscribe("conn-bob", roomID, bobSink)
	f.registry.Subscribe("conn-stranger", "room_c@x.com_d@x.com", strangerSink)

	// When Alice sends
	payload, err := f.broker.SendPersonal(context.Background(), alice, SendCommand{
		ReceiverID: bob.ID,
		Body:       "hi",
		RoomID:     roomID,
	})
	req.NoError(err)

	// Then the payload carries the server-assigned id, timestamp and
	// Alice's denormalized snapshot
	req.NotEmpty(payload.ID)
	req.False(payload.Timestamp.IsZero())
	req.Equal(alice.Profile(), payload.Sender)
	req.Equal(domain.MessageTypeText, payload.Type)

	// And both subscribers received it, sender included
	req.Equal([]domain.MessagePayload{payload}, aliceSink.received())
	req.Equal([]domain.MessagePayload{payload}, bobSink.received())

	// And the stranger received nothing
	req.Empty(strangerSink.received())
}

func Test_Sends_Delivered_In_Persistence_Order(t *testing.T) {
	req := require.New(t)
	f := newBrokerFixture(t)
	req.NoError(f.users.PutUser(alice))
	req.NoError(f.users.PutUser(bob))

	roomID := domain.PersonalRoomID(alice.Email, bob.Email)
	sink := &captureSink{}
	f.registry.Subscribe("conn-bob", roomID, sink)

	// When two different senders post to the same room in sequence
	_, err := f.broker.SendPersonal(context.Background(), alice, SendCommand{ReceiverID: bob.ID, Body: "first", RoomID: roomID})
	req.NoError(err)
	_, err = f.broker.SendPersonal(context.Background(), bob, SendCommand{ReceiverID: alice.ID, Body: "second", RoomID: roomID})
	req.NoError(err)

	// Then the subscriber observed them in persistence order
	received := sink.received()
	req.Len(received, 2)
	req.Equal("first", received[0].Body)
	req.Equal("second", received[1].Body)

	// And history returns the exact same order and shape
	history, err := f.broker.ListMessages(roomID, 50, 0)
	req.NoError(err)
	req.Equal(received, history)
}

func Test_Send_Rejects_Empty_Message(t *testing.T) {
	req := require.New(t)
	f := newBrokerFixture(t)
	req.NoError(f.users.PutUser(alice))
	roomID := domain.PersonalRoomID(alice.Email, bob.Email)

	_, err := f.broker.SendPersonal(context.Background(), alice, SendCommand{ReceiverID: bob.ID, RoomID: roomID})
	req.ErrorIs(err, errors.ErrEmptyMessage)

	// Media-only messages are fine
	_, err = f.broker.SendPersonal(context.Background(), alice, SendCommand{
		ReceiverID: bob.ID,
		Type:       domain.MessageTypeImage,
		MediaURL:   "https://cdn/x.png",
		RoomID:     roomID,
	})
	req.NoError(err)
}

func Test_Send_Requires_Exactly_One_Recipient(t *testing.T) {
	req := require.New(t)
	f := newBrokerFixture(t)
	req.NoError(f.users.PutUser(alice))
	req.NoError(f.users.PutUser(bob))
	req.NoError(f.groups.PutGroup(domain.Group{ID: "g1", Name: "team", AdminID: alice.ID, Members: []string{alice.ID}}))
	ctx := context.Background()

	// Neither recipient field set
	_, err := f.broker.SendPersonal(ctx, alice, SendCommand{Body: "hi", RoomID: "room_a@x.com_b@x.com"})
	req.ErrorIs(err, errors.ErrAmbiguousRecipient)

	_, err = f.broker.SendGroup(ctx, alice, SendCommand{Body: "hi", RoomID: "group_g1"})
	req.ErrorIs(err, errors.ErrAmbiguousRecipient)

	// Both recipient fields set: rejected, never narrowed to one of them
	_, err = f.broker.SendPersonal(ctx, alice, SendCommand{
		ReceiverID: bob.ID, GroupID: "g1", Body: "both set", RoomID: "room_a@x.com_b@x.com",
	})
	req.ErrorIs(err, errors.ErrAmbiguousRecipient)

	_, err = f.broker.SendGroup(ctx, alice, SendCommand{
		ReceiverID: bob.ID, GroupID: "g1", Body: "both set", RoomID: "group_g1",
	})
	req.ErrorIs(err, errors.ErrAmbiguousRecipient)

	// And nothing was persisted on either path
	for _, roomID := range []domain.RoomID{"room_a@x.com_b@x.com", "group_g1"} {
		history, err := f.broker.ListMessages(roomID, 50, 0)
		req.NoError(err)
		req.Empty(history)
	}
}

func Test_SendGroup_Revalidates_Membership(t *testing.T) {
	req := require.New(t)
	f := newBrokerFixture(t)
	req.NoError(f.users.PutUser(alice))
	req.NoError(f.users.PutUser(bob))
	req.NoError(f.groups.PutGroup(domain.Group{ID: "g1", Name: "team", AdminID: alice.ID, Members: []string{alice.ID}}))

	roomID := domain.GroupRoomID("g1")
	sink := &captureSink{}
	// Bob is subscribed to the room but not a member: subscriptions
	// carry no authorization weight
	f.registry.Subscribe("conn-bob", roomID, sink)

	_, err := f.broker.SendGroup(context.Background(), bob, SendCommand{GroupID: "g1", Body: "sneaky", RoomID: roomID})
	req.ErrorIs(err, errors.ErrNotGroupMember)

	// And nothing was persisted or broadcast
	history, err := f.broker.ListMessages(roomID, 50, 0)
	req.NoError(err)
	req.Empty(history)
	req.Empty(sink.received())

	// A member's send goes through
	_, err = f.broker.SendGroup(context.Background(), alice, SendCommand{GroupID: "g1", Body: "hello team", RoomID: roomID})
	req.NoError(err)
	req.Len(sink.received(), 1)
}

func Test_SendGroup_Unknown_Group(t *testing.T) {
	req := require.New(t)
	f := newBrokerFixture(t)

	_, err := f.broker.SendGroup(context.Background(), alice, SendCommand{GroupID: "missing", Body: "hi", RoomID: "group_missing"})
	req.ErrorIs(err, errors.ErrGroupNotFound)
}
