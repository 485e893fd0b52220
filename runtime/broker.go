package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/UDAVALAPATISURESH/app-chat/contract"
	"github.com/UDAVALAPATISURESH/app-chat/domain"
	"github.com/UDAVALAPATISURESH/app-chat/errors"
	"github.com/UDAVALAPATISURESH/app-chat/repositories"
)

// SendCommand carries one send request. Exactly one of ReceiverID /
// GroupID must be set; CreatedAt is never taken from the client.
type SendCommand struct {
	ReceiverID string
	GroupID    string
	Body       string
	Type       domain.MessageType
	MediaURL   string
	RoomID     domain.RoomID
}

const archivedWindow = 100

// Broker runs the shared send algorithm for personal and group messages:
// validate, persist with a server-assigned timestamp, join the sender's
// public profile, broadcast to every sink subscribed to the room.
//
// A per-room mutex serializes persist+broadcast, which is what turns
// "persisted in order X then Y" into "delivered in order X then Y" for
// every subscriber. Sends to different rooms stay concurrent.
type Broker struct {
	log         *slog.Logger
	messages    repositories.IMessageRepository
	archive     repositories.IArchiveRepository
	users       repositories.IUserRepository
	groups      repositories.IGroupRepository
	registry    contract.IRegistry
	sinkTimeout time.Duration

	mu        sync.Mutex
	roomLocks map[domain.RoomID]*sync.Mutex
}

func NewBroker(
	log *slog.Logger,
	messages repositories.IMessageRepository,
	archive repositories.IArchiveRepository,
	users repositories.IUserRepository,
	groups repositories.IGroupRepository,
	registry contract.IRegistry,
	sinkTimeout time.Duration,
) *Broker {
	return &Broker{
		log:         log,
		messages:    messages,
		archive:     archive,
		users:       users,
		groups:      groups,
		registry:    registry,
		sinkTimeout: sinkTimeout,
		roomLocks:   make(map[domain.RoomID]*sync.Mutex),
	}
}

// SendPersonal persists and broadcasts a one-to-one message. A command
// that also names a group is rejected, never silently narrowed.
func (b *Broker) SendPersonal(ctx context.Context, sender domain.User, cmd SendCommand) (domain.MessagePayload, error) {
	if cmd.ReceiverID == "" || cmd.GroupID != "" {
		return domain.MessagePayload{}, errors.ErrAmbiguousRecipient
	}
	return b.send(ctx, sender, cmd)
}

// SendGroup persists and broadcasts a group message. Membership is
// re-read on every send: subscriptions are connection-local and can
// outlive a revoked membership, so they carry no authorization weight.
func (b *Broker) SendGroup(ctx context.Context, sender domain.User, cmd SendCommand) (domain.MessagePayload, error) {
	if cmd.GroupID == "" || cmd.ReceiverID != "" {
		return domain.MessagePayload{}, errors.ErrAmbiguousRecipient
	}

	group, err := b.groups.GetGroup(cmd.GroupID)
	if err != nil {
		return domain.MessagePayload{}, err
	}
	if !group.IsMember(sender.ID) {
		return domain.MessagePayload{}, errors.ErrNotGroupMember
	}
	return b.send(ctx, sender, cmd)
}

func (b *Broker) send(ctx context.Context, sender domain.User, cmd SendCommand) (domain.MessagePayload, error) {
	if cmd.Type == "" {
		cmd.Type = domain.MessageTypeText
	}

	message := domain.Message{
		ID:         uuid.New(),
		SenderID:   sender.ID,
		ReceiverID: cmd.ReceiverID,
		GroupID:    cmd.GroupID,
		Body:       cmd.Body,
		Type:       cmd.Type,
		MediaURL:   cmd.MediaURL,
		RoomID:     cmd.RoomID,
	}
	if err := message.Validate(); err != nil {
		return domain.MessagePayload{}, err
	}

	lock := b.roomLock(cmd.RoomID)
	lock.Lock()
	defer lock.Unlock()

	// Timestamp assigned under the room lock, so persistence order and
	// key order agree within a room.
	message.CreatedAt = time.Now().UTC()
	if err := b.messages.StoreMessage(message); err != nil {
		b.log.Error("Message persistence failed", "room", cmd.RoomID, "error", err)
		return domain.MessagePayload{}, fmt.Errorf("%w: %w", errors.ErrSendFailed, err)
	}

	// Re-read the sender for a fresh snapshot, the way the persisted row
	// is re-fetched with its populated sender before broadcasting.
	profile := b.profileOf(sender.ID)
	payload := toPayload(message, profile)

	b.broadcast(ctx, payload)
	return payload, nil
}

// broadcast delivers to every subscribed sink, the sender's own included:
// the broadcast is the only path to the sender's UI state, which is how
// the sender sees the server-assigned id and timestamp. One slow or dead
// sink never blocks the others past sinkTimeout, and persistence has
// already succeeded, so per-sink failures are logged and swallowed.
func (b *Broker) broadcast(ctx context.Context, payload domain.MessagePayload) {
	for _, sink := range b.registry.GetSinksForRoom(payload.RoomID) {
		sinkCtx, cancel := context.WithTimeout(ctx, b.sinkTimeout)
		if err := sink.Consume(sinkCtx, payload); err != nil {
			b.log.Warn("Sink dropped a broadcast", "room", payload.RoomID, "error", err)
		}
		cancel()
	}
}

// ListMessages returns the newest `limit` hot messages of a room in
// ascending order, each carrying the same denormalized sender snapshot
// as live broadcasts.
func (b *Broker) ListMessages(roomID domain.RoomID, limit, offset int) ([]domain.MessagePayload, error) {
	messages, err := b.messages.GetMessages(roomID, limit, offset)
	if err != nil {
		return nil, err
	}
	profiles := b.profilesFor(messages)
	return lo.Map(messages, func(m domain.Message, _ int) domain.MessagePayload {
		return toPayload(m, profiles[m.SenderID])
	}), nil
}

// ListArchivedMessages returns the recent archived window of a room,
// ascending, same payload shape plus archivedAt.
func (b *Broker) ListArchivedMessages(roomID domain.RoomID) ([]domain.MessagePayload, error) {
	archived, err := b.archive.GetArchivedMessages(roomID, archivedWindow)
	if err != nil {
		return nil, err
	}
	messages := lo.Map(archived, func(a domain.ArchivedMessage, _ int) domain.Message { return a.Message })
	profiles := b.profilesFor(messages)
	return lo.Map(archived, func(a domain.ArchivedMessage, _ int) domain.MessagePayload {
		payload := toPayload(a.Message, profiles[a.SenderID])
		archivedAt := a.ArchivedAt
		payload.ArchivedAt = &archivedAt
		return payload
	}), nil
}

func (b *Broker) roomLock(roomID domain.RoomID) *sync.Mutex {
	b.mu.Lock()
	defer b.mu.Unlock()
	lock, ok := b.roomLocks[roomID]
	if !ok {
		lock = &sync.Mutex{}
		b.roomLocks[roomID] = lock
	}
	return lock
}

func (b *Broker) profileOf(userID string) domain.PublicProfile {
	user, err := b.users.GetUserByID(userID)
	if err != nil {
		b.log.Warn("Sender profile lookup failed", "user", userID, "error", err)
		return domain.PublicProfile{ID: userID}
	}
	return user.Profile()
}

func (b *Broker) profilesFor(messages []domain.Message) map[string]domain.PublicProfile {
	profiles := make(map[string]domain.PublicProfile)
	for _, m := range messages {
		if _, ok := profiles[m.SenderID]; !ok {
			profiles[m.SenderID] = b.profileOf(m.SenderID)
		}
	}
	return profiles
}

func toPayload(m domain.Message, sender domain.PublicProfile) domain.MessagePayload {
	return domain.MessagePayload{
		ID:         m.ID.String(),
		Sender:     sender,
		ReceiverID: m.ReceiverID,
		GroupID:    m.GroupID,
		Body:       m.Body,
		Type:       m.Type,
		MediaURL:   m.MediaURL,
		RoomID:     m.RoomID,
		Timestamp:  m.CreatedAt,
	}
}
