//go:generate go run go.uber.org/mock/mockgen -source=rooms.go -destination=../mocks/mock_room_service.go -package=mocks
package services

import (
	"context"

	"github.com/UDAVALAPATISURESH/app-chat/domain"
	"github.com/UDAVALAPATISURESH/app-chat/errors"
	"github.com/UDAVALAPATISURESH/app-chat/repositories"
)

type IRoomService interface {
	ResolvePersonalRoom(ctx context.Context, self domain.User, otherEmail string) (domain.RoomID, domain.PublicProfile, error)
	ResolveGroupRoom(ctx context.Context, self domain.User, groupID string) (domain.RoomID, domain.Group, error)
}

// RoomService resolves canonical room ids. It owns no state: room ids are
// pure derivations, and membership is read fresh from the group store.
type RoomService struct {
	users  repositories.IUserRepository
	groups repositories.IGroupRepository
}

func NewRoomService(users repositories.IUserRepository, groups repositories.IGroupRepository) RoomService {
	return RoomService{users: users, groups: groups}
}

// ResolvePersonalRoom verifies the other party exists and returns the
// canonical pair room id plus the other party's public profile.
// Order-independent: either party resolving the pair gets the same id.
func (s RoomService) ResolvePersonalRoom(ctx context.Context, self domain.User, otherEmail string) (domain.RoomID, domain.PublicProfile, error) {
	other, err := s.users.GetUserByEmail(otherEmail)
	if err != nil {
		return "", domain.PublicProfile{}, err
	}
	return domain.PersonalRoomID(self.Email, other.Email), other.Profile(), nil
}

// ResolveGroupRoom returns the group room id and the group snapshot, or
// ErrNotGroupMember when the caller does not belong to the group.
func (s RoomService) ResolveGroupRoom(ctx context.Context, self domain.User, groupID string) (domain.RoomID, domain.Group, error) {
	group, err := s.groups.GetGroup(groupID)
	if err != nil {
		return "", domain.Group{}, err
	}
	if !group.IsMember(self.ID) {
		return "", domain.Group{}, errors.ErrNotGroupMember
	}
	return domain.GroupRoomID(group.ID), group, nil
}
