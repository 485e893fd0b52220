package gateway

import (
	"context"
	"encoding/json"

	"github.com/bytedance/sonic"

	"github.com/UDAVALAPATISURESH/app-chat/domain"
	"github.com/UDAVALAPATISURESH/app-chat/runtime"
)

func (g *Gateway) decode(conn *connection, data json.RawMessage, request any) bool {
	if err := sonic.Unmarshal(data, request); err != nil {
		conn.sendError("malformed event")
		return false
	}
	if err := g.validate.Struct(request); err != nil {
		conn.sendError(err.Error())
		return false
	}
	return true
}

func (g *Gateway) onJoinRoom(ctx context.Context, conn *connection, data json.RawMessage) {
	var request joinRoomRequest
	if !g.decode(conn, data, &request) {
		return
	}

	roomID, otherUser, err := g.rooms.ResolvePersonalRoom(ctx, conn.user, request.OtherUserEmail)
	if err != nil {
		conn.sendError(clientMessage(err))
		return
	}

	g.registry.Subscribe(conn.id, roomID, conn)
	conn.sendEvent(eventRoomJoined, roomJoinedPayload{RoomID: roomID, OtherUser: otherUser})
	conn.log.Info("Joined personal room", "room", roomID)
}

func (g *Gateway) onJoinGroup(ctx context.Context, conn *connection, data json.RawMessage) {
	var request joinGroupRequest
	if !g.decode(conn, data, &request) {
		return
	}

	roomID, group, err := g.rooms.ResolveGroupRoom(ctx, conn.user, request.GroupID)
	if err != nil {
		// Non-members get the error and are NOT subscribed to the room.
		conn.sendError(clientMessage(err))
		return
	}

	g.registry.Subscribe(conn.id, roomID, conn)
	conn.sendEvent(eventGroupJoined, groupJoinedPayload{
		RoomID: roomID,
		Group: groupSnapshot{
			ID:          group.ID,
			Name:        group.Name,
			Description: group.Description,
			AdminID:     group.AdminID,
			Members:     group.Members,
		},
	})
	conn.log.Info("Joined group room", "room", roomID)
}

// Leaving only drops the subscription; nothing persisted is touched and
// no confirmation is sent.
func (g *Gateway) onLeaveRoom(conn *connection, data json.RawMessage) {
	var request leaveRoomRequest
	if err := sonic.Unmarshal(data, &request); err != nil || request.RoomID == "" {
		return
	}
	g.registry.Unsubscribe(conn.id, domain.RoomID(request.RoomID))
	conn.log.Info("Left room", "room", request.RoomID)
}

func (g *Gateway) onLeaveGroup(conn *connection, data json.RawMessage) {
	var request leaveGroupRequest
	if err := sonic.Unmarshal(data, &request); err != nil || request.GroupID == "" {
		return
	}
	g.registry.Unsubscribe(conn.id, domain.GroupRoomID(request.GroupID))
	conn.log.Info("Left group room", "group", request.GroupID)
}

func (g *Gateway) onSendPersonal(ctx context.Context, conn *connection, data json.RawMessage) {
	var request sendMessageRequest
	if !g.decode(conn, data, &request) {
		return
	}

	_, err := g.broker.SendPersonal(ctx, conn.user, toSendCommand(request))
	if err != nil {
		// Reported to the initiating connection only; other subscribers
		// never see a failed send.
		conn.sendError(clientMessage(err))
	}
}

func (g *Gateway) onSendGroup(ctx context.Context, conn *connection, data json.RawMessage) {
	var request sendMessageRequest
	if !g.decode(conn, data, &request) {
		return
	}

	_, err := g.broker.SendGroup(ctx, conn.user, toSendCommand(request))
	if err != nil {
		conn.sendError(clientMessage(err))
	}
}

func toSendCommand(request sendMessageRequest) runtime.SendCommand {
	return runtime.SendCommand{
		ReceiverID: request.ReceiverID,
		GroupID:    request.GroupID,
		Body:       request.Message,
		Type:       domain.MessageType(request.MessageType),
		MediaURL:   request.MediaURL,
		RoomID:     domain.RoomID(request.RoomID),
	}
}
