package gateway

import (
	"net/http"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"

	"github.com/UDAVALAPATISURESH/app-chat/domain"
)

const defaultHistoryLimit = 50

// handleMessages serves the hot window of a room. The request is
// newest-first paginated (limit/skip) and the response is ascending,
// so clients render history and live broadcasts with one code path.
func (g *Gateway) handleMessages(w http.ResponseWriter, r *http.Request) {
	roomID := domain.RoomID(chi.URLParam(r, "roomID"))
	limit := queryInt(r, "limit", defaultHistoryLimit)
	skip := queryInt(r, "skip", 0)
	if user, ok := userFrom(r.Context()); ok {
		g.log.Debug("History requested", "room", roomID, "user", user.ID)
	}

	messages, err := g.broker.ListMessages(roomID, limit, skip)
	if err != nil {
		g.log.Error("Failed to fetch messages", "room", roomID, "error", err)
		http.Error(w, "failed to fetch messages", http.StatusInternalServerError)
		return
	}
	g.respondMessages(w, messages)
}

// handleArchived serves the recent archived window of a room.
func (g *Gateway) handleArchived(w http.ResponseWriter, r *http.Request) {
	roomID := domain.RoomID(chi.URLParam(r, "roomID"))

	messages, err := g.broker.ListArchivedMessages(roomID)
	if err != nil {
		g.log.Error("Failed to fetch archived messages", "room", roomID, "error", err)
		http.Error(w, "failed to fetch archived messages", http.StatusInternalServerError)
		return
	}
	g.respondMessages(w, messages)
}

func (g *Gateway) respondMessages(w http.ResponseWriter, messages []domain.MessagePayload) {
	if messages == nil {
		messages = []domain.MessagePayload{}
	}
	data, err := sonic.Marshal(messagesResponse{Messages: messages})
	if err != nil {
		http.Error(w, "encoding failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

// queryInt falls back for absent, malformed or non-positive values:
// a zero limit would read as "unbounded" downstream and dump the
// entire room history.
func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
