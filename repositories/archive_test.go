package repositories

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/UDAVALAPATISURESH/app-chat/domain"
)

func Test_Archive_And_Get_Recent_Window(t *testing.T) {
	req := require.New(t)
	repository := NewArchiveRepository(openTestDB(t), slog.Default())
	room := domain.RoomID("room_a@x.com_b@x.com")
	at := time.Now().UTC().Add(-48 * time.Hour)
	archivedAt := time.Now().UTC()

	messages := []domain.Message{
		testMessage(room, "first", at),
		testMessage(room, "second", at.Add(1*time.Minute)),
		testMessage(room, "third", at.Add(2*time.Minute)),
	}
	for _, m := range messages {
		req.NoError(repository.ArchiveMessage(m, archivedAt))
	}

	// When fetching the recent window of two
	fetched, err := repository.GetArchivedMessages(room, 2)
	req.NoError(err)

	// Then the newest two come back ascending, stamped with archivedAt
	req.Len(fetched, 2)
	req.Equal("second", fetched[0].Body)
	req.Equal("third", fetched[1].Body)
	req.Equal(archivedAt, fetched[0].ArchivedAt)
}

func Test_Archive_Same_Message_Twice_Keeps_One_Entry(t *testing.T) {
	req := require.New(t)
	repository := NewArchiveRepository(openTestDB(t), slog.Default())
	room := domain.RoomID("group_g1")
	message := testMessage(room, "only once", time.Now().UTC().Add(-48*time.Hour))

	// Given a copy that is replayed after a crash between copy and delete
	req.NoError(repository.ArchiveMessage(message, time.Now().UTC()))
	req.NoError(repository.ArchiveMessage(message, time.Now().UTC()))

	// Then the cold store holds exactly one entry for that id
	fetched, err := repository.GetArchivedMessages(room, 100)
	req.NoError(err)
	req.Len(fetched, 1)
	req.Equal(message.ID, fetched[0].ID)
}
