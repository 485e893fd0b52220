//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"github.com/UDAVALAPATISURESH/app-chat/domain"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself.
// Can be silly, focused.
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// Used for logging and supervision, avoiding manual naming in Worker.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink receives the broadcasts addressed to rooms a connection is
// subscribed to. A websocket connection is one sink; tests substitute
// in-memory ones.
type EventSink interface {
	Consume(ctx context.Context, payload domain.MessagePayload) error
}

// IRegistry tracks which connections are subscribed to which rooms.
// Subscriptions are transient and connection-scoped; they carry no
// authorization weight and no durable state.
type IRegistry interface {
	GetSinksForRoom(roomID domain.RoomID) []EventSink
	Subscribe(connID string, roomID domain.RoomID, sink EventSink)
	Unsubscribe(connID string, roomID domain.RoomID)
	UnsubscribeAll(connID string)
}
