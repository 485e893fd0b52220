package errors

import "fmt"

var (
	ErrUnauthenticated    = fmt.Errorf("no credential provided")
	ErrInvalidCredential  = fmt.Errorf("invalid or expired credential")
	ErrUserNotFound       = fmt.Errorf("user not found")
	ErrGroupNotFound      = fmt.Errorf("group not found")
	ErrNotGroupMember     = fmt.Errorf("not a member of this group")
	ErrEmptyMessage       = fmt.Errorf("message has no text and no media")
	ErrMissingMedia       = fmt.Errorf("non-text message requires a media url")
	ErrAmbiguousRecipient = fmt.Errorf("message must target exactly one of receiver or group")
	ErrSendFailed         = fmt.Errorf("failed to send message")
	ErrArchivalCycle      = fmt.Errorf("archival cycle failed")
	ErrWorkerPanic        = fmt.Errorf("worker panic")
)
