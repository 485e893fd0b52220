package domain

import "strings"

// RoomID is a derived broadcast scope, never a stored entity.
type RoomID string

// PersonalRoomID builds the canonical room id for a pair of users.
// Emails are lower-cased then sorted, so resolve(a,b) == resolve(b,a).
//
// Note: the id is derived from current emails. If a user's email ever
// changes upstream, their personal rooms change with it and existing
// history stays under the old id. Kept as-is: archived history is keyed
// by this string and this core cannot run the migration a stable-id
// scheme would need.
func PersonalRoomID(emailA, emailB string) RoomID {
	a := strings.ToLower(emailA)
	b := strings.ToLower(emailB)
	if a > b {
		a, b = b, a
	}
	return RoomID("room_" + a + "_" + b)
}

// GroupRoomID is stable for the group's lifetime.
func GroupRoomID(groupID string) RoomID {
	return RoomID("group_" + groupID)
}
