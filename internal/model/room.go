package model

import "strings"

// RoomKey is a geographic routing scope.  It is never stored; it is
// derived from an equipment's or a client's registered location and
// used only to target real-time broadcasts.
type RoomKey struct {
	District string
	Village  string
}

// NewRoomKey normalizes a district/village pair into a RoomKey.  Keys
// are case-insensitive so that clients joining "Palakkad" and
// "palakkad" land in the same room.
func NewRoomKey(district, village string) RoomKey {
	return RoomKey{
		District: strings.ToLower(strings.TrimSpace(district)),
		Village:  strings.ToLower(strings.TrimSpace(village)),
	}
}

// String renders the wire name of the room, e.g. "rental_palakkad_melarkode".
func (k RoomKey) String() string {
	if k.Village == "" {
		return "rental_" + k.District
	}
	return "rental_" + k.District + "_" + k.Village
}
