package activity

import (
	"time"

	"kyuaar/internal/domain/packet"
)

// EventType enumerates the lifecycle events the activity feed tracks.
type EventType string

const (
	EventPacketCreated    EventType = "packet_created"
	EventPacketSetup      EventType = "packet_setup"
	EventPacketSold       EventType = "packet_sold"
	EventPacketConfigured EventType = "packet_configured"
	EventPacketReset      EventType = "packet_reset"
	EventPacketDeleted    EventType = "packet_deleted"
)

func (t EventType) String() string {
	return string(t)
}

// Event is one structured entry in the activity log. The dashboard consumer
// reads these independently; the core only appends.
type Event struct {
	PacketID  packet.PacketID
	Type      EventType
	OldState  packet.State
	NewState  packet.State
	Actor     string
	Detail    string
	CreatedAt time.Time
}
