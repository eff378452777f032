package response

import (
	"time"

	"kyuaar/internal/usecase/queries"
)

type ActivityResponse struct {
	PacketID  string    `json:"packet_id"`
	EventType string    `json:"event_type"`
	OldState  string    `json:"old_state,omitempty"`
	NewState  string    `json:"new_state"`
	Actor     string    `json:"actor"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func FromActivityList(views []*queries.ActivityView) []ActivityResponse {
	out := make([]ActivityResponse, len(views))
	for i, v := range views {
		out[i] = ActivityResponse{
			PacketID:  v.PacketID,
			EventType: v.EventType,
			OldState:  v.OldState,
			NewState:  v.NewState,
			Actor:     v.Actor,
			Detail:    v.Detail,
			CreatedAt: v.CreatedAt,
		}
	}
	return out
}
