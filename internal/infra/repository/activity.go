package repository

import (
	"context"
	"time"

	"kyuaar/internal/domain/activity"
	"kyuaar/internal/domain/packet"
	"kyuaar/internal/infra"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ActivityRepository appends lifecycle events to the activities table and
// serves the recent feed for the dashboard consumer.
type ActivityRepository struct {
	pool *pgxpool.Pool
}

func NewActivityRepository(pool *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{pool: pool}
}

func (r *ActivityRepository) Append(ctx context.Context, ev activity.Event) error {
	query := `
		INSERT INTO activities (packet_id, event_type, old_state, new_state, actor, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		ev.PacketID.String(),
		ev.Type.String(),
		ev.OldState.String(),
		ev.NewState.String(),
		ev.Actor,
		ev.Detail,
		ev.CreatedAt,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to append activity event", err)
	}
	return nil
}

func (r *ActivityRepository) Recent(ctx context.Context, limit int) ([]activity.Event, error) {
	query := `
		SELECT packet_id, event_type, old_state, new_state, actor, detail, created_at
		FROM activities
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query recent activities", err)
	}
	defer rows.Close()

	var events []activity.Event
	for rows.Next() {
		var (
			packetID, eventType, oldState, newState, actor, detail string
			createdAt                                              time.Time
		)
		if err := rows.Scan(&packetID, &eventType, &oldState, &newState, &actor, &detail, &createdAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan activity row", err)
		}
		events = append(events, activity.Event{
			PacketID:  packet.PacketID(packetID),
			Type:      activity.EventType(eventType),
			OldState:  packet.State(oldState),
			NewState:  packet.State(newState),
			Actor:     actor,
			Detail:    detail,
			CreatedAt: createdAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate activity rows", err)
	}
	return events, nil
}
