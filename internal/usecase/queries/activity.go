package queries

import (
	"context"
	"time"

	"kyuaar/internal/domain/activity"
	"kyuaar/internal/pkg/errs"
)

const defaultActivityLimit = 20

type ActivityView struct {
	PacketID  string
	EventType string
	OldState  string
	NewState  string
	Actor     string
	Detail    string
	CreatedAt time.Time
}

type ActivityReadStore interface {
	Recent(ctx context.Context, limit int) ([]activity.Event, error)
}

type ActivityQueries interface {
	Recent(ctx context.Context, limit int) ([]*ActivityView, error)
}

type activityQueriesImpl struct {
	store ActivityReadStore
}

func NewActivityQueries(store ActivityReadStore) ActivityQueries {
	return &activityQueriesImpl{store: store}
}

func (q *activityQueriesImpl) Recent(ctx context.Context, limit int) ([]*ActivityView, error) {
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	events, err := q.store.Recent(ctx, limit)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	views := make([]*ActivityView, len(events))
	for i, ev := range events {
		views[i] = &ActivityView{
			PacketID:  ev.PacketID.String(),
			EventType: ev.Type.String(),
			OldState:  ev.OldState.String(),
			NewState:  ev.NewState.String(),
			Actor:     ev.Actor,
			Detail:    ev.Detail,
			CreatedAt: ev.CreatedAt,
		}
	}
	return views, nil
}
