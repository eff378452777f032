package commands

import (
	"context"

	"kyuaar/internal/domain/activity"
	"kyuaar/internal/domain/packet"
)

// PacketStore is the transactional accessor over the persistent store. Both
// identifier namespaces resolve into the same underlying record. Update is a
// compare-and-set against the record version: a concurrent writer makes it
// fail with a STALE_STATE repository error.
type PacketStore interface {
	FindByPacketID(ctx context.Context, id packet.PacketID) (*packet.Packet, error)
	FindByManagementID(ctx context.Context, id packet.ManagementID) (*packet.Packet, error)
	List(ctx context.Context, limit int) ([]*packet.Packet, error)
	Create(ctx context.Context, p *packet.Packet) error
	Update(ctx context.Context, p *packet.Packet, expectedVersion int64) error
}

// ActivityLog receives structured lifecycle events. Emission is best-effort:
// a failed append never rolls back the transition that produced it.
type ActivityLog interface {
	Append(ctx context.Context, ev activity.Event) error
	Recent(ctx context.Context, limit int) ([]activity.Event, error)
}

// ArtifactValidator gates the SETUP_PENDING -> SETUP_DONE transition. The
// core treats it as opaque pass/fail.
type ArtifactValidator interface {
	Validate(data []byte, declaredType string) error
}
