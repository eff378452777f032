package queries

import (
	"context"

	"kyuaar/internal/domain/packet"
	"kyuaar/internal/infra"
	"kyuaar/internal/pkg/errs"
)

// Outcome classifies what a scan of either identifier namespace resolves to.
type Outcome string

const (
	// OutcomeNotReady covers missing, tombstoned and SETUP_PENDING packets.
	// Callers render all three identically so identifiers cannot be
	// enumerated.
	OutcomeNotReady Outcome = "error_not_ready"
	// OutcomePromptConfigure asks for the first destination.
	OutcomePromptConfigure Outcome = "prompt_configure"
	// OutcomePromptReconfigure shows the management edit form, pre-filled.
	OutcomePromptReconfigure Outcome = "prompt_reconfigure"
	// OutcomeRedirect carries the target verbatim.
	OutcomeRedirect Outcome = "redirect"
)

// Prefill carries the current destination back into the management form.
type Prefill struct {
	Type  string
	Phone string
	URL   string
}

type Resolution struct {
	Outcome Outcome
	State   packet.State
	Target  string
	Prefill *Prefill
}

// PacketReadStore is the read-only lookup side of the store adapter. Reads
// may be served from replicas; resolution never writes.
type PacketReadStore interface {
	FindByPacketID(ctx context.Context, id packet.PacketID) (*packet.Packet, error)
	FindByManagementID(ctx context.Context, id packet.ManagementID) (*packet.Packet, error)
}

// ScanQueries is the scan resolver. It classifies an inbound identifier by
// the namespace it arrived on and maps the packet state to an outcome
// without mutating anything.
type ScanQueries interface {
	ResolveMain(ctx context.Context, rawID string) (Resolution, error)
	ResolveManagement(ctx context.Context, rawID string) (Resolution, error)
}

type scanQueriesImpl struct {
	store PacketReadStore
}

func NewScanQueries(store PacketReadStore) ScanQueries {
	return &scanQueriesImpl{store: store}
}

func (q *scanQueriesImpl) ResolveMain(ctx context.Context, rawID string) (Resolution, error) {
	id, err := packet.ParsePacketID(rawID)
	if err != nil {
		return notReady(), nil
	}
	p, err := q.load(ctx, func(ctx context.Context) (*packet.Packet, error) {
		return q.store.FindByPacketID(ctx, id)
	})
	if err != nil {
		return Resolution{}, err
	}
	if p == nil {
		return notReady(), nil
	}

	switch p.State() {
	case packet.StateSetupDone, packet.StateConfigPending:
		return Resolution{Outcome: OutcomePromptConfigure, State: p.State()}, nil
	case packet.StateConfigDone:
		if p.RedirectTarget() == nil {
			return notReady(), nil
		}
		return Resolution{
			Outcome: OutcomeRedirect,
			State:   p.State(),
			Target:  p.RedirectTarget().String(),
		}, nil
	default:
		return notReady(), nil
	}
}

// ResolveManagement never yields a redirect: scanning the secret identifier
// always surfaces a configuration form, owner-facing by construction.
func (q *scanQueriesImpl) ResolveManagement(ctx context.Context, rawID string) (Resolution, error) {
	id, err := packet.ParseManagementID(rawID)
	if err != nil {
		return notReady(), nil
	}
	p, err := q.load(ctx, func(ctx context.Context) (*packet.Packet, error) {
		return q.store.FindByManagementID(ctx, id)
	})
	if err != nil {
		return Resolution{}, err
	}
	if p == nil {
		return notReady(), nil
	}

	switch p.State() {
	case packet.StateSetupDone, packet.StateConfigPending:
		return Resolution{Outcome: OutcomePromptConfigure, State: p.State()}, nil
	case packet.StateConfigDone:
		return Resolution{
			Outcome: OutcomePromptReconfigure,
			State:   p.State(),
			Prefill: prefillFrom(p.RedirectTarget()),
		}, nil
	default:
		return notReady(), nil
	}
}

// load collapses not-found and tombstoned into a nil packet; any other store
// failure propagates.
func (q *scanQueriesImpl) load(ctx context.Context, find func(ctx context.Context) (*packet.Packet, error)) (*packet.Packet, error) {
	p, err := find(ctx)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, nil
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if p.Deleted() {
		return nil, nil
	}
	return p, nil
}

func notReady() Resolution {
	return Resolution{Outcome: OutcomeNotReady}
}

func prefillFrom(d *packet.Destination) *Prefill {
	if d == nil {
		return nil
	}
	if d.IsContact() {
		return &Prefill{Type: "whatsapp", Phone: d.Phone()}
	}
	return &Prefill{Type: "custom", URL: d.String()}
}
