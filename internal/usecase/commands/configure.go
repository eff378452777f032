package commands

import (
	"context"
	"fmt"
	"log/slog"

	"kyuaar/internal/domain/activity"
	"kyuaar/internal/domain/packet"
	"kyuaar/internal/infra"
	"kyuaar/internal/pkg/clock"
	"kyuaar/internal/pkg/config"
	"kyuaar/internal/pkg/errs"
)

const (
	DestinationTypeWhatsApp = "whatsapp"
	DestinationTypeCustom   = "custom"
)

// ConfigureInput is the destination submitted from a scan form. Type selects
// which field carries the destination.
type ConfigureInput struct {
	Type  string
	Phone string
	URL   string
}

// ConfigureCommands is the configuration applier: it validates a proposed
// destination and atomically commits it with the guarded state transition.
// Path semantics differ — main configures exactly once from CONFIG_PENDING,
// management reconfigures any post-setup packet under the rate limit.
type ConfigureCommands interface {
	ConfigureByPacketID(ctx context.Context, rawID string, in ConfigureInput) (*packet.Packet, error)
	ConfigureByManagementID(ctx context.Context, rawID string, in ConfigureInput) (*packet.Packet, error)
}

type configureCommandsImpl struct {
	store PacketStore
	log   ActivityLog
	clock clock.Clock
	cfg   config.RedirectConfig
}

func NewConfigureCommands(store PacketStore, log ActivityLog, clk clock.Clock, cfg config.Config) ConfigureCommands {
	return &configureCommandsImpl{
		store: store,
		log:   log,
		clock: clk,
		cfg:   cfg.Redirect,
	}
}

func (c *configureCommandsImpl) ConfigureByPacketID(ctx context.Context, rawID string, in ConfigureInput) (*packet.Packet, error) {
	id, err := packet.ParsePacketID(rawID)
	if err != nil {
		// A malformed id is indistinguishable from a missing one so the id
		// space cannot be probed.
		return nil, errs.Mark(err, errs.ErrPacketNotFound)
	}
	return c.configure(ctx, packet.PathMain, in, func(ctx context.Context) (*packet.Packet, error) {
		return c.store.FindByPacketID(ctx, id)
	})
}

func (c *configureCommandsImpl) ConfigureByManagementID(ctx context.Context, rawID string, in ConfigureInput) (*packet.Packet, error) {
	id, err := packet.ParseManagementID(rawID)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrPacketNotFound)
	}
	return c.configure(ctx, packet.PathManagement, in, func(ctx context.Context) (*packet.Packet, error) {
		return c.store.FindByManagementID(ctx, id)
	})
}

func (c *configureCommandsImpl) configure(
	ctx context.Context,
	path packet.Path,
	in ConfigureInput,
	load func(ctx context.Context) (*packet.Packet, error),
) (*packet.Packet, error) {
	target, err := c.buildDestination(in)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt <= c.cfg.CASRetries; attempt++ {
		p, err := load(ctx)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return nil, errs.Mark(err, errs.ErrPacketNotFound)
			}
			return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if p.Deleted() {
			return nil, errs.Mark(packet.ErrTombstoned, errs.ErrPacketNotFound)
		}

		oldState := p.State()
		oldTarget := ""
		if p.RedirectTarget() != nil {
			oldTarget = p.RedirectTarget().String()
		}

		// The rate-limit counter is bumped inside Configure and persisted by
		// the same compare-and-set write, so a lost race never double-counts.
		if err := p.Configure(target, path, c.clock.Now(), c.cfg.UpdateCeiling, c.cfg.UpdateWindow); err != nil {
			return nil, mapDomainErr(err)
		}

		err = c.store.Update(ctx, p, p.Version())
		if err == nil {
			c.emit(ctx, activity.Event{
				PacketID:  p.ID(),
				Type:      activity.EventPacketConfigured,
				OldState:  oldState,
				NewState:  p.State(),
				Actor:     path.String(),
				Detail:    fmt.Sprintf("target %q -> %q", oldTarget, target.String()),
				CreatedAt: c.clock.Now(),
			})
			return p, nil
		}
		if !infra.IsKind(err, infra.KindStaleState) {
			return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
	}
	return nil, errs.ErrStaleState
}

func (c *configureCommandsImpl) buildDestination(in ConfigureInput) (packet.Destination, error) {
	switch in.Type {
	case DestinationTypeWhatsApp:
		d, err := packet.NewContactDestination(in.Phone, c.cfg.DefaultCountryCode)
		if err != nil {
			return packet.Destination{}, errs.Mark(err, errs.ErrValidation)
		}
		return d, nil
	case DestinationTypeCustom:
		d, err := packet.NewURLDestination(in.URL)
		if err != nil {
			return packet.Destination{}, errs.Mark(err, errs.ErrValidation)
		}
		return d, nil
	default:
		return packet.Destination{}, errs.Mark(errs.New("unknown destination type"), errs.ErrValidation)
	}
}

func (c *configureCommandsImpl) emit(ctx context.Context, ev activity.Event) {
	if err := c.log.Append(ctx, ev); err != nil {
		slog.Warn("failed to append activity event",
			"packet_id", ev.PacketID.String(),
			"event_type", ev.Type.String(),
			"error", err)
	}
}
