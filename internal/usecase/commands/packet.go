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

type CreatePacketInput struct {
	QRCount int
	Price   float64
}

type SellPacketInput struct {
	BuyerName  string
	BuyerEmail *string
	SalePrice  *float64
}

type AttachArtifactInput struct {
	ArtifactURL  string
	Data         []byte
	DeclaredType string
}

// PacketCommands covers the operator-driven lifecycle transitions. The
// customer-facing configuration path lives in ConfigureCommands.
type PacketCommands interface {
	Create(ctx context.Context, in CreatePacketInput, actor string) (*packet.Packet, error)
	AttachArtifact(ctx context.Context, id packet.PacketID, in AttachArtifactInput, actor string) (*packet.Packet, error)
	MarkSold(ctx context.Context, id packet.PacketID, in SellPacketInput, actor string) (*packet.Packet, error)
	Reset(ctx context.Context, id packet.PacketID, actor string) (*packet.Packet, error)
	Tombstone(ctx context.Context, id packet.PacketID, actor string) error
}

type packetCommandsImpl struct {
	store     PacketStore
	log       ActivityLog
	validator ArtifactValidator
	clock     clock.Clock
	cfg       config.RedirectConfig
}

func NewPacketCommands(
	store PacketStore,
	log ActivityLog,
	validator ArtifactValidator,
	clk clock.Clock,
	cfg config.Config,
) PacketCommands {
	return &packetCommandsImpl{
		store:     store,
		log:       log,
		validator: validator,
		clock:     clk,
		cfg:       cfg.Redirect,
	}
}

// Create inserts a fresh packet. Identifier collisions are astronomically
// rare but handled anyway: creation retries with freshly drawn pairs a
// bounded number of times before failing hard.
func (c *packetCommandsImpl) Create(ctx context.Context, in CreatePacketInput, actor string) (*packet.Packet, error) {
	var lastErr error
	for attempt := 0; attempt < c.cfg.IDRetries; attempt++ {
		p, err := packet.NewPacket(packet.NewIdentifierPair(), in.QRCount, in.Price, c.clock.Now())
		if err != nil {
			return nil, errs.Mark(err, errs.ErrValidation)
		}

		if err := c.store.Create(ctx, p); err != nil {
			if infra.IsKind(err, infra.KindDuplicateKey) {
				lastErr = err
				continue
			}
			return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		c.emit(ctx, activity.Event{
			PacketID:  p.ID(),
			Type:      activity.EventPacketCreated,
			OldState:  "",
			NewState:  p.State(),
			Actor:     actor,
			Detail:    fmt.Sprintf("created with %d codes", p.QRCount()),
			CreatedAt: c.clock.Now(),
		})
		return p, nil
	}
	return nil, errs.Mark(lastErr, errs.ErrDuplicateID)
}

func (c *packetCommandsImpl) AttachArtifact(ctx context.Context, id packet.PacketID, in AttachArtifactInput, actor string) (*packet.Packet, error) {
	if err := c.validator.Validate(in.Data, in.DeclaredType); err != nil {
		return nil, errs.Mark(err, errs.ErrArtifactRejected)
	}

	return c.transition(ctx, id, actor, activity.EventPacketSetup, "artifact attached",
		func(p *packet.Packet) error {
			return p.AttachArtifact(in.ArtifactURL, c.clock.Now())
		})
}

func (c *packetCommandsImpl) MarkSold(ctx context.Context, id packet.PacketID, in SellPacketInput, actor string) (*packet.Packet, error) {
	return c.transition(ctx, id, actor, activity.EventPacketSold, "marked sold",
		func(p *packet.Packet) error {
			price := p.SalePrice(c.cfg.PricePerQR)
			if in.SalePrice != nil {
				price = *in.SalePrice
			}
			sale, err := packet.NewSale(in.BuyerName, in.BuyerEmail, price, c.clock.Now())
			if err != nil {
				return errs.Mark(err, errs.ErrValidation)
			}
			return p.MarkSold(sale, c.clock.Now())
		})
}

func (c *packetCommandsImpl) Reset(ctx context.Context, id packet.PacketID, actor string) (*packet.Packet, error) {
	return c.transition(ctx, id, actor, activity.EventPacketReset, "administrative reset",
		func(p *packet.Packet) error {
			return p.Reset(c.clock.Now())
		})
}

func (c *packetCommandsImpl) Tombstone(ctx context.Context, id packet.PacketID, actor string) error {
	_, err := c.transition(ctx, id, actor, activity.EventPacketDeleted, "soft deleted",
		func(p *packet.Packet) error {
			if p.Deleted() {
				return packet.ErrTombstoned
			}
			p.Tombstone(c.clock.Now())
			return nil
		})
	return err
}

// transition runs load -> mutate -> compare-and-set, retrying a bounded
// number of times when a concurrent writer bumped the version in between.
// Domain guard failures are terminal and never retried.
func (c *packetCommandsImpl) transition(
	ctx context.Context,
	id packet.PacketID,
	actor string,
	eventType activity.EventType,
	detail string,
	mutate func(*packet.Packet) error,
) (*packet.Packet, error) {
	for attempt := 0; attempt <= c.cfg.CASRetries; attempt++ {
		p, err := c.store.FindByPacketID(ctx, id)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return nil, errs.Mark(err, errs.ErrPacketNotFound)
			}
			return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		oldState := p.State()
		if err := mutate(p); err != nil {
			return nil, mapDomainErr(err)
		}

		err = c.store.Update(ctx, p, p.Version())
		if err == nil {
			c.emit(ctx, activity.Event{
				PacketID:  p.ID(),
				Type:      eventType,
				OldState:  oldState,
				NewState:  p.State(),
				Actor:     actor,
				Detail:    detail,
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

func (c *packetCommandsImpl) emit(ctx context.Context, ev activity.Event) {
	if err := c.log.Append(ctx, ev); err != nil {
		slog.Warn("failed to append activity event",
			"packet_id", ev.PacketID.String(),
			"event_type", ev.Type.String(),
			"error", err)
	}
}

func mapDomainErr(err error) error {
	switch {
	case errs.Is(err, packet.ErrTombstoned):
		return errs.Mark(err, errs.ErrPacketNotFound)
	case errs.Is(err, packet.ErrInvalidTransition):
		return errs.Mark(err, errs.ErrInvalidState)
	case errs.Is(err, packet.ErrUpdateLimitReached):
		return errs.Mark(err, errs.ErrRateLimitExceeded)
	case errs.Is(err, packet.ErrEmptyBuyerName),
		errs.Is(err, packet.ErrNegativeSale),
		errs.Is(err, packet.ErrInvalidQRCount),
		errs.Is(err, packet.ErrNegativePrice):
		return errs.Mark(err, errs.ErrValidation)
	default:
		return err
	}
}
