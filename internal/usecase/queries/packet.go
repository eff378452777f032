package queries

import (
	"context"
	"time"

	"kyuaar/internal/domain/packet"
	"kyuaar/internal/infra"
	"kyuaar/internal/pkg/errs"
)

// PacketView is the operator-facing read model. It is the only place the
// management id is ever surfaced.
type PacketView struct {
	ID               string
	ManagementID     string
	QRCount          int
	State            string
	RedirectTarget   *string
	BuyerName        *string
	BuyerEmail       *string
	SalePrice        *float64
	SoldAt           *time.Time
	Price            float64
	ArtifactURL      *string
	LastConfiguredAt *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// StatusView is the public state probe: state and configured flag only,
// never the management id and never the buyer.
type StatusView struct {
	ID         string
	State      string
	Configured bool
	Target     *string
}

type PacketListStore interface {
	PacketReadStore
	List(ctx context.Context, limit int) ([]*packet.Packet, error)
}

type PacketQueries interface {
	GetByID(ctx context.Context, rawID string) (*PacketView, error)
	List(ctx context.Context, limit int) ([]*PacketView, error)
	Status(ctx context.Context, rawID string) (*StatusView, error)
}

type packetQueriesImpl struct {
	store PacketListStore
}

func NewPacketQueries(store PacketListStore) PacketQueries {
	return &packetQueriesImpl{store: store}
}

func (q *packetQueriesImpl) GetByID(ctx context.Context, rawID string) (*PacketView, error) {
	p, err := q.find(ctx, rawID)
	if err != nil {
		return nil, err
	}
	return toPacketView(p), nil
}

func (q *packetQueriesImpl) List(ctx context.Context, limit int) ([]*PacketView, error) {
	packets, err := q.store.List(ctx, limit)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	views := make([]*PacketView, 0, len(packets))
	for _, p := range packets {
		if p.Deleted() {
			continue
		}
		views = append(views, toPacketView(p))
	}
	return views, nil
}

func (q *packetQueriesImpl) Status(ctx context.Context, rawID string) (*StatusView, error) {
	p, err := q.find(ctx, rawID)
	if err != nil {
		return nil, err
	}
	view := &StatusView{
		ID:         p.ID().String(),
		State:      p.State().String(),
		Configured: p.IsConfigured(),
	}
	if p.RedirectTarget() != nil {
		t := p.RedirectTarget().String()
		view.Target = &t
	}
	return view, nil
}

func (q *packetQueriesImpl) find(ctx context.Context, rawID string) (*packet.Packet, error) {
	id, err := packet.ParsePacketID(rawID)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrPacketNotFound)
	}
	p, err := q.store.FindByPacketID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrPacketNotFound)
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if p.Deleted() {
		return nil, errs.ErrPacketNotFound
	}
	return p, nil
}

func toPacketView(p *packet.Packet) *PacketView {
	view := &PacketView{
		ID:               p.ID().String(),
		ManagementID:     p.ManagementID().String(),
		QRCount:          p.QRCount(),
		State:            p.State().String(),
		Price:            p.Price(),
		ArtifactURL:      p.ArtifactURL(),
		LastConfiguredAt: p.LastConfiguredAt(),
		CreatedAt:        p.CreatedAt(),
		UpdatedAt:        p.UpdatedAt(),
	}
	if p.RedirectTarget() != nil {
		t := p.RedirectTarget().String()
		view.RedirectTarget = &t
	}
	if sale := p.Sale(); sale != nil {
		name := sale.BuyerName()
		price := sale.Price()
		soldAt := sale.SoldAt()
		view.BuyerName = &name
		view.BuyerEmail = sale.BuyerEmail()
		view.SalePrice = &price
		view.SoldAt = &soldAt
	}
	return view
}
