package packet

import (
	"errors"
	"time"
)

const (
	MinQRCount = 1
	MaxQRCount = 100
)

var (
	ErrInvalidQRCount     = errors.New("qr count must be between 1 and 100")
	ErrNegativePrice      = errors.New("price cannot be negative")
	ErrInvalidTransition  = errors.New("transition not allowed from current state")
	ErrTombstoned         = errors.New("packet is tombstoned")
	ErrUpdateLimitReached = errors.New("management update limit reached for current window")
	ErrMissingTarget      = errors.New("configured packet has no redirect target")
)

// Packet is the sellable unit: a batch of identical printed codes sharing one
// redirect destination. All lifecycle mutations go through the guarded
// transition methods; the persistence layer commits them with a versioned
// compare-and-set.
type Packet struct {
	id               PacketID
	managementID     ManagementID
	qrCount          int
	state            State
	redirectTarget   *Destination
	sale             *Sale
	price            float64
	artifactURL      *string
	updateCount      int
	windowStartedAt  *time.Time
	lastConfiguredAt *time.Time
	deleted          bool
	version          int64
	createdAt        time.Time
	updatedAt        time.Time
}

// NewPacket creates a packet in SETUP_PENDING with a freshly drawn identifier
// pair. price is the list price; zero means "derive from qr count at sale
// time".
func NewPacket(ids IdentifierPair, qrCount int, price float64, now time.Time) (*Packet, error) {
	if qrCount < MinQRCount || qrCount > MaxQRCount {
		return nil, ErrInvalidQRCount
	}
	if price < 0 {
		return nil, ErrNegativePrice
	}
	return &Packet{
		id:           ids.PacketID,
		managementID: ids.ManagementID,
		qrCount:      qrCount,
		state:        StateSetupPending,
		price:        price,
		version:      1,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// ReconstructPacket rebuilds a packet from its stored representation.
func ReconstructPacket(
	id PacketID,
	managementID ManagementID,
	qrCount int,
	state State,
	redirectTarget *Destination,
	sale *Sale,
	price float64,
	artifactURL *string,
	updateCount int,
	windowStartedAt *time.Time,
	lastConfiguredAt *time.Time,
	deleted bool,
	version int64,
	createdAt, updatedAt time.Time,
) *Packet {
	return &Packet{
		id:               id,
		managementID:     managementID,
		qrCount:          qrCount,
		state:            state,
		redirectTarget:   redirectTarget,
		sale:             sale,
		price:            price,
		artifactURL:      artifactURL,
		updateCount:      updateCount,
		windowStartedAt:  windowStartedAt,
		lastConfiguredAt: lastConfiguredAt,
		deleted:          deleted,
		version:          version,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

// AttachArtifact completes setup once the printed artifact has passed
// validation. SETUP_PENDING -> SETUP_DONE.
func (p *Packet) AttachArtifact(artifactURL string, now time.Time) error {
	if p.deleted {
		return ErrTombstoned
	}
	if p.state != StateSetupPending {
		return ErrInvalidTransition
	}
	p.artifactURL = &artifactURL
	p.state = StateSetupDone
	p.updatedAt = now
	return nil
}

// MarkSold records the sale and opens the packet for configuration.
// SETUP_DONE -> CONFIG_PENDING.
func (p *Packet) MarkSold(sale Sale, now time.Time) error {
	if p.deleted {
		return ErrTombstoned
	}
	if p.state != StateSetupDone {
		return ErrInvalidTransition
	}
	p.sale = &sale
	p.state = StateConfigPending
	p.updatedAt = now
	return nil
}

// Configure commits a validated destination. The main path may configure
// exactly once, from CONFIG_PENDING. The management path may configure from
// any post-setup state and is rate limited to ceiling updates per window;
// the window counter lives on the record and is re-derived against the clock,
// so no background sweeper is needed.
func (p *Packet) Configure(target Destination, path Path, now time.Time, ceiling int, window time.Duration) error {
	if p.deleted {
		return ErrTombstoned
	}
	switch path {
	case PathMain:
		if p.state != StateConfigPending {
			return ErrInvalidTransition
		}
	case PathManagement:
		if p.state == StateSetupPending {
			return ErrInvalidTransition
		}
		if p.managementUpdatesInWindow(now, window) >= ceiling {
			return ErrUpdateLimitReached
		}
		p.bumpUpdateWindow(now, window)
	default:
		return ErrInvalidTransition
	}

	p.redirectTarget = &target
	p.state = StateConfigDone
	p.lastConfiguredAt = &now
	p.updatedAt = now
	return nil
}

// Reset is the administrative escape hatch: back to SETUP_PENDING from any
// state, clearing the redirect target, the sale and the update window.
func (p *Packet) Reset(now time.Time) error {
	if p.deleted {
		return ErrTombstoned
	}
	p.state = StateSetupPending
	p.redirectTarget = nil
	p.sale = nil
	p.artifactURL = nil
	p.updateCount = 0
	p.windowStartedAt = nil
	p.updatedAt = now
	return nil
}

// Tombstone soft-deletes the packet. The record survives for id uniqueness
// but every scan resolves as permanently unready.
func (p *Packet) Tombstone(now time.Time) {
	p.deleted = true
	p.updatedAt = now
}

func (p *Packet) managementUpdatesInWindow(now time.Time, window time.Duration) int {
	if p.windowStartedAt == nil {
		return 0
	}
	if now.Sub(*p.windowStartedAt) >= window {
		return 0
	}
	return p.updateCount
}

func (p *Packet) bumpUpdateWindow(now time.Time, window time.Duration) {
	if p.windowStartedAt == nil || now.Sub(*p.windowStartedAt) >= window {
		start := now
		p.windowStartedAt = &start
		p.updateCount = 1
		return
	}
	p.updateCount++
}

// RemainingUpdates reports how many management-path updates the current
// window still allows.
func (p *Packet) RemainingUpdates(now time.Time, ceiling int, window time.Duration) int {
	used := p.managementUpdatesInWindow(now, window)
	if used >= ceiling {
		return 0
	}
	return ceiling - used
}

// SalePrice is the effective price for the sell transition when none is
// given explicitly: the list price, or qr_count * pricePerQR when unset.
func (p *Packet) SalePrice(pricePerQR float64) float64 {
	if p.price > 0 {
		return p.price
	}
	return float64(p.qrCount) * pricePerQR
}

func (p *Packet) IsConfigured() bool {
	return p.state == StateConfigDone && p.redirectTarget != nil
}

func (p *Packet) IsSold() bool {
	return p.state.IsSold()
}

func (p *Packet) ID() PacketID                 { return p.id }
func (p *Packet) ManagementID() ManagementID   { return p.managementID }
func (p *Packet) QRCount() int                 { return p.qrCount }
func (p *Packet) State() State                 { return p.state }
func (p *Packet) RedirectTarget() *Destination { return p.redirectTarget }
func (p *Packet) Sale() *Sale                  { return p.sale }
func (p *Packet) Price() float64               { return p.price }
func (p *Packet) ArtifactURL() *string         { return p.artifactURL }
func (p *Packet) UpdateCount() int             { return p.updateCount }
func (p *Packet) WindowStartedAt() *time.Time  { return p.windowStartedAt }
func (p *Packet) LastConfiguredAt() *time.Time { return p.lastConfiguredAt }
func (p *Packet) Deleted() bool                { return p.deleted }
func (p *Packet) Version() int64               { return p.version }
func (p *Packet) CreatedAt() time.Time         { return p.createdAt }
func (p *Packet) UpdatedAt() time.Time         { return p.updatedAt }
