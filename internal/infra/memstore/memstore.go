// Package memstore is an in-process PacketStore with the same
// compare-and-set contract as the Postgres adapter. It backs unit tests and
// local development without a database.
package memstore

import (
	"context"
	"sync"
	"time"

	"kyuaar/internal/domain/activity"
	"kyuaar/internal/domain/packet"
	"kyuaar/internal/infra"
)

type PacketStore struct {
	mu      sync.Mutex
	records map[packet.PacketID]*packet.Packet
	byMgmt  map[packet.ManagementID]packet.PacketID
}

func NewPacketStore() *PacketStore {
	return &PacketStore{
		records: make(map[packet.PacketID]*packet.Packet),
		byMgmt:  make(map[packet.ManagementID]packet.PacketID),
	}
}

func (s *PacketStore) FindByPacketID(_ context.Context, id packet.PacketID) (*packet.Packet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.records[id]
	if !ok {
		return nil, infra.WrapRepoErr("packet not found", nil, infra.KindNotFound)
	}
	return clone(p, p.Version()), nil
}

func (s *PacketStore) FindByManagementID(_ context.Context, id packet.ManagementID) (*packet.Packet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pid, ok := s.byMgmt[id]
	if !ok {
		return nil, infra.WrapRepoErr("packet not found", nil, infra.KindNotFound)
	}
	p := s.records[pid]
	return clone(p, p.Version()), nil
}

func (s *PacketStore) List(_ context.Context, limit int) ([]*packet.Packet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*packet.Packet, 0, len(s.records))
	for _, p := range s.records {
		out = append(out, clone(p, p.Version()))
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// Create enforces uniqueness across both id namespaces, mirroring the unique
// indexes of the Postgres schema.
func (s *PacketStore) Create(_ context.Context, p *packet.Packet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[p.ID()]; exists {
		return infra.WrapRepoErr("duplicate packet id", nil, infra.KindDuplicateKey)
	}
	if _, exists := s.byMgmt[p.ManagementID()]; exists {
		return infra.WrapRepoErr("duplicate management id", nil, infra.KindDuplicateKey)
	}
	s.records[p.ID()] = clone(p, p.Version())
	s.byMgmt[p.ManagementID()] = p.ID()
	return nil
}

// Update commits only when the stored version still matches expectedVersion,
// then bumps it. A lost race surfaces as a STALE_STATE repository error.
func (s *PacketStore) Update(_ context.Context, p *packet.Packet, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.records[p.ID()]
	if !ok {
		return infra.WrapRepoErr("packet not found", nil, infra.KindNotFound)
	}
	if cur.Version() != expectedVersion {
		return infra.WrapRepoErr("version mismatch", nil, infra.KindStaleState)
	}
	s.records[p.ID()] = clone(p, expectedVersion+1)
	return nil
}

func clone(p *packet.Packet, version int64) *packet.Packet {
	var target *packet.Destination
	if p.RedirectTarget() != nil {
		d := *p.RedirectTarget()
		target = &d
	}
	var sale *packet.Sale
	if p.Sale() != nil {
		sl := *p.Sale()
		sale = &sl
	}
	return packet.ReconstructPacket(
		p.ID(),
		p.ManagementID(),
		p.QRCount(),
		p.State(),
		target,
		sale,
		p.Price(),
		copyStr(p.ArtifactURL()),
		p.UpdateCount(),
		copyTime(p.WindowStartedAt()),
		copyTime(p.LastConfiguredAt()),
		p.Deleted(),
		version,
		p.CreatedAt(),
		p.UpdatedAt(),
	)
}

func copyStr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// ActivityLog is the in-memory counterpart of the activities table.
type ActivityLog struct {
	mu     sync.Mutex
	events []activity.Event
}

func NewActivityLog() *ActivityLog {
	return &ActivityLog{}
}

func (l *ActivityLog) Append(_ context.Context, ev activity.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
	return nil
}

func (l *ActivityLog) Recent(_ context.Context, limit int) ([]activity.Event, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := len(l.events)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]activity.Event, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, l.events[i])
	}
	return out, nil
}
