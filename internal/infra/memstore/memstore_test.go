//go:build unit

package memstore_test

import (
	"context"
	"testing"
	"time"

	"kyuaar/internal/domain/packet"
	"kyuaar/internal/infra"
	"kyuaar/internal/infra/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func newStoredPacket(t *testing.T, store *memstore.PacketStore) *packet.Packet {
	t.Helper()
	p, err := packet.NewPacket(packet.NewIdentifierPair(), 10, 0, testNow)
	require.NoError(t, err)
	require.NoError(t, store.Create(context.Background(), p))
	return p
}

func TestPacketStore_Create(t *testing.T) {
	store := memstore.NewPacketStore()
	ctx := context.Background()
	p := newStoredPacket(t, store)

	t.Run("duplicate packet id rejected", func(t *testing.T) {
		dup := packet.ReconstructPacket(
			p.ID(), packet.NewIdentifierPair().ManagementID, 10, packet.StateSetupPending,
			nil, nil, 0, nil, 0, nil, nil, false, 1, testNow, testNow,
		)
		err := store.Create(ctx, dup)
		assert.True(t, infra.IsKind(err, infra.KindDuplicateKey))
	})

	t.Run("duplicate management id rejected", func(t *testing.T) {
		dup := packet.ReconstructPacket(
			packet.NewIdentifierPair().PacketID, p.ManagementID(), 10, packet.StateSetupPending,
			nil, nil, 0, nil, 0, nil, nil, false, 1, testNow, testNow,
		)
		err := store.Create(ctx, dup)
		assert.True(t, infra.IsKind(err, infra.KindDuplicateKey))
	})
}

func TestPacketStore_Lookup(t *testing.T) {
	store := memstore.NewPacketStore()
	ctx := context.Background()
	p := newStoredPacket(t, store)

	t.Run("both namespaces resolve the same record", func(t *testing.T) {
		byPkt, err := store.FindByPacketID(ctx, p.ID())
		require.NoError(t, err)
		byMgmt, err := store.FindByManagementID(ctx, p.ManagementID())
		require.NoError(t, err)
		assert.Equal(t, byPkt.ID(), byMgmt.ID())
	})

	t.Run("missing ids", func(t *testing.T) {
		_, err := store.FindByPacketID(ctx, packet.PacketID("PKT-DEADBEEF"))
		assert.True(t, infra.IsKind(err, infra.KindNotFound))
		_, err = store.FindByManagementID(ctx, packet.ManagementID("MGT-DEADBEEF00"))
		assert.True(t, infra.IsKind(err, infra.KindNotFound))
	})

	t.Run("returned packet is a copy", func(t *testing.T) {
		loaded, err := store.FindByPacketID(ctx, p.ID())
		require.NoError(t, err)
		require.NoError(t, loaded.AttachArtifact("https://storage.example.com/a.png", testNow))

		reloaded, err := store.FindByPacketID(ctx, p.ID())
		require.NoError(t, err)
		assert.Equal(t, packet.StateSetupPending, reloaded.State())
	})
}

func TestPacketStore_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("bumps the version on success", func(t *testing.T) {
		store := memstore.NewPacketStore()
		p := newStoredPacket(t, store)

		require.NoError(t, p.AttachArtifact("https://storage.example.com/a.png", testNow))
		require.NoError(t, store.Update(ctx, p, p.Version()))

		stored, err := store.FindByPacketID(ctx, p.ID())
		require.NoError(t, err)
		assert.Equal(t, int64(2), stored.Version())
		assert.Equal(t, packet.StateSetupDone, stored.State())
	})

	t.Run("stale version loses", func(t *testing.T) {
		store := memstore.NewPacketStore()
		p := newStoredPacket(t, store)

		first, err := store.FindByPacketID(ctx, p.ID())
		require.NoError(t, err)
		second, err := store.FindByPacketID(ctx, p.ID())
		require.NoError(t, err)

		require.NoError(t, first.AttachArtifact("https://storage.example.com/a.png", testNow))
		require.NoError(t, store.Update(ctx, first, first.Version()))

		require.NoError(t, second.AttachArtifact("https://storage.example.com/b.png", testNow))
		err = store.Update(ctx, second, second.Version())
		assert.True(t, infra.IsKind(err, infra.KindStaleState))
	})

	t.Run("unknown id", func(t *testing.T) {
		store := memstore.NewPacketStore()
		p, err := packet.NewPacket(packet.NewIdentifierPair(), 10, 0, testNow)
		require.NoError(t, err)

		err = store.Update(ctx, p, p.Version())
		assert.True(t, infra.IsKind(err, infra.KindNotFound))
	})
}
