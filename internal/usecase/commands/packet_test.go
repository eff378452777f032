//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"kyuaar/internal/domain/activity"
	"kyuaar/internal/domain/packet"
	"kyuaar/internal/infra/memstore"
	"kyuaar/internal/pkg/artifact"
	"kyuaar/internal/pkg/clock"
	"kyuaar/internal/pkg/config"
	"kyuaar/internal/pkg/errs"
	"kyuaar/internal/usecase/commands"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

// Smallest payload http.DetectContentType identifies as image/png.
var pngBytes = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}

type fixture struct {
	store *memstore.PacketStore
	log   *memstore.ActivityLog
	clock *clock.MockClock
	cmds  commands.PacketCommands
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store: memstore.NewPacketStore(),
		log:   memstore.NewActivityLog(),
		clock: clock.NewMockClock(testNow),
	}
	f.cmds = commands.NewPacketCommands(f.store, f.log, artifact.NewValidator(), f.clock, config.NewTestConfig())
	return f
}

func (f *fixture) createPacket(t *testing.T, qrCount int, price float64) *packet.Packet {
	t.Helper()
	p, err := f.cmds.Create(context.Background(), commands.CreatePacketInput{QRCount: qrCount, Price: price}, "tester")
	require.NoError(t, err)
	return p
}

func (f *fixture) createSetupDone(t *testing.T, qrCount int) *packet.Packet {
	t.Helper()
	p := f.createPacket(t, qrCount, 0)
	p, err := f.cmds.AttachArtifact(context.Background(), p.ID(), commands.AttachArtifactInput{
		ArtifactURL:  "https://storage.example.com/artifacts/" + p.ID().String() + ".png",
		Data:         pngBytes,
		DeclaredType: "image/png",
	}, "tester")
	require.NoError(t, err)
	return p
}

func TestPacketCommands_Create(t *testing.T) {
	t.Run("creates packet in initial state", func(t *testing.T) {
		f := newFixture(t)

		p := f.createPacket(t, 25, 0)

		assert.Equal(t, packet.StateSetupPending, p.State())
		assert.Equal(t, 25, p.QRCount())
		assert.Equal(t, int64(1), p.Version())
		assert.NotEmpty(t, p.ID().String())
		assert.NotEmpty(t, p.ManagementID().String())

		stored, err := f.store.FindByPacketID(context.Background(), p.ID())
		require.NoError(t, err)
		assert.Equal(t, p.ManagementID(), stored.ManagementID())
	})

	t.Run("records creation event", func(t *testing.T) {
		f := newFixture(t)

		p := f.createPacket(t, 10, 0)

		events, err := f.log.Recent(context.Background(), 10)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, activity.EventPacketCreated, events[0].Type)
		assert.Equal(t, p.ID(), events[0].PacketID)
		assert.Equal(t, "tester", events[0].Actor)
	})

	t.Run("rejects out-of-range qr count", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.cmds.Create(context.Background(), commands.CreatePacketInput{QRCount: 0}, "tester")
		assert.ErrorIs(t, err, errs.ErrValidation)

		_, err = f.cmds.Create(context.Background(), commands.CreatePacketInput{QRCount: 101}, "tester")
		assert.ErrorIs(t, err, errs.ErrValidation)
	})
}

func TestPacketCommands_AttachArtifact(t *testing.T) {
	t.Run("moves packet to setup done", func(t *testing.T) {
		f := newFixture(t)
		p := f.createPacket(t, 25, 0)

		updated, err := f.cmds.AttachArtifact(context.Background(), p.ID(), commands.AttachArtifactInput{
			ArtifactURL:  "https://storage.example.com/a.png",
			Data:         pngBytes,
			DeclaredType: "image/png",
		}, "tester")

		require.NoError(t, err)
		assert.Equal(t, packet.StateSetupDone, updated.State())
		require.NotNil(t, updated.ArtifactURL())
		assert.Equal(t, "https://storage.example.com/a.png", *updated.ArtifactURL())
	})

	t.Run("rejects unsupported content", func(t *testing.T) {
		f := newFixture(t)
		p := f.createPacket(t, 25, 0)

		_, err := f.cmds.AttachArtifact(context.Background(), p.ID(), commands.AttachArtifactInput{
			ArtifactURL: "https://storage.example.com/a.txt",
			Data:        []byte("plain text, not an image"),
		}, "tester")

		assert.ErrorIs(t, err, errs.ErrArtifactRejected)

		stored, findErr := f.store.FindByPacketID(context.Background(), p.ID())
		require.NoError(t, findErr)
		assert.Equal(t, packet.StateSetupPending, stored.State())
	})

	t.Run("rejects attach outside setup", func(t *testing.T) {
		f := newFixture(t)
		p := f.createSetupDone(t, 25)

		_, err := f.cmds.AttachArtifact(context.Background(), p.ID(), commands.AttachArtifactInput{
			ArtifactURL: "https://storage.example.com/b.png",
			Data:        pngBytes,
		}, "tester")

		assert.ErrorIs(t, err, errs.ErrInvalidState)
	})

	t.Run("unknown id", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.cmds.AttachArtifact(context.Background(), packet.PacketID("PKT-DEADBEEF"), commands.AttachArtifactInput{
			ArtifactURL: "https://storage.example.com/a.png",
			Data:        pngBytes,
		}, "tester")

		assert.ErrorIs(t, err, errs.ErrPacketNotFound)
	})
}

func TestPacketCommands_MarkSold(t *testing.T) {
	t.Run("records sale and opens configuration", func(t *testing.T) {
		f := newFixture(t)
		p := f.createSetupDone(t, 25)

		price := 500.0
		updated, err := f.cmds.MarkSold(context.Background(), p.ID(), commands.SellPacketInput{
			BuyerName: "Asha",
			SalePrice: &price,
		}, "tester")

		require.NoError(t, err)
		assert.Equal(t, packet.StateConfigPending, updated.State())
		require.NotNil(t, updated.Sale())
		assert.Equal(t, "Asha", updated.Sale().BuyerName())
		assert.Equal(t, 500.0, updated.Sale().Price())
		assert.Equal(t, testNow, updated.Sale().SoldAt())
	})

	t.Run("derives price from qr count when unset", func(t *testing.T) {
		f := newFixture(t)
		p := f.createSetupDone(t, 10)

		updated, err := f.cmds.MarkSold(context.Background(), p.ID(), commands.SellPacketInput{
			BuyerName: "Ravi",
		}, "tester")

		require.NoError(t, err)
		require.NotNil(t, updated.Sale())
		assert.Equal(t, 330.0, updated.Sale().Price())
	})

	t.Run("rejects sale before setup", func(t *testing.T) {
		f := newFixture(t)
		p := f.createPacket(t, 25, 0)

		_, err := f.cmds.MarkSold(context.Background(), p.ID(), commands.SellPacketInput{BuyerName: "Asha"}, "tester")
		assert.ErrorIs(t, err, errs.ErrInvalidState)
	})

	t.Run("rejects empty buyer name", func(t *testing.T) {
		f := newFixture(t)
		p := f.createSetupDone(t, 25)

		_, err := f.cmds.MarkSold(context.Background(), p.ID(), commands.SellPacketInput{BuyerName: "   "}, "tester")
		assert.ErrorIs(t, err, errs.ErrValidation)
	})
}

func TestPacketCommands_Reset(t *testing.T) {
	f := newFixture(t)
	p := f.createSetupDone(t, 25)
	_, err := f.cmds.MarkSold(context.Background(), p.ID(), commands.SellPacketInput{BuyerName: "Asha"}, "tester")
	require.NoError(t, err)

	updated, err := f.cmds.Reset(context.Background(), p.ID(), "tester")

	require.NoError(t, err)
	assert.Equal(t, packet.StateSetupPending, updated.State())
	assert.Nil(t, updated.Sale())
	assert.Nil(t, updated.RedirectTarget())
	assert.Nil(t, updated.ArtifactURL())
	assert.Zero(t, updated.UpdateCount())
}

func TestPacketCommands_Tombstone(t *testing.T) {
	t.Run("tombstoned packet behaves as missing", func(t *testing.T) {
		f := newFixture(t)
		p := f.createPacket(t, 25, 0)

		err := f.cmds.Tombstone(context.Background(), p.ID(), "tester")
		require.NoError(t, err)

		_, err = f.cmds.Reset(context.Background(), p.ID(), "tester")
		assert.ErrorIs(t, err, errs.ErrPacketNotFound)

		err = f.cmds.Tombstone(context.Background(), p.ID(), "tester")
		assert.ErrorIs(t, err, errs.ErrPacketNotFound)
	})

	t.Run("identifiers stay reserved", func(t *testing.T) {
		f := newFixture(t)
		p := f.createPacket(t, 25, 0)

		err := f.cmds.Tombstone(context.Background(), p.ID(), "tester")
		require.NoError(t, err)

		stored, err := f.store.FindByPacketID(context.Background(), p.ID())
		require.NoError(t, err)
		assert.True(t, stored.Deleted())
	})
}
