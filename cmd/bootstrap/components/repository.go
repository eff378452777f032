package components

import (
	repo_impl "kyuaar/internal/infra/repository"
	"kyuaar/internal/usecase/commands"
	"kyuaar/internal/usecase/queries"

	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		// One repository instance backs both the command and query sides:
		// the write path needs the CAS update, the read paths need the
		// lookups and the listing.
		fx.Annotate(
			repo_impl.NewPacketRepository,
			fx.As(new(commands.PacketStore)),
			fx.As(new(queries.PacketReadStore)),
			fx.As(new(queries.PacketListStore)),
		),
		fx.Annotate(
			repo_impl.NewActivityRepository,
			fx.As(new(commands.ActivityLog)),
			fx.As(new(queries.ActivityReadStore)),
		),
	),
)
