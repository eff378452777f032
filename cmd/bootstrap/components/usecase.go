package components

import (
	"kyuaar/internal/pkg/artifact"
	"kyuaar/internal/pkg/clock"
	"kyuaar/internal/usecase/commands"
	"kyuaar/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseCommandsModule,
	usecaseQueriesModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	fx.Annotate(
		artifact.NewValidator,
		fx.As(new(commands.ArtifactValidator)),
	),
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewPacketCommands,
		commands.NewConfigureCommands,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewScanQueries,
		queries.NewPacketQueries,
		queries.NewActivityQueries,
	),
)
