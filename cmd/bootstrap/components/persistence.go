package components

import (
	"parkly/internal/infra/store"
	"parkly/internal/infra/uow"
	"parkly/internal/usecase/queries"
	"parkly/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		NewDBTX,
		uow.NewPostgresUoW,
		fx.Annotate(
			store.NewScheduleReadStore,
			fx.As(new(queries.ScheduleReadStore)),
		),
		// Pool-backed override store for reads outside a transaction
		// (the restoration sweeper's listing).
		fx.Annotate(
			store.NewOverrideStore,
			fx.As(new(shared.OverrideStore)),
		),
	),
)

func NewDBTX(pool *pgxpool.Pool) store.DBTX {
	return pool
}
