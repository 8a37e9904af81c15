// Package app wires the domain services onto a SQLite database.
package app

import (
	"github.com/rpggio/grantflow/internal/domain/activity"
	"github.com/rpggio/grantflow/internal/domain/custody"
	"github.com/rpggio/grantflow/internal/domain/stream"
	"github.com/rpggio/grantflow/internal/domain/treasury"
	"github.com/rpggio/grantflow/internal/domain/vesting"
	"github.com/rpggio/grantflow/internal/events"
	"github.com/rpggio/grantflow/internal/sqlite"
	"github.com/rs/zerolog"
)

// Services holds every domain service of one database.
type Services struct {
	Treasuries *treasury.Service
	Streams    *stream.Service
	Vestings   *vesting.Service
	Custody    *custody.Service
	Activity   *activity.Service
	APIKeys    *sqlite.APIKeyRepository
}

// NewServices builds the services. A nil publisher disables lifecycle events.
func NewServices(db *sqlite.DB, publisher events.Publisher, logger zerolog.Logger) *Services {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}

	treasuryRepo := sqlite.NewTreasuryRepository(db)
	activityRepo := sqlite.NewActivityRepository(db)
	custodySvc := custody.NewService(sqlite.NewCustodyRepository(db), db, logger.With().Str("service", "custody").Logger())

	return &Services{
		Treasuries: treasury.NewService(treasuryRepo, activityRepo, db, publisher,
			logger.With().Str("service", "treasury").Logger()),
		Streams: stream.NewService(sqlite.NewStreamRepository(db), treasuryRepo, custodySvc, activityRepo, db, publisher,
			logger.With().Str("service", "stream").Logger()),
		Vestings: vesting.NewService(sqlite.NewVestingRepository(db), treasuryRepo, custodySvc, activityRepo, db, publisher,
			logger.With().Str("service", "vesting").Logger()),
		Custody:  custodySvc,
		Activity: activity.NewService(activityRepo, logger.With().Str("service", "activity").Logger()),
		APIKeys:  sqlite.NewAPIKeyRepository(db),
	}
}
