package api

import (
	"fmt"

	"github.com/JaimeStill/hearth/internal/analytics"
	"github.com/JaimeStill/hearth/internal/config"
	"github.com/JaimeStill/hearth/internal/events"
	"github.com/JaimeStill/hearth/internal/lottery"
	"github.com/JaimeStill/hearth/internal/messages"
	"github.com/JaimeStill/hearth/internal/overview"
	"github.com/JaimeStill/hearth/internal/photos"
	"github.com/JaimeStill/hearth/internal/records"
	"github.com/JaimeStill/hearth/internal/wishes"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Records   records.System
	Analytics analytics.System
	Messages  messages.System
	Lottery   lottery.System
	Wishes    wishes.System
	Events    events.System
	Photos    photos.System
	Overview  overview.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(cfg *config.Config, runtime *Runtime) (*Domain, error) {
	store, err := newRecordStore(&cfg.Store, runtime)
	if err != nil {
		return nil, err
	}

	photoSystem := photos.New(runtime.Storage, runtime.Logger)

	recordSystem := records.New(
		store,
		cfg.Store.Backend,
		runtime.Engine,
		runtime.Clock,
		photoSystem,
		runtime.Logger,
		runtime.Pagination,
	)

	analyticsSystem := analytics.New(recordSystem, runtime.Clock, runtime.Logger)
	messageSystem := messages.New(cfg.Store.MessagesPath(), runtime.Clock, runtime.Logger)
	wishSystem := wishes.New(cfg.Store.WishesPath(), runtime.Logger)
	eventSystem := events.New(cfg.Store.EventsPath(), runtime.Clock, runtime.Logger)

	return &Domain{
		Records:   recordSystem,
		Analytics: analyticsSystem,
		Messages:  messageSystem,
		Lottery:   lottery.New(cfg.Store.LotteryPath(), nil, runtime.Logger),
		Wishes:    wishSystem,
		Events:    eventSystem,
		Photos:    photoSystem,
		Overview: overview.New(
			recordSystem,
			analyticsSystem,
			wishSystem,
			eventSystem,
			messageSystem,
			runtime.Logger,
		),
	}, nil
}

// Start registers domain startup hooks with the lifecycle coordinator.
func (d *Domain) Start(runtime *Runtime) error {
	return d.Records.Start(runtime.Lifecycle)
}

func newRecordStore(cfg *config.StoreConfig, runtime *Runtime) (records.Store, error) {
	switch cfg.Backend {
	case config.BackendCSV:
		return records.NewCSVStore(cfg.RecordsPath(), runtime.Logger), nil
	case config.BackendXLSX:
		return records.NewXLSXStore(cfg.RecordsPath(), runtime.Logger), nil
	case config.BackendPostgres:
		if runtime.Database == nil {
			return nil, fmt.Errorf("postgres backend requires a database")
		}
		runtime.Database.Require(records.PostgresTable)
		return records.NewPostgresStore(runtime.Database.Connection(), runtime.Logger), nil
	default:
		return nil, fmt.Errorf("unsupported record backend %q", cfg.Backend)
	}
}
