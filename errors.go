package wisp

import (
	"github.com/wispengine/wisp/command"
	"github.com/wispengine/wisp/search"
	"github.com/wispengine/wisp/storage"
)

var (
	ErrEntityDoesNotExist      = storage.ErrEntityDoesNotExist
	ErrComponentNotOnEntity    = storage.ErrComponentNotOnEntity
	ErrMustRegisterComponent   = storage.ErrMustRegisterComponent
	ErrComponentSchemaChanged  = storage.ErrComponentSchemaChanged
	ErrNoEntitiesFound         = search.ErrNoEntitiesFound
	ErrInconsistentReservation = command.ErrInconsistentReservation
)
