package commands

import (
	"context"

	"github.com/doeshing/gpa/internal/app"
	configinfra "github.com/doeshing/gpa/internal/infrastructure/config"
	"github.com/doeshing/gpa/internal/ports"
)

// Env gives commands lazy access to the container so that commands that
// only need the config file never open the cache or history stores.
type Env struct {
	Container    func(ctx context.Context) (*app.Container, error)
	ConfigLoader func() *configinfra.FileLoader
	Prompter     ports.ConfirmationPrompter
}

// Error messages
const (
	ErrDoctorServiceUnavailable = "doctor service unavailable"
	ErrHistoryStoreUnavailable  = "history store unavailable"
	ErrCacheStoreUnavailable    = "cache store unavailable"
	ErrConfirmationRequired     = "refusing to clear without confirmation; pass --yes"
)

// Success messages
const (
	MsgConfigurationValid       = "Configuration valid"
	MsgNoDifferencesFromDefault = "No differences from default configuration."
	MsgNoHistoryRecorded        = "No runs recorded yet."
	MsgNoCachedResults          = "No cached results."
	MsgCacheCleared             = "Cache cleared."
	MsgHistoryCleared           = "History cleared."
	MsgCancelled                = "Cancelled."
)
