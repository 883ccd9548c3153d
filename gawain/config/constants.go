package config

import "time"

// UI and Display Constants
const (
	DefaultPageSize = 10
	MaxChoices      = 25 // Discord autocomplete limit

	// Colors
	ErrorColor   = 0xFF0000
	SuccessColor = 0x00FF00
	InfoColor    = 0x0099FF
	WarningColor = 0xFFAA00

	// Discord UI Colors
	BackgroundColor   = 0x2B2D31
	EmbedDefaultColor = 0x2B2D31
)

// Request status colors
const (
	PendingColor   = 0xFFAA00
	AcceptedColor  = 0x0099FF
	CompletedColor = 0x00FF00
	CancelledColor = 0x808080
)

// Database and Performance Constants
const (
	DefaultQueryTimeout = 30 * time.Second
	BatchQueryTimeout   = 5 * time.Minute
	AutocompleteTimeout = 2 * time.Second

	RoleCacheSize = 256
	RoleCacheTTL  = 10 * time.Minute
)

// Interaction handling
const (
	SlowCommandThreshold = 2 * time.Second
	CommandTimeout       = 10 * time.Second
)
