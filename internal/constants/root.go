package constants

import "time"

const (
	AppName            = "habitual"
	Version            = "v0.3.0"
	DefaultConfigDir   = "~/.config/habitual"
	DefaultConfigFile  = "config.yaml"
	DefaultStorePath   = "~/.config/habitual/habitual.db"
	DefaultKeyringUser = "session-token"
	KeyringStoreUser   = "store-connection"
	KeyringSigningUser = "signing-key"

	// StoreKeyring reads the store connection string from the OS keyring.
	StoreKeyring = "keyring"

	// StoreMemory selects the in-process document store.
	StoreMemory = "memory"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// Environment
	EnvPrefix      = "HABITUAL_"
	EnvStore       = EnvPrefix + "STORE"
	EnvTimezone    = EnvPrefix + "TIMEZONE"
	EnvFirstDay    = EnvPrefix + "FIRST_WEEKDAY"
	EnvRefresh     = EnvPrefix + "REFRESH_INTERVAL"
	EnvRetries     = EnvPrefix + "FETCH_RETRIES"
	EnvJWTSecret   = EnvPrefix + "JWT_SECRET"
	EnvTokenTTL    = EnvPrefix + "TOKEN_TTL"
	EnvDebug       = EnvPrefix + "DEBUG"
	EnvDBPassword  = "PGPASSWORD"
	DotEnvFileName = ".env"

	// Defaults
	DefaultTimezone        = "Local"
	DefaultFirstWeekday    = time.Sunday
	DefaultRefreshInterval = 30 * time.Second
	DefaultFetchRetries    = 3
	DefaultFetchRetryDelay = 200 * time.Millisecond
	DefaultTokenTTL        = 30 * 24 * time.Hour

	// PaletteSize is the number of selectable habit colors.
	PaletteSize = 12

	// NextOccurrenceHorizonDays bounds the search for a habit's next due day.
	NextOccurrenceHorizonDays = 366
)

// Document store layout
const (
	CollectionUsers    = "users"
	CollectionHabits   = "habits"
	CollectionAccounts = "accounts"
)

// Habit document field names
const (
	FieldID         = "id"
	FieldName       = "name"
	FieldLabel      = "label"
	FieldColorIndex = "colorIndex"
	FieldProgress   = "progress"
	FieldGoal       = "goal"
	FieldUnit       = "unit"
	FieldStartDate  = "startDate"
	FieldRepeatRule = "repeatRule"
	FieldIsWeekly   = "isWeekly"
	FieldEmail      = "email"
	FieldRuleType   = "type"
	FieldCustomDays = "customDays"
)
