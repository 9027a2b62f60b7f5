package constants

const (
	AppName            = "daylap"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/daylap/daylap.db"
	Version            = "v0.3.0"
)
