package config

// Application info
const (
	AppName    = "Dashboard de Ventas"
	AppVersion = "1.0.0"
	AppVendor  = "tres60 Kiosco"
)

// Build information, set through -ldflags.
var (
	Version   = AppVersion
	BuildTime = "unknown"
	GitCommit = "unknown"
)
