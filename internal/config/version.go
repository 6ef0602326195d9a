package config

// Version is the courtsec binary version.
// Set at build time via: -ldflags "-X github.com/courtsec/courtsec/internal/config.Version=<tag>"
// Defaults to "dev" when built without ldflags.
var Version = "dev"
