package arttic

// Version is set at build time with -ldflags "-X github.com/aretw0/arttic.Version=...".
var Version = "0.1.0-dev"
