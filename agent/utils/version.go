package utils

// Version is set by the build, e.g. -ldflags "-X ...utils.Version=1.0.0".
var Version = "0.1.0-dev"
