package config

import "os"

// IsDebug reports whether debug logging was requested through the
// environment. The --debug flag overrides it.
func IsDebug() bool {
	return os.Getenv("TUSK_DEBUG") == "1" || os.Getenv("TUSKMEM_DEBUG") == "1"
}
