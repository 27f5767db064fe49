package config

import "errors"

// ErrInvalidConfig is wrapped by Load when a required environment key is
// absent; callers map this to spec §6's exit code 2.
var ErrInvalidConfig = errors.New("invalid environment configuration")
