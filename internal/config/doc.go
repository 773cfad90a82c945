// Package config resolves player settings.
//
// Values come from built-in defaults, an optional .env file, RINGPLAY_*
// environment variables and command-line flags, in increasing order of
// precedence.
package config
