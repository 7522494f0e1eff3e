// Package config loads the runtime settings of the race server.
//
// Settings come from three layers, later layers winning:
//
//  1. Compiled-in defaults (Default)
//  2. An optional JSON settings file
//  3. TYPERACE_* environment variables
//
// Duration values in the settings file are JSON numbers in nanoseconds;
// environment overrides accept Go duration strings such as "30s" or "2h".
package config
