// Package config manages tutorgen configuration with a layered merge:
// built-in defaults, then the JSON config file in the platform config
// directory, then environment variables (CACHE_ENABLED, CACHE_FILE,
// CACHE_BACKEND, LOG_DIR, OUTPUT_DIR, TUTORGEN_PROVIDER, TUTORGEN_MODEL),
// then CLI flag overrides. Later layers win.
package config
