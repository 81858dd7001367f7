// Package config loads service configuration from layered sources.
//
// Precedence, lowest to highest:
//  1. Built-in defaults
//  2. An optional YAML config file
//  3. MUSICSYNC_* environment variables
//
// Secrets (the bot token, the image-generation API key) have no file
// defaults and are expected to arrive via environment variables.
package config
