// Package file loads and saves engine settings from a TOML file in the
// LoreVault data directory.
package file
