// Package server holds the game server (region) configuration.
//
// Master data is published per game server region. The configured region decides
// which dump prefix the import sources read from.
//
// # Usage
//
// This package is embedded by core/config and consulted by the import command
// when building a storage-backed source.
package server
