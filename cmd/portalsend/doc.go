// Package main provides the portalsend command-line interface.
//
// # Overview
//
// portalsend pushes a file to a receiver on the local network with a single
// HTTP POST. The same binary runs the application layer, forwards shortcut
// and share invocations to it, performs headless one-shot sends, and runs a
// receiver.
//
// # Usage
//
//	portalsend [global options] <command> [arguments]
//
// Commands:
//   - app: run the application layer (launcher socket + route bridge)
//   - tile: open the send screen, as the home-screen shortcut does
//   - share <path>: hand a file to the send screen
//   - send <path>: headless send of one file to the stored receiver
//   - receive: accept uploads into a directory
//   - set-receiver <address>: store the receiver address
//
// tile and share forward their event to a running app over the launcher
// socket and cold start the app when none is running.
//
// # Configuration Options
//
// Global options:
//   - -config: path to portalsend.toml (default: none, built-in defaults)
//   - -log-level: DEBUG, INFO, WARN or ERROR (default from config, INFO)
//   - -log-format: text or json
//   - -help: show usage
//
// Environment variables prefixed PORTALSEND_ override the configuration
// file; see package config.
//
// # Exit Codes
//
//   - 0: success
//   - 1: the command failed
//   - 2: usage error
package main
