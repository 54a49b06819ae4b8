// Package app wires the license server together: configuration, logging,
// observability providers, the file-backed record store, the license
// engine, the service layer and the chi routing tree, plus server
// lifecycle with graceful shutdown.
package app
