// Package cli provides the interactive taskkeeper command-line client.
//
// It wires configuration, the local session store, the API client and the
// services behind a line-based REPL. Task commands need a signed-in session;
// without one they ask the user to log in first. A session rejected by the
// server is forgotten and the user is asked to log in again.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
