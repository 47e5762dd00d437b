// Package cli is the dreamtracer command-line client.
//
// Every command shares one App: local database, API client, services and
// stores built from config.LoadConfig. The shell command keeps that App
// open and runs each input line through the same command tree while a
// background watcher tracks connectivity and syncs pending dreams when
// the server comes back.
package cli
