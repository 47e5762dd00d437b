// Package services holds the DreamTracer client application services.
//
// LocalStorageService owns the on-device SQLite store. ServerSyncService
// mirrors records to the backend. HybridDataManager combines the two into
// the local-first flows used by the UI layer: every write lands locally
// first and is pushed to the server opportunistically.
//
// The remaining services (auth, analysis, visualization, dreams, community)
// are thin wrappers over client.Client that add caching or formatting.
package services
