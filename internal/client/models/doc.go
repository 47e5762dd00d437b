// Package models defines the client-side data model: locally stored dream
// records, their server mirror, analysis and visualization results, plans
// and quotas, community posts and sync bookkeeping.
package models
