// Package insights derives statistics from a list of dreams: tag
// frequencies, score averages and trends, recurring themes, similarity
// links between dreams and simple predictions.
//
// All functions are pure. PatternService adds a time-boxed cache around
// them for callers that recompute on every screen refresh.
//
// Frequency lists are ordered by descending count. Items with equal counts
// keep the order in which they were first seen while walking the input.
package insights
