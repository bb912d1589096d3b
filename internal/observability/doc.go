// Package observability records what happened during report generation.
// Events are appended to a JSON Lines file and enhancement statistics are
// derived from it on demand.
package observability
