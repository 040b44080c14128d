// Package migrations registers the schema migrations with pkg/migration.
// cmd/botilleria imports it for its init side effects.
package migrations
