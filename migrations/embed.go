// Package migrations embeds the versioned SQL schema so the server, the
// migration script and the tests all apply the same files.
package migrations

import "embed"

//go:embed *.sql
var Files embed.FS
