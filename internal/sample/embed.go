// Package sample materialises a deterministic demo workspace (a note
// vault and a small git repository), ingests it, and can purge exactly
// what it created.
package sample

import "embed"

//go:embed fixtures
var fixturesFS embed.FS
