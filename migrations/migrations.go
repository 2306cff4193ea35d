// Package migrations expone los scripts SQL embebidos que aplica restaurantctl migrate.
package migrations

import "embed"

// Postgres scripts en orden lexicográfico (0001_, 0002_, ...).
//
//go:embed postgres/*.sql
var Postgres embed.FS
