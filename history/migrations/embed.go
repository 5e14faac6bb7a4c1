/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package migrations

import "embed"

// FS contains the embedded history schema migrations.
//
//go:embed *.sql
var FS embed.FS
