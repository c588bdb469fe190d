package data

import (
	_ "embed"
)

// SeedCatalog is the starter catalog loaded by `shopctl seed`
//
//go:embed seed/catalog.json
var SeedCatalog []byte
