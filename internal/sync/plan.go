package sync

import "github.com/schaermu/bintool/internal/manifest"

// Plan represents the tidy operations to perform. Records that are
// still valid appear in neither list and are never rewritten.
type Plan struct {
	Add    []manifest.Bin
	Remove []manifest.Bin
}
