// Package archive keeps JSON snapshots of deleted elements so removed
// metadata can be inspected or restored by hand.
package archive

import (
	"context"

	"github.com/dmitrijs2005/metakeeper/internal/server/models"
)

// Archiver stores snapshots of elements that are about to disappear.
type Archiver interface {
	Archive(ctx context.Context, elements []*models.Element) error
}

// NopArchiver drops snapshots. Used when no bucket is configured.
type NopArchiver struct{}

func (NopArchiver) Archive(context.Context, []*models.Element) error { return nil }
