/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package objects

import (
	"github.com/dbanda/MediaCrush"
	"github.com/dbanda/MediaCrush/flags"
	"github.com/dbanda/MediaCrush/registry"
)

// Feedback is free text sent by a user.
type Feedback struct {
	mediacrush.Base

	Text      string
	UserAgent string `kv:"useragent"`
}

// FailedFile records an upload that failed outside the normal file lifecycle.
type FailedFile struct {
	mediacrush.Base

	Status string
}

// Register declares every entity type on reg. File processors take their
// options from catalog.
func Register(reg *registry.Registry, catalog flags.Catalog) {
	reg.Register(fileSchema(catalog))
	reg.Register(albumSchema())
	reg.Register(registry.Schema{
		Tag:    "feedback",
		New:    func() registry.Entity { return &Feedback{} },
		Fields: registry.Discover[*Feedback](),
	})
	reg.Register(registry.Schema{
		Tag:    "failedfile",
		New:    func() registry.Entity { return &FailedFile{} },
		Fields: registry.Discover[*FailedFile](),
	})
}
