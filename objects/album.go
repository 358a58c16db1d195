/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package objects

import (
	"strings"

	"github.com/dbanda/MediaCrush"
	"github.com/dbanda/MediaCrush/registry"
)

// Album is an ordered collection of files.
type Album struct {
	mediacrush.Base

	// Items holds file identifiers in display order.
	Items       []string
	IP          *string
	Metadata    *string
	Title       *string
	Description *string
	TextLocked  bool
}

func albumSchema() registry.Schema {
	return registry.Schema{
		Tag: "album",
		New: func() registry.Entity { return &Album{} },
		Fields: []registry.Field{
			// stored under its historical name as a comma separated list
			registry.FieldOf("_items",
				func(a *Album) any {
					if a.Items == nil {
						return nil
					}
					return strings.Join(a.Items, ",")
				},
				func(a *Album, v any) error {
					s, err := registry.AsString(v)
					if err != nil {
						return err
					}
					a.Items = splitItems(s)
					return nil
				}),
			registry.StringField("ip", func(a *Album) **string { return &a.IP }),
			registry.StringField("metadata", func(a *Album) **string { return &a.Metadata }),
			registry.StringField("title", func(a *Album) **string { return &a.Title }),
			registry.StringField("description", func(a *Album) **string { return &a.Description }),
			registry.BoolField("text_locked", func(a *Album) *bool { return &a.TextLocked }),
		},
	}
}

func splitItems(s *string) []string {
	if s == nil {
		return nil
	}
	if *s == "" {
		return []string{}
	}
	return strings.Split(*s, ",")
}
