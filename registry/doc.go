/*
Package registry manages type registration and membership for the MediaCrush
object store.

The registry enables:
  - Polymorphic lookup of an entity from a bare identifier
  - Explicit per-type schemas of (field name, get, set) triples
  - A reflection fallback for types that do not declare their fields

Schemas:
Each concrete type is registered once, typically at start-up:

	reg.Register(registry.Schema{
	    Tag: "album",
	    New: func() registry.Entity { return &Album{} },
	    Fields: []registry.Field{
	        registry.StringField("title", func(a *Album) **string { return &a.Title }),
	        registry.BoolField("text_locked", func(a *Album) *bool { return &a.TextLocked }),
	    },
	})

Membership:
Identifiers persisted as a type are kept in the set <ns>.<tag>. The hash
<ns>.type-index maps each identifier to its tag so Resolve is a single lookup.
Records written without an index entry are resolved by checking every set; an
identifier found in more than one set is reported as ambiguous instead of
being assigned to whichever type happens to be checked first.
*/
package registry
