/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package objects

import (
	"strings"

	"github.com/go-openapi/strfmt"

	"github.com/dbanda/MediaCrush"
	"github.com/dbanda/MediaCrush/errors"
	"github.com/dbanda/MediaCrush/flags"
	"github.com/dbanda/MediaCrush/registry"
)

// TaskDone replaces the job identifier once the job has succeeded.
const TaskDone = "done"

// File is an uploaded media file.
type File struct {
	mediacrush.Base

	Original    *string
	Mimetype    *string
	Compression float64
	Reports     int64
	IP          *string
	TaskID      *string
	Metadata    *string
	Title       *string
	Description *string
	TextLocked  bool

	processor *string
	rawVector int64
	bits      *flags.BitVector
	catalog   flags.Catalog
}

// NewFile returns an empty file whose processor options come from catalog.
func NewFile(catalog flags.Catalog) *File {
	return &File{catalog: catalog}
}

// Processor returns the processor name, or "" when unset.
func (f *File) Processor() string {
	if f.processor == nil {
		return ""
	}
	return *f.processor
}

// SetProcessor stores the processor name and reinterprets the current config
// vector, including flag changes, against that processor's options.
func (f *File) SetProcessor(name string) {
	if f.bits != nil {
		f.rawVector = f.bits.Value()
	}
	f.processor = &name
	f.derive()
}

// ConfigVector returns the integer form of the flags, or 0 before a
// processor has been set.
func (f *File) ConfigVector() int64 {
	if f.bits == nil {
		return 0
	}
	return f.bits.Value()
}

// SetConfigVector replaces the raw config vector.
func (f *File) SetConfigVector(vec int64) {
	f.rawVector = vec
	if f.bits != nil {
		f.derive()
	}
}

// Flags returns the derived options, or nil before a processor has been set.
func (f *File) Flags() *flags.BitVector {
	return f.bits
}

func (f *File) derive() {
	f.bits = flags.NewBitVector(f.catalog.Names(f.Processor()), f.rawVector)
}

var _ mediacrush.Validator = (*File)(nil)

// Validate checks the submitter address and the MIME type shape. Store.Save
// runs it before every write.
func (f *File) Validate() error {
	if f.IP != nil && *f.IP != "" {
		if !strfmt.Default.Validates("ipv4", *f.IP) && !strfmt.Default.Validates("ipv6", *f.IP) {
			return errors.NewValidationError("ip", "not an IPv4 or IPv6 address")
		}
	}
	if f.Mimetype != nil && *f.Mimetype != "" {
		major, minor, ok := strings.Cut(*f.Mimetype, "/")
		if !ok || major == "" || minor == "" || strings.ContainsAny(minor, "/ ") {
			return errors.NewValidationError("mimetype", "expected type/subtype")
		}
	}
	return nil
}

func fileSchema(catalog flags.Catalog) registry.Schema {
	return registry.Schema{
		Tag: "file",
		New: func() registry.Entity { return NewFile(catalog) },
		Fields: []registry.Field{
			registry.StringField("original", func(f *File) **string { return &f.Original }),
			registry.StringField("mimetype", func(f *File) **string { return &f.Mimetype }),
			registry.FloatField("compression", func(f *File) *float64 { return &f.Compression }),
			registry.IntField("reports", func(f *File) *int64 { return &f.Reports }),
			registry.StringField("ip", func(f *File) **string { return &f.IP }),
			registry.StringField("taskid", func(f *File) **string { return &f.TaskID }),
			registry.FieldOf("processor",
				func(f *File) any {
					if f.processor == nil {
						return nil
					}
					return *f.processor
				},
				func(f *File, v any) error {
					s, err := registry.AsString(v)
					if err != nil {
						return err
					}
					if s == nil {
						f.processor = nil
						f.bits = nil
						return nil
					}
					f.SetProcessor(*s)
					return nil
				}),
			registry.FieldOf("configvector",
				func(f *File) any { return f.ConfigVector() },
				func(f *File, v any) error {
					n, err := registry.AsInt(v)
					if err != nil {
						return err
					}
					f.SetConfigVector(n)
					return nil
				}),
			registry.StringField("metadata", func(f *File) **string { return &f.Metadata }),
			registry.StringField("title", func(f *File) **string { return &f.Title }),
			registry.StringField("description", func(f *File) **string { return &f.Description }),
			registry.BoolField("text_locked", func(f *File) *bool { return &f.TextLocked }),
		},
	}
}
