/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mediacrush

import (
	"crypto/md5"
	"encoding/hex"

	"github.com/google/uuid"
)

// IdentifierLength is the length of generated identifiers.
const IdentifierLength = 12

// NewIdentifier returns the first IdentifierLength hex characters of the MD5
// of a random UUID.
func NewIdentifier() string {
	u := uuid.New()
	sum := md5.Sum(u[:])
	return hex.EncodeToString(sum[:])[:IdentifierLength]
}

// Base carries the identifier of an entity. Embed it to satisfy registry.Entity.
type Base struct {
	Hash string
}

// Identifier returns the entity identifier.
func (b *Base) Identifier() string {
	return b.Hash
}

// SetIdentifier replaces the entity identifier.
func (b *Base) SetIdentifier(id string) {
	b.Hash = id
}
