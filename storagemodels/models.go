/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"strings"
)

// DefaultNamespace prefixes every key when no namespace is configured.
const DefaultNamespace Namespace = "mediacrush"

const (
	reportsSet = "reports-triggered"
	typeIndex  = "type-index"
)

// Namespace builds the backend key layout:
//
//	<ns>.<tag>.<id>         hash record of one entity
//	<ns>.<tag>              membership set of a type
//	<ns>.reports-triggered  identifiers queued for moderation
//	<ns>.type-index         hash of id -> tag
type Namespace string

// Key joins parts under the namespace with dots.
func (n Namespace) Key(parts ...string) string {
	if n == "" {
		n = DefaultNamespace
	}
	return string(n) + "." + strings.Join(parts, ".")
}

// RecordKey is the hash key of one entity.
func (n Namespace) RecordKey(tag, id string) string {
	return n.Key(tag, id)
}

// RecordPrefix is the key prefix shared by every record of a type.
func (n Namespace) RecordPrefix(tag string) string {
	return n.Key(tag) + "."
}

// MembershipKey is the set key listing identifiers persisted as tag.
func (n Namespace) MembershipKey(tag string) string {
	return n.Key(tag)
}

// ReportsKey is the moderation queue set.
func (n Namespace) ReportsKey() string {
	return n.Key(reportsSet)
}

// IndexKey is the id -> tag hash.
func (n Namespace) IndexKey() string {
	return n.Key(typeIndex)
}

// IDFromRecordKey extracts the identifier suffix of a record key of tag.
// It returns false when key does not belong to tag's namespace.
func (n Namespace) IDFromRecordKey(tag, key string) (string, bool) {
	id, ok := strings.CutPrefix(key, n.RecordPrefix(tag))
	if !ok || id == "" || strings.Contains(id, ".") {
		return "", false
	}
	return id, true
}
