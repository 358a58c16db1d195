/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"context"
	"fmt"

	"github.com/dbanda/MediaCrush/errors"
)

// MarkMember records id as persisted under tag: it joins the type's membership
// set and the id -> tag index.
func (r *Registry) MarkMember(ctx context.Context, tag, id string) error {
	if _, err := r.Schema(tag); err != nil {
		return err
	}
	if err := r.backend.SAdd(ctx, r.ns.MembershipKey(tag), id); err != nil {
		return fmt.Errorf("mark %s member: %w", tag, err)
	}
	if err := r.backend.HSet(ctx, r.ns.IndexKey(), map[string]string{id: tag}); err != nil {
		return fmt.Errorf("index %s as %s: %w", id, tag, err)
	}
	return nil
}

// Unmark removes id from tag's set and drops its index entry when the index
// points at tag. Unmarking an absent id is a no-op.
func (r *Registry) Unmark(ctx context.Context, tag, id string) error {
	if err := r.backend.SRem(ctx, r.ns.MembershipKey(tag), id); err != nil {
		return fmt.Errorf("unmark %s member: %w", tag, err)
	}
	indexed, ok, err := r.backend.HGet(ctx, r.ns.IndexKey(), id)
	if err != nil {
		return fmt.Errorf("read index for %s: %w", id, err)
	}
	if ok && indexed == tag {
		if err := r.backend.HDel(ctx, r.ns.IndexKey(), id); err != nil {
			return fmt.Errorf("drop index for %s: %w", id, err)
		}
	}
	return nil
}

// Resolve returns the concrete tag persisted for id, or "" when no type holds it.
//
// The index is authoritative. Identifiers written without an index entry are
// located by checking every registered membership set. If more than one set
// contains the id, Resolve refuses to pick one and returns an
// AmbiguousTypeError.
func (r *Registry) Resolve(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", nil
	}

	indexed, ok, err := r.backend.HGet(ctx, r.ns.IndexKey(), id)
	if err != nil {
		return "", fmt.Errorf("read index for %s: %w", id, err)
	}
	if ok {
		if _, err := r.Schema(indexed); err == nil {
			return indexed, nil
		}
		r.logger.Warn("type index points at unregistered type", "id", id, "tag", indexed)
	}

	hits, err := r.memberOf(ctx, id)
	if err != nil {
		return "", err
	}
	switch len(hits) {
	case 0:
		return "", nil
	case 1:
		return hits[0], nil
	default:
		r.logger.Warn("identifier is a member of several type sets", "id", id, "tags", hits)
		return "", errors.NewAmbiguousTypeError(id, hits)
	}
}

// IsMember reports whether tag's set contains id. For AnyType it reports
// whether any registered type's set contains it.
func (r *Registry) IsMember(ctx context.Context, tag, id string) (bool, error) {
	if tag != AnyType {
		ok, err := r.backend.SIsMember(ctx, r.ns.MembershipKey(tag), id)
		if err != nil {
			return false, fmt.Errorf("check %s membership: %w", tag, err)
		}
		return ok, nil
	}

	hits, err := r.memberOf(ctx, id)
	if err != nil {
		return false, err
	}
	return len(hits) > 0, nil
}

// memberOf scans registered sets in sorted tag order.
func (r *Registry) memberOf(ctx context.Context, id string) ([]string, error) {
	var hits []string
	for _, tag := range r.Tags() {
		ok, err := r.backend.SIsMember(ctx, r.ns.MembershipKey(tag), id)
		if err != nil {
			return nil, fmt.Errorf("check %s membership: %w", tag, err)
		}
		if ok {
			hits = append(hits, tag)
		}
	}
	return hits, nil
}
