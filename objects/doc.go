/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package objects defines the persisted MediaCrush entities and the
// behaviours that read or write through the object store: album pruning,
// file status and report counting.
package objects
