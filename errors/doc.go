/*
Package errors provides semantic error types for the MediaCrush object store.

Sentinels can be checked with the standard errors.Is() function or the helper
functions:

	var (
	    ErrNotFound        = errors.New("entity not found")
	    ErrTypeConflict    = errors.New("identifier already persisted as another type")
	    ErrAmbiguousType   = errors.New("identifier resolves to more than one type")
	    ErrUnknownType     = errors.New("unknown entity type")
	    ErrInvalidInput    = errors.New("invalid input")
	    ErrConditionFailed = errors.New("condition check failed")
	)

Usage:

	if err := store.Save(ctx, file); err != nil {
	    if errors.IsTypeConflict(err) {
	        // the identifier already belongs to an album
	    }
	    return err
	}

A missing record is not an error for Store.Load; NotFoundError is used by the
CLI and the repository when a caller asks for something that must exist.
*/
package errors
