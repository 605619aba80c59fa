package repository

import "errors"

// ErrNotFound is returned when a requested record is not found in the
// repository. This abstracts away the underlying storage implementation
// from the service layer.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when an insert hits a uniqueness constraint.
// The scoring service maps a duplicate rank-award marker to its
// already-awarded rejection.
var ErrDuplicate = errors.New("record already exists")

// ErrStaleVersion is returned when a compare-and-set update matched no
// row because another writer advanced the version first.
var ErrStaleVersion = errors.New("state version is stale")
