package hierarchy

import "errors"

var (
	// ErrMissingContext is returned when a query carries no localization
	// context at all. This is the only failure that aborts a query.
	ErrMissingContext = errors.New("information query has no localization context")

	// ErrEmptySourceID is returned when registering a source without an id.
	ErrEmptySourceID = errors.New("source id cannot be empty")

	// ErrNilRetriever is returned when registering a source without a
	// retrieval capability.
	ErrNilRetriever = errors.New("source retriever cannot be nil")
)
