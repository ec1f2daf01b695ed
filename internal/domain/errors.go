package domain

import "errors"

var (
	// ErrInvalidPayload signals a webhook payload with no usable document.
	ErrInvalidPayload = errors.New("invalid payload")
	// ErrMissingDocumentID signals a payload without a document identifier.
	ErrMissingDocumentID = errors.New("missing document id")
	// ErrMissingParentOrg signals a child payload without a resolvable parent organization.
	ErrMissingParentOrg = errors.New("missing parent organization id")
	// ErrMissingUserEmail signals a search request without a caller identity.
	ErrMissingUserEmail = errors.New("missing user email")
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrStoreUnavailable signals a failed index store operation.
	ErrStoreUnavailable = errors.New("index store unavailable")
)
