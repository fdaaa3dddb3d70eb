package primary

import "errors"

// Lookup and argument errors returned by the services. Match with errors.Is.
var (
	ErrCardNotFound       = errors.New("card not found")
	ErrOperationNotFound  = errors.New("operation not found")
	ErrItemNotFound       = errors.New("item not found")
	ErrNotAGroup          = errors.New("card is not a group")
	ErrIsAGroup           = errors.New("card is a group")
	ErrNotArchived        = errors.New("card is not archived")
	ErrNotDone            = errors.New("card is not done")
	ErrNotPerItem         = errors.New("card does not track items")
	ErrInvalidAction      = errors.New("invalid operation action")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrAttachmentNotFound = errors.New("attachment not found")
	ErrAttachmentRejected = errors.New("attachment rejected")
	ErrCatalogNotFound    = errors.New("catalog entry not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionNotFound    = errors.New("session not found")
)
