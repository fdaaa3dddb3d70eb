package primary

import (
	"context"

	"github.com/example/routecard/internal/models"
)

// DataService defines the primary port for whole-collection exchange and attachments.
type DataService interface {
	// Snapshot returns a copy of the collection without user credentials.
	Snapshot(ctx context.Context) (*models.Collection, error)

	// Replace merges an incoming collection into the stored one and saves it.
	Replace(ctx context.Context, incoming *models.Collection) (*models.Collection, error)

	// AddAttachment stores a file on a card.
	AddAttachment(ctx context.Context, req AddAttachmentRequest) (*models.Attachment, error)

	// ListAttachments lists a card's files without their content.
	ListAttachments(ctx context.Context, cardRef string) ([]*models.Attachment, error)

	// GetAttachment finds a file by id across all cards.
	GetAttachment(ctx context.Context, fileID string) (*models.Attachment, error)
}

// AddAttachmentRequest contains an uploaded file.
type AddAttachmentRequest struct {
	CardRef string
	Name    string
	Type    string
	// Content is a base64 data URL.
	Content string
	Size    int64
}
