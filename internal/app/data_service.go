package app

import (
	"context"
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/example/routecard/internal/core/audit"
	"github.com/example/routecard/internal/core/collection"
	"github.com/example/routecard/internal/models"
	"github.com/example/routecard/internal/ports/primary"
)

// DefaultMaxAttachmentBytes is the per-file upload limit.
const DefaultMaxAttachmentBytes = 15 << 20

// AllowedAttachmentExtensions lists the file types accepted as attachments.
var AllowedAttachmentExtensions = []string{".pdf", ".doc", ".docx", ".jpg", ".jpeg", ".png", ".zip", ".rar", ".7z"}

// DataServiceImpl implements the DataService interface.
type DataServiceImpl struct {
	repo               *CardRepository
	logger             *zap.Logger
	maxAttachmentBytes int64
}

// NewDataService creates a new DataService. A non-positive limit selects
// DefaultMaxAttachmentBytes.
func NewDataService(repo *CardRepository, logger *zap.Logger, maxAttachmentBytes int64) *DataServiceImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxAttachmentBytes <= 0 {
		maxAttachmentBytes = DefaultMaxAttachmentBytes
	}
	return &DataServiceImpl{repo: repo, logger: logger, maxAttachmentBytes: maxAttachmentBytes}
}

// Snapshot returns a copy of the collection without user credentials.
func (s *DataServiceImpl) Snapshot(ctx context.Context) (*models.Collection, error) {
	var out *models.Collection
	err := s.repo.View(func(col *models.Collection) error {
		out = col.Clone()
		out.Users = nil
		return nil
	})
	return out, err
}

// Replace merges an incoming collection into the stored one and saves it.
// Stored cards keep their creation time, initial snapshot and log history;
// the stored users list is kept as is.
func (s *DataServiceImpl) Replace(ctx context.Context, incoming *models.Collection) (*models.Collection, error) {
	if incoming == nil {
		return nil, fmt.Errorf("%w: empty collection", primary.ErrInvalidArgument)
	}
	var out *models.Collection
	_, err := s.repo.Update(ctx, func(col *models.Collection, env collection.Env) (bool, error) {
		merged := collection.Merge(col, incoming, env)
		rep := collection.Normalize(merged, env)
		if rep.Repaired() {
			s.logger.Debug("incoming collection repaired",
				zap.Int("barcodes", rep.Barcodes),
				zap.Int("codes", rep.Codes),
				zap.Int("backfills", rep.Backfills))
		}
		*col = *merged
		out = col.Clone()
		out.Users = nil
		return true, nil
	})
	return out, err
}

// AddAttachment stores a file on a card. The content must be a base64 data
// URL; the name must carry an allowed extension.
func (s *DataServiceImpl) AddAttachment(ctx context.Context, req primary.AddAttachmentRequest) (*models.Attachment, error) {
	name := strings.TrimSpace(req.Name)
	if err := checkExtension(name); err != nil {
		return nil, err
	}
	mediaType, size, err := decodeDataURL(req.Content)
	if err != nil {
		return nil, err
	}
	if size > s.maxAttachmentBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit is %d", primary.ErrAttachmentRejected, name, size, s.maxAttachmentBytes)
	}
	if req.Type != "" {
		mediaType = req.Type
	}

	var out *models.Attachment
	_, err = s.repo.Update(ctx, func(col *models.Collection, env collection.Env) (bool, error) {
		c, err := findCard(col, req.CardRef)
		if err != nil {
			return false, err
		}
		a := &models.Attachment{
			ID:        env.NewID("file"),
			Name:      name,
			Type:      mediaType,
			Size:      size,
			Content:   req.Content,
			CreatedAt: env.Now,
		}
		prev := len(c.Attachments)
		c.Attachments = append(c.Attachments, a)
		env.Log(c, audit.Entry{
			Action:   audit.ActionAttachments,
			Object:   audit.ObjectCard,
			Field:    "attachments",
			OldValue: prev,
			NewValue: len(c.Attachments),
		})
		meta := *a
		meta.Content = ""
		out = &meta
		return true, nil
	})
	return out, err
}

// ListAttachments lists a card's files without their content.
func (s *DataServiceImpl) ListAttachments(ctx context.Context, cardRef string) ([]*models.Attachment, error) {
	var out []*models.Attachment
	err := s.repo.View(func(col *models.Collection) error {
		c, err := findCard(col, cardRef)
		if err != nil {
			return err
		}
		out = make([]*models.Attachment, 0, len(c.Attachments))
		for _, a := range c.Attachments {
			meta := *a
			meta.Content = ""
			out = append(out, &meta)
		}
		return nil
	})
	return out, err
}

// GetAttachment finds a file by id across all cards.
func (s *DataServiceImpl) GetAttachment(ctx context.Context, fileID string) (*models.Attachment, error) {
	var out *models.Attachment
	err := s.repo.View(func(col *models.Collection) error {
		for _, c := range col.Cards {
			for _, a := range c.Attachments {
				if a.ID == fileID {
					cp := *a
					out = &cp
					return nil
				}
			}
		}
		return fmt.Errorf("%w: %s", primary.ErrAttachmentNotFound, fileID)
	})
	return out, err
}

func checkExtension(name string) error {
	if name == "" {
		return fmt.Errorf("%w: file name is required", primary.ErrAttachmentRejected)
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range AllowedAttachmentExtensions {
		if ext == allowed {
			return nil
		}
	}
	return fmt.Errorf("%w: %s files are not allowed", primary.ErrAttachmentRejected, ext)
}

// decodeDataURL returns the media type and decoded size of a base64 data URL.
func decodeDataURL(content string) (string, int64, error) {
	rest, ok := strings.CutPrefix(content, "data:")
	if !ok {
		return "", 0, fmt.Errorf("%w: content is not a data URL", primary.ErrAttachmentRejected)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return "", 0, fmt.Errorf("%w: content is not base64 encoded", primary.ErrAttachmentRejected)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", 0, fmt.Errorf("%w: invalid base64 content: %v", primary.ErrAttachmentRejected, err)
	}
	mediaType := strings.TrimSuffix(meta, ";base64")
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	return mediaType, int64(len(data)), nil
}

// Ensure DataServiceImpl implements the interface
var _ primary.DataService = (*DataServiceImpl)(nil)
