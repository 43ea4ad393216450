package document

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/dcalliari/appe/internal"
	"github.com/dcalliari/appe/internal/core/common/validation"
	"github.com/gabriel-vasile/mimetype"
)

type Repository interface {
	// List returns matching documents, newest upload first.
	List(ctx context.Context, f Filter) ([]*Document, error)
	GetByID(ctx context.Context, id string) (*Document, error)
	Create(ctx context.Context, d *Document) error
	Update(ctx context.Context, d *Document) error
	Delete(ctx context.Context, id string) error
}

type ServiceAPI interface {
	Categories() []CategoryOption
	List(ctx context.Context, f Filter) ([]*Document, error)
	Get(ctx context.Context, documentID string) (*Document, error)
	Create(ctx context.Context, id *internal.Identity, dto CreateDocumentDTO) (*Document, error)
	Upload(ctx context.Context, id *internal.Identity, dto UploadDTO, r io.Reader) (*Document, error)
	Update(ctx context.Context, id *internal.Identity, documentID string, dto UpdateDocumentDTO) (*Document, error)
	Delete(ctx context.Context, id *internal.Identity, documentID string) error
	Download(ctx context.Context, documentID string) (*Download, error)
}

// Download is an open document ready to be streamed. Callers must Close it.
type Download struct {
	Name        string
	ContentType string
	Size        int64
	ModTime     time.Time
	Content     io.ReadSeekCloser
}

func (d *Download) Close() error {
	return d.Content.Close()
}

type Service struct {
	repo      Repository
	store     *FileStore
	maxUpload int64
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo Repository, store *FileStore, maxUpload int64, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		store:     store,
		maxUpload: maxUpload,
		logger:    logger,
		now:       time.Now,
	}
}

// MaxUpload is the byte limit applied to multipart uploads.
func (s *Service) MaxUpload() int64 {
	return s.maxUpload
}

func (s *Service) Categories() []CategoryOption {
	out := make([]CategoryOption, len(Categories))
	copy(out, Categories)
	return out
}

func (s *Service) List(ctx context.Context, f Filter) ([]*Document, error) {
	f.Search = strings.TrimSpace(f.Search)
	if f.Category != "" && !IsValidCategory(f.Category) {
		return nil, ErrInvalidCategory
	}
	docs, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, internal.NewInternalError("failed to fetch documents", err)
	}
	return docs, nil
}

func (s *Service) Get(ctx context.Context, documentID string) (*Document, error) {
	d, err := s.repo.GetByID(ctx, documentID)
	if err != nil {
		if _, ok := internal.IsAppError(err); ok {
			return nil, err
		}
		return nil, internal.NewInternalError("failed to fetch document", err)
	}
	return d, nil
}

// Create registers a document whose bytes already sit in the file store.
func (s *Service) Create(ctx context.Context, id *internal.Identity, dto CreateDocumentDTO) (*Document, error) {
	if err := internal.RequireRole(id, internal.RoleAdmin); err != nil {
		return nil, err
	}
	if err := s.validate(dto.Title, dto.Category); err != nil {
		return nil, err
	}

	return s.insert(ctx, id, &Document{
		Title:    strings.TrimSpace(dto.Title),
		FilePath: dto.FilePath,
		Category: dto.Category,
	})
}

// Upload stores r in the file store and registers it.
func (s *Service) Upload(ctx context.Context, id *internal.Identity, dto UploadDTO, r io.Reader) (*Document, error) {
	if err := internal.RequireRole(id, internal.RoleAdmin); err != nil {
		return nil, err
	}
	if err := s.validate(dto.Title, dto.Category); err != nil {
		return nil, err
	}
	if r == nil {
		return nil, ErrFileRequired
	}

	stored, err := s.store.Save(dto.Filename, r, s.maxUpload)
	if err != nil {
		if errors.Is(err, ErrFileTooLarge) {
			return nil, ErrFileTooLarge
		}
		return nil, internal.NewInternalError("failed to store file", err)
	}

	d, err := s.insert(ctx, id, &Document{
		Title:    strings.TrimSpace(dto.Title),
		FilePath: stored,
		Category: dto.Category,
	})
	if err != nil {
		if rmErr := s.store.Remove(stored); rmErr != nil {
			s.logger.Warn("failed to remove orphaned upload", "file_path", stored, "error", rmErr)
		}
		return nil, err
	}
	return d, nil
}

func (s *Service) Update(ctx context.Context, id *internal.Identity, documentID string, dto UpdateDocumentDTO) (*Document, error) {
	if err := internal.RequireRole(id, internal.RoleAdmin); err != nil {
		return nil, err
	}
	d, err := s.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}

	if dto.Title != nil {
		title := strings.TrimSpace(*dto.Title)
		if title == "" {
			return nil, internal.NewValidationFieldError("title", "title is required", internal.ErrCodeValidationFailed)
		}
		d.Title = title
	}
	if dto.FilePath != nil {
		d.FilePath = *dto.FilePath
	}
	if dto.Category != nil {
		if !IsValidCategory(*dto.Category) {
			return nil, ErrInvalidCategory
		}
		d.Category = *dto.Category
	}

	if err := s.repo.Update(ctx, d); err != nil {
		if _, ok := internal.IsAppError(err); ok {
			return nil, err
		}
		return nil, internal.NewInternalError("failed to update document", err)
	}
	s.logger.Info("document updated", "document_id", d.ID, "user_id", id.UserID)
	return d, nil
}

// Delete removes the record only; the stored file may be shared by another
// record created through the JSON path.
func (s *Service) Delete(ctx context.Context, id *internal.Identity, documentID string) error {
	if err := internal.RequireRole(id, internal.RoleAdmin); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, documentID); err != nil {
		if _, ok := internal.IsAppError(err); ok {
			return err
		}
		return internal.NewInternalError("failed to delete document", err)
	}
	s.logger.Info("document deleted", "document_id", documentID, "user_id", id.UserID)
	return nil
}

func (s *Service) Download(ctx context.Context, documentID string) (*Download, error) {
	d, err := s.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if d.FilePath == "" {
		return nil, ErrFileNotFound
	}

	f, info, err := s.store.Open(d.FilePath)
	if err != nil {
		if errors.Is(err, ErrFileNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, internal.NewInternalError("failed to open document", err)
	}

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		_ = f.Close()
		return nil, internal.NewInternalError("failed to read document", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		_ = f.Close()
		return nil, internal.NewInternalError("failed to read document", err)
	}

	return &Download{
		Name:        downloadName(d, mt.Extension()),
		ContentType: mt.String(),
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		Content:     f,
	}, nil
}

func (s *Service) validate(title, category string) error {
	v := validation.NewValidator()
	v.Field("title", strings.TrimSpace(title)).Required()
	v.Field("category", category).Required().OneOf(CategoryValues()...)
	return v.Validate()
}

func (s *Service) insert(ctx context.Context, id *internal.Identity, d *Document) (*Document, error) {
	uploader := id.UserID
	d.UploadedBy = &uploader
	d.UploadedAt = s.now().UTC()

	if err := s.repo.Create(ctx, d); err != nil {
		return nil, internal.NewInternalError("failed to create document", err)
	}
	s.logger.Info("document created",
		"document_id", d.ID,
		"user_id", id.UserID,
		"category", d.Category)
	return d, nil
}

// downloadName prefers the stored file's base name and falls back to the
// title with the sniffed extension.
func downloadName(d *Document, ext string) string {
	base := path.Base(d.FilePath)
	if base != "" && base != "." && base != "/" && path.Ext(base) != "" {
		return base
	}
	return d.Title + ext
}
