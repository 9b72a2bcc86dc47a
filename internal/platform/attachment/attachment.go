// Package attachment accepts uploaded files for a patient section, stores
// them outside the patient record and hands back a Reference that the
// section writes onto the aggregate. Only acceptance and storage live
// here; files are served by the backend that stored them.
package attachment

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ehr/intake/internal/platform/apperr"
)

// DefaultMaxBytes bounds an upload when the policy sets no limit.
const DefaultMaxBytes int64 = 5 << 20

// Category decides the directory an accepted file is stored under.
type Category string

const (
	CategoryInsuranceCard Category = "insurance-card"
	CategoryTestResult    Category = "test-result"
	CategoryMedicalReport Category = "medical-report"
)

var categoryDirs = map[Category]string{
	CategoryInsuranceCard: "insurance-cards",
	CategoryTestResult:    "test-results",
	CategoryMedicalReport: "medical-reports",
}

// Dir returns the storage directory for c.
func (c Category) Dir() string { return categoryDirs[c] }

// Reference is what the patient record keeps for an accepted file.
type Reference struct {
	ID          uuid.UUID `json:"id"`
	Category    Category  `json:"category"`
	Location    string    `json:"location"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Hash        string    `json:"hash"`
	UploadedAt  time.Time `json:"uploaded_at"`
	// Key addresses the object in the Store. It is kept on the patient
	// record so a replaced or removed file can be discarded.
	Key string `json:"key"`
}

// Store is the storage port. Put returns the location clients use to
// fetch the object.
type Store interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

// Policy bounds what is accepted.
type Policy struct {
	MaxBytes     int64
	Extensions   map[string]bool
	ContentTypes map[string]bool
}

// DefaultPolicy accepts images and PDFs up to maxBytes.
func DefaultPolicy(maxBytes int64) Policy {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return Policy{
		MaxBytes: maxBytes,
		Extensions: map[string]bool{
			".jpg": true, ".jpeg": true, ".png": true, ".pdf": true,
		},
		ContentTypes: map[string]bool{
			"image/jpeg": true, "image/png": true, "application/pdf": true,
		},
	}
}

// Service applies the policy and writes accepted files to the store.
type Service struct {
	store  Store
	policy Policy
	logger zerolog.Logger
	now    func() time.Time
}

func NewService(store Store, policy Policy, logger zerolog.Logger) *Service {
	return &Service{store: store, policy: policy, logger: logger, now: time.Now}
}

// Accept validates fh and stores it under the category directory.
// Nothing is stored when the file is rejected.
func (s *Service) Accept(ctx context.Context, cat Category, fh *multipart.FileHeader) (*Reference, error) {
	if fh == nil {
		return nil, apperr.Invalid("file", apperr.ConstraintRequired, "file is required")
	}
	if fh.Size > s.policy.MaxBytes {
		return nil, tooLarge(fh.Filename, s.policy.MaxBytes)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, apperr.Invalid("file", apperr.ConstraintFormat, "open upload: %v", err)
	}
	defer f.Close()
	return s.AcceptReader(ctx, cat, fh.Filename, f)
}

// AcceptReader is Accept for a raw stream.
func (s *Service) AcceptReader(ctx context.Context, cat Category, fileName string, r io.Reader) (*Reference, error) {
	if cat.Dir() == "" {
		return nil, fmt.Errorf("unknown attachment category %q", cat)
	}
	if strings.TrimSpace(fileName) == "" {
		return nil, apperr.Invalid("file", apperr.ConstraintRequired, "file name is required")
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	if !s.policy.Extensions[ext] {
		return nil, apperr.UnsupportedFile("file", apperr.ConstraintType,
			"%s: extension %q is not allowed", fileName, ext)
	}

	data, err := io.ReadAll(io.LimitReader(r, s.policy.MaxBytes+1))
	if err != nil {
		return nil, apperr.Invalid("file", apperr.ConstraintFormat, "read upload: %v", err)
	}
	if int64(len(data)) > s.policy.MaxBytes {
		return nil, tooLarge(fileName, s.policy.MaxBytes)
	}
	if len(data) == 0 {
		return nil, apperr.Invalid("file", apperr.ConstraintRequired, "%s is empty", fileName)
	}
	contentType := http.DetectContentType(data)
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	if !s.policy.ContentTypes[contentType] {
		return nil, apperr.UnsupportedFile("file", apperr.ConstraintType,
			"%s: content type %s is not allowed", fileName, contentType)
	}

	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])
	id := uuid.New()
	key := cat.Dir() + "/" + hash[:12] + "-" + id.String() + ext

	location, err := s.store.Put(ctx, key, contentType, bytes.Clone(data))
	if err != nil {
		return nil, apperr.Storage(err, "store attachment")
	}
	s.logger.Info().
		Str("category", string(cat)).
		Str("key", key).
		Int("size", len(data)).
		Msg("attachment stored")

	return &Reference{
		ID:          id,
		Category:    cat,
		Location:    location,
		FileName:    filepath.Base(fileName),
		ContentType: contentType,
		Size:        int64(len(data)),
		Hash:        hash,
		UploadedAt:  s.now().UTC(),
		Key:         key,
	}, nil
}

// Discard removes the stored object behind ref: a file whose reference
// could not be written, or one the patient record no longer points at.
// Failures are logged; the record is already consistent.
func (s *Service) Discard(ctx context.Context, ref *Reference) {
	if ref == nil || ref.Key == "" {
		return
	}
	if err := s.store.Delete(ctx, ref.Key); err != nil && !errors.Is(err, ErrNotFound) {
		s.logger.Warn().Err(err).Str("key", ref.Key).Msg("discard attachment")
	}
}

// Attach accepts fh and passes its reference to save. The stored file is
// discarded when save fails, so a rejected write leaves nothing behind.
func (s *Service) Attach(ctx context.Context, cat Category, fh *multipart.FileHeader, save func(*Reference) error) (*Reference, error) {
	ref, err := s.Accept(ctx, cat, fh)
	if err != nil {
		return nil, err
	}
	if err := save(ref); err != nil {
		s.Discard(ctx, ref)
		return nil, err
	}
	return ref, nil
}

func tooLarge(name string, max int64) error {
	return apperr.UnsupportedFile("file", apperr.ConstraintSize,
		"%s exceeds the %d byte limit", name, max)
}
