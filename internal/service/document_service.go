package service

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/noah-isme/faculty-leave-api/internal/dto"
	"github.com/noah-isme/faculty-leave-api/internal/models"
	appErrors "github.com/noah-isme/faculty-leave-api/pkg/errors"
	"github.com/noah-isme/faculty-leave-api/pkg/storage"
)

type documentFiles interface {
	Exists(relPath string) (bool, error)
	Open(relPath string) (*os.File, error)
}

type linkSigner interface {
	Generate(applicationID, relPath string) (string, time.Time, error)
	Parse(token string) (string, string, error)
}

// DocumentService issues and redeems signed download links for supporting documents.
type DocumentService struct {
	apps     leaveApplicationStore
	files    documentFiles
	signer   linkSigner
	basePath string
}

// NewDocumentService constructs a DocumentService. basePath prefixes generated URLs,
// for example "/api/v1/documents".
func NewDocumentService(apps leaveApplicationStore, files documentFiles, signer linkSigner, basePath string) *DocumentService {
	return &DocumentService{apps: apps, files: files, signer: signer, basePath: strings.TrimRight(basePath, "/")}
}

// Link returns a time-limited download URL for the application's document.
func (s *DocumentService) Link(ctx context.Context, caller models.Caller, applicationID string) (*dto.DocumentLinkResponse, error) {
	app, err := s.apps.GetDetail(ctx, applicationID)
	if err != nil {
		return nil, notFoundOr(err, "leave application not found", "failed to load leave application")
	}
	if !canView(caller, app) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not allowed to view this leave application")
	}
	if app.DocumentPath == nil || *app.DocumentPath == "" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "leave application has no supporting document")
	}
	token, expiresAt, err := s.signer.Generate(app.ID, *app.DocumentPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign document link")
	}
	return &dto.DocumentLinkResponse{URL: s.basePath + "/" + token, ExpiresAt: expiresAt.Format(time.RFC3339)}, nil
}

// Open redeems a signed token. The caller must close the returned file.
func (s *DocumentService) Open(token string) (*os.File, string, error) {
	_, relPath, err := s.signer.Parse(token)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, "", appErrors.Clone(appErrors.ErrForbidden, "download link expired")
		}
		return nil, "", appErrors.Clone(appErrors.ErrForbidden, "invalid download link")
	}
	file, err := s.files.Open(relPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, storage.ErrInvalidPath) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open document")
	}
	return file, filepath.Base(relPath), nil
}

// Exists lets the leave workflow verify uploaded paths.
func (s *DocumentService) Exists(relPath string) (bool, error) {
	return s.files.Exists(relPath)
}
