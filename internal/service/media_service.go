package service

import (
	"os"

	"go.uber.org/zap"

	appErrors "github.com/maatram/scholarship-review-api/pkg/errors"
	"github.com/maatram/scholarship-review-api/pkg/storage"
)

// MediaService resolves signed download tokens to stored files. Tokens are
// minted when a reviewer fetches a student bundle; the files themselves
// never leave the local media store unsigned.
type MediaService struct {
	store  *storage.MediaStore
	signer *storage.SignedURLSigner
	logger *zap.Logger
}

// NewMediaService constructs a MediaService.
func NewMediaService(store *storage.MediaStore, signer *storage.SignedURLSigner, logger *zap.Logger) *MediaService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MediaService{store: store, signer: signer, logger: logger}
}

// Resolve validates a download token and opens the underlying file. The
// caller owns closing the handle.
func (s *MediaService) Resolve(token string) (*os.File, error) {
	studentID, key, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired media token")
	}

	file, err := s.store.Open(key)
	if err != nil {
		s.logger.Warn("signed media key missing on disk", zap.String("studentId", studentID), zap.String("key", key), zap.Error(err))
		return nil, appErrors.Clone(appErrors.ErrNotFound, "media not found")
	}
	return file, nil
}
