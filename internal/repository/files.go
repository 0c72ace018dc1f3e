package repository

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/hurricanefence/packslips/constants"
)

// FileStore keeps the original upload bytes on disk so extraction can
// be re-run and reviewers can fetch the source document.
type FileStore interface {
	Save(id uuid.UUID, fileName string, raw []byte) (string, error)
	Load(path string) ([]byte, error)
	Remove(path string) error
}

type diskFileStore struct {
	root   string
	logger *slog.Logger
}

func NewDiskFileStore(root string, logger *slog.Logger) (FileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		logger.Error("failed to create file store directory", "root", root, "error", err)
		return nil, err
	}
	return &diskFileStore{root: root, logger: logger}, nil
}

// Save writes raw under a collision-free name derived from the document
// id, keeping the original extension for tooling that sniffs by suffix.
func (s *diskFileStore) Save(id uuid.UUID, fileName string, raw []byte) (string, error) {
	ext := constants.NormalizeExt(filepath.Ext(fileName))
	if ext == "" {
		ext = "bin"
	}
	path := filepath.Join(s.root, fmt.Sprintf("%s.%s", id, ext))
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		s.logger.Error("failed to store file", "path", path, "error", err)
		return "", err
	}
	s.logger.Debug("stored file", "path", path, "bytes", len(raw))
	return path, nil
}

func (s *diskFileStore) Load(path string) ([]byte, error) {
	// refuse paths outside the store root
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	rootAbs, err := filepath.Abs(s.root)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(abs, rootAbs+string(filepath.Separator)) {
		return nil, fmt.Errorf("path %q escapes file store", path)
	}
	return os.ReadFile(abs)
}

func (s *diskFileStore) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.logger.Error("failed to remove stored file", "path", path, "error", err)
		return err
	}
	return nil
}
