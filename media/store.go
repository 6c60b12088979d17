package media

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// Store saves and removes media assets below a storage root.
type Store interface {
	// Save writes data under the asset type's directory and returns the
	// slash-separated path relative to the storage root.
	Save(assetType AssetType, filename string, data io.Reader) (string, error)
	Delete(relativePath string) error
	// GetFullPath returns the absolute filesystem path for a relative asset path
	GetFullPath(relativePath string) (string, error)
	EnsureDir(assetType AssetType) (string, error)
}

// LocalStorage implements Store on the local filesystem.
type LocalStorage struct {
	basePath        string               // absolute MEDIA_STORAGE_PATH
	resolvedPathMap map[AssetType]string // asset type to absolute directory
	log             logrus.FieldLogger
}

func NewLocalStorage(basePath string, subDirs map[AssetType]string, log logrus.FieldLogger) (*LocalStorage, error) {
	absBasePath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("invalid base storage path '%s': %w", basePath, err)
	}

	if err := os.MkdirAll(absBasePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base storage directory '%s': %w", absBasePath, err)
	}

	resolvedPaths := make(map[AssetType]string, len(subDirs))
	for assetType, subDir := range subDirs {
		fullPath := filepath.Join(absBasePath, subDir)
		if !within(absBasePath, fullPath) || fullPath == absBasePath {
			return nil, fmt.Errorf("invalid subdirectory configuration: '%s' resolves outside base path '%s'", subDir, absBasePath)
		}
		resolvedPaths[assetType] = fullPath
	}

	log.WithField("path", absBasePath).Info("media store initialized")
	return &LocalStorage{
		basePath:        absBasePath,
		resolvedPathMap: resolvedPaths,
		log:             log,
	}, nil
}

// EnsureDir creates the directory for the asset type if it doesn't exist
func (ls *LocalStorage) EnsureDir(assetType AssetType) (string, error) {
	dirPath, ok := ls.resolvedPathMap[assetType]
	if !ok {
		return "", fmt.Errorf("asset type '%s' is not configured", assetType)
	}
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return "", fmt.Errorf("failed to ensure directory '%s': %w", dirPath, err)
	}
	return dirPath, nil
}

func (ls *LocalStorage) Save(assetType AssetType, filename string, data io.Reader) (string, error) {
	dir, err := ls.EnsureDir(assetType)
	if err != nil {
		return "", err
	}
	if filename == "" || filepath.Base(filename) != filename {
		return "", fmt.Errorf("invalid filename '%s'", filename)
	}

	fullSavePath := filepath.Join(dir, filename)
	outFile, err := os.Create(fullSavePath)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file '%s': %w", fullSavePath, err)
	}

	if _, err := io.Copy(outFile, data); err != nil {
		outFile.Close()
		os.Remove(fullSavePath)
		return "", fmt.Errorf("failed to write data to '%s': %w", fullSavePath, err)
	}
	if err := outFile.Close(); err != nil {
		os.Remove(fullSavePath)
		return "", fmt.Errorf("failed to close '%s': %w", fullSavePath, err)
	}

	relativePath, err := filepath.Rel(ls.basePath, fullSavePath)
	if err != nil {
		return "", fmt.Errorf("internal error calculating relative path: %w", err)
	}

	ls.log.WithField("path", fullSavePath).Debug("saved asset")
	return filepath.ToSlash(relativePath), nil
}

// Delete removes an asset file. A missing file is not an error.
func (ls *LocalStorage) Delete(relativePath string) error {
	fullPath, err := ls.GetFullPath(relativePath)
	if err != nil {
		return err
	}

	err = os.Remove(fullPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete asset '%s': %w", relativePath, err)
	}
	return nil
}

// GetFullPath calculates the absolute path and rejects anything outside the root.
func (ls *LocalStorage) GetFullPath(relativePath string) (string, error) {
	fullPath := filepath.Join(ls.basePath, filepath.FromSlash(relativePath))
	if !within(ls.basePath, fullPath) {
		return "", fmt.Errorf("invalid path: access denied for '%s'", relativePath)
	}
	return fullPath, nil
}

func within(base, target string) bool {
	rel, err := filepath.Rel(base, filepath.Clean(target))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
