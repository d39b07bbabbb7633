package middleware

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

var (
	assetVersions   = map[string]string{}
	assetVersionsMu sync.RWMutex
)

// InitAssetVersions computes file hashes for cache busting at startup.
// Names are relative to root, e.g. "css/site.css".
func InitAssetVersions(root string, names ...string) {
	versions := make(map[string]string, len(names))
	for _, name := range names {
		version := computeFileHash(filepath.Join(root, name))
		if version == "" {
			version = "1"
		}
		versions[name] = version
	}

	assetVersionsMu.Lock()
	assetVersions = versions
	assetVersionsMu.Unlock()

	zap.L().Info("asset versions initialized", zap.Int("files", len(versions)))
}

// computeFileHash returns the first 8 characters of the MD5 hash of a file
func computeFileHash(path string) string {
	file, err := os.Open(path)
	if err != nil {
		zap.L().Warn("failed to open file for hashing", zap.String("path", path), zap.Error(err))
		return ""
	}
	defer file.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		zap.L().Warn("failed to hash file", zap.String("path", path), zap.Error(err))
		return ""
	}

	return hex.EncodeToString(hash.Sum(nil))[:8]
}

// AssetURL returns the /static URL of an asset with its version query.
// ctx is unused; it keeps the helper callable like the other template helpers.
func AssetURL(ctx context.Context, name string) string {
	assetVersionsMu.RLock()
	version, ok := assetVersions[name]
	assetVersionsMu.RUnlock()
	if !ok {
		version = "1"
	}
	return "/static/" + name + "?v=" + version
}
