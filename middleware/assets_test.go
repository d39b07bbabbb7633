package middleware

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetURL(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "js"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "js", "leads.js"), []byte("console.log(1)"), 0o644))

	InitAssetVersions(root, "js/leads.js", "css/missing.css")
	ctx := context.Background()

	url := AssetURL(ctx, "js/leads.js")
	assert.Regexp(t, `^/static/js/leads\.js\?v=[0-9a-f]{8}$`, url)
	assert.Equal(t, "/static/css/missing.css?v=1", AssetURL(ctx, "css/missing.css"))
	assert.Equal(t, "/static/img/unknown.png?v=1", AssetURL(ctx, "img/unknown.png"))
}

func TestComputeFileHashMissing(t *testing.T) {
	assert.Equal(t, "", computeFileHash(filepath.Join(t.TempDir(), "nope")))
}
