package archive

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qepting91/reddit-curator/internal/domain"
)

func TestAppendWritesNDJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.ndjson")
	w := &Writer{FilePath: path}

	now := time.Now().Truncate(time.Second)
	require.NoError(t, w.Append(domain.Post{ID: "abc12", Subreddit: "pics"}, now))
	require.NoError(t, w.Append(domain.Post{ID: "def34", Subreddit: "aww"}, now))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var ids []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e entry
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e))
		ids = append(ids, e.Post.ID)
		assert.True(t, e.PostedAt.Equal(now))
	}
	assert.Equal(t, []string{"abc12", "def34"}, ids)
}
