package migrations

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFS_UpDownPairs(t *testing.T) {
	ups, err := fs.Glob(FS, "*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(FS, "*.down.sql")
	require.NoError(t, err)

	assert.NotEmpty(t, ups)
	assert.Len(t, downs, len(ups))

	body, err := fs.ReadFile(FS, "000001_init.up.sql")
	require.NoError(t, err)
	for _, table := range []string{"songs", "users", "requests", "feedbacks"} {
		assert.Contains(t, string(body), "CREATE TABLE IF NOT EXISTS "+table)
	}
}

func TestFS_RequestSequence(t *testing.T) {
	up, err := fs.ReadFile(FS, "000002_request_seq.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(up), "seq BIGSERIAL")

	down, err := fs.ReadFile(FS, "000002_request_seq.down.sql")
	require.NoError(t, err)
	assert.Contains(t, string(down), "DROP COLUMN IF EXISTS seq")
}
