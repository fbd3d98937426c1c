package utils

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuji-matsuda-cyber/company-scraper/internal/models"
)

func TestLoadAreaCodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "area_codes.csv")
	require.NoError(t, os.WriteFile(path, []byte("市外局番,地域\n03,東京\n6,大阪\n0422,武蔵野\n03,重複\n\n"), 0644))

	codes, err := LoadAreaCodes(path, "")
	require.NoError(t, err)
	assert.Equal(t, 3, codes.Len())

	code, ok := codes.Match("0422123456")
	assert.True(t, ok)
	assert.Equal(t, "0422", code)

	code, ok = codes.Match("0612345678")
	assert.True(t, ok)
	assert.Equal(t, "06", code)
}

func TestLoadAreaCodes_ConfigErrors(t *testing.T) {
	dir := t.TempDir()
	wrongColumn := filepath.Join(dir, "wrong.csv")
	require.NoError(t, os.WriteFile(wrongColumn, []byte("code\n03\n"), 0644))

	tests := []struct {
		name string
		path string
	}{
		{"文件不存在", filepath.Join(dir, "missing.csv")},
		{"缺少列", wrongColumn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadAreaCodes(tt.path, "市外局番")
			var ce *models.ConfigError
			require.True(t, errors.As(err, &ce), "err=%v", err)
			assert.Equal(t, tt.path, ce.FilePath)
		})
	}
}
