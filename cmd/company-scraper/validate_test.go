package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFlags(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "input.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("電話番号\n0312345678\n"), 0644))
	dirPath := filepath.Join(dir, "folder.csv")
	require.NoError(t, os.Mkdir(dirPath, 0755))

	tests := []struct {
		name    string
		input   string
		output  string
		wantErr bool
	}{
		{"有效参数", csvPath, filepath.Join(dir, "out.xlsx"), false},
		{"缺少输入", "", filepath.Join(dir, "out.csv"), true},
		{"不支持的输入格式", filepath.Join(dir, "input.txt"), filepath.Join(dir, "out.csv"), true},
		{"输入文件不存在", filepath.Join(dir, "missing.csv"), filepath.Join(dir, "out.csv"), true},
		{"输入是目录", dirPath, filepath.Join(dir, "out.csv"), true},
		{"不支持的输出格式", csvPath, filepath.Join(dir, "out.json"), true},
		{"缺少输出", csvPath, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFlags(tt.input, tt.output)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDefaultOutputPath(t *testing.T) {
	assert.Equal(t, filepath.Join("output", "リスト_result.csv"), defaultOutputPath("data/リスト.CSV", "output"))
	assert.Equal(t, filepath.Join("out", "a_result.xlsx"), defaultOutputPath("a.xlsx", "out"))
}
