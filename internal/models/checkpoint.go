package models

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Checkpoint 检查点
// 任务因限流/会话失效提前结束时保存,下次 --resume 时跳过已完成的行
type Checkpoint struct {
	RunID     string `json:"run_id"`     // 产生此检查点的运行ID
	Mode      Mode   `json:"mode"`       // 运行模式
	InputFile string `json:"input_file"` // 输入文件

	// 已处理行的结果 (键为行号)
	Outcomes map[int]Outcome `json:"outcomes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCheckpoint 创建检查点
func NewCheckpoint(runID string, mode Mode, inputFile string) *Checkpoint {
	now := time.Now()
	return &Checkpoint{
		RunID:     runID,
		Mode:      mode,
		InputFile: inputFile,
		Outcomes:  make(map[int]Outcome),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CheckpointFilename 由输入文件名和模式生成检查点文件名
func CheckpointFilename(inputFile string, mode Mode) string {
	base := filepath.Base(inputFile)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return fmt.Sprintf("checkpoint_%s_%s.json", base, mode)
}

// Put 记录一行的最终结果,非最终结果不保存
func (c *Checkpoint) Put(o Outcome) {
	if !o.Final() {
		return
	}
	if c.Outcomes == nil {
		c.Outcomes = make(map[int]Outcome)
	}
	c.Outcomes[o.Index] = o
	c.UpdatedAt = time.Now()
}

// Done 返回某行是否已有最终结果
func (c *Checkpoint) Done(index int) (Outcome, bool) {
	if c == nil {
		return Outcome{}, false
	}
	o, ok := c.Outcomes[index]
	return o, ok && o.Final()
}

// ToJSON 序列化为JSON
func (c *Checkpoint) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// FromJSON 从JSON反序列化
func (c *Checkpoint) FromJSON(data []byte) error {
	return json.Unmarshal(data, c)
}

// SaveToFile 保存到文件
func (c *Checkpoint) SaveToFile(path string) error {
	data, err := c.ToJSON()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("创建检查点目录失败: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// LoadCheckpointFromFile 从文件加载
func LoadCheckpointFromFile(path string) (*Checkpoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cp Checkpoint
	if err := cp.FromJSON(data); err != nil {
		return nil, err
	}
	if cp.Outcomes == nil {
		cp.Outcomes = make(map[int]Outcome)
	}

	return &cp, nil
}
