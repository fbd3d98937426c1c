package models

import (
	"encoding/json"
	"time"
)

// RunReport 运行报告
type RunReport struct {
	// 任务信息
	RunID      string `json:"run_id"`
	Mode       Mode   `json:"mode"`
	InputFile  string `json:"input_file"`
	OutputFile string `json:"output_file"`

	// 时间信息
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	// 结果
	Status    RunStatus `json:"status"`
	StatusMsg string    `json:"status_message"`
	Stats     RunStats  `json:"stats"`
	Outcomes  []Outcome `json:"outcomes"`

	// 配置快照 (代理密码不会被序列化)
	Pipeline PipelineConfig `json:"pipeline"`
	Proxy    ProxyConfig    `json:"proxy"`
}

// NewRunReport 创建报告,分配新的运行ID
func NewRunReport(mode Mode, inputFile, outputFile string) *RunReport {
	return &RunReport{
		RunID:      generateID(),
		Mode:       mode,
		InputFile:  inputFile,
		OutputFile: outputFile,
		StartTime:  time.Now(),
		Status:     RunStatusRunning,
	}
}

// ToJSON 序列化为JSON
func (r *RunReport) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// FromJSON 从JSON反序列化
func (r *RunReport) FromJSON(data []byte) error {
	return json.Unmarshal(data, r)
}
