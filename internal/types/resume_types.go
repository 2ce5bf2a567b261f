package types

// 支持的简历媒体类型
const (
	MediaTypePDF      = "application/pdf"
	MediaTypeText     = "text/plain"
	MediaTypeWordDoc  = "application/msword"
	MediaTypeWordDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// ResumeFile 上传的简历文件，流水线只读不修改
type ResumeFile struct {
	Name      string // 显示文件名
	Size      int64  // 声明的字节大小
	MediaType string // 声明的媒体类型
	Content   []byte // 文件内容
}

// ParsedResume 简历流水线的输出
type ParsedResume struct {
	Text       string `json:"text"`        // 归一化（可能被截断）后的文本
	FileName   string `json:"file_name"`   // 源文件名
	FileSize   int64  `json:"file_size"`   // 源文件大小
	MediaType  string `json:"media_type"`  // 源媒体类型
	Truncated  bool   `json:"truncated"`   // 是否超过上限被截断
	ContentMD5 string `json:"content_md5"` // 源文件内容的MD5，用于解析缓存
}

// ResumeKeyInfo 从简历文本推导出的关键信息，只按需计算，不单独持久化
type ResumeKeyInfo struct {
	Skills     []string `json:"skills"`
	Experience *string  `json:"experience,omitempty"`
	Education  *string  `json:"education,omitempty"`
	Summary    string   `json:"summary"`
}
