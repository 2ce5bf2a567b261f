package constants

// Redis Key 前缀和格式常量
// 使用统一的命名规范: app:{module}:{entity}:{unique_id}
const (
	// AppPrefix 是所有Redis Key的统一应用前缀
	AppPrefix = "app"

	// ResumeModulePrefix 简历模块
	ResumeModulePrefix = "resume"

	// EntityParsed 解析结果实体
	EntityParsed = "parsed"

	// KeyParsedResume 简历解析结果缓存 (STRING, JSON)
	// 格式: app:resume:parsed:{parserVersion}:{kind}:{fileMD5}
	// 同一份字节按不同格式声明时结果不同，kind 必须进入键
	KeyParsedResume = AppPrefix + ":" + ResumeModulePrefix + ":" + EntityParsed + ":%s:%s:%s"
)
