// Package queue 定义消息主题常量，供发布/订阅使用.
package queue

// 主题命名规范：sj.<域>.<动作>，尽量稳定且向后兼容.
// 域：decision(判决)、archive(档案).
const (
	// 判决领域.
	TopicDecisionImported        = "sj.decision.imported"         // 一次导入运行结束（含统计与新增 id）
	TopicDecisionKeywordsUpdated = "sj.decision.keywords_updated" // 判决关键词整体替换完成

	// 档案领域.
	TopicArchiveCreated = "sj.archive.created" // 档案与镜像判决写入完成
)

// AllTopics 返回全部主题，命令行与健康检查展示使用.
func AllTopics() []string {
	return []string{TopicDecisionImported, TopicDecisionKeywordsUpdated, TopicArchiveCreated}
}
