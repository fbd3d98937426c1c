// Package extractors 从公司页面中提取信息
//
// 包含:
//   - 文本规范化 (全角数字/括号/横线/空格 → 半角)
//   - 电话号码扫描与校验 (手机号前缀 + 市外局番最长前缀匹配)
//   - 结构化提取 (th/td, dt/dd 标签对)
//   - 关键字邻近提取 (结构化提取不完整时的后备方案)
//   - 值清洗 (去除联系方式尾巴、代表者职务头衔)
//   - 页面验证 (确认页面正文包含目标电话号码)
//
// 所有规则 (标签同义词、关键字、排除模式) 都以数据形式定义在 rules.go,
// 便于单独测试和扩展。
package extractors
