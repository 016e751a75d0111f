package script

import (
	"encoding/json"
	"strings"

	"video-script-api/internal/domain/entity"
)

// ParseArtifact 将模型输出文本解析并校验为产物。
// 空文本返回 FailureEmptyResponse；无法解析或结构不符返回 FailureMalformedResponse。
func ParseArtifact(text string) (*entity.VideoScriptArtifact, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &GenerationError{Kind: FailureEmptyResponse, Message: "backend returned no text"}
	}

	// 只读取第一个 JSON 值，其后的说明文字忽略
	dec := json.NewDecoder(strings.NewReader(extractJSONObject(text)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, &GenerationError{Kind: FailureMalformedResponse, Message: "response is not valid JSON", Raw: text, Err: err}
	}

	artifact, err := ValidateArtifact(v)
	if err != nil {
		return nil, &GenerationError{Kind: FailureMalformedResponse, Message: "response does not match the artifact structure", Raw: text, Err: err}
	}
	return artifact, nil
}

// extractJSONObject 返回从第一个 '{' 开始的文本。
// 模型可能会在 JSON 前后夹杂说明文字或 markdown 代码块。
func extractJSONObject(s string) string {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return raw
	}

	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```")
		if i := strings.IndexByte(raw, '\n'); i >= 0 {
			// 去掉语言标记（```json）
			raw = raw[i+1:]
		}
		raw = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "```"))
	}

	if start := strings.IndexByte(raw, '{'); start >= 0 {
		return raw[start:]
	}
	return raw
}
