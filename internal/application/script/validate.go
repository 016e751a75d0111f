package script

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"video-script-api/internal/domain/entity"
	"video-script-api/pkg/errors"
)

const (
	maxTopicRunes  = 500
	maxOptionRunes = 100
)

// DecodeRequest 解析请求体并校验
func DecodeRequest(body []byte) (*entity.GenerationRequest, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return ValidateRequest(nil)
	}
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &ValidationError{
			Target: "request",
			Issues: []errors.FieldError{{Field: "body", Message: "must be a valid JSON object"}},
		}
	}
	obj, ok := raw.(map[string]any)
	if !ok && raw != nil {
		return nil, &ValidationError{
			Target: "request",
			Issues: []errors.FieldError{{Field: "body", Message: "must be a JSON object"}},
		}
	}
	return ValidateRequest(obj)
}

// ValidateRequest 校验请求并填充默认值。
// topic 去除首尾空白后不能为空；其余字段缺失、为 null 或为空白时取默认值。
func ValidateRequest(raw map[string]any) (*entity.GenerationRequest, error) {
	var issues []errors.FieldError

	topic, ok, msg := optionalString(raw, "topic")
	switch {
	case msg != "":
		issues = append(issues, errors.FieldError{Field: "topic", Message: msg})
	case !ok || topic == "":
		issues = append(issues, errors.FieldError{Field: "topic", Message: "is required"})
	case utf8.RuneCountInString(topic) > maxTopicRunes:
		issues = append(issues, errors.FieldError{Field: "topic", Message: fmt.Sprintf("must be at most %d characters", maxTopicRunes)})
	}

	req := &entity.GenerationRequest{Topic: topic}
	options := []struct {
		name string
		def  string
		dst  *string
	}{
		{name: "videoLength", def: entity.DefaultVideoLength, dst: &req.VideoLength},
		{name: "contentStyle", def: entity.DefaultContentStyle, dst: &req.ContentStyle},
		{name: "targetAudience", dst: &req.TargetAudience},
	}
	for _, opt := range options {
		v, _, msg := optionalString(raw, opt.name)
		if msg != "" {
			issues = append(issues, errors.FieldError{Field: opt.name, Message: msg})
			continue
		}
		if utf8.RuneCountInString(v) > maxOptionRunes {
			issues = append(issues, errors.FieldError{Field: opt.name, Message: fmt.Sprintf("must be at most %d characters", maxOptionRunes)})
			continue
		}
		if v == "" {
			v = opt.def
		}
		*opt.dst = v
	}

	if len(issues) > 0 {
		return nil, &ValidationError{Target: "request", Issues: issues}
	}
	return req, nil
}

// optionalString 读取字符串字段（已去除首尾空白）。msg 非空表示类型错误
func optionalString(raw map[string]any, key string) (string, bool, string) {
	v, ok := raw[key]
	if !ok || v == nil {
		return "", false, ""
	}
	s, ok := v.(string)
	if !ok {
		return "", false, "must be a string"
	}
	return strings.TrimSpace(s), true, ""
}

// ValidateArtifact 结构校验模型输出（已解码的 JSON 值）：只检查字段存在性与基本类型，不检查内容质量。
// voiceParameters 中的数值不做范围校验。
func ValidateArtifact(raw any) (*entity.VideoScriptArtifact, error) {
	var issues []errors.FieldError
	artifactShape.check("", raw, &issues)
	if len(issues) > 0 {
		return nil, &ValidationError{Target: "artifact", Issues: issues}
	}

	b, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode artifact: %w", err)
	}
	var out entity.VideoScriptArtifact
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("failed to decode artifact: %w", err)
	}
	return &out, nil
}

func (s *shape) check(path string, v any, issues *[]errors.FieldError) {
	fail := func(msg string) {
		p := path
		if p == "" {
			p = "$"
		}
		*issues = append(*issues, errors.FieldError{Field: p, Message: msg})
	}

	if v == nil {
		fail("is required")
		return
	}

	switch s.kind {
	case kindString:
		if _, ok := v.(string); !ok {
			fail("must be a string")
		}
	case kindBoolean:
		if _, ok := v.(bool); !ok {
			fail("must be a boolean")
		}
	case kindNumber:
		if _, ok := toFloat(v); !ok {
			fail("must be a number")
		}
	case kindInteger:
		n, ok := toInt(v)
		if !ok {
			fail("must be an integer")
			return
		}
		if s.positive && n < 1 {
			fail("must be a positive integer")
		}
	case kindArray:
		arr, ok := v.([]any)
		if !ok {
			fail("must be an array")
			return
		}
		for i, item := range arr {
			s.items.check(path+"["+strconv.Itoa(i)+"]", item, issues)
		}
	case kindObject:
		obj, ok := v.(map[string]any)
		if !ok {
			fail("must be an object")
			return
		}
		for _, f := range s.fields {
			p := f.name
			if path != "" {
				p = path + "." + f.name
			}
			f.shape.check(p, obj[f.name], issues)
		}
	}
}

// toInt 只接受整数字面量（1.0、1e0 不算），结果需能放入 int
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := strconv.ParseInt(string(n), 10, strconv.IntSize)
		return int(i), err == nil
	case float64:
		if n != math.Trunc(n) || n < math.MinInt32 || n > math.MaxInt32 {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
