// Package entity 定义领域实体
package entity

import (
	"time"
)

const (
	// DefaultVideoLength 未指定时长时的默认值
	DefaultVideoLength = "1-2 minutes"
	// DefaultContentStyle 未指定风格时的默认值
	DefaultContentStyle = "Educational"
	// DefaultTargetAudience 未指定受众时在提示词中使用的描述
	DefaultTargetAudience = "General audience"
)

// GenerationRequest 视频脚本生成请求（校验后所有可选字段都已填充默认值）
type GenerationRequest struct {
	Topic          string `json:"topic"`
	VideoLength    string `json:"videoLength"`
	ContentStyle   string `json:"contentStyle"`
	TargetAudience string `json:"targetAudience,omitempty"`
}

// VideoScriptArtifact 模型生成的完整视频制作包
type VideoScriptArtifact struct {
	Title     string         `json:"title"`
	Script    ScriptSegments `json:"script"`
	Scenes    []Scene        `json:"scenes"`
	Voiceover Voiceover      `json:"voiceover"`
	Music     Music          `json:"music"`
}

// ScriptSegments 四段式旁白脚本
type ScriptSegments struct {
	Hook         string `json:"hook"`
	Introduction string `json:"introduction"`
	MainContent  string `json:"mainContent"`
	CallToAction string `json:"callToAction"`
}

// Scene 分镜。ID 为本脚本内的序号，不保证全局唯一
type Scene struct {
	ID          int      `json:"id" jsonschema:"minimum=1"`
	Title       string   `json:"title"`
	Timing      string   `json:"timing"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// Voiceover 配音指导
type Voiceover struct {
	Characteristics   VoiceCharacteristics `json:"characteristics"`
	TechnicalSettings VoiceTechnical       `json:"technicalSettings"`
	VoiceParameters   VoiceParameters      `json:"voiceParameters"`
}

// VoiceCharacteristics 配音风格特征
type VoiceCharacteristics struct {
	Tone        string `json:"tone"`
	Pace        string `json:"pace"`
	Style       string `json:"style"`
	Enunciation string `json:"enunciation"`
}

// VoiceTechnical 配音技术参数
type VoiceTechnical struct {
	AudioFormat    string `json:"audioFormat"`
	NoiseReduction bool   `json:"noiseReduction"`
	Normalization  string `json:"normalization"`
	Pauses         string `json:"pauses"`
}

// VoiceParameters 语音合成数值参数，取值期望在 [0,1]，不做强制
type VoiceParameters struct {
	VoiceStyle   string  `json:"voiceStyle"`
	Stability    float64 `json:"stability"`
	Clarity      float64 `json:"clarity"`
	Exaggeration float64 `json:"exaggeration"`
}

// Music 配乐指导
type Music struct {
	Mood            string      `json:"mood"`
	Description     string      `json:"description"`
	BPM             string      `json:"bpm"`
	Genre           string      `json:"genre"`
	AudioLevels     AudioLevels `json:"audioLevels"`
	SuggestedTracks []string    `json:"suggestedTracks"`
}

// AudioLevels 混音电平
type AudioLevels struct {
	BackgroundMusic string `json:"backgroundMusic"`
	Voiceover       string `json:"voiceover"`
	SoundEffects    string `json:"soundEffects"`
	Ducking         bool   `json:"ducking"`
}

// StoredScript 已持久化的生成记录，创建后不可变
type StoredScript struct {
	ID             string               `json:"id"`
	Topic          string               `json:"topic"`
	VideoLength    string               `json:"videoLength"`
	ContentStyle   string               `json:"contentStyle"`
	TargetAudience string               `json:"targetAudience,omitempty"`
	Content        *VideoScriptArtifact `json:"content"`
	CreatedAt      time.Time            `json:"createdAt"`
}

// NewStoredScript 以请求回显字段和生成结果构建记录（ID/CreatedAt 由存储层分配）
func NewStoredScript(req *GenerationRequest, artifact *VideoScriptArtifact) *StoredScript {
	s := &StoredScript{Content: artifact}
	if req != nil {
		s.Topic = req.Topic
		s.VideoLength = req.VideoLength
		s.ContentStyle = req.ContentStyle
		s.TargetAudience = req.TargetAudience
	}
	return s
}

// Clone 返回深拷贝，存储层对外只暴露副本
func (s *StoredScript) Clone() *StoredScript {
	if s == nil {
		return nil
	}
	out := *s
	out.Content = s.Content.Clone()
	return &out
}

// Clone 返回深拷贝
func (a *VideoScriptArtifact) Clone() *VideoScriptArtifact {
	if a == nil {
		return nil
	}
	out := *a
	if a.Scenes != nil {
		out.Scenes = make([]Scene, len(a.Scenes))
		for i := range a.Scenes {
			sc := a.Scenes[i]
			if sc.Tags != nil {
				sc.Tags = append([]string(nil), sc.Tags...)
			}
			out.Scenes[i] = sc
		}
	}
	if a.Music.SuggestedTracks != nil {
		out.Music.SuggestedTracks = append([]string(nil), a.Music.SuggestedTracks...)
	}
	return &out
}
