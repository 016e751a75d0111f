package script

import (
	"encoding/json"
	"sync"

	"github.com/eino-contrib/jsonschema"

	"video-script-api/internal/domain/entity"
)

// ArtifactSchemaName 输出 schema 在 response_format 中的名称
const ArtifactSchemaName = "video_script"

type valueKind int

const (
	kindString valueKind = iota
	kindNumber
	kindInteger
	kindBoolean
	kindObject
	kindArray
)

// shape 产物结构描述，用于带字段路径的结构校验
type shape struct {
	kind     valueKind
	fields   []shapeField
	items    *shape
	positive bool
}

type shapeField struct {
	name  string
	shape *shape
}

func str() *shape     { return &shape{kind: kindString} }
func number() *shape  { return &shape{kind: kindNumber} }
func boolean() *shape { return &shape{kind: kindBoolean} }
func posInt() *shape  { return &shape{kind: kindInteger, positive: true} }

func arrayOf(items *shape) *shape {
	return &shape{kind: kindArray, items: items}
}

func object(fields ...shapeField) *shape {
	return &shape{kind: kindObject, fields: fields}
}

func field(name string, s *shape) shapeField {
	return shapeField{name: name, shape: s}
}

// artifactShape 所有字段均为必填
var artifactShape = object(
	field("title", str()),
	field("script", object(
		field("hook", str()),
		field("introduction", str()),
		field("mainContent", str()),
		field("callToAction", str()),
	)),
	field("scenes", arrayOf(object(
		field("id", posInt()),
		field("title", str()),
		field("timing", str()),
		field("description", str()),
		field("tags", arrayOf(str())),
	))),
	field("voiceover", object(
		field("characteristics", object(
			field("tone", str()),
			field("pace", str()),
			field("style", str()),
			field("enunciation", str()),
		)),
		field("technicalSettings", object(
			field("audioFormat", str()),
			field("noiseReduction", boolean()),
			field("normalization", str()),
			field("pauses", str()),
		)),
		field("voiceParameters", object(
			field("voiceStyle", str()),
			field("stability", number()),
			field("clarity", number()),
			field("exaggeration", number()),
		)),
	)),
	field("music", object(
		field("mood", str()),
		field("description", str()),
		field("bpm", str()),
		field("genre", str()),
		field("audioLevels", object(
			field("backgroundMusic", str()),
			field("voiceover", str()),
			field("soundEffects", str()),
			field("ducking", boolean()),
		)),
		field("suggestedTracks", arrayOf(str())),
	)),
)

var (
	artifactSchemaOnce sync.Once
	artifactSchema     *jsonschema.Schema
)

// ArtifactJSONSchema 由 entity.VideoScriptArtifact 反射得到的 JSON Schema，返回值只读
func ArtifactJSONSchema() *jsonschema.Schema {
	artifactSchemaOnce.Do(func() {
		r := &jsonschema.Reflector{
			Anonymous:      true,
			DoNotReference: true,
		}
		artifactSchema = r.Reflect(&entity.VideoScriptArtifact{})
		artifactSchema.Version = ""
	})
	return artifactSchema
}

var (
	outputStructureOnce sync.Once
	outputStructure     string
)

// OutputStructure 返回写入提示词的 JSON 结构示例，内容固定
func OutputStructure() string {
	outputStructureOnce.Do(func() {
		b, err := json.MarshalIndent(placeholderArtifact(), "", "  ")
		if err != nil {
			panic(err)
		}
		outputStructure = string(b)
	})
	return outputStructure
}

func placeholderArtifact() *entity.VideoScriptArtifact {
	return &entity.VideoScriptArtifact{
		Title: "Engaging video title",
		Script: entity.ScriptSegments{
			Hook:         "Attention-grabbing opening line",
			Introduction: "Brief introduction to the topic",
			MainContent:  "Main narration covering the key points",
			CallToAction: "Closing call to action",
		},
		Scenes: []entity.Scene{
			{
				ID:          1,
				Title:       "Scene title",
				Timing:      "0:00-0:15",
				Description: "What is shown on screen",
				Tags:        []string{"tag1", "tag2"},
			},
		},
		Voiceover: entity.Voiceover{
			Characteristics: entity.VoiceCharacteristics{
				Tone:        "Voice tone",
				Pace:        "Speaking pace",
				Style:       "Delivery style",
				Enunciation: "Enunciation guidance",
			},
			TechnicalSettings: entity.VoiceTechnical{
				AudioFormat:    "Audio format",
				NoiseReduction: true,
				Normalization:  "Loudness normalization target",
				Pauses:         "Pause guidance",
			},
			VoiceParameters: entity.VoiceParameters{
				VoiceStyle:   "Voice style",
				Stability:    0.5,
				Clarity:      0.75,
				Exaggeration: 0.3,
			},
		},
		Music: entity.Music{
			Mood:        "Music mood",
			Description: "Music description",
			BPM:         "Tempo in BPM",
			Genre:       "Music genre",
			AudioLevels: entity.AudioLevels{
				BackgroundMusic: "Background music level",
				Voiceover:       "Voiceover level",
				SoundEffects:    "Sound effects level",
				Ducking:         true,
			},
			SuggestedTracks: []string{"Track suggestion 1", "Track suggestion 2"},
		},
	}
}
