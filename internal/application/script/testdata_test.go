package script

import "encoding/json"

// conformingArtifactJSON 完整符合结构的模型输出
const conformingArtifactJSON = `{
  "title": "Intermittent Fasting in 90 Seconds",
  "script": {
    "hook": "What if when you eat matters as much as what you eat?",
    "introduction": "Intermittent fasting is an eating pattern, not a diet.",
    "mainContent": "The most common schedule is 16:8.",
    "callToAction": "Follow for more science-backed nutrition tips."
  },
  "scenes": [
    {"id": 1, "title": "Cold open", "timing": "0:00-0:10", "description": "Clock spinning over a plate", "tags": ["clock", "food"]},
    {"id": 2, "title": "The 16:8 method", "timing": "0:10-0:50", "description": "Animated timeline", "tags": ["timeline"]}
  ],
  "voiceover": {
    "characteristics": {"tone": "Warm", "pace": "Moderate", "style": "Conversational", "enunciation": "Clear"},
    "technicalSettings": {"audioFormat": "WAV 48kHz", "noiseReduction": true, "normalization": "-16 LUFS", "pauses": "Short pauses between sections"},
    "voiceParameters": {"voiceStyle": "Friendly narrator", "stability": 0.6, "clarity": 0.8, "exaggeration": 0.2}
  },
  "music": {
    "mood": "Upbeat",
    "description": "Light acoustic background",
    "bpm": "100-110",
    "genre": "Acoustic pop",
    "audioLevels": {"backgroundMusic": "-24 dB", "voiceover": "-6 dB", "soundEffects": "-12 dB", "ducking": true},
    "suggestedTracks": ["Sunny Morning", "Fresh Start"]
  }
}`

func conformingArtifactMap() map[string]any {
	var m map[string]any
	if err := json.Unmarshal([]byte(conformingArtifactJSON), &m); err != nil {
		panic(err)
	}
	return m
}

func withoutKey(key string) string {
	m := conformingArtifactMap()
	delete(m, key)
	b, _ := json.Marshal(m)
	return string(b)
}
