package postgres

import (
	"reflect"
	"testing"
	"time"

	"video-script-api/internal/domain/entity"
)

func TestScriptModelMapping(t *testing.T) {
	s := &entity.StoredScript{
		ID:             "5f0c7a36-1f55-4a3b-9d42-0d8e0a6b6f10",
		Topic:          "Intermittent fasting basics",
		VideoLength:    entity.DefaultVideoLength,
		ContentStyle:   entity.DefaultContentStyle,
		TargetAudience: "Beginners",
		Content:        &entity.VideoScriptArtifact{Title: "IF 101", Scenes: []entity.Scene{{ID: 1, Tags: []string{"a"}}}},
		CreatedAt:      time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}

	got := toScriptModel(s).toEntity()
	if !reflect.DeepEqual(s, got) {
		t.Fatalf("mapping mismatch:\nwant=%+v\ngot=%+v", s, got)
	}
	if (scriptModel{}).TableName() != "video_scripts" {
		t.Fatalf("table name: got=%q", (scriptModel{}).TableName())
	}
}
