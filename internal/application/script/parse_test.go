package script

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestParseArtifact(t *testing.T) {
	cases := []struct {
		name string
		text string
		kind FailureKind
	}{
		{name: "empty", text: "", kind: FailureEmptyResponse},
		{name: "blank", text: "  \n ", kind: FailureEmptyResponse},
		{name: "not json", text: "Sure! Here is your script.", kind: FailureMalformedResponse},
		{name: "truncated", text: `{"title": "x", "script": {`, kind: FailureMalformedResponse},
		{name: "missing scenes", text: withoutKey("scenes"), kind: FailureMalformedResponse},
		{name: "array", text: `[1, 2, 3]`, kind: FailureMalformedResponse},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseArtifact(tc.text)
			var ge *GenerationError
			if !errors.As(err, &ge) {
				t.Fatalf("want GenerationError, got=%v", err)
			}
			if ge.Kind != tc.kind {
				t.Fatalf("kind: want=%q got=%q", tc.kind, ge.Kind)
			}
		})
	}
}

func TestParseArtifactTolerantWrapping(t *testing.T) {
	inputs := []string{
		conformingArtifactJSON,
		"```json\n" + conformingArtifactJSON + "\n```",
		"Here you go:\n" + conformingArtifactJSON + "\nEnjoy!",
		"Here you go:\n" + conformingArtifactJSON + "\nNote: use {brand} colors.",
		"```json\n" + conformingArtifactJSON + "\n```\nTweak {scene 2} if needed.",
	}
	for i, in := range inputs {
		a, err := ParseArtifact(in)
		if err != nil {
			t.Fatalf("input %d: %v", i, err)
		}
		if len(a.Scenes) == 0 || strings.TrimSpace(a.Script.Hook) == "" {
			t.Fatalf("input %d: unexpected artifact %+v", i, a)
		}
	}
}

func TestParseArtifactSceneIDMustBeIntegerLiteral(t *testing.T) {
	for _, lit := range []string{"1.0", "1e0"} {
		text := strings.Replace(conformingArtifactJSON, `"id": 1,`, `"id": `+lit+`,`, 1)
		_, err := ParseArtifact(text)
		var ge *GenerationError
		if !errors.As(err, &ge) || ge.Kind != FailureMalformedResponse {
			t.Fatalf("id %s: want malformed response, got=%v", lit, err)
		}
		var ve *ValidationError
		if !errors.As(err, &ve) || len(ve.Issues) == 0 || ve.Issues[0].Field != "scenes[0].id" {
			t.Fatalf("id %s: want scenes[0].id issue, got=%v", lit, err)
		}
	}
}

func TestArtifactJSONSchemaShape(t *testing.T) {
	s := ArtifactJSONSchema()
	if s.Type != "object" || s.Version != "" || s.ID != "" {
		t.Fatalf("root: type=%q version=%q id=%q", s.Type, s.Version, s.ID)
	}
	want := []string{"title", "script", "scenes", "voiceover", "music"}
	if len(s.Required) != len(want) {
		t.Fatalf("required: want=%v got=%v", want, s.Required)
	}
	for i, name := range want {
		if s.Required[i] != name {
			t.Fatalf("required[%d]: want=%q got=%q", i, name, s.Required[i])
		}
	}
	scenes, ok := s.Properties.Get("scenes")
	if !ok || scenes.Type != "array" || scenes.Items == nil {
		t.Fatalf("scenes: got=%+v", scenes)
	}
	id, ok := scenes.Items.Properties.Get("id")
	if !ok || id.Type != "integer" || id.Minimum != "1" {
		t.Fatalf("scenes.id: got=%+v", id)
	}
	raw, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal schema: %v", err)
	}
	if strings.Contains(string(raw), "$ref") || strings.Contains(string(raw), "$defs") {
		t.Fatalf("schema must be inline: %s", raw)
	}
	if !strings.Contains(string(raw), `"additionalProperties":false`) {
		t.Fatalf("schema must forbid additional properties: %s", raw)
	}
}

func TestOutputStructureIsValidArtifact(t *testing.T) {
	if OutputStructure() != OutputStructure() {
		t.Fatalf("output structure must be deterministic")
	}
	if _, err := ParseArtifact(OutputStructure()); err != nil {
		t.Fatalf("placeholder should satisfy the artifact structure: %v", err)
	}
}
