package memory

import (
	"context"
	"reflect"
	"sync"
	"testing"
	"time"

	"video-script-api/internal/domain/entity"
)

func sampleArtifact(title string) *entity.VideoScriptArtifact {
	return &entity.VideoScriptArtifact{
		Title:  title,
		Script: entity.ScriptSegments{Hook: "hook", Introduction: "intro", MainContent: "main", CallToAction: "cta"},
		Scenes: []entity.Scene{{ID: 1, Title: "s1", Timing: "0:00-0:10", Description: "d", Tags: []string{"a"}}},
		Music:  entity.Music{SuggestedTracks: []string{"t1"}},
	}
}

func sampleRequest(topic string) *entity.GenerationRequest {
	return &entity.GenerationRequest{Topic: topic, VideoLength: entity.DefaultVideoLength, ContentStyle: entity.DefaultContentStyle}
}

// steppingClock 每次调用前进一秒
func steppingClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	cur := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		cur = cur.Add(time.Second)
		return cur
	}
}

func TestCreateGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewScriptRepository()

	created, err := repo.Create(ctx, sampleRequest("Intermittent fasting basics"), sampleArtifact("IF 101"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected generated id")
	}
	if created.CreatedAt.IsZero() {
		t.Fatalf("expected creation timestamp")
	}

	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !reflect.DeepEqual(created, got) {
		t.Fatalf("round trip mismatch:\nwant=%+v\ngot=%+v", created, got)
	}
}

func TestGetByIDMissing(t *testing.T) {
	repo := NewScriptRepository()
	got, err := repo.GetByID(context.Background(), "does-not-exist")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing id, got=%+v", got)
	}
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewScriptRepository()
	created, _ := repo.Create(ctx, sampleRequest("topic"), sampleArtifact("title"))

	created.Content.Title = "mutated"
	created.Content.Scenes[0].Tags[0] = "mutated"

	got, _ := repo.GetByID(ctx, created.ID)
	if got.Content.Title != "title" {
		t.Fatalf("title: want=%q got=%q", "title", got.Content.Title)
	}
	if got.Content.Scenes[0].Tags[0] != "a" {
		t.Fatalf("tag: want=%q got=%q", "a", got.Content.Scenes[0].Tags[0])
	}
}

func TestListRecentNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewScriptRepository(WithClock(steppingClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))))

	var ids []string
	for _, topic := range []string{"first", "second", "third"} {
		rec, err := repo.Create(ctx, sampleRequest(topic), sampleArtifact(topic))
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		ids = append(ids, rec.ID)
	}

	got, err := repo.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len: want=%d got=%d", 2, len(got))
	}
	if got[0].ID != ids[2] || got[1].ID != ids[1] {
		t.Fatalf("order: want=[%s %s] got=[%s %s]", ids[2], ids[1], got[0].ID, got[1].ID)
	}
}

func TestListRecentSameTimestampUsesInsertionOrder(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := NewScriptRepository(WithClock(func() time.Time { return fixed }))

	a, _ := repo.Create(ctx, sampleRequest("a"), sampleArtifact("a"))
	b, _ := repo.Create(ctx, sampleRequest("b"), sampleArtifact("b"))

	got, _ := repo.ListRecent(ctx, 10)
	if len(got) != 2 || got[0].ID != b.ID || got[1].ID != a.ID {
		t.Fatalf("tie order: want=[%s %s]", b.ID, a.ID)
	}
}

func TestListRecentIgnoresClockStepBack(t *testing.T) {
	ctx := context.Background()
	times := []time.Time{
		time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC),
	}
	i := 0
	repo := NewScriptRepository(WithClock(func() time.Time {
		t := times[i]
		i++
		return t
	}))

	a, _ := repo.Create(ctx, sampleRequest("a"), sampleArtifact("a"))
	b, _ := repo.Create(ctx, sampleRequest("b"), sampleArtifact("b"))

	list, _ := repo.ListRecent(ctx, 10)
	if len(list) != 2 {
		t.Fatalf("len: want=%d got=%d", 2, len(list))
	}
	if list[0].ID != b.ID || list[1].ID != a.ID {
		t.Fatalf("order: want=[%s %s] got=[%s %s]", b.ID, a.ID, list[0].ID, list[1].ID)
	}
}

func TestListRecentDefaultLimit(t *testing.T) {
	ctx := context.Background()
	repo := NewScriptRepository()
	for i := 0; i < 12; i++ {
		if _, err := repo.Create(ctx, sampleRequest("t"), sampleArtifact("t")); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	got, err := repo.ListRecent(ctx, 0)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(got) != 10 {
		t.Fatalf("default limit: want=%d got=%d", 10, len(got))
	}

	got, _ = repo.ListRecent(ctx, 50)
	if len(got) != 12 {
		t.Fatalf("fewer than limit: want=%d got=%d", 12, len(got))
	}
}

func TestConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	repo := NewScriptRepository()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = repo.Create(ctx, sampleRequest("t"), sampleArtifact("t"))
		}()
	}
	wg.Wait()

	n, _ := repo.Count(ctx)
	if n != 50 {
		t.Fatalf("count: want=%d got=%d", 50, n)
	}
}
