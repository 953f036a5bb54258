package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hyperengineering/facet/internal/types"
)

var insightNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func saveTestInsights(t *testing.T, s *SQLiteStore, insights ...types.Insight) []types.Insight {
	t.Helper()
	saved, err := s.SaveInsights(context.Background(), insights)
	if err != nil {
		t.Fatal(err)
	}
	return saved
}

func testInsight(title string, priority types.Priority, generatedAt time.Time) types.Insight {
	return types.Insight{
		Type:        types.InsightPattern,
		Title:       title,
		Description: "test insight",
		Confidence:  0.8,
		Priority:    priority,
		GeneratedAt: generatedAt,
	}
}

func TestStore_SaveInsights_AssignsIDs(t *testing.T) {
	s := newTestStore(t)
	saved := saveTestInsights(t, s, testInsight("one", types.PriorityLow, insightNow))
	if len(saved) != 1 || saved[0].ID == "" {
		t.Fatalf("expected ID assigned, got %+v", saved)
	}
}

func TestStore_SaveInsights_ReplacesUntouchedOnly(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := saveTestInsights(t, s,
		testInsight("kept: dismissed", types.PriorityLow, insightNow),
		testInsight("kept: acted", types.PriorityLow, insightNow),
		testInsight("replaced", types.PriorityLow, insightNow),
	)
	if err := s.DismissInsight(ctx, first[0].ID, "seen it", insightNow); err != nil {
		t.Fatal(err)
	}
	if err := s.MarkInsightActedOn(ctx, first[1].ID, insightNow); err != nil {
		t.Fatal(err)
	}

	saveTestInsights(t, s, testInsight("fresh", types.PriorityLow, insightNow.Add(time.Hour)))

	active, err := s.ListActiveInsights(ctx, insightNow)
	if err != nil {
		t.Fatal(err)
	}
	titles := map[string]bool{}
	for _, in := range active {
		titles[in.Title] = true
	}
	// Dismissed one is inactive but still exists; acted-on survives the
	// refresh; the untouched one is gone.
	if !titles["kept: acted"] || !titles["fresh"] {
		t.Errorf("expected acted-on and fresh insights active, got %v", titles)
	}
	if titles["replaced"] {
		t.Error("untouched insight survived a refresh")
	}
}

func TestStore_ListActiveInsights_SortsAndFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	expired := insightNow.Add(-time.Hour)
	expiredInsight := testInsight("expired", types.PriorityHigh, insightNow.Add(-48*time.Hour))
	expiredInsight.ValidUntil = &expired

	saved := saveTestInsights(t, s,
		testInsight("old medium", types.PriorityMedium, insightNow.Add(-24*time.Hour)),
		testInsight("low", types.PriorityLow, insightNow),
		testInsight("high", types.PriorityHigh, insightNow.Add(-36*time.Hour)),
		testInsight("new medium", types.PriorityMedium, insightNow),
		expiredInsight,
		testInsight("dismissed high", types.PriorityHigh, insightNow),
	)
	if err := s.DismissInsight(ctx, saved[5].ID, "", insightNow); err != nil {
		t.Fatal(err)
	}

	active, err := s.ListActiveInsights(ctx, insightNow)
	if err != nil {
		t.Fatal(err)
	}

	var titles []string
	for _, in := range active {
		titles = append(titles, in.Title)
	}
	expected := []string{"high", "new medium", "old medium", "low"}
	if len(titles) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, titles)
	}
	for i := range expected {
		if titles[i] != expected[i] {
			t.Errorf("position %d: got %q, expected %q", i, titles[i], expected[i])
		}
	}
}

func TestStore_ListActiveInsights_UnexpiredBoundary(t *testing.T) {
	s := newTestStore(t)

	validUntil := insightNow
	in := testInsight("expires exactly now", types.PriorityLow, insightNow.Add(-24*time.Hour))
	in.ValidUntil = &validUntil
	saveTestInsights(t, s, in)

	// validUntil >= now keeps the insight visible at the boundary instant.
	active, err := s.ListActiveInsights(context.Background(), insightNow)
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 1 {
		t.Errorf("expected insight active at validUntil == now, got %d", len(active))
	}
}

func TestStore_DismissInsight_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	saved := saveTestInsights(t, s, testInsight("to dismiss", types.PriorityMedium, insightNow))
	id := saved[0].ID

	if err := s.DismissInsight(ctx, id, "not relevant", insightNow); err != nil {
		t.Fatal(err)
	}
	first, err := s.getInsight(ctx, id)
	if err != nil {
		t.Fatal(err)
	}

	// Second dismissal with a different reason and later timestamp must be
	// a silent no-op preserving the original state.
	if err := s.DismissInsight(ctx, id, "changed my mind", insightNow.Add(time.Hour)); err != nil {
		t.Fatalf("second dismiss should be error-free: %v", err)
	}
	second, err := s.getInsight(ctx, id)
	if err != nil {
		t.Fatal(err)
	}

	if !second.Dismissed {
		t.Error("insight should remain dismissed")
	}
	if second.DismissReason != first.DismissReason {
		t.Errorf("dismiss reason overwritten: %q -> %q", first.DismissReason, second.DismissReason)
	}
	if !second.DismissedAt.Equal(*first.DismissedAt) {
		t.Errorf("dismissedAt overwritten: %v -> %v", first.DismissedAt, second.DismissedAt)
	}
}

func TestStore_MarkActedOn_IndependentOfDismissal(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	saved := saveTestInsights(t, s, testInsight("both flags", types.PriorityMedium, insightNow))
	id := saved[0].ID

	if err := s.DismissInsight(ctx, id, "", insightNow); err != nil {
		t.Fatal(err)
	}
	if err := s.MarkInsightActedOn(ctx, id, insightNow); err != nil {
		t.Fatal(err)
	}

	in, err := s.getInsight(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if !in.Dismissed || !in.ActedOn {
		t.Errorf("dismissed and acted_on must both hold: %+v", in)
	}

	// Repeat acted-on preserves the original timestamp.
	if err := s.MarkInsightActedOn(ctx, id, insightNow.Add(time.Hour)); err != nil {
		t.Fatal(err)
	}
	again, _ := s.getInsight(ctx, id)
	if !again.ActedOnAt.Equal(*in.ActedOnAt) {
		t.Errorf("actedOnAt overwritten: %v -> %v", in.ActedOnAt, again.ActedOnAt)
	}
}

func TestStore_SetInsightFeedback_FirstVerdictWins(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	saved := saveTestInsights(t, s, testInsight("feedback", types.PriorityLow, insightNow))
	id := saved[0].ID

	if err := s.SetInsightFeedback(ctx, id, types.FeedbackHelpful); err != nil {
		t.Fatal(err)
	}
	if err := s.SetInsightFeedback(ctx, id, types.FeedbackNotHelpful); err != nil {
		t.Fatalf("repeated feedback should be error-free: %v", err)
	}

	in, err := s.getInsight(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if in.Feedback != types.FeedbackHelpful {
		t.Errorf("first verdict should win, got %s", in.Feedback)
	}
}

func TestStore_LifecycleOnMissingInsight(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.DismissInsight(ctx, "01ARZ3NDEKTSV4RRFFQ69G5FAV", "", insightNow); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := s.MarkInsightActedOn(ctx, "01ARZ3NDEKTSV4RRFFQ69G5FAV", insightNow); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := s.SetInsightFeedback(ctx, "01ARZ3NDEKTSV4RRFFQ69G5FAV", types.FeedbackHelpful); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_PurgeOldDismissed(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	saved := saveTestInsights(t, s,
		testInsight("old dismissed", types.PriorityLow, insightNow.Add(-100*24*time.Hour)),
		testInsight("recent dismissed", types.PriorityLow, insightNow),
		testInsight("never dismissed", types.PriorityLow, insightNow),
	)
	if err := s.DismissInsight(ctx, saved[0].ID, "", insightNow.Add(-45*24*time.Hour)); err != nil {
		t.Fatal(err)
	}
	if err := s.DismissInsight(ctx, saved[1].ID, "", insightNow.Add(-2*24*time.Hour)); err != nil {
		t.Fatal(err)
	}

	deleted, err := s.PurgeOldDismissed(ctx, 30*24*time.Hour, insightNow)
	if err != nil {
		t.Fatal(err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 insight purged, got %d", deleted)
	}

	if _, err := s.getInsight(ctx, saved[0].ID); !errors.Is(err, ErrNotFound) {
		t.Error("old dismissed insight should be gone")
	}
	if _, err := s.getInsight(ctx, saved[1].ID); err != nil {
		t.Error("recently dismissed insight should survive")
	}
	if _, err := s.getInsight(ctx, saved[2].ID); err != nil {
		t.Error("active insight should survive")
	}
}

func TestStore_InsightRoundTripPreservesPayload(t *testing.T) {
	s := newTestStore(t)

	validUntil := insightNow.Add(7 * 24 * time.Hour)
	in := types.Insight{
		Type:             types.InsightAchievement,
		Title:            "payload",
		Description:      "full payload round trip",
		Confidence:       0.92,
		Priority:         types.PriorityHigh,
		Actionable:       true,
		SuggestedActions: []string{"do a thing", "do another"},
		BasedOn:          map[string]any{"totalHours": 12.5, "category": "builder"},
		GeneratedAt:      insightNow,
		ValidUntil:       &validUntil,
	}
	saved := saveTestInsights(t, s, in)

	got, err := s.getInsight(context.Background(), saved[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Type != in.Type || got.Confidence != in.Confidence || !got.Actionable {
		t.Errorf("scalar fields lost: %+v", got)
	}
	if len(got.SuggestedActions) != 2 || got.SuggestedActions[0] != "do a thing" {
		t.Errorf("suggested actions lost: %+v", got.SuggestedActions)
	}
	if got.BasedOn["category"] != "builder" || got.BasedOn["totalHours"] != 12.5 {
		t.Errorf("based_on payload lost: %+v", got.BasedOn)
	}
	if got.ValidUntil == nil || !got.ValidUntil.Equal(validUntil) {
		t.Errorf("valid_until lost: %v", got.ValidUntil)
	}
}
