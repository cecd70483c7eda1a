package etl

import (
	"database/sql"
	"math"
	"testing"

	"github.com/maguenza/hackernews-ai-project/internal/models"
)

func nsValid(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

func TestCommentLengthStats(t *testing.T) {
	tests := []struct {
		name     string
		comments []*models.Comment
		avg      float64
		min, max int64
	}{
		{
			name:     "no comments",
			comments: nil,
		},
		{
			name: "single comment",
			comments: []*models.Comment{
				{Text: nsValid("hello")},
			},
			avg: 5, min: 5, max: 5,
		},
		{
			name: "mixed lengths",
			comments: []*models.Comment{
				{Text: nsValid("ab")},
				{Text: nsValid("abcdef")},
			},
			avg: 4, min: 2, max: 6,
		},
		{
			name: "null bodies excluded from aggregates",
			comments: []*models.Comment{
				{Text: nsValid("abcd")},
				{Text: sql.NullString{}},
			},
			avg: 4, min: 4, max: 4,
		},
		{
			name: "all bodies null",
			comments: []*models.Comment{
				{Text: sql.NullString{}},
				{Text: sql.NullString{}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := commentLengthStats(tt.comments)
			if got.Avg != tt.avg || got.Min != tt.min || got.Max != tt.max {
				t.Errorf("commentLengthStats() = %+v, want avg=%v min=%d max=%d",
					got, tt.avg, tt.min, tt.max)
			}
		})
	}
}

func TestStoryEngagement(t *testing.T) {
	// A story with no comments scores exactly 0.4 * score.
	if got := storyEngagement(10, 0, 0); got != 4.0 {
		t.Errorf("storyEngagement(10, 0, 0) = %v, want 4.0", got)
	}
	if got := storyEngagement(10, 5, 100); math.Abs(got-26.0) > 1e-9 {
		t.Errorf("storyEngagement(10, 5, 100) = %v, want 26.0", got)
	}
}

func TestUserEngagement(t *testing.T) {
	if got := userEngagement(0, 0, 0, 0); got != 0 {
		t.Errorf("userEngagement zero = %v, want 0", got)
	}
	if got := userEngagement(10, 20, 50, 0); math.Abs(got-19.0) > 1e-9 {
		t.Errorf("userEngagement(10, 20, 50, 0) = %v, want 19.0", got)
	}
}

func TestRankTopics(t *testing.T) {
	stories := []*models.Story{
		{ID: 1, Title: "A", Score: 10},
		{ID: 2, Title: "A", Score: 20},
		{ID: 3, Title: "B", Score: 5},
	}
	counts := map[int64]int64{1: 2, 2: 4, 3: 1}

	topics := rankTopics(stories, counts, 10)
	if len(topics) != 2 {
		t.Fatalf("Expected 2 topics, got %d", len(topics))
	}
	if topics[0].Topic != "A" || topics[0].StoryCount != 2 {
		t.Errorf("Expected topic A first with count 2, got %+v", topics[0])
	}
	if topics[0].AvgScore != 15 || topics[0].TotalComments != 6 {
		t.Errorf("Unexpected aggregates for A: %+v", topics[0])
	}
	if topics[1].Topic != "B" || topics[1].StoryCount != 1 {
		t.Errorf("Expected topic B second, got %+v", topics[1])
	}
}

func TestRankTopicsLimit(t *testing.T) {
	var stories []*models.Story
	for i := int64(0); i < 15; i++ {
		stories = append(stories, &models.Story{ID: i, Title: string(rune('a' + i))})
	}

	topics := rankTopics(stories, nil, 10)
	if len(topics) != 10 {
		t.Errorf("Expected at most 10 topics, got %d", len(topics))
	}
	for i := 1; i < len(topics); i++ {
		if topics[i-1].StoryCount < topics[i].StoryCount {
			t.Errorf("Topics not sorted by story count descending at %d", i)
		}
	}
}

func TestSalaryMidpoint(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		{"90000-120000", 105000, true},
		{"150k-180k", 0, false},
		{"negotiable", 0, false},
		{"100-", 0, false},
		{"50 - 70", 60, true},
	}

	for _, tt := range tests {
		got, ok := salaryMidpoint(tt.input)
		if ok != tt.ok || got != tt.want {
			t.Errorf("salaryMidpoint(%q) = (%v, %v), want (%v, %v)",
				tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

func TestAverageSalaryMidpoint(t *testing.T) {
	jobs := []*models.Job{
		{SalaryRange: nsValid("100-200")},
		{SalaryRange: nsValid("garbage")},
		{SalaryRange: sql.NullString{}},
		{SalaryRange: nsValid("300-500")},
	}

	// Unparsable and absent ranges are skipped, not counted.
	got := averageSalaryMidpoint(jobs)
	if got != 275 {
		t.Errorf("averageSalaryMidpoint = %v, want 275", got)
	}

	if got := averageSalaryMidpoint(nil); got != 0 {
		t.Errorf("averageSalaryMidpoint(nil) = %v, want 0", got)
	}
}

func TestJobDistributions(t *testing.T) {
	jobs := []*models.Job{
		{JobType: nsValid("remote"), Location: nsValid("london"), Company: nsValid("acme")},
		{JobType: nsValid("remote"), Location: nsValid("london")},
		{JobType: nsValid("full-time")},
	}

	types, locations, companies := jobDistributions(jobs)
	if types["remote"] != 2 || types["full-time"] != 1 {
		t.Errorf("Unexpected type distribution: %v", types)
	}
	if locations["london"] != 2 {
		t.Errorf("Unexpected location distribution: %v", locations)
	}
	if companies["acme"] != 1 || len(companies) != 1 {
		t.Errorf("Unexpected company distribution: %v", companies)
	}
}
