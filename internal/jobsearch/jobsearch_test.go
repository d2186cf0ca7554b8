package jobsearch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Software Engineer in Indore", r.URL.Query().Get("query"))
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		assert.Equal(t, "1", r.URL.Query().Get("num_pages"))
		assert.Equal(t, "secret", r.Header.Get("x-rapidapi-key"))
		assert.Equal(t, DefaultHost, r.Header.Get("x-rapidapi-host"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status": "OK", "data": [
			{"job_title": "Go Engineer", "employer_name": "Acme", "job_city": "Indore", "job_country": "IN",
			 "job_description": "Build things", "job_required_skills": ["Go", "SQL"], "job_apply_link": "https://acme.example/apply"},
			{"job_title": "SRE", "employer_name": "Beta", "job_required_skills": null}
		]}`)
	}))
	defer srv.Close()

	c := NewClient("secret")
	c.BaseURL = srv.URL

	records, err := c.Search(context.Background(), Query("Indore"), 1)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Go Engineer", records[0].JobTitle)
	assert.Equal(t, []string{"Go", "SQL"}, records[0].JobRequiredSkills)
	assert.Nil(t, records[1].JobRequiredSkills)
}

func TestClient_SearchUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient("secret")
	c.BaseURL = srv.URL

	_, err := c.Search(context.Background(), Query("India"), 1)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Contains(t, err.Error(), "429")
}

func TestReshape(t *testing.T) {
	long := strings.Repeat("é", 250)
	records := []Record{
		{
			JobTitle: "Go Engineer", EmployerName: "Acme", JobCity: "Indore", JobCountry: "IN",
			JobDescription:    long,
			JobRequiredSkills: []string{"a", "b", "c", "d", "e", "f", "g"},
			JobApplyLink:      "https://acme.example/apply",
		},
		{JobTitle: "SRE", EmployerName: "Beta", JobCountry: "IN", JobDescription: "short"},
		{}, {}, {}, {},
	}

	jobs := Reshape(records)
	require.Len(t, jobs, 5)

	first := jobs[0]
	assert.Equal(t, "Go Engineer", first.Title)
	assert.Equal(t, "Acme", first.Company)
	assert.Equal(t, "Indore, IN", first.Location)
	assert.Equal(t, 85, first.MatchScore)
	assert.Equal(t, "high", first.MatchLevel)
	assert.Equal(t, strings.Repeat("é", 200)+"...", first.Description)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, first.RequiredSkills)
	assert.Equal(t, "https://acme.example/apply", first.URL)

	assert.Equal(t, "IN", jobs[1].Location)
	assert.Equal(t, "short...", jobs[1].Description)
	assert.Equal(t, []string{}, jobs[1].RequiredSkills)

	assert.Empty(t, jobs[4].Location)
	assert.Equal(t, "...", jobs[4].Description)
}

func TestSummaryPrompt(t *testing.T) {
	resume := strings.Repeat("r", 600)
	p := SummaryPrompt(resume, []Job{{Title: "Go Engineer", Company: "Acme"}, {Title: "SRE", Company: "Beta"}})

	assert.Contains(t, p, strings.Repeat("r", 500)+"...")
	assert.NotContains(t, p, strings.Repeat("r", 501))
	assert.Contains(t, p, "Go Engineer at Acme, SRE at Beta")
}

type countingSearcher struct {
	calls   int
	queries []string
	records []Record
	err     error
}

func (s *countingSearcher) Search(_ context.Context, query string, _ int) ([]Record, error) {
	s.calls++
	s.queries = append(s.queries, query)
	return s.records, s.err
}

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute), mr
}

func TestCache_RoundTripAndExpiry(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, "Pune")
	require.NoError(t, err)
	assert.False(t, ok)

	jobs := []Job{{Title: "Go Engineer", RequiredSkills: []string{"Go"}}}
	require.NoError(t, cache.Set(ctx, " Pune ", jobs))
	assert.True(t, mr.Exists("hirevoid:jobs:pune"))

	got, ok, err := cache.Get(ctx, "pune")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, jobs, got)

	mr.FastForward(2 * time.Minute)
	_, ok, err = cache.Get(ctx, "Pune")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFinder_DefaultsLocationAndCaches(t *testing.T) {
	cache, _ := newTestCache(t)
	searcher := &countingSearcher{records: []Record{{JobTitle: "Go Engineer", EmployerName: "Acme"}}}
	f := NewFinder(searcher, cache, zerolog.Nop())

	jobs, err := f.Find(context.Background(), "  ")
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, []string{"Software Engineer in India"}, searcher.queries)

	again, err := f.Find(context.Background(), "India")
	require.NoError(t, err)
	assert.Equal(t, jobs, again)
	assert.Equal(t, 1, searcher.calls)
}

func TestFinder_CacheDownFallsThrough(t *testing.T) {
	cache, mr := newTestCache(t)
	mr.Close()

	searcher := &countingSearcher{records: []Record{{JobTitle: "SRE"}}}
	f := NewFinder(searcher, cache, zerolog.Nop())

	jobs, err := f.Find(context.Background(), "Delhi")
	require.NoError(t, err)
	assert.Equal(t, "SRE", jobs[0].Title)
}

func TestFinder_UpstreamError(t *testing.T) {
	searcher := &countingSearcher{err: fmt.Errorf("%w: boom", ErrUpstream)}
	f := NewFinder(searcher, nil, zerolog.Nop())

	_, err := f.Find(context.Background(), "Delhi")
	assert.True(t, errors.Is(err, ErrUpstream))
}
