package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"bringalong/internal/config"
	"bringalong/internal/models"
	"bringalong/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errStore = errors.New("store unavailable")

func newSearchService(store *memTripStore) TripSearchService {
	return NewTripSearchService(store, nil, config.DefaultSearchConfig(), logger.NewNop())
}

func search(t *testing.T, store *memTripStore, query *models.SearchQuery) *models.SearchResult {
	t.Helper()
	result, err := newSearchService(store).Search(context.Background(), query)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	return result
}

func assertMatches(t *testing.T, got []*models.TripMatch, want ...*models.Trip) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d trips, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i].ID {
			t.Errorf("trip %d: got %s -> %s, want %s -> %s",
				i, got[i].FromCity, got[i].ToCity, want[i].FromCity, want[i].ToCity)
		}
	}
}

func assertUniqueIDs(t *testing.T, matches []*models.TripMatch) {
	t.Helper()
	seen := make(map[primitive.ObjectID]bool)
	for _, m := range matches {
		if seen[m.ID] {
			t.Fatalf("trip %s appears twice", m.ID.Hex())
		}
		seen[m.ID] = true
	}
}

func TestSearchMatchesBothDirections(t *testing.T) {
	pl := tripOn(1, "Paris", "France", "London", "United Kingdom")
	lp := tripOn(2, "London", "United Kingdom", "Paris", "France")
	other := tripOn(3, "Berlin", "Germany", "Rome", "Italy")
	store := newMemTripStore(pl, lp, other)

	result := search(t, store, &models.SearchQuery{From: "Paris", To: "London"})

	assertMatches(t, result.Trips, pl, lp)
	for _, m := range result.Trips {
		if m.MatchType != models.MatchTypeExact || m.NearToYou {
			t.Errorf("%s -> %s: got %s nearToYou=%v, want exact", m.FromCity, m.ToCity, m.MatchType, m.NearToYou)
		}
	}
	if result.ExactMatches != 2 || result.BroaderMatches != 0 {
		t.Errorf("exact/broader = %d/%d, want 2/0", result.ExactMatches, result.BroaderMatches)
	}
	if store.findCalls() != 1 {
		t.Errorf("expected a single query without country hints, got %d", store.findCalls())
	}
}

func TestSearchWithoutLocationsFiltersActiveOnly(t *testing.T) {
	a := tripOn(1, "Paris", "France", "London", "United Kingdom")
	b := tripOn(2, "Lagos", "Nigeria", "Accra", "Ghana")
	cancelled := tripOn(3, "Rome", "Italy", "Madrid", "Spain")
	cancelled.Status = models.TripStatusCancelled
	store := newMemTripStore(a, b, cancelled)

	result := search(t, store, &models.SearchQuery{})

	assertMatches(t, result.Trips, a, b)
	if store.findCalls() != 1 {
		t.Fatalf("expected no broadening queries, got %d calls", store.findCalls())
	}
	if want := (bson.M{"status": models.TripStatusActive}); !reflect.DeepEqual(store.filters[0], want) {
		t.Errorf("filter = %v, want %v", store.filters[0], want)
	}
}

func TestSearchHonoursStatusParameter(t *testing.T) {
	active := tripOn(1, "Paris", "France", "London", "United Kingdom")
	done := tripOn(2, "Paris", "France", "London", "United Kingdom")
	done.Status = models.TripStatusCompleted
	store := newMemTripStore(active, done)

	result := search(t, store, &models.SearchQuery{Status: models.TripStatusCompleted})

	assertMatches(t, result.Trips, done)
}

func TestSearchSplitsCityPairsFromCountryMatches(t *testing.T) {
	glasgow := tripOn(1, "Glasgow", "Scotland", "Paris", "France")
	scotland := tripOn(2, "Scotland", "United Kingdom", "Paris", "France")
	london := tripOn(4, "London", "United Kingdom", "Paris", "France")
	edinburgh := tripOn(5, "Edinburgh", "United Kingdom", "Lyon", "France")
	kyiv := tripOn(6, "Paris", "France", "Kyiv", "Ukraine")
	store := newMemTripStore(glasgow, scotland, london, edinburgh, kyiv)

	result := search(t, store, &models.SearchQuery{From: "Scotland, United Kingdom", To: "Paris, France"})

	assertMatches(t, result.Trips, scotland, glasgow, london, edinburgh)
	assertUniqueIDs(t, result.Trips)

	if result.Trips[0].MatchType != models.MatchTypeExact || result.Trips[0].NearToYou {
		t.Errorf("city pair should be an exact match, got %+v", result.Trips[0])
	}
	for _, m := range result.Trips[1:] {
		if m.MatchType != models.MatchTypeBroader || !m.NearToYou {
			t.Errorf("%s -> %s: got %s nearToYou=%v, want broader near to you", m.FromCity, m.ToCity, m.MatchType, m.NearToYou)
		}
	}
	if result.ExactMatches != 1 || result.BroaderMatches != 3 {
		t.Errorf("exact/broader = %d/%d, want 1/3", result.ExactMatches, result.BroaderMatches)
	}
}

func TestSearchCountryHintsAddBroaderMatches(t *testing.T) {
	e1 := tripOn(1, "Paris", "France", "London", "United Kingdom")
	e2 := tripOn(2, "London", "United Kingdom", "Paris", "France")
	b1 := tripOn(3, "Lyon", "France", "London", "United Kingdom")
	b2 := tripOn(4, "Paris", "France", "Manchester", "United Kingdom")
	b3 := tripOn(5, "Nice", "France", "Leeds", "England")
	kyiv := tripOn(6, "Paris", "France", "Kyiv", "Ukraine")
	other := tripOn(7, "Berlin", "Germany", "Rome", "Italy")
	store := newMemTripStore(e1, e2, b1, b2, b3, kyiv, other)

	result := search(t, store, &models.SearchQuery{From: "Paris, France", To: "London, United Kingdom"})

	assertMatches(t, result.Trips, e1, e2, b1, b2, b3)
	assertUniqueIDs(t, result.Trips)

	if result.ExactMatches != 2 || result.BroaderMatches != 3 {
		t.Errorf("exact/broader = %d/%d, want 2/3", result.ExactMatches, result.BroaderMatches)
	}
	for _, m := range result.Trips[2:] {
		if m.MatchType != models.MatchTypeBroader || !m.NearToYou {
			t.Errorf("%s -> %s should be broader near to you", m.FromCity, m.ToCity)
		}
	}
}

func TestSearchCountryFallbackIsCapped(t *testing.T) {
	trips := []*models.Trip{tripOn(0, "Paris", "France", "London", "United Kingdom")}
	for i := 0; i < 12; i++ {
		// outside the country pair, reachable only through origin country + destination city
		trips = append(trips, tripOn(10+i, "Lyon", "France", "London", "Canada"))
	}
	store := newMemTripStore(trips...)

	result := search(t, store, &models.SearchQuery{From: "Paris, France", To: "London, United Kingdom"})

	if result.ExactMatches != 1 {
		t.Errorf("exact = %d, want 1", result.ExactMatches)
	}
	if result.BroaderMatches != 10 {
		t.Errorf("broader = %d, want the cap of 10", result.BroaderMatches)
	}
	if result.Total != 11 {
		t.Errorf("total = %d, want 11", result.Total)
	}
}

func TestSearchSplitsCountryMatchesForCityInput(t *testing.T) {
	lb1 := tripOn(1, "Lyon", "France", "Berlin", "Germany")
	lb2 := tripOn(2, "Lyon", "France", "Berlin", "Germany")
	bl := tripOn(3, "Berlin", "Germany", "Lyon", "France")
	munich := tripOn(4, "Paris", "France", "Munich", "Germany")
	rome := tripOn(5, "Rome", "Italy", "Berlin", "Germany")
	store := newMemTripStore(lb1, lb2, bl, munich, rome)

	result := search(t, store, &models.SearchQuery{From: "Lyon, France", To: "Berlin, Germany"})

	assertMatches(t, result.Trips, lb1, lb2, bl, munich)
	assertUniqueIDs(t, result.Trips)

	if result.ExactMatches != 3 || result.BroaderMatches != 1 {
		t.Errorf("exact/broader = %d/%d, want 3/1", result.ExactMatches, result.BroaderMatches)
	}
	for _, m := range result.Trips[:3] {
		if m.MatchType != models.MatchTypeExact || m.NearToYou {
			t.Errorf("%s -> %s: got %s nearToYou=%v, want exact", m.FromCity, m.ToCity, m.MatchType, m.NearToYou)
		}
	}
	if m := result.Trips[3]; m.MatchType != models.MatchTypeBroader || !m.NearToYou {
		t.Errorf("same-country trip should be broader near to you, got %s nearToYou=%v", m.MatchType, m.NearToYou)
	}
	if store.findCalls() != 2 {
		t.Errorf("expected the exact and city pair queries only, got %d", store.findCalls())
	}
}

func TestSearchCountryFallbackNeedsCountryHints(t *testing.T) {
	e1 := tripOn(1, "Paris", "France", "London", "United Kingdom")
	e2 := tripOn(2, "London", "United Kingdom", "Paris", "France")
	nearby := tripOn(3, "Lyon", "France", "Leeds", "United Kingdom")
	store := newMemTripStore(e1, e2, nearby)

	result := search(t, store, &models.SearchQuery{From: "Paris", To: "London"})

	assertMatches(t, result.Trips, e1, e2)
	if result.BroaderMatches != 0 {
		t.Errorf("broader = %d, want 0", result.BroaderMatches)
	}
	if store.findCalls() != 1 {
		t.Errorf("fallback should not run, got %d queries", store.findCalls())
	}
}

func TestSearchOpenFallbackWhenNothingMatches(t *testing.T) {
	var trips []*models.Trip
	for i := 0; i < 9; i++ {
		trips = append(trips, tripOn(i, "Lagos", "Nigeria", "Accra", "Ghana"))
	}
	cancelled := tripOn(20, "Lagos", "Nigeria", "Accra", "Ghana")
	cancelled.Status = models.TripStatusCancelled
	trips = append(trips, cancelled)
	store := newMemTripStore(trips...)

	result := search(t, store, &models.SearchQuery{From: "Atlantis", To: "Narnia"})

	if result.ExactMatches != 0 || result.BroaderMatches != 7 {
		t.Fatalf("exact/broader = %d/%d, want 0/7", result.ExactMatches, result.BroaderMatches)
	}
	for _, m := range result.Trips {
		if m.MatchType != models.MatchTypeBroader || !m.NearToYou {
			t.Errorf("open fallback trip should be broader near to you, got %+v", m)
		}
		if m.Status != models.TripStatusActive {
			t.Errorf("open fallback returned a %s trip", m.Status)
		}
	}
	assertMatches(t, result.Trips, trips[:7]...)
}

func TestSearchOpenFallbackNeedsBothSides(t *testing.T) {
	store := newMemTripStore(tripOn(1, "Lagos", "Nigeria", "Accra", "Ghana"))

	result := search(t, store, &models.SearchQuery{From: "Atlantis"})

	if result.Total != 0 {
		t.Errorf("total = %d, want 0", result.Total)
	}
	if store.findCalls() != 1 {
		t.Errorf("fallback should not run with one side, got %d queries", store.findCalls())
	}
}

func TestSearchOpenFallbackSkippedWhenSomeExist(t *testing.T) {
	pl := tripOn(1, "Paris", "France", "Madrid", "Spain")
	store := newMemTripStore(pl, tripOn(2, "Lagos", "Nigeria", "Accra", "Ghana"))

	result := search(t, store, &models.SearchQuery{From: "Paris", To: "Madrid"})

	assertMatches(t, result.Trips, pl)
}

func TestSearchCountryOnlyTokens(t *testing.T) {
	fr := tripOn(1, "Lyon", "France", "Leeds", "UK")
	rev := tripOn(2, "Leeds", "Britain", "Nice", "France")
	ua := tripOn(3, "Lyon", "France", "Kyiv", "Ukraine")
	store := newMemTripStore(fr, rev, ua)

	result := search(t, store, &models.SearchQuery{From: "France", To: "United Kingdom"})

	assertMatches(t, result.Trips, fr, rev)
}

func TestSearchPagination(t *testing.T) {
	var trips []*models.Trip
	for i := 1; i <= 25; i++ {
		trips = append(trips, tripOn(i, "Paris", "France", "London", "United Kingdom"))
	}
	store := newMemTripStore(trips...)

	result := search(t, store, &models.SearchQuery{From: "Paris", To: "London", Page: 3, Limit: 10})

	if result.Total != 25 || result.TotalPages != 3 || result.CurrentPage != 3 {
		t.Errorf("total/pages/current = %d/%d/%d, want 25/3/3", result.Total, result.TotalPages, result.CurrentPage)
	}
	assertMatches(t, result.Trips, trips[20:]...)

	past := search(t, store, &models.SearchQuery{From: "Paris", To: "London", Page: 4, Limit: 10})
	if len(past.Trips) != 0 {
		t.Errorf("page past the end returned %d trips", len(past.Trips))
	}
	if past.Total != 25 {
		t.Errorf("total = %d, want 25", past.Total)
	}
}

func TestSearchLegacyParamsApplyToOriginalDirection(t *testing.T) {
	pl := tripOn(1, "Paris", "France", "London", "United Kingdom")
	lp := tripOn(2, "London", "United Kingdom", "Paris", "France")
	ontario := tripOn(3, "Paris", "France", "London", "Canada")
	store := newMemTripStore(pl, lp, ontario)

	result := search(t, store, &models.SearchQuery{FromCity: "Paris"})
	assertMatches(t, result.Trips, pl, ontario)

	result = search(t, store, &models.SearchQuery{From: "Paris", To: "London", ToCountry: "United Kingdom"})
	assertMatches(t, result.Trips, pl, lp)
}

func TestSearchDateRange(t *testing.T) {
	early := tripOn(1, "Paris", "France", "London", "United Kingdom")
	mid := tripOn(5, "London", "United Kingdom", "Paris", "France")
	late := tripOn(10, "Paris", "France", "London", "United Kingdom")
	store := newMemTripStore(early, mid, late)

	fromDate := baseDate.AddDate(0, 0, 3)
	toDate := baseDate.AddDate(0, 0, 8)
	result := search(t, store, &models.SearchQuery{From: "Paris", To: "London", FromDate: &fromDate, ToDate: &toDate})

	assertMatches(t, result.Trips, mid)
}

func TestSearchSortByPriceDescending(t *testing.T) {
	cheap := tripOn(1, "Paris", "France", "London", "United Kingdom")
	cheap.ServiceFee = 10
	pricey := tripOn(2, "Paris", "France", "London", "United Kingdom")
	pricey.ServiceFee = 30
	mid := tripOn(3, "London", "United Kingdom", "Paris", "France")
	mid.ServiceFee = 20
	store := newMemTripStore(cheap, pricey, mid)

	result := search(t, store, &models.SearchQuery{From: "Paris", To: "London", SortBy: "price", SortOrder: "desc"})

	assertMatches(t, result.Trips, pricey, mid, cheap)
}

func TestSearchReturnsStoreErrors(t *testing.T) {
	tests := []struct {
		name   string
		query  *models.SearchQuery
		failOn int
	}{
		{"exact query", &models.SearchQuery{From: "Paris", To: "London"}, 1},
		{"city pair query", &models.SearchQuery{From: "Paris, France", To: "London, UK"}, 2},
		{"country fallback", &models.SearchQuery{From: "Paris, France", To: "London, UK"}, 3},
		{"open fallback", &models.SearchQuery{From: "Atlantis", To: "Narnia"}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemTripStore(tripOn(1, "Lagos", "Nigeria", "Accra", "Ghana"))
			store.failOn = tt.failOn
			store.findErr = errStore

			result, err := newSearchService(store).Search(context.Background(), tt.query)
			if !errors.Is(err, errStore) {
				t.Fatalf("expected wrapped store error, got %v", err)
			}
			if result != nil {
				t.Error("expected no partial result")
			}
		})
	}
}

func TestSearchAttachesOwners(t *testing.T) {
	owner := &models.User{ID: primitive.NewObjectID(), Name: "Ada", ProfileImage: "https://cdn.example.com/ada.jpg"}
	trip := tripOn(1, "Paris", "France", "London", "United Kingdom")
	trip.UserID = owner.ID

	svc := NewTripSearchService(newMemTripStore(trip), newMemUserStore(owner), nil, nil)
	result, err := svc.Search(context.Background(), &models.SearchQuery{From: "Paris", To: "London"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if result.Trips[0].User == nil || result.Trips[0].User.Name != "Ada" {
		t.Errorf("expected owner summary, got %+v", result.Trips[0].User)
	}
}

func TestSearchUsesConfiguredThreshold(t *testing.T) {
	e1 := tripOn(1, "Paris", "France", "London", "United Kingdom")
	ontario := tripOn(2, "Lyon", "France", "London", "Canada")
	store := newMemTripStore(e1, ontario)

	cfg := config.DefaultSearchConfig()
	cfg.ExactThreshold = 1
	svc := NewTripSearchService(store, nil, cfg, logger.NewNop())

	result, err := svc.Search(context.Background(), &models.SearchQuery{From: "Paris, France", To: "London, UK"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if result.BroaderMatches != 0 {
		t.Errorf("broader = %d, want 0 when the threshold is met", result.BroaderMatches)
	}
	if store.findCalls() != 2 {
		t.Errorf("fallback should not run, got %d queries", store.findCalls())
	}

	// the default threshold of 3 widens to the destination city
	result = search(t, newMemTripStore(e1, ontario), &models.SearchQuery{From: "Paris, France", To: "London, UK"})
	if result.BroaderMatches != 1 {
		t.Errorf("broader = %d, want 1 with the default threshold", result.BroaderMatches)
	}
}

func TestMatchSetKeepsFirstInsert(t *testing.T) {
	trip := tripOn(1, "Paris", "France", "London", "United Kingdom")
	set := newMatchSet()

	if !set.Add(trip, models.MatchTypeExact, false) {
		t.Fatal("first insert should be accepted")
	}
	if set.Add(trip, models.MatchTypeBroader, true) {
		t.Fatal("second insert of the same id should be refused")
	}
	if set.Len() != 1 || set.Count(models.MatchTypeExact) != 1 {
		t.Errorf("unexpected contents: len=%d exact=%d", set.Len(), set.Count(models.MatchTypeExact))
	}
}

func TestMatchSetOrdersTiersSeparately(t *testing.T) {
	lateExact := tripOn(9, "Paris", "France", "London", "United Kingdom")
	earlyBroader := tripOn(1, "Lyon", "France", "Leeds", "United Kingdom")
	earlyExact := tripOn(2, "London", "United Kingdom", "Paris", "France")

	set := newMatchSet()
	set.Add(lateExact, models.MatchTypeExact, false)
	set.Add(earlyBroader, models.MatchTypeBroader, true)
	set.Add(earlyExact, models.MatchTypeExact, false)

	got := set.Ordered(newTripSort("travelDate", "asc"))
	assertMatches(t, got, earlyExact, lateExact, earlyBroader)
}

func TestExactFilterShape(t *testing.T) {
	tests := []struct {
		name  string
		query *models.SearchQuery
		want  string
	}{
		{
			name:  "one side uses original direction only",
			query: &models.SearchQuery{From: "Paris"},
			want:  `map[$and:[map[status:active] map[fromCity:map[$options:i $regex:Paris]]]]`,
		},
		{
			name:  "country token filters the country field",
			query: &models.SearchQuery{To: "Nigeria"},
			want:  `map[$and:[map[status:active] map[toCountry:map[$options:i $regex:` + CountryPattern("Nigeria") + `]]]]`,
		},
		{
			name:  "country hint filters the country field",
			query: &models.SearchQuery{From: "Lyon, France"},
			want:  `map[$and:[map[status:active] map[fromCountry:map[$options:i $regex:` + CountryPattern("France") + `]]]]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := baseClauses(models.TripStatusActive, nil, nil)
			got := fmt.Sprint(exactFilter(base, ParseLocation(tt.query.From), ParseLocation(tt.query.To), tt.query))
			if got != tt.want {
				t.Errorf("filter = %s\nwant     %s", got, tt.want)
			}
		})
	}
}
