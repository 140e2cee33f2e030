package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"bringalong/internal/config"
	"bringalong/internal/models"
	"bringalong/internal/repositories/interfaces"
	"bringalong/internal/telemetry"
	"bringalong/internal/utils"
	"bringalong/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TripSearchService interface {
	Search(ctx context.Context, query *models.SearchQuery) (*models.SearchResult, error)
}

type tripSearchService struct {
	tripRepo interfaces.TripRepository
	owners   *ownerResolver
	config   *config.SearchConfig
	logger   *logger.Logger
}

// NewTripSearchService builds the search engine. userRepo may be nil, in which
// case results carry no owner summary.
func NewTripSearchService(
	tripRepo interfaces.TripRepository,
	userRepo interfaces.UserRepository,
	cfg *config.SearchConfig,
	log *logger.Logger,
) TripSearchService {
	if cfg == nil {
		cfg = config.DefaultSearchConfig()
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &tripSearchService{
		tripRepo: tripRepo,
		owners:   newOwnerResolver(userRepo),
		config:   cfg,
		logger:   log,
	}
}

func (s *tripSearchService) Search(ctx context.Context, query *models.SearchQuery) (*models.SearchResult, error) {
	start := time.Now()

	status := query.Status
	if status == "" {
		status = models.TripStatusActive
	}
	from := ParseLocation(query.From)
	to := ParseLocation(query.To)
	order := newTripSort(query.SortBy, query.SortOrder)
	base := baseClauses(status, query.FromDate, query.ToDate)

	bothSides := !from.IsEmpty() && !to.IsEmpty()
	bothHints := bothSides && from.HasCountryHint() && to.HasCountryHint()

	trips, err := s.tripRepo.Find(ctx, exactFilter(base, from, to, query), interfaces.FindOptions{Sort: order.bson()})
	if err != nil {
		return nil, fmt.Errorf("exact match query: %w", err)
	}

	results := newMatchSet()

	if bothHints && (isCityToken(from.City) || isCityToken(to.City)) {
		// City pairs are the exact tier; the remaining country-level hits are broader.
		pairFilter := andAll(append(append([]bson.M{}, base...), directional(citySide(from.City), citySide(to.City))))
		pairs, err := s.tripRepo.Find(ctx, pairFilter, interfaces.FindOptions{Sort: order.bson()})
		if err != nil {
			return nil, fmt.Errorf("city pair query: %w", err)
		}
		for _, trip := range pairs {
			results.Add(trip, models.MatchTypeExact, false)
		}
		for _, trip := range trips {
			results.Add(trip, models.MatchTypeBroader, true)
		}
	} else {
		for _, trip := range trips {
			results.Add(trip, models.MatchTypeExact, false)
		}
	}

	fallback := telemetry.FallbackNone
	if bothSides && results.Count(models.MatchTypeExact) < s.config.ExactThreshold {
		switch {
		case bothHints:
			fallback = telemetry.FallbackCountry
			if err := s.expandByCountry(ctx, base, from, to, order, results); err != nil {
				return nil, err
			}
		case results.Count(models.MatchTypeExact) == 0:
			fallback = telemetry.FallbackOpen
			if err := s.expandOpen(ctx, base, order, results); err != nil {
				return nil, err
			}
		}
	}

	ordered := results.Ordered(order)
	window := utils.Paginate(len(ordered), query.Page, query.Limit)
	page := ordered[window.Start:window.End]

	pageTrips := make([]*models.Trip, len(page))
	for i, match := range page {
		pageTrips[i] = match.Trip
	}
	if err := s.owners.attach(ctx, pageTrips); err != nil {
		return nil, err
	}

	exact := results.Count(models.MatchTypeExact)
	broader := results.Count(models.MatchTypeBroader)

	duration := time.Since(start)
	telemetry.SearchRequests.WithLabelValues(fallback).Inc()
	telemetry.SearchResults.WithLabelValues(string(models.MatchTypeExact)).Add(float64(exact))
	telemetry.SearchResults.WithLabelValues(string(models.MatchTypeBroader)).Add(float64(broader))
	telemetry.SearchDuration.Observe(duration.Seconds())
	s.logger.LogSearch(query.From, query.To, exact, broader, fallback, duration)

	return &models.SearchResult{
		Trips:          page,
		TotalPages:     window.TotalPages,
		CurrentPage:    window.Page,
		Total:          len(ordered),
		ExactMatches:   exact,
		BroaderMatches: broader,
	}, nil
}

// expandByCountry widens a sparse result to the queried countries: origin
// country with destination city, origin city with destination country, then
// both countries. The three queries share one cap.
func (s *tripSearchService) expandByCountry(ctx context.Context, base []bson.M, from, to Location, order tripSort, results *matchSet) error {
	combos := [][2]side{
		{countrySide(from.Country), citySide(to.City)},
		{citySide(from.City), countrySide(to.Country)},
		{countrySide(from.Country), countrySide(to.Country)},
	}

	remaining := s.config.CountryFallbackLimit
	for _, combo := range combos {
		if remaining <= 0 {
			break
		}

		filter := andAll(append(append([]bson.M{}, base...), directional(combo[0], combo[1]), excludeIDs(results.IDs())))
		trips, err := s.tripRepo.Find(ctx, filter, interfaces.FindOptions{
			Sort:  order.bson(),
			Limit: int64(remaining),
		})
		if err != nil {
			return fmt.Errorf("country fallback query: %w", err)
		}

		for _, trip := range trips {
			if results.Add(trip, models.MatchTypeBroader, true) {
				remaining--
			}
		}
	}

	return nil
}

// expandOpen fills an empty result with any trips matching status and date.
func (s *tripSearchService) expandOpen(ctx context.Context, base []bson.M, order tripSort, results *matchSet) error {
	filter := andAll(append(append([]bson.M{}, base...), excludeIDs(results.IDs())))
	trips, err := s.tripRepo.Find(ctx, filter, interfaces.FindOptions{
		Sort:  order.bson(),
		Limit: int64(s.config.OpenFallbackLimit),
	})
	if err != nil {
		return fmt.Errorf("open fallback query: %w", err)
	}

	for _, trip := range trips {
		results.Add(trip, models.MatchTypeBroader, true)
	}

	return nil
}

// exactFilter matches the query in both directions when both sides are
// given. Legacy single-field parameters only constrain the original direction.
func exactFilter(base []bson.M, from, to Location, query *models.SearchQuery) bson.M {
	fromSide := locationSide(from)
	toSide := locationSide(to)

	original := compact(fromSide.clause("from"), toSide.clause("to"))
	original = append(original, legacyClauses(query)...)

	clauses := append([]bson.M{}, base...)
	if !from.IsEmpty() && !to.IsEmpty() {
		reverse := compact(fromSide.clause("to"), toSide.clause("from"))
		clauses = append(clauses, bson.M{"$or": []bson.M{andAll(original), andAll(reverse)}})
	} else if len(original) > 0 {
		clauses = append(clauses, original...)
	}

	return andAll(clauses)
}

func legacyClauses(query *models.SearchQuery) []bson.M {
	return compact(
		citySide(query.FromCity).clause("from"),
		countrySide(query.FromCountry).clause("from"),
		citySide(query.ToCity).clause("to"),
		countrySide(query.ToCountry).clause("to"),
	)
}

func baseClauses(status models.TripStatus, fromDate, toDate *time.Time) []bson.M {
	clauses := []bson.M{{"status": status}}

	if fromDate != nil || toDate != nil {
		dateRange := bson.M{}
		if fromDate != nil {
			dateRange["$gte"] = *fromDate
		}
		if toDate != nil {
			dateRange["$lte"] = *toDate
		}
		clauses = append(clauses, bson.M{"travelDate": dateRange})
	}

	return clauses
}

type sideField int

const (
	sideNone sideField = iota
	sideCity
	sideCountry
)

// side is one end of a route constraint.
type side struct {
	field sideField
	value string
}

func citySide(value string) side {
	if strings.TrimSpace(value) == "" {
		return side{}
	}
	return side{field: sideCity, value: value}
}

func countrySide(value string) side {
	if strings.TrimSpace(value) == "" {
		return side{}
	}
	return side{field: sideCountry, value: value}
}

// locationSide decides which field a parsed location constrains in the exact
// query. A separate country part ("Lyon, France") matches the whole country so
// the city pairs can be split out afterwards; a bare token is tried as a
// country before falling back to a city match.
func locationSide(loc Location) side {
	switch {
	case loc.IsEmpty():
		return side{}
	case loc.HasCountryHint():
		return countrySide(loc.Country)
	case IsCountry(loc.Token()):
		return countrySide(loc.Token())
	default:
		return citySide(loc.Token())
	}
}

// clause renders the constraint against the trip's prefix ("from" or "to")
// fields, or nil when there is nothing to constrain.
func (s side) clause(prefix string) bson.M {
	switch s.field {
	case sideCity:
		return bson.M{prefix + "City": bson.M{"$regex": substringPattern(s.value), "$options": "i"}}
	case sideCountry:
		return bson.M{prefix + "Country": bson.M{"$regex": CountryPattern(s.value), "$options": "i"}}
	}
	return nil
}

func isCityToken(token string) bool {
	return strings.TrimSpace(token) != "" && !IsCountry(token)
}

// directional matches origin/dest against the trip in either direction.
func directional(origin, dest side) bson.M {
	return bson.M{"$or": []bson.M{
		andAll(compact(origin.clause("from"), dest.clause("to"))),
		andAll(compact(origin.clause("to"), dest.clause("from"))),
	}}
}

func excludeIDs(ids []primitive.ObjectID) bson.M {
	if len(ids) == 0 {
		return nil
	}
	return bson.M{"_id": bson.M{"$nin": ids}}
}

func compact(clauses ...bson.M) []bson.M {
	out := make([]bson.M, 0, len(clauses))
	for _, c := range clauses {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

func andAll(clauses []bson.M) bson.M {
	clauses = compact(clauses...)
	switch len(clauses) {
	case 0:
		return bson.M{}
	case 1:
		return clauses[0]
	}
	return bson.M{"$and": clauses}
}

// tripSort is the requested ordering, applied by the store and again when
// merging tiers.
type tripSort struct {
	field string
	desc  bool
}

func newTripSort(sortBy, sortOrder string) tripSort {
	field := "travelDate"
	if strings.EqualFold(sortBy, utils.SortByPrice) {
		field = "serviceFee"
	}
	return tripSort{
		field: field,
		desc:  strings.EqualFold(sortOrder, utils.SortOrderDesc),
	}
}

func (o tripSort) bson() bson.D {
	dir := 1
	if o.desc {
		dir = -1
	}
	return bson.D{{Key: o.field, Value: dir}}
}

func (o tripSort) less(a, b *models.Trip) bool {
	if o.desc {
		a, b = b, a
	}
	if o.field == "serviceFee" {
		return a.ServiceFee < b.ServiceFee
	}
	return a.TravelDate.Before(b.TravelDate)
}

// matchSet accumulates tagged trips keyed by id. A trip id is accepted once;
// later inserts of the same id are ignored.
type matchSet struct {
	items []*models.TripMatch
	seen  map[primitive.ObjectID]struct{}
}

func newMatchSet() *matchSet {
	return &matchSet{seen: make(map[primitive.ObjectID]struct{})}
}

func (m *matchSet) Add(trip *models.Trip, matchType models.MatchType, nearToYou bool) bool {
	if _, ok := m.seen[trip.ID]; ok {
		return false
	}
	m.seen[trip.ID] = struct{}{}
	m.items = append(m.items, &models.TripMatch{
		Trip:      trip,
		MatchType: matchType,
		NearToYou: nearToYou,
	})
	return true
}

func (m *matchSet) Len() int {
	return len(m.items)
}

func (m *matchSet) Count(matchType models.MatchType) int {
	n := 0
	for _, item := range m.items {
		if item.MatchType == matchType {
			n++
		}
	}
	return n
}

func (m *matchSet) IDs() []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(m.items))
	for _, item := range m.items {
		ids = append(ids, item.ID)
	}
	return ids
}

// Ordered returns the exact tier followed by the broader tier, each stably
// sorted by order.
func (m *matchSet) Ordered(order tripSort) []*models.TripMatch {
	exact := make([]*models.TripMatch, 0, len(m.items))
	broader := make([]*models.TripMatch, 0)
	for _, item := range m.items {
		if item.MatchType == models.MatchTypeExact {
			exact = append(exact, item)
		} else {
			broader = append(broader, item)
		}
	}

	for _, tier := range [][]*models.TripMatch{exact, broader} {
		tier := tier
		sort.SliceStable(tier, func(i, j int) bool {
			return order.less(tier[i].Trip, tier[j].Trip)
		})
	}

	return append(exact, broader...)
}
