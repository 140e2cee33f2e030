package services

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"bringalong/internal/models"
	"bringalong/internal/repositories/interfaces"
	"bringalong/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memTripStore is an in-memory TripRepository that evaluates the filter
// operators the services emit: $and, $or, $regex/$options, $gte, $lte, $in,
// $nin and plain equality.
type memTripStore struct {
	mu      sync.Mutex
	trips   []*models.Trip
	filters []bson.M
	// failOn makes the n-th Find call (1-based) return findErr.
	failOn  int
	findErr error
}

func newMemTripStore(trips ...*models.Trip) *memTripStore {
	return &memTripStore{trips: trips}
}

func (m *memTripStore) findCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.filters)
}

func (m *memTripStore) Create(ctx context.Context, trip *models.Trip) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	trip.ID = primitive.NewObjectID()
	trip.CreatedAt = time.Now()
	trip.UpdatedAt = trip.CreatedAt
	clone := *trip
	m.trips = append(m.trips, &clone)
	return nil
}

func (m *memTripStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t := m.lookup(id); t != nil {
		clone := *t
		return &clone, nil
	}
	return nil, fmt.Errorf("trip %s: %w", id.Hex(), interfaces.ErrNotFound)
}

func (m *memTripStore) lookup(id primitive.ObjectID) *models.Trip {
	for _, t := range m.trips {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (m *memTripStore) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.lookup(id)
	if t == nil {
		return fmt.Errorf("trip %s: %w", id.Hex(), interfaces.ErrNotFound)
	}
	for key, value := range updates {
		switch key {
		case "fromCity":
			t.FromCity = value.(string)
		case "fromCountry":
			t.FromCountry = value.(string)
		case "toCity":
			t.ToCity = value.(string)
		case "toCountry":
			t.ToCountry = value.(string)
		case "travelDate":
			t.TravelDate = value.(time.Time)
		case "returnDate":
			rd := value.(time.Time)
			t.ReturnDate = &rd
		case "serviceFee":
			t.ServiceFee = value.(float64)
		case "currency":
			t.Currency = value.(string)
		case "notes":
			t.Notes = value.(string)
		case "status":
			t.Status = value.(models.TripStatus)
		}
	}
	t.UpdatedAt = time.Now()
	return nil
}

func (m *memTripStore) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.TripStatus) error {
	return m.Update(ctx, id, map[string]interface{}{"status": status})
}

func (m *memTripStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, t := range m.trips {
		if t.ID == id {
			m.trips = append(m.trips[:i], m.trips[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("trip %s: %w", id.Hex(), interfaces.ErrNotFound)
}

func (m *memTripStore) Find(ctx context.Context, filter bson.M, opts interfaces.FindOptions) ([]*models.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.filters = append(m.filters, filter)
	if m.failOn > 0 && len(m.filters) == m.failOn {
		return nil, m.findErr
	}

	matched := m.match(filter)
	if len(opts.Sort) > 0 {
		key := opts.Sort[0].Key
		desc := opts.Sort[0].Value == -1
		sort.SliceStable(matched, func(i, j int) bool {
			a, b := matched[i], matched[j]
			if desc {
				a, b = b, a
			}
			if key == "serviceFee" {
				return a.ServiceFee < b.ServiceFee
			}
			return a.TravelDate.Before(b.TravelDate)
		})
	}

	if opts.Skip > 0 {
		if int(opts.Skip) >= len(matched) {
			matched = matched[:0]
		} else {
			matched = matched[opts.Skip:]
		}
	}
	if opts.Limit > 0 && int(opts.Limit) < len(matched) {
		matched = matched[:opts.Limit]
	}

	out := make([]*models.Trip, len(matched))
	for i, t := range matched {
		clone := *t
		out[i] = &clone
	}
	return out, nil
}

func (m *memTripStore) match(filter bson.M) []*models.Trip {
	matched := make([]*models.Trip, 0)
	for _, t := range m.trips {
		if matchDoc(tripDoc(t), filter) {
			matched = append(matched, t)
		}
	}
	return matched
}

func (m *memTripStore) Count(ctx context.Context, filter bson.M) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.match(filter))), nil
}

func (m *memTripStore) GetByUser(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Trip, int64, error) {
	filter := bson.M{"userId": userID}
	total, _ := m.Count(ctx, filter)
	trips, err := m.Find(ctx, filter, interfaces.FindOptions{Skip: params.GetSkip(), Limit: int64(params.Limit)})
	return trips, total, err
}

func (m *memTripStore) IncrementViewCount(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t := m.lookup(id); t != nil {
		t.ViewCount++
	}
	return nil
}

func (m *memTripStore) IncrementRequestCount(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t := m.lookup(id); t != nil {
		t.RequestCount++
	}
	return nil
}

func tripDoc(t *models.Trip) map[string]interface{} {
	return map[string]interface{}{
		"_id":         t.ID,
		"userId":      t.UserID,
		"fromCity":    t.FromCity,
		"fromCountry": t.FromCountry,
		"toCity":      t.ToCity,
		"toCountry":   t.ToCountry,
		"travelDate":  t.TravelDate,
		"serviceFee":  t.ServiceFee,
		"currency":    t.Currency,
		"status":      string(t.Status),
	}
}

func matchDoc(doc map[string]interface{}, filter bson.M) bool {
	for key, cond := range filter {
		switch key {
		case "$and":
			for _, sub := range cond.([]bson.M) {
				if !matchDoc(doc, sub) {
					return false
				}
			}
		case "$or":
			found := false
			for _, sub := range cond.([]bson.M) {
				if matchDoc(doc, sub) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		default:
			if !matchValue(doc[key], cond) {
				return false
			}
		}
	}
	return true
}

func matchValue(value, cond interface{}) bool {
	ops, ok := cond.(bson.M)
	if !ok {
		return fmt.Sprint(value) == fmt.Sprint(cond)
	}

	for op, arg := range ops {
		switch op {
		case "$regex":
			pattern := arg.(string)
			if opts, _ := ops["$options"].(string); strings.Contains(opts, "i") {
				pattern = "(?i)" + pattern
			}
			s, _ := value.(string)
			if !regexp.MustCompile(pattern).MatchString(s) {
				return false
			}
		case "$options":
		case "$gte":
			if value.(time.Time).Before(arg.(time.Time)) {
				return false
			}
		case "$lte":
			if value.(time.Time).After(arg.(time.Time)) {
				return false
			}
		case "$in":
			if !containsID(arg.([]primitive.ObjectID), value) {
				return false
			}
		case "$nin":
			if containsID(arg.([]primitive.ObjectID), value) {
				return false
			}
		default:
			panic("memTripStore: unsupported operator " + op)
		}
	}
	return true
}

func containsID(ids []primitive.ObjectID, value interface{}) bool {
	id, ok := value.(primitive.ObjectID)
	if !ok {
		return false
	}
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// memUserStore is an in-memory UserRepository.
type memUserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newMemUserStore(users ...*models.User) *memUserStore {
	s := &memUserStore{users: make(map[primitive.ObjectID]*models.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *memUserStore) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return fmt.Errorf("user %s: %w", user.Email, interfaces.ErrDuplicate)
		}
	}
	user.ID = primitive.NewObjectID()
	clone := *user
	s.users[user.ID] = &clone
	return nil
}

func (s *memUserStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, fmt.Errorf("user: %w", interfaces.ErrNotFound)
}

func (s *memUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("user: %w", interfaces.ErrNotFound)
}

func (s *memUserStore) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			clone := *u
			users = append(users, &clone)
		}
	}
	return users, nil
}

func (s *memUserStore) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return fmt.Errorf("user: %w", interfaces.ErrNotFound)
	}
	for key, value := range updates {
		switch key {
		case "name":
			u.Name = value.(string)
		case "preferredCurrency":
			u.PreferredCurrency = value.(string)
		case "country":
			u.Country = value.(string)
		case "profileImage":
			u.ProfileImage = value.(string)
		case "profileImageKey":
			u.ProfileImageKey = value.(string)
		case "lastLoginAt":
			t := value.(time.Time)
			u.LastLoginAt = &t
		}
	}
	return nil
}

// memRequestStore is an in-memory TripRequestRepository.
type memRequestStore struct {
	mu       sync.Mutex
	requests []*models.TripRequest
}

func (s *memRequestStore) Create(ctx context.Context, request *models.TripRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.requests {
		if r.TripID == request.TripID && r.RequesterID == request.RequesterID {
			return fmt.Errorf("trip request: %w", interfaces.ErrDuplicate)
		}
	}
	request.ID = primitive.NewObjectID()
	clone := *request
	s.requests = append(s.requests, &clone)
	return nil
}

func (s *memRequestStore) GetByTrip(ctx context.Context, tripID primitive.ObjectID) ([]*models.TripRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.TripRequest, 0)
	for _, r := range s.requests {
		if r.TripID == tripID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memRequestStore) GetByRequester(ctx context.Context, requesterID primitive.ObjectID, params *utils.PaginationParams) ([]*models.TripRequest, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.TripRequest, 0)
	for _, r := range s.requests {
		if r.RequesterID == requesterID {
			out = append(out, r)
		}
	}
	return out, int64(len(out)), nil
}

var baseDate = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// tripOn builds an active trip departing day days after baseDate.
func tripOn(day int, fromCity, fromCountry, toCity, toCountry string) *models.Trip {
	return &models.Trip{
		ID:          primitive.NewObjectID(),
		UserID:      primitive.NewObjectID(),
		FromCity:    fromCity,
		FromCountry: fromCountry,
		ToCity:      toCity,
		ToCountry:   toCountry,
		TravelDate:  baseDate.AddDate(0, 0, day),
		ServiceFee:  20,
		Currency:    "USD",
		Status:      models.TripStatusActive,
	}
}
