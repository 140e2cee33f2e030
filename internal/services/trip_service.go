package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"bringalong/internal/config"
	"bringalong/internal/models"
	"bringalong/internal/repositories/interfaces"
	"bringalong/internal/telemetry"
	"bringalong/internal/utils"
	"bringalong/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

type TripService interface {
	// Trip management
	CreateTrip(ctx context.Context, userID primitive.ObjectID, req *models.CreateTripRequest) (*models.Trip, error)
	GetTrip(ctx context.Context, id primitive.ObjectID) (*models.Trip, error)
	UpdateTrip(ctx context.Context, userID, id primitive.ObjectID, req *models.UpdateTripRequest) (*models.Trip, error)
	UpdateTripStatus(ctx context.Context, userID, id primitive.ObjectID, status models.TripStatus) (*models.Trip, error)
	DeleteTrip(ctx context.Context, userID, id primitive.ObjectID) error
	GetMyTrips(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Trip, int64, error)

	// Listing
	BrowseTrips(ctx context.Context, query *models.BrowseQuery) (*models.BrowseResult, error)

	// Requests
	RequestTrip(ctx context.Context, requesterID, tripID primitive.ObjectID, req *models.CreateTripRequestRequest) (*models.TripRequest, error)
	GetTripRequests(ctx context.Context, userID, tripID primitive.ObjectID) ([]*models.TripRequest, error)
}

type tripService struct {
	tripRepo        interfaces.TripRepository
	requestRepo     interfaces.TripRequestRepository
	owners          *ownerResolver
	currency        CurrencyService
	defaultCurrency string
	maxConcurrency  int
	convertTimeout  time.Duration
	logger          *logger.Logger
}

func NewTripService(
	tripRepo interfaces.TripRepository,
	requestRepo interfaces.TripRequestRepository,
	userRepo interfaces.UserRepository,
	currency CurrencyService,
	appCfg *config.AppConfig,
	currencyCfg *config.CurrencyConfig,
	log *logger.Logger,
) TripService {
	if log == nil {
		log = logger.NewNop()
	}

	s := &tripService{
		tripRepo:        tripRepo,
		requestRepo:     requestRepo,
		owners:          newOwnerResolver(userRepo),
		currency:        currency,
		defaultCurrency: utils.DefaultCurrency,
		maxConcurrency:  8,
		convertTimeout:  2 * time.Second,
		logger:          log,
	}
	if appCfg != nil && appCfg.Currency != "" {
		s.defaultCurrency = utils.NormalizeCurrencyCode(appCfg.Currency)
	}
	if currencyCfg != nil {
		if currencyCfg.MaxConcurrency > 0 {
			s.maxConcurrency = currencyCfg.MaxConcurrency
		}
		if currencyCfg.ConversionTimeout > 0 {
			s.convertTimeout = currencyCfg.ConversionTimeout
		}
	}

	return s
}

// Trip management
func (s *tripService) CreateTrip(ctx context.Context, userID primitive.ObjectID, req *models.CreateTripRequest) (*models.Trip, error) {
	if req.ReturnDate != nil && req.ReturnDate.Before(req.TravelDate) {
		return nil, ErrInvalidTripDates
	}

	trip := &models.Trip{
		UserID:      userID,
		FromCity:    req.FromCity,
		FromCountry: req.FromCountry,
		ToCity:      req.ToCity,
		ToCountry:   req.ToCountry,
		TravelDate:  req.TravelDate,
		ReturnDate:  req.ReturnDate,
		ServiceFee:  req.ServiceFee,
		Currency:    utils.NormalizeCurrencyCode(req.Currency),
		Status:      models.TripStatusActive,
		Notes:       req.Notes,
	}

	if err := s.tripRepo.Create(ctx, trip); err != nil {
		return nil, err
	}

	s.logger.WithUserID(userID).LogTripEvent(trip.ID, "created", map[string]interface{}{
		"from": trip.FromCity + ", " + trip.FromCountry,
		"to":   trip.ToCity + ", " + trip.ToCountry,
	})

	return trip, nil
}

func (s *tripService) GetTrip(ctx context.Context, id primitive.ObjectID) (*models.Trip, error) {
	trip, err := s.getTrip(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.tripRepo.IncrementViewCount(ctx, id); err != nil {
		s.logger.WithTripID(id).WithError(err).Warn("Failed to increment trip view count")
	} else {
		trip.ViewCount++
	}

	if err := s.owners.attach(ctx, []*models.Trip{trip}); err != nil {
		return nil, err
	}

	return trip, nil
}

func (s *tripService) UpdateTrip(ctx context.Context, userID, id primitive.ObjectID, req *models.UpdateTripRequest) (*models.Trip, error) {
	trip, err := s.getOwnedTrip(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.FromCity != nil {
		updates["fromCity"] = *req.FromCity
	}
	if req.FromCountry != nil {
		updates["fromCountry"] = *req.FromCountry
	}
	if req.ToCity != nil {
		updates["toCity"] = *req.ToCity
	}
	if req.ToCountry != nil {
		updates["toCountry"] = *req.ToCountry
	}
	if req.ServiceFee != nil {
		updates["serviceFee"] = *req.ServiceFee
	}
	if req.Currency != nil {
		updates["currency"] = utils.NormalizeCurrencyCode(*req.Currency)
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}

	travelDate := trip.TravelDate
	if req.TravelDate != nil {
		travelDate = *req.TravelDate
		updates["travelDate"] = travelDate
	}
	returnDate := trip.ReturnDate
	if req.ReturnDate != nil {
		returnDate = req.ReturnDate
		updates["returnDate"] = *req.ReturnDate
	}
	if returnDate != nil && returnDate.Before(travelDate) {
		return nil, ErrInvalidTripDates
	}

	if len(updates) == 0 {
		return trip, nil
	}

	if err := s.tripRepo.Update(ctx, id, updates); err != nil {
		return nil, s.mapNotFound(err)
	}

	s.logger.WithUserID(userID).LogTripEvent(id, "updated", map[string]interface{}{"fields": len(updates)})

	return s.getTrip(ctx, id)
}

func (s *tripService) UpdateTripStatus(ctx context.Context, userID, id primitive.ObjectID, status models.TripStatus) (*models.Trip, error) {
	trip, err := s.getOwnedTrip(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if trip.Status == status {
		return trip, nil
	}

	if err := s.tripRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, s.mapNotFound(err)
	}

	s.logger.WithUserID(userID).LogTripEvent(id, "status_changed", map[string]interface{}{
		"from_status": trip.Status,
		"to_status":   status,
	})

	trip.Status = status
	return trip, nil
}

func (s *tripService) DeleteTrip(ctx context.Context, userID, id primitive.ObjectID) error {
	if _, err := s.getOwnedTrip(ctx, userID, id); err != nil {
		return err
	}

	if err := s.tripRepo.Delete(ctx, id); err != nil {
		return s.mapNotFound(err)
	}

	s.logger.WithUserID(userID).LogTripEvent(id, "deleted", nil)
	return nil
}

func (s *tripService) GetMyTrips(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Trip, int64, error) {
	return s.tripRepo.GetByUser(ctx, userID, params)
}

// Listing

// BrowseTrips lists trips by status and date. A price sort fetches every
// candidate and orders by the fee converted into the viewer currency, since
// stored fees are in mixed currencies.
func (s *tripService) BrowseTrips(ctx context.Context, query *models.BrowseQuery) (*models.BrowseResult, error) {
	status := query.Status
	if status == "" {
		status = models.TripStatusActive
	}
	filter := andAll(baseClauses(status, query.FromDate, query.ToDate))
	order := newTripSort(query.SortBy, query.SortOrder)

	viewer := utils.NormalizeCurrencyCode(query.ViewerCurrency)
	if viewer == "" {
		viewer = s.defaultCurrency
	}

	var (
		items []*models.BrowseItem
		total int
		win   utils.Window
	)

	if order.field == "serviceFee" {
		trips, err := s.tripRepo.Find(ctx, filter, interfaces.FindOptions{})
		if err != nil {
			return nil, fmt.Errorf("browse trips: %w", err)
		}

		all := s.convertFees(ctx, trips, viewer)
		sort.SliceStable(all, func(i, j int) bool {
			if order.desc {
				return all[i].ConvertedFee > all[j].ConvertedFee
			}
			return all[i].ConvertedFee < all[j].ConvertedFee
		})

		total = len(all)
		win = utils.Paginate(total, query.Page, query.Limit)
		items = all[win.Start:win.End]
	} else {
		count, err := s.tripRepo.Count(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("count trips: %w", err)
		}
		total = int(count)
		win = utils.Paginate(total, query.Page, query.Limit)

		trips, err := s.tripRepo.Find(ctx, filter, interfaces.FindOptions{
			Sort:  order.bson(),
			Skip:  win.Skip(),
			Limit: int64(win.Limit),
		})
		if err != nil {
			return nil, fmt.Errorf("browse trips: %w", err)
		}
		items = s.convertFees(ctx, trips, viewer)
	}

	trips := make([]*models.Trip, len(items))
	for i, item := range items {
		trips[i] = item.Trip
	}
	if err := s.owners.attach(ctx, trips); err != nil {
		return nil, err
	}

	return &models.BrowseResult{
		Trips:       items,
		TotalPages:  win.TotalPages,
		CurrentPage: win.Page,
		Total:       total,
	}, nil
}

// convertFees converts each trip fee into viewer concurrently. A conversion
// that fails or exceeds convertTimeout keeps the stored fee.
func (s *tripService) convertFees(ctx context.Context, trips []*models.Trip, viewer string) []*models.BrowseItem {
	items := make([]*models.BrowseItem, len(trips))

	var g errgroup.Group
	g.SetLimit(s.maxConcurrency)

	for i, trip := range trips {
		i, trip := i, trip
		items[i] = &models.BrowseItem{
			Trip:            trip,
			ConvertedFee:    trip.ServiceFee,
			DisplayCurrency: trip.Currency,
		}

		if utils.NormalizeCurrencyCode(trip.Currency) == viewer {
			items[i].DisplayCurrency = viewer
			telemetry.CurrencyConversions.WithLabelValues(telemetry.ConversionSame).Inc()
			continue
		}
		if s.currency == nil {
			telemetry.CurrencyConversions.WithLabelValues(telemetry.ConversionFallback).Inc()
			continue
		}

		g.Go(func() error {
			convCtx, cancel := context.WithTimeout(ctx, s.convertTimeout)
			defer cancel()

			amount, err := s.currency.Convert(convCtx, trip.ServiceFee, trip.Currency, viewer)
			if err != nil {
				telemetry.CurrencyConversions.WithLabelValues(telemetry.ConversionFallback).Inc()
				s.logger.WithTripID(trip.ID).WithError(err).WithFields(map[string]interface{}{
					"from_currency": trip.Currency,
					"to_currency":   viewer,
				}).Warn("Fee conversion failed, using stored fee")
				return nil
			}

			telemetry.CurrencyConversions.WithLabelValues(telemetry.ConversionOK).Inc()
			items[i].ConvertedFee = utils.RoundCurrency(amount, viewer)
			items[i].DisplayCurrency = viewer
			return nil
		})
	}

	// goroutines never return errors
	_ = g.Wait()
	return items
}

// Requests
func (s *tripService) RequestTrip(ctx context.Context, requesterID, tripID primitive.ObjectID, req *models.CreateTripRequestRequest) (*models.TripRequest, error) {
	trip, err := s.getTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip.UserID == requesterID {
		return nil, ErrOwnTrip
	}
	if trip.Status != models.TripStatusActive {
		return nil, ErrTripNotActive
	}

	request := &models.TripRequest{
		TripID:      tripID,
		RequesterID: requesterID,
		ItemName:    req.ItemName,
		Description: req.Description,
		OfferedFee:  req.OfferedFee,
		Currency:    utils.NormalizeCurrencyCode(req.Currency),
		Status:      models.TripRequestStatusPending,
	}

	if err := s.requestRepo.Create(ctx, request); err != nil {
		if errors.Is(err, interfaces.ErrDuplicate) {
			return nil, ErrDuplicateRequest
		}
		return nil, err
	}

	if err := s.tripRepo.IncrementRequestCount(ctx, tripID); err != nil {
		s.logger.WithTripID(tripID).WithError(err).Warn("Failed to increment trip request count")
	}

	s.logger.WithUserID(requesterID).LogTripEvent(tripID, "requested", map[string]interface{}{
		"request_id": request.ID.Hex(),
	})

	return request, nil
}

func (s *tripService) GetTripRequests(ctx context.Context, userID, tripID primitive.ObjectID) ([]*models.TripRequest, error) {
	if _, err := s.getOwnedTrip(ctx, userID, tripID); err != nil {
		return nil, err
	}
	return s.requestRepo.GetByTrip(ctx, tripID)
}

// Helper methods
func (s *tripService) getTrip(ctx context.Context, id primitive.ObjectID) (*models.Trip, error) {
	trip, err := s.tripRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapNotFound(err)
	}
	return trip, nil
}

func (s *tripService) getOwnedTrip(ctx context.Context, userID, id primitive.ObjectID) (*models.Trip, error) {
	trip, err := s.getTrip(ctx, id)
	if err != nil {
		return nil, err
	}
	if trip.UserID != userID {
		return nil, ErrNotTripOwner
	}
	return trip, nil
}

func (s *tripService) mapNotFound(err error) error {
	if errors.Is(err, interfaces.ErrNotFound) {
		return ErrTripNotFound
	}
	return err
}

// ownerResolver fills the display-only owner summary on trips.
type ownerResolver struct {
	users interfaces.UserRepository
}

func newOwnerResolver(users interfaces.UserRepository) *ownerResolver {
	return &ownerResolver{users: users}
}

func (r *ownerResolver) attach(ctx context.Context, trips []*models.Trip) error {
	if r.users == nil || len(trips) == 0 {
		return nil
	}

	seen := make(map[primitive.ObjectID]struct{}, len(trips))
	ids := make([]primitive.ObjectID, 0, len(trips))
	for _, trip := range trips {
		if _, ok := seen[trip.UserID]; ok {
			continue
		}
		seen[trip.UserID] = struct{}{}
		ids = append(ids, trip.UserID)
	}

	users, err := r.users.GetByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("load trip owners: %w", err)
	}

	byID := make(map[primitive.ObjectID]*models.User, len(users))
	for _, user := range users {
		byID[user.ID] = user
	}
	for _, trip := range trips {
		if user, ok := byID[trip.UserID]; ok {
			trip.User = user.Owner()
		}
	}

	return nil
}
