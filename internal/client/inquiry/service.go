// Package inquiry reconciles local view state with the server-authoritative
// moving_inquiry rows. There is no push channel: state is observed through
// fixed-interval polling, and the only transition the client causes is
// placing the outbound call.
package inquiry

import (
	"context"
	"fmt"
	"time"

	"github.com/example/movequote/internal/client/api"
	"github.com/example/movequote/internal/client/models"
	"github.com/example/movequote/internal/client/repositories/searches"
	"github.com/example/movequote/internal/logging"
)

const (
	inquiryTable = "moving_inquiry"
	companyTable = "moving_company"
	queryTable   = "moving_query"
)

// SearchParams are the trip parameters of one search submission.
type SearchParams struct {
	LocationFrom string
	LocationTo   string
	Items        string
	ItemsDetails string
	Availability string
	UserID       string
}

type Service struct {
	quotes api.QuoteClient
	store  api.Store
	cache  searches.Repository
	log    logging.Logger
	now    func() time.Time
}

// NewService wires the synchronizer. cache may be nil; snapshots are then
// simply not kept for offline viewing.
func NewService(quotes api.QuoteClient, store api.Store, cache searches.Repository, log logging.Logger) *Service {
	return &Service{quotes: quotes, store: store, cache: cache, log: log, now: time.Now}
}

// SubmitSearch sends the trip parameters to the quote backend and returns
// the id of the moving query it created. The backend fans out candidate
// inquiries asynchronously; they must be discovered with FetchCandidateIDs.
func (s *Service) SubmitSearch(ctx context.Context, p SearchParams) (int64, error) {
	req := api.SearchRequest{
		LocationFrom: p.LocationFrom,
		LocationTo:   p.LocationTo,
		CreatedAt:    s.now().UTC().Format(time.RFC3339),
		Items:        p.Items,
		ItemsDetails: p.ItemsDetails,
		Availability: p.Availability,
		UserID:       p.UserID,
		Inquiries:    []int64{},
	}

	id, err := s.quotes.SubmitSearch(ctx, req)
	if err != nil {
		return 0, fmt.Errorf("search submission failed: %w", err)
	}
	s.log.Info(ctx, "search submitted", "moving_query_id", id)
	return id, nil
}

// FetchCandidateIDs retrieves the ids created by the fan-out, as parallel
// slices of equal length, so the caller knows what to poll.
func (s *Service) FetchCandidateIDs(ctx context.Context, queryID int64) (companyIDs, inquiryIDs []int64, err error) {
	var rows []struct {
		ID              int64 `json:"id"`
		MovingCompanyID int64 `json:"moving_company_id"`
	}
	err = s.store.Select(ctx, inquiryTable, "id,moving_company_id",
		[]api.Filter{api.Eq("moving_query_id", queryID)}, &rows)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch candidates: %w", err)
	}

	companyIDs = make([]int64, len(rows))
	inquiryIDs = make([]int64, len(rows))
	for i, r := range rows {
		companyIDs[i] = r.MovingCompanyID
		inquiryIDs[i] = r.ID
	}
	return companyIDs, inquiryIDs, nil
}

// FetchInquiries re-reads the full current state of the given inquiry rows.
func (s *Service) FetchInquiries(ctx context.Context, inquiryIDs []int64) ([]models.MovingInquiry, error) {
	if len(inquiryIDs) == 0 {
		return nil, nil
	}
	var rows []models.MovingInquiry
	err := s.store.Select(ctx, inquiryTable, "", []api.Filter{api.In("id", inquiryIDs)}, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch inquiries: %w", err)
	}
	return rows, nil
}

// FetchCompanies loads company details for display alongside quotes.
func (s *Service) FetchCompanies(ctx context.Context, companyIDs []int64) ([]models.MovingCompany, error) {
	if len(companyIDs) == 0 {
		return nil, nil
	}
	var rows []models.MovingCompany
	err := s.store.Select(ctx, companyTable, "", []api.Filter{api.In("id", companyIDs)}, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch companies: %w", err)
	}
	return rows, nil
}

// PastQueries lists the user's previous searches from the data store.
func (s *Service) PastQueries(ctx context.Context, userID string) ([]models.MovingQuery, error) {
	var rows []models.MovingQuery
	err := s.store.Select(ctx, queryTable, "", []api.Filter{api.Eq("user_id", userID)}, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch past queries: %w", err)
	}
	return rows, nil
}

// CachedSearches returns the locally cached snapshots, most recent first,
// for viewing past results while the data store is unreachable.
func (s *Service) CachedSearches(ctx context.Context, userID string) ([]searches.CachedSearch, error) {
	if s.cache == nil {
		return nil, nil
	}
	return s.cache.List(ctx, userID)
}

// PlaceCall triggers the outbound call for one inquiry and optimistically
// flips it to in-progress, locally and in the store. An inquiry that has
// already left CallNotStarted is a no-op: repeated calls never regress or
// re-dial. Note the guard is local state only; the remote protocol itself
// is not at-most-once.
func (s *Service) PlaceCall(ctx context.Context, inq *models.MovingInquiry) error {
	if inq.State() != models.CallNotStarted {
		s.log.Debug(ctx, "call already placed, skipping", "inquiry_id", inq.ID)
		return nil
	}

	resp, err := s.quotes.PlaceCall(ctx, inq.PhoneNumber, inq.MovingCompanyID, inq.MovingQueryID)
	if err != nil {
		return fmt.Errorf("call placement failed: %w", err)
	}
	s.log.Info(ctx, "call placed", "inquiry_id", inq.ID, "response", resp)

	inq.InProgress = true
	err = s.store.Update(ctx, inquiryTable,
		map[string]any{"in_progress": true}, []api.Filter{api.Eq("id", inq.ID)})
	if err != nil {
		// the backend will mark the row itself as the call progresses;
		// the optimistic write is only there to update other readers early
		s.log.Warn(ctx, "failed to mark inquiry in progress", "inquiry_id", inq.ID, "error", err)
	}
	return nil
}

// snapshotToCache persists the latest poll result for offline viewing.
func (s *Service) snapshotToCache(ctx context.Context, queryID int64, rows []models.MovingInquiry) {
	if s.cache == nil || queryID == 0 || len(rows) == 0 {
		return
	}

	var q models.MovingQuery
	err := s.store.SelectSingle(ctx, queryTable, "", []api.Filter{api.Eq("id", queryID)}, &q)
	if err != nil {
		s.log.Debug(ctx, "skipping cache snapshot, query fetch failed", "error", err)
		return
	}
	if err := s.cache.Save(ctx, searches.CachedSearch{Query: q, Inquiries: rows}); err != nil {
		s.log.Warn(ctx, "failed to cache search snapshot", "moving_query_id", queryID, "error", err)
	}
}
