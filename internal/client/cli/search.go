package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/example/movequote/internal/client/inquiry"
	"github.com/example/movequote/internal/client/models"
)

// Search prompts for the trip parameters, submits them to the quote backend,
// and loads the candidate companies it found. The new query becomes the one
// watched by watch/quotes/call.
func (a *App) Search(ctx context.Context) error {
	from, err := getSimpleText(a.reader, "Moving from (city, state)", os.Stdout)
	if err != nil {
		return err
	}
	to, err := getSimpleText(a.reader, "Moving to (city, state)", os.Stdout)
	if err != nil {
		return err
	}
	items, err := getSimpleText(a.reader, "What are you moving? (e.g. 1 sofa, 12 boxes)", os.Stdout)
	if err != nil {
		return err
	}
	details, err := getSimpleText(a.reader, "Anything special about the items? (optional)", os.Stdout)
	if err != nil {
		return err
	}
	availability, err := getSimpleText(a.reader, "When are you available?", os.Stdout)
	if err != nil {
		return err
	}

	printlnFn("Finding moving companies, this can take a moment...")
	queryID, err := a.inquiries.SubmitSearch(ctx, inquiry.SearchParams{
		LocationFrom: from,
		LocationTo:   to,
		Items:        items,
		ItemsDetails: details,
		Availability: availability,
		UserID:       a.sessions.UserID(),
	})
	if err != nil {
		return err
	}

	return a.loadQuery(ctx, queryID)
}

// loadQuery makes queryID the current one: fetches its candidate ids,
// company names, and the initial inquiry snapshot.
func (a *App) loadQuery(ctx context.Context, queryID int64) error {
	companyIDs, inquiryIDs, err := a.inquiries.FetchCandidateIDs(ctx, queryID)
	if err != nil {
		return err
	}
	if len(inquiryIDs) == 0 {
		printlnFn("No companies found yet, try 'watch' in a little while.")
	}

	companies, err := a.inquiries.FetchCompanies(ctx, companyIDs)
	if err != nil {
		return err
	}
	names := make(map[int64]string, len(companies))
	for _, c := range companies {
		names[c.ID] = c.Name
	}

	rows, err := a.inquiries.FetchInquiries(ctx, inquiryIDs)
	if err != nil {
		return err
	}

	a.lastQueryID = queryID
	a.lastInquiryIDs = inquiryIDs
	a.lastInquiries = rows
	a.companyNames = names

	a.printQuotes(rows)
	return nil
}

// Quotes prints the current snapshot of the watched query, re-fetched once.
func (a *App) Quotes(ctx context.Context) error {
	if a.lastQueryID == 0 {
		printlnFn("No search selected. Run 'search' or 'past' first.")
		return nil
	}
	rows, err := a.inquiries.FetchInquiries(ctx, a.lastInquiryIDs)
	if err != nil {
		return err
	}
	a.lastInquiries = rows
	a.printQuotes(rows)
	return nil
}

// Watch polls the watched query at the configured interval and prints each
// new snapshot. Pressing Enter stops watching.
func (a *App) Watch(ctx context.Context) error {
	if a.lastQueryID == 0 {
		printlnFn("No search selected. Run 'search' or 'past' first.")
		return nil
	}

	sub := a.inquiries.StartPolling(ctx, a.lastQueryID, a.lastInquiryIDs, a.config.PollInterval)
	defer sub.Stop()

	printlnFn("Watching for quote updates, press Enter to stop.")

	done := make(chan struct{})
	go func() {
		defer close(done)
		for rows := range sub.Updates() {
			a.lastInquiries = rows
			a.printQuotes(rows)
		}
	}()

	_, _ = a.reader.ReadString('\n')
	sub.Stop()
	<-done
	return nil
}

// Call places a phone call to the n-th company of the current snapshot.
// Companies whose call already started are left alone.
func (a *App) Call(ctx context.Context, arg string) error {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(a.lastInquiries) {
		printlnFn("Usage: call <n> with n from the quotes list")
		return nil
	}

	inq := &a.lastInquiries[n-1]
	if inq.State() != models.CallNotStarted {
		printlnFn("That company has already been called.")
		return nil
	}

	if err := a.inquiries.PlaceCall(ctx, inq); err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Calling %s...", a.companyName(inq.MovingCompanyID)))
	return nil
}

// Past lists the user's previous searches and lets them pick one to watch
// again. When the data store is unreachable the locally cached snapshots
// are shown instead.
func (a *App) Past(ctx context.Context) error {
	queries, err := a.inquiries.PastQueries(ctx, a.sessions.UserID())
	if err != nil {
		cached, cerr := a.inquiries.CachedSearches(ctx, a.sessions.UserID())
		if cerr != nil || len(cached) == 0 {
			return err
		}
		printlnFn("Data store unreachable, showing cached results:")
		for _, c := range cached {
			printlnFn(fmt.Sprintf("  %s -> %s (%s)", c.Query.LocationFrom, c.Query.LocationTo, c.Query.CreatedAt))
			a.printQuotes(c.Inquiries)
		}
		return nil
	}

	if len(queries) == 0 {
		printlnFn("No past searches.")
		return nil
	}

	for i, q := range queries {
		printlnFn(fmt.Sprintf("  %d. %s -> %s (%s)", i+1, q.LocationFrom, q.LocationTo, q.CreatedAt))
	}

	choice, err := getSimpleText(a.reader, "Select # to load (empty to skip)", os.Stdout)
	if err != nil || choice == "" {
		return nil
	}
	n, err := strconv.Atoi(choice)
	if err != nil || n < 1 || n > len(queries) {
		return errors.New("invalid selection")
	}
	return a.loadQuery(ctx, queries[n-1].ID)
}

func (a *App) companyName(companyID int64) string {
	if name, ok := a.companyNames[companyID]; ok {
		return name
	}
	return fmt.Sprintf("company %d", companyID)
}

func (a *App) printQuotes(rows []models.MovingInquiry) {
	if len(rows) == 0 {
		printlnFn("  (no companies)")
		return
	}
	for i, r := range rows {
		status := ""
		switch r.State() {
		case models.CallNotStarted:
			status = "not called"
		case models.CallInProgress:
			status = "call in progress"
		case models.CallCompleted:
			status = "quote: " + r.Price.String()
		}
		printlnFn(fmt.Sprintf("  %d. %-30s %s", i+1, a.companyName(r.MovingCompanyID), status))
	}
}
