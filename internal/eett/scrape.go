package eett

import (
	"context"
	"fmt"
	"log"
	"time"
)

// debugPageLimit caps how many raw response bodies the debug sink receives.
const debugPageLimit = 2

// notFoundHintLimit caps how many municipality names a not-found error carries.
const notFoundHintLimit = 10

// DebugSink receives the decoded raw body of early result pages when
// diagnostics are enabled. It is an injected capability so the scraper stays
// testable without filesystem access; errors are the sink's own problem and
// never abort the scrape.
type DebugSink func(page int, body []byte) error

// MunicipalityNotFoundError reports that the requested name matched none of
// the form's selectable municipalities. Available carries up to ten names
// from the live form as a hint.
type MunicipalityNotFoundError struct {
	Name      string
	Available []string
}

func (e *MunicipalityNotFoundError) Error() string {
	return fmt.Sprintf("municipality %q not found", e.Name)
}

// Options configures a Scraper. The zero value targets the production
// registry with a 1-second politeness delay.
type Options struct {
	// BaseURL overrides the registry root, mainly for tests.
	BaseURL string
	// Timeout bounds each HTTP request. Defaults to 60s.
	Timeout time.Duration
	// Delay is the politeness pause between page requests. Defaults to 1s.
	Delay time.Duration
	// Job tags emitted metrics. Defaults to "eett_scrape".
	Job string
	// Debug, when non-nil, receives the raw bodies of the first two pages.
	Debug DebugSink

	// Logf and Sleep are seams for tests. They default to log.Printf and
	// time.Sleep.
	Logf  func(format string, args ...any)
	Sleep func(d time.Duration)
}

// Scraper drives one search session against the antenna registry.
// It is not safe for concurrent use; requests are sequential by design.
type Scraper struct {
	session *session
	delay   time.Duration
	debug   DebugSink
	logf    func(format string, args ...any)
	sleep   func(d time.Duration)
}

// New constructs a Scraper with its own cookie-carrying session.
func New(opts Options) (*Scraper, error) {
	job := opts.Job
	if job == "" {
		job = "eett_scrape"
	}
	sess, err := newSession(opts.BaseURL, opts.Timeout, job)
	if err != nil {
		return nil, err
	}

	delay := opts.Delay
	if delay <= 0 {
		delay = time.Second
	}
	logf := opts.Logf
	if logf == nil {
		logf = log.Printf
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	return &Scraper{
		session: sess,
		delay:   delay,
		debug:   opts.Debug,
		logf:    logf,
		sleep:   sleep,
	}, nil
}

// Municipalities fetches the search form and returns the selectable
// municipalities in document order.
func (s *Scraper) Municipalities(ctx context.Context) ([]MunicipalityOption, error) {
	doc, err := s.session.fetchSearchPage(ctx)
	if err != nil {
		return nil, err
	}
	return parseMunicipalityOptions(doc), nil
}

// Search scrapes all result pages for the named municipality and returns the
// accumulated records in page order, then row order.
//
// maxPages caps the number of pages fetched; zero means unbounded.
//
// Behavior:
//   - An unmatched name returns a *MunicipalityNotFoundError.
//   - A transport failure while paging logs the error and returns whatever
//     was accumulated so far; a partial result is better than none.
//   - An empty first page is an empty (non-error) result.
func (s *Scraper) Search(ctx context.Context, name string, maxPages int) ([]AntennaRecord, error) {
	s.logf("searching for antennas in municipality: %s", name)

	// Resolve the requested name against the live form's options.
	doc, err := s.session.fetchSearchPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("load municipality options: %w", err)
	}
	opts := parseMunicipalityOptions(doc)
	match, ok := matchMunicipality(name, opts)
	if !ok {
		return nil, &MunicipalityNotFoundError{
			Name:      name,
			Available: optionNames(opts, notFoundHintLimit),
		}
	}
	s.logf("matched municipality: %s (value %s)", match.Name, match.Value)

	// Re-fetch the form for its hidden fields. Kept as a separate round trip
	// in case the server regenerates per-load tokens.
	doc, err = s.session.fetchSearchPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("prepare search form: %w", err)
	}
	form := newSearchForm(match.Value, parseHiddenFields(doc))

	return s.scrapePages(ctx, form, maxPages), nil
}

// scrapePages runs the pagination loop. Stop predicates are evaluated each
// iteration in fixed priority order: the max-pages bound, then an empty page,
// then the pagination detector.
func (s *Scraper) scrapePages(ctx context.Context, form *searchForm, maxPages int) []AntennaRecord {
	var all []AntennaRecord

	for page := 1; ; page++ {
		if maxPages > 0 && page > maxPages {
			s.logf("reached page limit (%d), stopping", maxPages)
			break
		}

		s.logf("scraping page %d...", page)
		doc, raw, err := s.session.fetchResultsPage(ctx, form.pagePayload(page))
		if err != nil {
			// Soft stop: keep whatever earlier pages produced.
			s.logf("page %d failed: %v", page, err)
			break
		}

		if s.debug != nil && page <= debugPageLimit {
			if err := s.debug(page, raw); err != nil {
				s.logf("debug sink failed for page %d: %v", page, err)
			}
		}

		records := parseResults(doc)
		if len(records) == 0 {
			if page == 1 {
				s.logf("first page returned no results")
			} else {
				s.logf("no records on page %d, stopping", page)
			}
			break
		}

		all = append(all, records...)
		s.logf("found %d antennas on page %d", len(records), page)

		if !hasNextPage(doc, page) {
			break
		}
		s.sleep(s.delay)
	}

	s.logf("total antennas found: %d", len(all))
	return all
}
