package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsStore persists records in a Google Spreadsheet: every record goes to
// the master tab, and a copy goes to a tab named after its category, created
// on first use.
type SheetsStore struct {
	svc           *sheets.Service
	spreadsheetID string
	masterTab     string

	// Resolved once per process; tabs are only ever added, never removed.
	resolveOnce sync.Once
	resolveErr  error
	mu          sync.Mutex
	knownTabs   map[string]bool
}

// NewSheetsStore builds a store authenticated as a service account. The
// private key may arrive with literal "\n" sequences from the environment.
func NewSheetsStore(ctx context.Context, spreadsheetID, serviceEmail, privateKey, masterTab string) (*SheetsStore, error) {
	conf := &jwt.Config{
		Email:      serviceEmail,
		PrivateKey: []byte(strings.ReplaceAll(privateKey, `\n`, "\n")),
		Scopes:     []string{sheets.SpreadsheetsScope},
		TokenURL:   google.JWTTokenURL,
	}

	svc, err := sheets.NewService(ctx, option.WithHTTPClient(conf.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("failed to init sheets service: %w", err)
	}

	return &SheetsStore{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		masterTab:     masterTab,
		knownTabs:     map[string]bool{},
	}, nil
}

// resolveMaster determines the master tab title (configured override or the
// spreadsheet's first sheet) and seeds the known-tab cache. The result is
// cached for the process lifetime.
func (s *SheetsStore) resolveMaster(ctx context.Context) (string, error) {
	s.resolveOnce.Do(func() {
		meta, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
		if err != nil {
			s.resolveErr = fmt.Errorf("failed to read spreadsheet metadata: %w", err)
			return
		}
		if len(meta.Sheets) == 0 {
			s.resolveErr = fmt.Errorf("spreadsheet %s has no sheets", s.spreadsheetID)
			return
		}
		s.mu.Lock()
		for _, sh := range meta.Sheets {
			if sh.Properties != nil {
				s.knownTabs[sh.Properties.Title] = true
			}
		}
		s.mu.Unlock()
		if s.masterTab == "" {
			s.masterTab = meta.Sheets[0].Properties.Title
		}
	})
	if s.resolveErr != nil {
		return "", s.resolveErr
	}
	return s.masterTab, nil
}

func (s *SheetsStore) Append(ctx context.Context, rec Record) error {
	master, err := s.resolveMaster(ctx)
	if err != nil {
		return err
	}

	var errs []error
	if err := s.appendTo(ctx, master, rec); err != nil {
		errs = append(errs, fmt.Errorf("master append: %w", err))
	}

	// The category copy is independent of the master write.
	if cat := strings.TrimSpace(rec.Category); cat != "" && cat != master {
		if err := s.ensureTab(ctx, cat); err != nil {
			errs = append(errs, fmt.Errorf("ensure category tab %q: %w", cat, err))
		} else if err := s.appendTo(ctx, cat, rec); err != nil {
			errs = append(errs, fmt.Errorf("category append %q: %w", cat, err))
		}
	}
	return errors.Join(errs...)
}

func (s *SheetsStore) appendTo(ctx context.Context, tab string, rec Record) error {
	rng := fmt.Sprintf("%s!A:H", tab)
	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, rng, &sheets.ValueRange{
		Values: [][]interface{}{rec.Row()},
	}).ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	return err
}

func (s *SheetsStore) ensureTab(ctx context.Context, title string) error {
	s.mu.Lock()
	known := s.knownTabs[title]
	s.mu.Unlock()
	if known {
		return nil
	}

	_, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: title},
			},
		}},
	}).Context(ctx).Do()
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		return err
	}

	s.mu.Lock()
	s.knownTabs[title] = true
	s.mu.Unlock()
	return nil
}

func (s *SheetsStore) FindMostRecentByUser(ctx context.Context, userID string) (Record, error) {
	records, err := s.ListAll(ctx, 0)
	if err != nil {
		return Record{}, err
	}
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].UserID == userID {
			return records[i], nil
		}
	}
	return Record{}, ErrNotFound
}

func (s *SheetsStore) ListAll(ctx context.Context, limit int) ([]Record, error) {
	master, err := s.resolveMaster(ctx)
	if err != nil {
		return nil, err
	}

	rng := fmt.Sprintf("%s!A:H", master)
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read log rows: %w", err)
	}

	var records []Record
	for _, row := range resp.Values {
		rec, err := FromRow(row)
		if err != nil {
			// Header or malformed row.
			continue
		}
		records = append(records, rec)
	}
	if limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}
	return records, nil
}

// MustTail is a convenience used at startup to log how many records the
// store currently holds without failing boot on a read error.
func (s *SheetsStore) MustTail(ctx context.Context) {
	records, err := s.ListAll(ctx, 0)
	if err != nil {
		log.Printf("sheets store not readable yet: %v", err)
		return
	}
	log.Printf("sheets store ready, %d records in master tab", len(records))
}
