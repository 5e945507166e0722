package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"findash/internal/core"
	"findash/internal/log"
	"findash/internal/sheets"
)

// Config selects the spreadsheet and the service account used to write it.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

// Client exports transactions to one tab of a Google spreadsheet, one row per
// transaction, keyed by the id in column A.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *log.Logger
}

var _ sheets.Exporter = (*Client)(nil)

func New(ctx context.Context, cfg Config, logger *log.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if cfg.SheetName == "" {
		cfg.SheetName = "Transactions"
	}
	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     cfg.SheetName,
		logger:        logger.WithComponent(log.ComponentSheets),
	}, nil
}

// newSheetsService authenticates with a service account, inline JSON first,
// then a credentials file, then GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	file := strings.TrimSpace(cfg.CredentialsFile)
	if cfg.CredentialsJSON == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentials []byte
	switch {
	case cfg.CredentialsJSON != "":
		credentials = []byte(cfg.CredentialsJSON)
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentials = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentials),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

// Upsert implements sheets.Exporter.
func (c *Client) Upsert(ctx context.Context, t core.Transaction) (string, error) {
	if err := t.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.sheetName+"!A:A").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("read id column of %s: %w", c.sheetName, err)
	}

	row, found := rowFor(resp.Values, t.ID)
	rng := rowRange(c.sheetName, row)
	vr := &gsheet.ValueRange{Values: [][]any{sheets.Row(t)}}
	if len(resp.Values) == 0 {
		// Empty tab: write the header first so the data lands on row 2.
		header := &gsheet.ValueRange{Values: [][]any{headerRow()}}
		if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rowRange(c.sheetName, 1), header).
			ValueInputOption("RAW").Context(ctx).Do(); err != nil {
			return "", fmt.Errorf("write header: %w", err)
		}
	}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do(); err != nil {
		return "", fmt.Errorf("write %s: %w", rng, err)
	}
	c.logger.InfoContext(ctx, "Exported transaction",
		log.FieldTransactionID, t.ID,
		log.FieldSheetsRef, rng,
		"updated", found)
	return rng, nil
}

// ReplaceAll implements sheets.Exporter by clearing the tab and writing the
// header followed by every transaction.
func (c *Client) ReplaceAll(ctx context.Context, txs []core.Transaction) error {
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, c.sheetName, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", c.sheetName, err)
	}
	values := make([][]any, 0, len(txs)+1)
	values = append(values, headerRow())
	for _, t := range txs {
		values = append(values, sheets.Row(t))
	}
	rng := fmt.Sprintf("%s!A1:%s%d", c.sheetName, lastColumn(), len(values))
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, &gsheet.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").Context(ctx).Do(); err != nil {
		return fmt.Errorf("write %s: %w", rng, err)
	}
	c.logger.InfoContext(ctx, "Rewrote transaction export", log.FieldCount, len(txs))
	return nil
}

// rowFor returns the 1-based sheet row holding id, or the next free row.
// Row 1 is the header.
func rowFor(column [][]any, id string) (int, bool) {
	for i, cells := range column {
		if i == 0 || len(cells) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(cells[0])) == id {
			return i + 1, true
		}
	}
	next := len(column) + 1
	if next < 2 {
		next = 2
	}
	return next, false
}

func rowRange(sheet string, row int) string {
	return fmt.Sprintf("%s!A%d:%s%d", sheet, row, lastColumn(), row)
}

func lastColumn() string {
	return string(rune('A' + len(sheets.Header) - 1))
}

func headerRow() []any {
	out := make([]any, len(sheets.Header))
	for i, h := range sheets.Header {
		out[i] = h
	}
	return out
}
