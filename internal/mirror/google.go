// Package mirror appends record rows to a Google Sheets spreadsheet so the
// farm's accountant sees mutations without touching the service. The mirror
// is append-only; it is a projection of the change feed, not a backend.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"dairyledger/internal/core"
	"dairyledger/internal/xlsx"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
}

// NewFromEnv creates a Sheets client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID.
// Credentials: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{svc: svc, spreadsheetID: spreadsheetID}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// sheetFor maps a ledger kind to its mirror worksheet, reusing the codec's
// sheet naming so the mirror and the export file stay aligned.
func sheetFor(kind core.Kind) string {
	if kind == core.KindIncome {
		return xlsx.IncomeSheet
	}
	return xlsx.ExpensesSheet
}

// Append adds one record row to the kind's worksheet, in the same fixed
// column order as the spreadsheet export.
func (c *Client) Append(ctx context.Context, kind core.Kind, r core.Record) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	sheet := sheetFor(kind)
	partner := r.Supplier
	if kind == core.KindIncome {
		partner = r.Customer
	}
	var quantity any = ""
	if r.Quantity != 0 {
		quantity = r.Quantity
	}

	row := []any{
		r.ID, r.Date, string(r.Category), r.Description, r.Amount,
		quantity, r.Unit, partner, string(r.PaymentMethod), r.Notes,
		r.CreatedAt, r.UpdatedAt,
	}

	rng := fmt.Sprintf("%s!A:L", sheet)
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, &gsheet.ValueRange{
		Values: [][]any{row},
	}).ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append row to %s: %w", sheet, err)
	}

	slog.InfoContext(ctx, "Mirrored record to spreadsheet",
		"kind", kind,
		"record_id", r.ID,
		"sheet", sheet)

	return nil
}
