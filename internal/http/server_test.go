package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dairyledger/internal/core"
	"dairyledger/internal/services"
	"dairyledger/internal/store/file"
	"dairyledger/internal/store/memory"
	"dairyledger/internal/xlsx"
)

func testServer(t *testing.T, accessKey string, seed []core.Record) *httptest.Server {
	t.Helper()
	expenses := services.NewRecordService(core.KindExpense, memory.New(seed), nil)
	income := services.NewRecordService(core.KindIncome, memory.New(nil), nil)
	srv := NewServer(":0", accessKey, expenses, income)
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func decodeRecords(t *testing.T, resp *http.Response) []core.Record {
	t.Helper()
	defer resp.Body.Close()
	var records []core.Record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		t.Fatalf("decode records: %v", err)
	}
	return records
}

func TestHealthEndpoints(t *testing.T) {
	ts := testServer(t, "", nil)

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s error = %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, resp.StatusCode)
		}
	}
}

func TestListRecords(t *testing.T) {
	ts := testServer(t, "", []core.Record{
		{ID: "1", Date: "2024-01-05", Category: core.CategoryFeed, Amount: 100},
		{ID: "2", Date: "2024-02-01", Category: core.CategoryLabor, Amount: 200},
	})

	resp, err := http.Get(ts.URL + "/api/expenses")
	if err != nil {
		t.Fatalf("GET /api/expenses error = %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	records := decodeRecords(t, resp)
	if len(records) != 2 || records[0].ID != "2" {
		t.Errorf("records = %+v, want 2 records newest first", records)
	}

	resp, err = http.Get(ts.URL + "/api/expenses?category=feed")
	if err != nil {
		t.Fatalf("GET with category error = %v", err)
	}
	if got := decodeRecords(t, resp); len(got) != 1 || got[0].ID != "1" {
		t.Errorf("category filter = %+v, want record 1 only", got)
	}

	resp, err = http.Get(ts.URL + "/api/expenses?startDate=2024-02-01&endDate=2024-02-28")
	if err != nil {
		t.Fatalf("GET with range error = %v", err)
	}
	if got := decodeRecords(t, resp); len(got) != 1 || got[0].ID != "2" {
		t.Errorf("range filter = %+v, want record 2 only", got)
	}
}

func TestCreateRecord(t *testing.T) {
	ts := testServer(t, "", nil)

	body := `{"date":"2024-06-01","category":"feed","description":"Silage","amount":500}`
	resp, err := http.Post(ts.URL+"/api/expenses", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	var created core.Record
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	if created.ID == "" || created.CreatedAt == "" {
		t.Errorf("created record not stamped: %+v", created)
	}

	resp, err = http.Post(ts.URL+"/api/expenses", "application/json", strings.NewReader("{bad json"))
	if err != nil {
		t.Fatalf("POST bad body error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad body status = %d, want 400", resp.StatusCode)
	}
}

func doJSON(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s error = %v", method, url, err)
	}
	return resp
}

func TestUpdateRecord(t *testing.T) {
	ts := testServer(t, "", []core.Record{
		{ID: "42", Date: "2024-01-05", Amount: 100},
	})

	resp := doJSON(t, http.MethodPut, ts.URL+"/api/expenses", `{"id":"42","amount":250}`)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var updated core.Record
	if err := json.NewDecoder(resp.Body).Decode(&updated); err != nil {
		t.Fatal(err)
	}
	if updated.Amount != 250 {
		t.Errorf("Amount = %v, want 250", updated.Amount)
	}

	resp = doJSON(t, http.MethodPut, ts.URL+"/api/expenses", `{"amount":250}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing id status = %d, want 400", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPut, ts.URL+"/api/expenses", `{"id":"missing","amount":250}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown id status = %d, want 404", resp.StatusCode)
	}
}

func TestDeleteRecord(t *testing.T) {
	ts := testServer(t, "", []core.Record{
		{ID: "42", Date: "2024-01-05", Amount: 100},
	})

	resp := doJSON(t, http.MethodDelete, ts.URL+"/api/expenses?id=42", "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var result struct {
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if !result.Success {
		t.Error("delete response success = false, want true")
	}

	resp = doJSON(t, http.MethodDelete, ts.URL+"/api/expenses?id=42", "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("repeat delete status = %d, want 404", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodDelete, ts.URL+"/api/expenses", "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing id status = %d, want 400", resp.StatusCode)
	}
}

func TestReportEndpoint(t *testing.T) {
	ts := testServer(t, "", []core.Record{
		{ID: "1", Date: "2024-01-05", Category: core.CategoryFeed, Amount: 100},
		{ID: "2", Date: "2024-01-20", Category: core.CategoryLabor, Amount: 200},
		{ID: "3", Date: "2024-02-01", Category: core.CategoryFeed, Amount: 300},
	})

	resp, err := http.Get(ts.URL + "/api/expenses/report")
	if err != nil {
		t.Fatalf("GET report error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var rep core.Report
	if err := json.NewDecoder(resp.Body).Decode(&rep); err != nil {
		t.Fatal(err)
	}
	if rep.Total != 600 || rep.Count != 3 {
		t.Errorf("report total/count = %v/%v, want 600/3", rep.Total, rep.Count)
	}
	if rep.ByMonth["2024-01"] != 300 || rep.ByMonth["2024-02"] != 300 {
		t.Errorf("byMonth = %v, want {2024-01:300, 2024-02:300}", rep.ByMonth)
	}

	resp, err = http.Get(ts.URL + "/api/expenses/report?period=monthly")
	if err != nil {
		t.Fatalf("GET report with period error = %v", err)
	}
	defer resp.Body.Close()
	var withTrend struct {
		Total float64             `json:"total"`
		Trend []core.PeriodBucket `json:"trend"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&withTrend); err != nil {
		t.Fatal(err)
	}
	if len(withTrend.Trend) != 2 || withTrend.Trend[0].Key != "2024-02" {
		t.Errorf("trend = %+v, want 2 monthly buckets newest first", withTrend.Trend)
	}

	resp, err = http.Get(ts.URL + "/api/expenses/report?period=fortnightly")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid period status = %d, want 400", resp.StatusCode)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	ts := testServer(t, "", []core.Record{
		{ID: "1", Date: "2024-01-05", Category: core.CategoryFeed, Amount: 100,
			CreatedAt: "2024-01-05T00:00:00Z", UpdatedAt: "2024-01-05T00:00:00Z"},
	})

	resp, err := http.Get(ts.URL + "/api/expenses/export")
	if err != nil {
		t.Fatalf("GET export error = %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export status = %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Disposition"); !strings.Contains(got, "attachment") {
		t.Errorf("Content-Disposition = %q, want attachment", got)
	}
	workbook, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatal(err)
	}

	resp, err = http.Post(ts.URL+"/api/expenses/import", xlsxContentType, bytes.NewReader(workbook))
	if err != nil {
		t.Fatalf("POST import error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("import status = %d, want 200", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/api/expenses")
	if err != nil {
		t.Fatal(err)
	}
	records := decodeRecords(t, resp)
	if len(records) != 1 || records[0].ID != "1" {
		t.Errorf("records after round trip = %+v, want original record", records)
	}
}

func TestExportEmptyCollection(t *testing.T) {
	ts := testServer(t, "", nil)

	resp, err := http.Get(ts.URL + "/api/expenses/export")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("empty export status = %d, want 404", resp.StatusCode)
	}
}

func TestImportMissingSheet(t *testing.T) {
	ts := testServer(t, "", []core.Record{
		{ID: "1", Date: "2024-01-05", Amount: 100},
	})

	// An income workbook has no Expenses sheet.
	codec := xlsx.NewCodec(core.KindIncome)
	f, err := codec.Write([]core.Record{{ID: "9", Date: "2024-01-01", Amount: 1}})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	f.Close()

	resp, err := http.Post(ts.URL+"/api/expenses/import", xlsxContentType, &buf)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing sheet status = %d, want 400", resp.StatusCode)
	}

	// Existing data must be untouched.
	resp, err = http.Get(ts.URL + "/api/expenses")
	if err != nil {
		t.Fatal(err)
	}
	if records := decodeRecords(t, resp); len(records) != 1 {
		t.Errorf("collection changed by rejected import: %+v", records)
	}
}

func TestJSONBackupRestore(t *testing.T) {
	ts := testServer(t, "", []core.Record{
		{ID: "1", Date: "2024-01-05", Amount: 100},
	})

	resp, err := http.Get(ts.URL + "/api/expenses/backup")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("backup status = %d, want 200", resp.StatusCode)
	}
	blob, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatal(err)
	}

	resp = doJSON(t, http.MethodDelete, ts.URL+"/api/expenses?id=1", "")
	resp.Body.Close()

	resp, err = http.Post(ts.URL+"/api/expenses/restore", "application/json", bytes.NewReader(blob))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("restore status = %d, want 200", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/api/expenses")
	if err != nil {
		t.Fatal(err)
	}
	if records := decodeRecords(t, resp); len(records) != 1 || records[0].ID != "1" {
		t.Errorf("records after restore = %+v, want original record", records)
	}

	resp, err = http.Post(ts.URL+"/api/expenses/restore", "application/json", strings.NewReader(`{"not":"array"}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad restore payload status = %d, want 400", resp.StatusCode)
	}
}

func TestFileBackupsEndpoint(t *testing.T) {
	t.Run("unsupported on memory backend", func(t *testing.T) {
		ts := testServer(t, "", nil)
		resp := doJSON(t, http.MethodPost, ts.URL+"/api/expenses/backups", "")
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500 for unsupported backend", resp.StatusCode)
		}
	})

	t.Run("file backend creates and lists backups", func(t *testing.T) {
		st, err := file.New(t.TempDir(), core.KindExpense)
		if err != nil {
			t.Fatal(err)
		}
		expenses := services.NewRecordService(core.KindExpense, st, nil)
		income := services.NewRecordService(core.KindIncome, memory.New(nil), nil)
		srv := NewServer(":0", "", expenses, income)
		ts := httptest.NewServer(srv.Handler)
		defer ts.Close()

		resp := doJSON(t, http.MethodPost, ts.URL+"/api/expenses/backups", "")
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("create backup status = %d, want 201", resp.StatusCode)
		}

		resp, err = http.Get(ts.URL + "/api/expenses/backups")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		var listing struct {
			Backups []string `json:"backups"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
			t.Fatal(err)
		}
		if len(listing.Backups) != 1 {
			t.Errorf("backups = %v, want 1 entry", listing.Backups)
		}
	})

	t.Run("restore rejects paths outside the data directory", func(t *testing.T) {
		st, err := file.New(t.TempDir(), core.KindExpense)
		if err != nil {
			t.Fatal(err)
		}
		expenses := services.NewRecordService(core.KindExpense, st, nil)
		income := services.NewRecordService(core.KindIncome, memory.New(nil), nil)
		srv := NewServer(":0", "", expenses, income)
		ts := httptest.NewServer(srv.Handler)
		defer ts.Close()

		// A valid-looking collection file planted elsewhere on disk must not
		// be restorable through the API.
		planted := filepath.Join(t.TempDir(), "expenses-backup-2024-06-01T00-00-00Z.json")
		if err := os.WriteFile(planted, []byte(`[{"id":"leak","date":"2024-06-01","amount":1}]`), 0o644); err != nil {
			t.Fatal(err)
		}

		body, _ := json.Marshal(map[string]string{"backup": planted})
		resp := doJSON(t, http.MethodPut, ts.URL+"/api/expenses/backups", string(body))
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("restore status = %d, want 400", resp.StatusCode)
		}

		listResp, err := http.Get(ts.URL + "/api/expenses")
		if err != nil {
			t.Fatal(err)
		}
		for _, r := range decodeRecords(t, listResp) {
			if r.ID == "leak" {
				t.Error("planted file contents are served after rejected restore")
			}
		}
	})
}

func TestAccessKeyGate(t *testing.T) {
	ts := testServer(t, "farm-secret", []core.Record{
		{ID: "1", Date: "2024-01-05", Amount: 100},
	})

	// Reads pass without a key.
	resp, err := http.Get(ts.URL + "/api/expenses")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("unkeyed GET status = %d, want 200", resp.StatusCode)
	}

	// Mutations without the key are rejected.
	resp, err = http.Post(ts.URL+"/api/expenses", "application/json",
		strings.NewReader(`{"date":"2024-06-01","amount":1}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("unkeyed POST status = %d, want 401", resp.StatusCode)
	}

	// Export needs the key too.
	resp, err = http.Get(ts.URL + "/api/expenses/export")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("unkeyed export status = %d, want 401", resp.StatusCode)
	}

	// The right key unlocks mutations.
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/expenses",
		strings.NewReader(`{"date":"2024-06-01","amount":1}`))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Access-Key", "farm-secret")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("keyed POST status = %d, want 201", resp.StatusCode)
	}

	// A wrong key is rejected.
	req, err = http.NewRequest(http.MethodPost, ts.URL+"/api/expenses",
		strings.NewReader(`{"date":"2024-06-01","amount":1}`))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Access-Key", "wrong")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("wrong key status = %d, want 401", resp.StatusCode)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	ts := testServer(t, "", nil)

	resp := doJSON(t, http.MethodPatch, ts.URL+"/api/expenses", "{}")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("PATCH status = %d, want 405", resp.StatusCode)
	}
	if got := resp.Header.Get("Allow"); got == "" {
		t.Error("405 response missing Allow header")
	}
}
