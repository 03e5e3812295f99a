package googlesheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"
	"time"

	sheetdesk "github.com/ideamans/go-sheetdesk"
	"google.golang.org/api/option"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  map[string]string
	Body   map[string]interface{}
}

// fakeSheets serves canned responses keyed by "METHOD path" and records every request.
type fakeSheets struct {
	mu        sync.Mutex
	responses map[string]string
	status    map[string]int
	requests  []recordedRequest
}

func newFakeSheets() *fakeSheets {
	return &fakeSheets{responses: map[string]string{}, status: map[string]int{}}
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	req := recordedRequest{Method: r.Method, Path: r.URL.Path, Query: map[string]string{}}
	for k := range r.URL.Query() {
		req.Query[k] = r.URL.Query().Get(k)
	}
	if data, _ := io.ReadAll(r.Body); len(data) > 0 {
		_ = json.Unmarshal(data, &req.Body)
	}
	f.requests = append(f.requests, req)

	key := r.Method + " " + r.URL.Path
	if code, ok := f.status[key]; ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		fmt.Fprintf(w, `{"error": {"code": %d, "message": %q}}`, code, http.StatusText(code))
		return
	}
	body, ok := f.responses[key]
	if !ok {
		w.WriteHeader(404)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(body))
}

func (f *fakeSheets) recorded() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedRequest(nil), f.requests...)
}

func newTestAdaptor(t *testing.T, fake *fakeSheets) *SheetsAdaptor {
	t.Helper()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	adaptor, err := NewSheetsAdaptor(context.Background(), Config{ApplicationName: "sheetdesk-test"},
		option.WithEndpoint(server.URL), option.WithoutAuthentication())
	if err != nil {
		t.Fatalf("Failed to create adaptor: %v", err)
	}
	return adaptor
}

func TestSheetsAdaptor_GetValues(t *testing.T) {
	tests := []struct {
		name      string
		sheetData string
		want      [][]string
	}{
		{
			name: "rows with data",
			sheetData: `{
				"range": "Sheet1!A2:M3",
				"values": [
					["1-A faire", "O", "Dupont", "03/02/2024"],
					["2-En cours", "N", "Martin", "04/02/2024", "", "06.12.34.56.78"]
				]
			}`,
			want: [][]string{
				{"1-A faire", "O", "Dupont", "03/02/2024"},
				{"2-En cours", "N", "Martin", "04/02/2024", "", "06.12.34.56.78"},
			},
		},
		{
			name:      "empty range",
			sheetData: `{"range": "Sheet1!A2:M"}`,
			want:      [][]string{},
		},
		{
			name: "keeps empty rows in place",
			sheetData: `{
				"values": [["a"], [], ["b"]]
			}`,
			want: [][]string{{"a"}, {}, {"b"}},
		},
		{
			name: "non string cells",
			sheetData: `{
				"values": [[12.5, 100, true]]
			}`,
			want: [][]string{{"12.5", "100", "TRUE"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFakeSheets()
			fake.responses["GET /v4/spreadsheets/test-id/values/Sheet1!A2:M"] = tt.sheetData
			adaptor := newTestAdaptor(t, fake)

			got, err := adaptor.GetValues(context.Background(), "test-id", "Sheet1!A2:M")
			if err != nil {
				t.Fatalf("GetValues() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("GetValues() = %v, want %v", got, tt.want)
			}

			reqs := fake.recorded()
			if len(reqs) != 1 || reqs[0].Query["valueRenderOption"] != "FORMATTED_VALUE" {
				t.Errorf("GetValues() requests = %+v, want one FORMATTED_VALUE read", reqs)
			}
		})
	}
}

func TestSheetsAdaptor_GetValuesError(t *testing.T) {
	fake := newFakeSheets()
	fake.status["GET /v4/spreadsheets/test-id/values/Sheet1!A2:M"] = http.StatusForbidden
	adaptor := newTestAdaptor(t, fake)

	_, err := adaptor.GetValues(context.Background(), "test-id", "Sheet1!A2:M")
	if err == nil {
		t.Fatal("GetValues() expected error but got none")
	}
	if !contains(err.Error(), "failed to get sheet data") {
		t.Errorf("GetValues() error = %v", err)
	}
}

func TestSheetsAdaptor_AppendValues(t *testing.T) {
	fake := newFakeSheets()
	fake.responses["POST /v4/spreadsheets/test-id/values/Archive!A1:append"] = `{"updates": {"updatedRows": 1}}`
	adaptor := newTestAdaptor(t, fake)

	row := []string{"Dupont", "03/02/2024", "Ecran"}
	if err := adaptor.AppendValues(context.Background(), "test-id", "Archive!A1", [][]string{row}); err != nil {
		t.Fatalf("AppendValues() error = %v", err)
	}

	reqs := fake.recorded()
	if len(reqs) != 1 {
		t.Fatalf("AppendValues() sent %d requests, want 1", len(reqs))
	}
	req := reqs[0]
	if req.Query["valueInputOption"] != "RAW" {
		t.Errorf("valueInputOption = %q, want RAW", req.Query["valueInputOption"])
	}
	if req.Query["insertDataOption"] != "INSERT_ROWS" {
		t.Errorf("insertDataOption = %q, want INSERT_ROWS", req.Query["insertDataOption"])
	}
	want := []interface{}{[]interface{}{"Dupont", "03/02/2024", "Ecran"}}
	if !reflect.DeepEqual(req.Body["values"], want) {
		t.Errorf("values = %v, want %v", req.Body["values"], want)
	}
}

func TestSheetsAdaptor_UpdateValues(t *testing.T) {
	fake := newFakeSheets()
	fake.responses["PUT /v4/spreadsheets/test-id/values/Sheet1!A5:M5"] = `{"updatedCells": 13}`
	adaptor := newTestAdaptor(t, fake)

	if err := adaptor.UpdateValues(context.Background(), "test-id", "Sheet1!A5:M5", [][]string{{"x"}}); err != nil {
		t.Fatalf("UpdateValues() error = %v", err)
	}

	reqs := fake.recorded()
	if len(reqs) != 1 || reqs[0].Method != http.MethodPut || reqs[0].Query["valueInputOption"] != "RAW" {
		t.Errorf("UpdateValues() requests = %+v", reqs)
	}
}

func TestSheetsAdaptor_DeleteRows(t *testing.T) {
	tests := []struct {
		name  string
		tabID int64
		start int64
		end   int64
	}{
		{"first tab", 0, 4, 5},
		{"second tab", 1, 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFakeSheets()
			fake.responses["POST /v4/spreadsheets/test-id:batchUpdate"] = `{"spreadsheetId": "test-id"}`
			adaptor := newTestAdaptor(t, fake)

			if err := adaptor.DeleteRows(context.Background(), "test-id", tt.tabID, tt.start, tt.end); err != nil {
				t.Fatalf("DeleteRows() error = %v", err)
			}

			reqs := fake.recorded()
			if len(reqs) != 1 {
				t.Fatalf("DeleteRows() sent %d requests, want 1", len(reqs))
			}
			requests := reqs[0].Body["requests"].([]interface{})
			rng := requests[0].(map[string]interface{})["deleteDimension"].(map[string]interface{})["range"].(map[string]interface{})

			sheetID, ok := rng["sheetId"]
			if !ok {
				t.Fatal("sheetId not sent")
			}
			if sheetID.(float64) != float64(tt.tabID) {
				t.Errorf("sheetId = %v, want %d", sheetID, tt.tabID)
			}
			if rng["dimension"] != "ROWS" {
				t.Errorf("dimension = %v, want ROWS", rng["dimension"])
			}
			if rng["startIndex"].(float64) != float64(tt.start) || rng["endIndex"].(float64) != float64(tt.end) {
				t.Errorf("bounds = [%v, %v), want [%d, %d)", rng["startIndex"], rng["endIndex"], tt.start, tt.end)
			}
		})
	}
}

func TestSheetsAdaptor_ArchiveThroughTable(t *testing.T) {
	fake := newFakeSheets()
	fake.responses["GET /v4/spreadsheets/test-id/values/Sheet2!A5:I5"] = `{
		"values": [["Dupont", "03/02/2024", "Ecran", "1", "u", "100", "100", "20", "120"]]
	}`
	fake.responses["POST /v4/spreadsheets/test-id/values/Archive2!A1:append"] = `{}`
	fake.responses["POST /v4/spreadsheets/test-id:batchUpdate"] = `{}`
	adaptor := newTestAdaptor(t, fake)

	client := sheetdesk.New(adaptor, DefaultClientConfig())
	quotes := sheetdesk.NewQuoteTable(client, "test-id", sheetdesk.DefaultQuoteLayout)

	if err := quotes.Archive(context.Background(), 5); err != nil {
		t.Fatalf("Archive() error = %v", err)
	}

	var got []string
	for _, r := range fake.recorded() {
		got = append(got, r.Method+" "+r.Path)
	}
	want := []string{
		"GET /v4/spreadsheets/test-id/values/Sheet2!A5:I5",
		"POST /v4/spreadsheets/test-id/values/Archive2!A1:append",
		"POST /v4/spreadsheets/test-id:batchUpdate",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Archive() requests = %v, want %v", got, want)
	}
}

func TestSheetsAdaptor_ArchiveAppendFailureKeepsRow(t *testing.T) {
	fake := newFakeSheets()
	fake.responses["GET /v4/spreadsheets/test-id/values/Sheet1!A3:M3"] = `{
		"values": [["1-A faire", "O", "Dupont", "03/02/2024", "", "0612345678", "", "", "", "O", "", "", "N"]]
	}`
	fake.status["POST /v4/spreadsheets/test-id/values/Archive!A1:append"] = http.StatusForbidden
	fake.responses["POST /v4/spreadsheets/test-id:batchUpdate"] = `{}`
	adaptor := newTestAdaptor(t, fake)

	client := sheetdesk.New(adaptor, &sheetdesk.Config{CacheTTL: time.Minute})
	tickets := sheetdesk.NewTicketTable(client, "test-id", sheetdesk.DefaultTicketLayout)

	err := tickets.Archive(context.Background(), 3)
	var archiveErr *sheetdesk.ArchiveError
	if !errors.As(err, &archiveErr) || archiveErr.Stage != sheetdesk.StageAppend {
		t.Fatalf("Archive() error = %v, want append stage failure", err)
	}
	if !errors.Is(err, sheetdesk.ErrBackend) {
		t.Errorf("Archive() error = %v, want backend error", err)
	}
	for _, r := range fake.recorded() {
		if r.Path == "/v4/spreadsheets/test-id:batchUpdate" {
			t.Error("Archive() deleted the origin row after a failed append")
		}
	}
}

func TestConvertCellValue(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		want  string
	}{
		{"string", "hello", "hello"},
		{"nil", nil, ""},
		{"float64 integer", 100.0, "100"},
		{"float64 decimal", 100.5, "100.5"},
		{"bool true", true, "TRUE"},
		{"bool false", false, "FALSE"},
		{"other type", []int{1, 2, 3}, "[1 2 3]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := convertCellValue(tt.input); got != tt.want {
				t.Errorf("convertCellValue(%v) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// Helper function
func contains(s, substr string) bool {
	return len(s) >= len(substr) && (s[:len(substr)] == substr || (len(s) > len(substr) && contains(s[1:], substr)))
}
