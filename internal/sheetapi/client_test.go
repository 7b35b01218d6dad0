package sheetapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/username/attendance-dashboard/internal/attendance"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(Options{
		BaseURL:        srv.URL + "/exec",
		Timeout:        5 * time.Second,
		Retries:        3,
		Backoff:        time.Millisecond,
		MaxConcurrency: 2,
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return c
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestClient_FetchSummary(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("sheet"); got != "Summary" {
			t.Errorf("sheet query = %q, want Summary", got)
		}
		w.Write([]byte(`{"data":[
			{"UID": 101, "Name": "Asha Rao", "2025-11-03": "P", "2025-11-04": "A", "2025-11-05": "", "Total": 12},
			{"UID": "E2", "Name": "Bikram Singh"},
			{"UID": "", "Name": "Nobody"}
		]}`))
	})

	roster, err := c.FetchSummary(context.Background())
	if err != nil {
		t.Fatalf("FetchSummary() error = %v", err)
	}

	if len(roster) != 2 {
		t.Fatalf("FetchSummary() = %d employees, want 2", len(roster))
	}
	if roster[0].UID != "101" || roster[0].Name != "Asha Rao" {
		t.Errorf("first employee = %+v", roster[0])
	}
	wantHints := map[string]attendance.Hint{"2025-11-03": attendance.HintPresent, "2025-11-04": attendance.HintAbsent}
	if !reflect.DeepEqual(roster[0].Hints, wantHints) {
		t.Errorf("hints = %v, want %v", roster[0].Hints, wantHints)
	}
}

func TestClient_FetchSummary_ErrorPayload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"Sheet not found"}`))
	})

	_, err := c.FetchSummary(context.Background())
	if !errors.Is(err, ErrRetrievalFailure) {
		t.Errorf("FetchSummary() error = %v, want %v", err, ErrRetrievalFailure)
	}
}

func TestClient_FetchDaily(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("date"); got != "2025-11-17" {
			t.Errorf("date query = %q, want 2025-11-17", got)
		}
		w.Write([]byte(`{"sheetName":"2025-11-17","data":[
			{"UID":"E1","Name":"Asha","Check-in 2":"14:00:00","Check-in 1":"09:00:00","Check-out 1":"13:00:00","Check-out 2":"","Check-in 10":"1899-12-30T12:30:00.000Z"},
			{"UID":"E2","Name":"Bikram","Check-in 1":0.375,"Check-out 1":"18:00:00"},
			{"Name":"Orphan","Check-in 1":"09:00:00"}
		]}`))
	})

	rows, err := c.FetchDaily(context.Background(), date(2025, 11, 17))
	if err != nil {
		t.Fatalf("FetchDaily() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("FetchDaily() = %d rows, want 2", len(rows))
	}

	want := []attendance.CheckEvent{
		{Index: 1, CheckIn: "09:00:00", CheckOut: "13:00:00"},
		{Index: 2, CheckIn: "14:00:00"},
		{Index: 10, CheckIn: "1899-12-30T12:30:00.000Z"},
	}
	if !reflect.DeepEqual(rows[0].Events, want) {
		t.Errorf("events = %+v, want %+v", rows[0].Events, want)
	}

	// numeric cells are not check times
	wantNumeric := []attendance.CheckEvent{{Index: 1, CheckOut: "18:00:00"}}
	if !reflect.DeepEqual(rows[1].Events, wantNumeric) {
		t.Errorf("numeric events = %+v, want %+v", rows[1].Events, wantNumeric)
	}
}

func TestClient_FetchDaily_Degradations(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		payload string
	}{
		{"Not found", http.StatusNotFound, `not found`},
		{"Error payload", http.StatusOK, `{"error":"No sheet for date"}`},
		{"Other sheet", http.StatusOK, `{"sheetName":"2025-11-14","data":[{"UID":"E1","Check-in 1":"09:00:00"}]}`},
		{"Null data", http.StatusOK, `{"data":null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.payload))
			})

			rows, err := c.FetchDaily(context.Background(), date(2025, 11, 17))
			if err != nil {
				t.Errorf("FetchDaily() error = %v, want nil", err)
			}
			if len(rows) != 0 {
				t.Errorf("FetchDaily() = %d rows, want 0", len(rows))
			}
		})
	}
}

func TestClient_RetriesThenFails(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.FetchDaily(context.Background(), date(2025, 11, 17))
	if !errors.Is(err, ErrRetrievalFailure) {
		t.Errorf("FetchDaily() error = %v, want %v", err, ErrRetrievalFailure)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}
}

func TestClient_NoRetryOnClientError(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := c.FetchMonthlyLog(context.Background(), date(2025, 11, 1))
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusForbidden {
		t.Errorf("FetchMonthlyLog() error = %v, want status 403", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
}

func TestClient_RetrySucceeds(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"data":[{"UID":"E1","Name":"Asha","Check-in 1":"09:00:00"}]}`))
	})

	rows, err := c.FetchDaily(context.Background(), date(2025, 11, 17))
	if err != nil {
		t.Fatalf("FetchDaily() error = %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("FetchDaily() = %d rows, want 1", len(rows))
	}
}

func TestClient_ContextCancelled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.FetchDaily(ctx, date(2025, 11, 17)); err == nil {
		t.Error("FetchDaily() with cancelled context expected error")
	}
}

func TestClient_FetchDailyRange(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("date") {
		case "2025-11-04":
			w.WriteHeader(http.StatusInternalServerError)
		case "2025-11-05":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.Write([]byte(`{"data":[{"UID":"E1","Name":"Asha","Check-in 1":"09:00:00","Check-out 1":"18:00:00"}]}`))
		}
	})

	dates := []time.Time{date(2025, 11, 3), date(2025, 11, 4), date(2025, 11, 5), date(2025, 11, 6)}
	results := c.FetchDailyRange(context.Background(), dates)

	if len(results) != len(dates) {
		t.Fatalf("FetchDailyRange() = %d results, want %d", len(results), len(dates))
	}
	for i, r := range results {
		if !r.Date.Equal(dates[i]) {
			t.Errorf("result %d date = %v, want %v", i, r.Date, dates[i])
		}
	}
	if results[0].Err != nil || len(results[0].Rows) != 1 {
		t.Errorf("day 3 = %+v, want one row", results[0])
	}
	if !errors.Is(results[1].Err, ErrRetrievalFailure) {
		t.Errorf("day 4 error = %v, want %v", results[1].Err, ErrRetrievalFailure)
	}
	if results[2].Err != nil || len(results[2].Rows) != 0 {
		t.Errorf("day 5 = %+v, want empty", results[2])
	}
	if results[3].Err != nil || len(results[3].Rows) != 1 {
		t.Errorf("day 6 = %+v, want one row", results[3])
	}
}

func TestClient_FetchMonthlyLog(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("summary_month"); got != "2025-11" {
			t.Errorf("summary_month query = %q, want 2025-11", got)
		}
		w.Write([]byte(`{"data":[
			{"Name":"Asha","UID":7,"2025-11-02":"A","2025-11-01":"P","Hours":41.5},
			{"Name":"Asha","UID":7,"2025-11-01":null}
		]}`))
	})

	rows, err := c.FetchMonthlyLog(context.Background(), date(2025, 11, 20))
	if err != nil {
		t.Fatalf("FetchMonthlyLog() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("FetchMonthlyLog() = %d rows, want 2", len(rows))
	}

	wantCols := []string{"Name", "UID", "2025-11-02", "2025-11-01", "Hours"}
	if !reflect.DeepEqual(rows[0].Columns, wantCols) {
		t.Errorf("columns = %v, want %v", rows[0].Columns, wantCols)
	}
	if rows[0].Get("UID") != "7" || rows[0].Get("Hours") != "41.5" {
		t.Errorf("values = %v", rows[0].Values)
	}
	if rows[1].Get("2025-11-01") != "" {
		t.Errorf("null cell = %q, want empty", rows[1].Get("2025-11-01"))
	}
}

func TestNewClient_InvalidURL(t *testing.T) {
	if _, err := NewClient(Options{BaseURL: "not a url"}, zap.NewNop()); err == nil {
		t.Error("NewClient(not a url) expected error")
	}
}
