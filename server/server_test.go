package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	spec "github.com/nihei9/ffcalc/spec/grammar"
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/testconfig"
	"github.com/npillmayer/schuko/tracing"
)

func TestServer_Calculate(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	gtrace.CoreTracer.SetTraceLevel(tracing.LevelDebug)
	//
	s := New(Config{})
	defer s.Close()

	body := `{
  "nonTerminals": ["S", "A", "B"],
  "terminals": ["a", "b"],
  "productions": "S -> A B\nA -> a | ε\nB -> b"
}`
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/calculate", strings.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status; want: %v, got: %v (%v)", http.StatusOK, rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type: %v", ct)
	}
	res := &spec.Result{}
	err := json.Unmarshal(rec.Body.Bytes(), res)
	if err != nil {
		t.Fatal(err)
	}
	testMembers(t, res.First["A"], "a", "ε")
	testMembers(t, res.First["S"], "a", "b")
	testMembers(t, res.Follow["A"], "b")
	testMembers(t, res.Follow["B"], "$")
	if res.Report != nil {
		t.Fatalf("a report must not be included unless it is requested")
	}
	if strings.Contains(rec.Body.String(), `"report"`) {
		t.Fatalf("a response must not contain the report field: %v", rec.Body.String())
	}
}

func TestServer_Calculate_EmptyEntry(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	gtrace.CoreTracer.SetTraceLevel(tracing.LevelError)
	//
	s := New(Config{})
	defer s.Close()

	body := `{"nonTerminals": ["S", "X"], "terminals": ["a"], "productions": "S -> a", "report": true}`
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/calculate", strings.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status; want: %v, got: %v (%v)", http.StatusOK, rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"X":[]`) {
		t.Fatalf("an empty entry must be an empty array: %v", rec.Body.String())
	}
	res := &spec.Result{}
	err := json.Unmarshal(rec.Body.Bytes(), res)
	if err != nil {
		t.Fatal(err)
	}
	if res.Report == nil || res.Report.Start != "S" || !res.Report.SLR1.OK {
		t.Fatalf("unexpected report: %+v", res.Report)
	}
}

func TestServer_Calculate_Error(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	gtrace.CoreTracer.SetTraceLevel(tracing.LevelError)
	//
	tests := []struct {
		caption string
		method  string
		body    string
		status  int
		kind    string
		details int
	}{
		{
			caption: "an undeclared symbol is an invalid grammar",
			method:  http.MethodPost,
			body:    `{"nonTerminals": ["S"], "terminals": ["a"], "productions": "S -> a b\nS -> c"}`,
			status:  http.StatusBadRequest,
			kind:    spec.ErrorKindInvalidGrammar,
			details: 2,
		},
		{
			caption: "a syntax error is an invalid grammar",
			method:  http.MethodPost,
			body:    `{"nonTerminals": ["S"], "productions": "S a"}`,
			status:  http.StatusBadRequest,
			kind:    spec.ErrorKindInvalidGrammar,
			details: 1,
		},
		{
			caption: "no non-terminals make the start symbol ambiguous",
			method:  http.MethodPost,
			body:    `{"nonTerminals": [], "terminals": ["a"], "productions": ""}`,
			status:  http.StatusBadRequest,
			kind:    spec.ErrorKindAmbiguousStartSymbol,
			details: 1,
		},
		{
			caption: "an ambiguous start symbol takes precedence over syntax errors",
			method:  http.MethodPost,
			body:    `{"nonTerminals": [], "terminals": ["a"], "productions": "S a"}`,
			status:  http.StatusBadRequest,
			kind:    spec.ErrorKindAmbiguousStartSymbol,
			details: 2,
		},
		{
			caption: "a body must be JSON",
			method:  http.MethodPost,
			body:    `nonTerminals=S`,
			status:  http.StatusBadRequest,
			kind:    spec.ErrorKindBadRequest,
		},
		{
			caption: "only POST is allowed",
			method:  http.MethodGet,
			status:  http.StatusMethodNotAllowed,
			kind:    spec.ErrorKindBadRequest,
		},
	}
	s := New(Config{})
	defer s.Close()
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, httptest.NewRequest(tt.method, "/calculate", strings.NewReader(tt.body)))
			if rec.Code != tt.status {
				t.Fatalf("unexpected status; want: %v, got: %v (%v)", tt.status, rec.Code, rec.Body.String())
			}
			res := &spec.ErrorResponse{}
			err := json.Unmarshal(rec.Body.Bytes(), res)
			if err != nil {
				t.Fatal(err)
			}
			if res.Kind != tt.kind {
				t.Fatalf("unexpected error kind; want: %v, got: %v", tt.kind, res.Kind)
			}
			if res.Message == "" {
				t.Fatalf("an error response needs a message")
			}
			if len(res.Errors) != tt.details {
				t.Fatalf("unexpected error detail count; want: %v, got: %v (%+v)", tt.details, len(res.Errors), res.Errors)
			}
		})
	}
}

func TestServer_Calculate_ErrorPosition(t *testing.T) {
	s := New(Config{})
	defer s.Close()

	body := `{"nonTerminals": ["S"], "terminals": ["a"], "productions": "S -> a\nS -> a b"}`
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/calculate", strings.NewReader(body)))
	res := &spec.ErrorResponse{}
	err := json.Unmarshal(rec.Body.Bytes(), res)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Errors) != 1 {
		t.Fatalf("unexpected error details: %+v", res.Errors)
	}
	e := res.Errors[0]
	if e.Row != 2 || e.Col != 8 || e.Detail != "b" || e.Message != "undeclared symbol" {
		t.Fatalf("unexpected error detail: %+v", e)
	}
}

func TestServer_BodyLimit(t *testing.T) {
	s := New(Config{
		MaxBodyBytes: 16,
	})
	defer s.Close()

	body := `{"nonTerminals": ["S"], "productions": "S -> ε"}`
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/calculate", strings.NewReader(body)))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("unexpected status; want: %v, got: %v (%v)", http.StatusRequestEntityTooLarge, rec.Code, rec.Body.String())
	}
}

func TestServer_Busy(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	gtrace.CoreTracer.SetTraceLevel(tracing.LevelError)
	//
	s := New(Config{
		MaxConcurrent: 1,
		WaitTimeout:   50 * time.Millisecond,
	})
	defer s.Close()

	// Occupy the only worker.
	wk, err := s.borrow(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	body := `{"nonTerminals": ["S"], "productions": "S -> ε"}`
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/calculate", strings.NewReader(body)))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("unexpected status; want: %v, got: %v (%v)", http.StatusServiceUnavailable, rec.Code, rec.Body.String())
	}

	s.release(wk)

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/calculate", strings.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status; want: %v, got: %v (%v)", http.StatusOK, rec.Code, rec.Body.String())
	}
}

func TestServer_Healthz(t *testing.T) {
	s := New(Config{})
	defer s.Close()

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status; want: %v, got: %v", http.StatusOK, rec.Code)
	}

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/healthz", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("unexpected status; want: %v, got: %v", http.StatusMethodNotAllowed, rec.Code)
	}
}

func testMembers(t *testing.T, actual []string, expected ...string) {
	t.Helper()
	if len(actual) != len(expected) {
		t.Fatalf("unexpected members; want: %v, got: %v", expected, actual)
	}
	for i, e := range expected {
		if actual[i] != e {
			t.Fatalf("unexpected members; want: %v, got: %v", expected, actual)
		}
	}
}
