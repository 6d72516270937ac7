package celestrak

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchGP_DecodesAndQueriesGroup(t *testing.T) {
	var gotGroup, gotFormat string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotGroup = r.URL.Query().Get("GROUP")
		gotFormat = r.URL.Query().Get("FORMAT")
		_, _ = w.Write([]byte(`[{"OBJECT_NAME":"ISS (ZARYA)","NORAD_CAT_ID":25544,"EPOCH":"2026-03-01T12:00:00.000000","MEAN_MOTION":15.5,"ECCENTRICITY":0.0005,"INCLINATION":51.64,"BSTAR":0.0001}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL)
	items, err := c.FetchGP(context.Background(), Query{Group: "stations"})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if gotGroup != "stations" || gotFormat != "json" {
		t.Fatalf("group=%q format=%q", gotGroup, gotFormat)
	}
	if len(items) != 1 || items[0].NoradCatID == nil || *items[0].NoradCatID != 25544 {
		t.Fatalf("items=%#v", items)
	}
	if items[0].RAOfAscNode != nil {
		t.Fatalf("missing field decoded as %v, want nil", *items[0].RAOfAscNode)
	}
}

func TestFetchGP_NoElementSetIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("No GP data found"))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL)
	items, err := c.FetchGP(context.Background(), Query{CatalogNumber: "99999"})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(items) != 0 {
		t.Fatalf("items=%d want 0", len(items))
	}
}

func TestFetchTLE_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("maintenance"))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL)
	_, err := c.FetchTLE(context.Background(), Query{Group: "active"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusServiceUnavailable {
		t.Fatalf("err=%v want APIError 503", err)
	}
}

func TestQuery_RequiresSelector(t *testing.T) {
	c := NewClient(nil, "http://example.invalid")
	if _, err := c.FetchGP(context.Background(), Query{}); err == nil {
		t.Fatalf("expected error")
	}
}
