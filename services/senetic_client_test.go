package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchInventoryRequest(t *testing.T) {
	var gotAuth, gotUA, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotUA = r.Header.Get("User-Agent")
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"lines":[{"manufacturerItemCode":"SKU-1"}]}`))
	}))
	defer srv.Close()

	client := NewSeneticClient(srv.URL, "Basic abc123")
	feed, err := client.FetchInventory(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(feed.Lines) != 1 || feed.Lines[0].ManufacturerItemCode != "SKU-1" {
		t.Errorf("feed = %+v", feed)
	}
	if gotAuth != "Basic abc123" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if gotUA != "Mozilla/5.0" {
		t.Errorf("user agent = %q", gotUA)
	}
	if gotQuery != "UseItemCategoryFilter=true&LangId=IT" {
		t.Errorf("query = %q", gotQuery)
	}
}

func TestFetchCatalogueErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewSeneticClient(srv.URL, "bad")
	if _, err := client.FetchCatalogue(context.Background()); err == nil {
		t.Fatal("expected error on non-200 status")
	}
}
