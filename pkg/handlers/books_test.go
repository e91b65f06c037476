package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"levelbook/pkg/obs"
	"levelbook/pkg/registry"
	"levelbook/schemas"

	"github.com/gofiber/fiber/v2"
)

func newTestHandlerApp() (*fiber.App, *registry.Registry) {
	obsClient := &obs.Client{}
	reg := registry.New(obsClient, nil)
	h := New(obsClient, nil, reg)
	app := fiber.New()
	app.Post("/quotes", h.PostQuote)
	app.Get("/instruments", h.GetInstruments)
	app.Get("/books/:instrument/top", h.GetTopLevel)
	app.Get("/books/:instrument/depth", h.GetDepth)
	app.Get("/books/:instrument/average-price", h.GetAveragePrice)
	app.Get("/books/:instrument/total-quantity", h.GetTotalQuantity)
	app.Get("/books/:instrument/vwap", h.GetVolumeWeightedPrice)
	return app, reg
}

func postQuote(t *testing.T, app *fiber.App, body string) int {
	t.Helper()
	req := httptest.NewRequest("POST", "/quotes", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("failed to call endpoint: %v", err)
	}
	return res.StatusCode
}

func get(t *testing.T, app *fiber.App, path string, out interface{}) int {
	t.Helper()
	res, err := app.Test(httptest.NewRequest("GET", path, nil))
	if err != nil {
		t.Fatalf("failed to call %s: %v", path, err)
	}
	if out != nil && res.StatusCode == 200 {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			t.Fatalf("failed to decode %s: %v", path, err)
		}
	}
	return res.StatusCode
}

func seed(t *testing.T, app *fiber.App) {
	t.Helper()
	for _, body := range []string{
		`{"instrument":"BTCUSD","price":"52.99","quantity":"160","side":"s"}`,
		`{"instrument":"BTCUSD","price":"54.20","quantity":"170.80","side":"s"}`,
		`{"instrument":"BTCUSD","price":"37.59","quantity":"1949.50","side":"b"}`,
		`{"line":"t=1638848595|i=BTCUSD|p=41.60|q=654.56|s=b"}`,
	} {
		if status := postQuote(t, app, body); status != 200 {
			t.Fatalf("expected 200 for %s, got %d", body, status)
		}
	}
}

func TestPostQuoteEndpoint(t *testing.T) {
	app, reg := newTestHandlerApp()
	seed(t, app)

	if got := reg.Instruments(); len(got) != 1 || got[0] != "BTCUSD" {
		t.Fatalf("unexpected instruments %v", got)
	}
}

func TestPostQuoteEndpointRejectsInvalidInput(t *testing.T) {
	app, reg := newTestHandlerApp()

	for _, body := range []string{
		`{`,
		`{"instrument":"BTCUSD","price":"1000.00","quantity":"1","side":"b"}`,
		`{"instrument":"BTCUSD","price":"10","quantity":"-1","side":"b"}`,
		`{"instrument":"BTCUSD","price":"10","quantity":"1","side":"x"}`,
		`{"line":"i=BTCUSD|p=10|s=b"}`,
	} {
		if status := postQuote(t, app, body); status != 400 {
			t.Fatalf("expected 400 for %s, got %d", body, status)
		}
	}
	if reg.Len() != 0 {
		t.Fatalf("rejected quotes must not create books")
	}
}

func TestGetTopLevelEndpoint(t *testing.T) {
	app, _ := newTestHandlerApp()
	seed(t, app)

	var resp schemas.DepthResponse
	if status := get(t, app, "/books/BTCUSD/top", &resp); status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	if len(resp.Bids) != 1 || resp.Bids[0] != (schemas.Level{Price: "41.6", Quantity: "654.56"}) {
		t.Fatalf("unexpected bids %+v", resp.Bids)
	}
	if len(resp.Asks) != 1 || resp.Asks[0] != (schemas.Level{Price: "52.99", Quantity: "160.00"}) {
		t.Fatalf("unexpected asks %+v", resp.Asks)
	}
}

func TestGetDepthEndpointAsText(t *testing.T) {
	app, _ := newTestHandlerApp()
	seed(t, app)

	res, err := app.Test(httptest.NewRequest("GET", "/books/BTCUSD/depth?format=text", nil))
	if err != nil {
		t.Fatalf("failed to call endpoint: %v", err)
	}
	body, _ := io.ReadAll(res.Body)
	want := "0: 654.56 41.6 | 52.99 160.00\n1: 1949.50 37.59 | 54.2 170.80\n"
	if string(body) != want {
		t.Fatalf("unexpected body %q", body)
	}
	if !strings.HasPrefix(res.Header.Get("Content-Type"), "text/plain") {
		t.Fatalf("expected text/plain, got %s", res.Header.Get("Content-Type"))
	}
}

func TestGetAggregatesEndpoints(t *testing.T) {
	app, _ := newTestHandlerApp()
	for _, line := range []string{
		"i=BTCUSD|p=12.77|q=160|s=b",
		"i=BTCUSD|p=14.50|q=200.67|s=b",
		"i=BTCUSD|p=534.58|q=600.50|s=s",
		"i=BTCUSD|p=534.58|q=100.99|s=s",
	} {
		if status := postQuote(t, app, `{"line":"`+line+`"}`); status != 200 {
			t.Fatalf("expected 200 for %s, got %d", line, status)
		}
	}

	cases := map[string]string{
		"/books/BTCUSD/vwap?levels=2":            "357.71958952",
		"/books/BTCUSD/total-quantity?levels=10": "1062.16",
		"/books/BTCUSD/average-price?levels=2":   "187.28333333",
	}
	for path, want := range cases {
		var resp schemas.AggregateResponse
		if status := get(t, app, path, &resp); status != 200 {
			t.Fatalf("%s: expected 200, got %d", path, status)
		}
		if resp.Value != want || resp.Instrument != "BTCUSD" {
			t.Fatalf("%s: unexpected response %+v, want %s", path, resp, want)
		}
	}
}

func TestGetAggregatesRejectsBadLevels(t *testing.T) {
	app, _ := newTestHandlerApp()
	seed(t, app)

	for _, path := range []string{"/books/BTCUSD/vwap?levels=0", "/books/BTCUSD/average-price?levels=abc"} {
		if status := get(t, app, path, nil); status != 400 {
			t.Fatalf("%s: expected 400, got %d", path, status)
		}
	}
}

func TestUnknownInstrumentReturnsNotFound(t *testing.T) {
	app, _ := newTestHandlerApp()

	for _, path := range []string{"/books/NOPE/top", "/books/NOPE/depth", "/books/NOPE/vwap?levels=1"} {
		if status := get(t, app, path, nil); status != 404 {
			t.Fatalf("%s: expected 404, got %d", path, status)
		}
	}
}

func TestGetInstrumentsEndpoint(t *testing.T) {
	app, _ := newTestHandlerApp()
	seed(t, app)
	postQuote(t, app, `{"instrument":"ETHUSD","price":"20","quantity":"1","side":"b"}`)

	var resp schemas.InstrumentsResponse
	if status := get(t, app, "/instruments", &resp); status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	if len(resp.Instruments) != 2 || resp.Instruments[0] != "BTCUSD" || resp.Instruments[1] != "ETHUSD" {
		t.Fatalf("unexpected instruments %v", resp.Instruments)
	}
}
