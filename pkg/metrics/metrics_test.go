package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRecordActionAppearsInScrape(t *testing.T) {
	m := New()
	m.RecordAction("order", "approve", "success")
	m.RecordAction("order", "approve", "success")
	m.RecordBulkItem("transactions", "approved")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	m.Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, `taskhive_approval_actions_total{action="approve",entity="order",outcome="success"} 2`) {
		t.Fatalf("expected approval counter in scrape, got:\n%s", body)
	}
	if !strings.Contains(body, `taskhive_bulk_items_total{entity="transactions",status="approved"} 1`) {
		t.Fatalf("expected bulk counter in scrape, got:\n%s", body)
	}
}
