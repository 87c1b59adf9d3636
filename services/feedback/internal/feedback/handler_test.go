package feedback

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aquamarinepk/aqm"
	"github.com/go-chi/chi/v5"
)

func newTestRouter(fx *fixture) chi.Router {
	h := NewHandler(fx.service, aqm.NewConfig(), aqm.NewNoopLogger())
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func TestCreateFeedbackHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{
			name: "valid",
			body: `{"customer_id":"550e8400-e29b-41d4-a716-446655440011",` +
				`"stall_id":"550e8400-e29b-41d4-a716-446655440012","rating":4,"comment":"Great laksa"}`,
			wantStatus: http.StatusOK,
		},
		{
			name: "rating out of range",
			body: `{"customer_id":"550e8400-e29b-41d4-a716-446655440011",` +
				`"stall_id":"550e8400-e29b-41d4-a716-446655440012","rating":9}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid customer",
			body:       `{"customer_id":"nope","stall_id":"550e8400-e29b-41d4-a716-446655440012","rating":4}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid JSON",
			body:       `{not json`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(newFixture())

			req := httptest.NewRequest("POST", "/feedback", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestResolveFeedbackHandler(t *testing.T) {
	validBody := `{"actor_id":"550e8400-e29b-41d4-a716-446655440014","actor_role":"vendor",` +
		`"response":"We are sorry.","refund_type":"none"}`

	tests := []struct {
		name       string
		id         string
		body       string
		wantStatus int
	}{
		{"valid", testFeedbackID.String(), validBody, http.StatusOK},
		{"missing feedback", "550e8400-e29b-41d4-a716-446655440099", validBody, http.StatusNotFound},
		{"invalid id", "nope", validBody, http.StatusBadRequest},
		{
			"wrong vendor",
			testFeedbackID.String(),
			`{"actor_id":"550e8400-e29b-41d4-a716-446655440099","actor_role":"vendor","response":"Hi","refund_type":"none"}`,
			http.StatusForbidden,
		},
		{
			"operator refund",
			testFeedbackID.String(),
			`{"actor_id":"550e8400-e29b-41d4-a716-446655440015","actor_role":"operator","response":"Hi","refund_type":"full"}`,
			http.StatusForbidden,
		},
		{
			"bad refund type",
			testFeedbackID.String(),
			`{"actor_id":"550e8400-e29b-41d4-a716-446655440014","actor_role":"vendor","response":"Hi","refund_type":"maybe"}`,
			http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(newFixture())

			req := httptest.NewRequest("POST", "/feedback/"+tt.id+"/resolve", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestResolveFeedbackHandlerConflict(t *testing.T) {
	fx := newFixture()
	r := newTestRouter(fx)

	body := `{"actor_id":"550e8400-e29b-41d4-a716-446655440014","actor_role":"vendor",` +
		`"response":"We are sorry.","refund_type":"none"}`

	req := httptest.NewRequest("POST", "/feedback/"+testFeedbackID.String()+"/resolve", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("first resolve: expected 200, got %d", w.Code)
	}

	req = httptest.NewRequest("POST", "/feedback/"+testFeedbackID.String()+"/resolve", bytes.NewBufferString(body))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Errorf("second resolve: expected 409, got %d", w.Code)
	}
}

func TestGetStallHandler(t *testing.T) {
	r := newTestRouter(newFixture())

	req := httptest.NewRequest("GET", "/stalls/"+testStallID.String(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestGetFeedbackHandler(t *testing.T) {
	r := newTestRouter(newFixture())

	req := httptest.NewRequest("GET", "/feedback/"+testFeedbackID.String(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}
