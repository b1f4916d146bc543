package leads

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/leadpilot/leadpilot/pkg/logging"
)

func newTestRouter(repo Repository) http.Handler {
	h := NewHandler(repo, logging.Default())
	r := chi.NewRouter()
	r.Post("/leads/create", h.Create)
	r.Get("/leads", h.List)
	r.Get("/leads/{id}", h.Get)
	r.Patch("/leads/{id}", h.Update)
	r.Delete("/leads/{id}", h.Delete)
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr *bytes.Reader
	if body == "" {
		rdr = bytes.NewReader(nil)
	} else {
		rdr = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

const validLeadBody = `{
	"first_name": "Ava",
	"last_name": "Smith",
	"email": "ava@acme.com",
	"phone": "555-0101",
	"company": "Acme Corp",
	"city": "New York",
	"state": "NY",
	"source": "website",
	"status": "new",
	"lead_value": 250
}`

func TestCreateLead_Success(t *testing.T) {
	router := newTestRouter(NewInMemoryRepository())

	w := doJSON(t, router, http.MethodPost, "/leads/create", validLeadBody)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}

	var lead Lead
	if err := json.NewDecoder(w.Body).Decode(&lead); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if lead.ID == "" {
		t.Error("expected lead ID to be set")
	}
	if lead.Email != "ava@acme.com" {
		t.Errorf("expected email ava@acme.com, got %s", lead.Email)
	}
	if lead.Score != 0 {
		t.Errorf("expected default score 0, got %d", lead.Score)
	}
}

func TestCreateLead_MissingRequiredField(t *testing.T) {
	router := newTestRouter(NewInMemoryRepository())

	body := strings.Replace(validLeadBody, `"ava@acme.com"`, `"  "`, 1)
	w := doJSON(t, router, http.MethodPost, "/leads/create", body)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestCreateLead_InvalidJSON(t *testing.T) {
	router := newTestRouter(NewInMemoryRepository())

	w := doJSON(t, router, http.MethodPost, "/leads/create", "{")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestCreateLead_DuplicateEmail(t *testing.T) {
	router := newTestRouter(NewInMemoryRepository())

	if w := doJSON(t, router, http.MethodPost, "/leads/create", validLeadBody); w.Code != http.StatusCreated {
		t.Fatalf("setup create failed: %d", w.Code)
	}
	w := doJSON(t, router, http.MethodPost, "/leads/create", validLeadBody)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestListLeads_EnvelopeAndPagination(t *testing.T) {
	repo := NewInMemoryRepository()
	router := newTestRouter(repo)

	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		req := validCreateReq(email)
		if _, err := repo.Create(context.Background(), req); err != nil {
			t.Fatalf("setup: %v", err)
		}
	}

	w := doJSON(t, router, http.MethodGet, "/leads?page=2&limit=2", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp ListLeadsResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Total != 3 {
		t.Errorf("expected total 3, got %d", resp.Total)
	}
	if resp.Page != 2 || resp.Limit != 2 {
		t.Errorf("expected page 2 limit 2, got page %d limit %d", resp.Page, resp.Limit)
	}
	if resp.TotalPages != 2 {
		t.Errorf("expected totalPages 2, got %d", resp.TotalPages)
	}
	if len(resp.Data) != 1 {
		t.Errorf("expected 1 lead on the last page, got %d", len(resp.Data))
	}
}

func TestListLeads_EmptyStoreStillOnePage(t *testing.T) {
	router := newTestRouter(NewInMemoryRepository())

	w := doJSON(t, router, http.MethodGet, "/leads", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp ListLeadsResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.TotalPages != 1 {
		t.Errorf("expected totalPages 1 on empty store, got %d", resp.TotalPages)
	}
	if resp.Data == nil {
		t.Error("expected data to be an empty array, not null")
	}
}

func TestListLeads_Filtered(t *testing.T) {
	repo := NewInMemoryRepository()
	router := newTestRouter(repo)

	won := validCreateReq("won@x.com")
	won.Status = StatusWon
	lost := validCreateReq("lost@x.com")
	lost.Status = StatusLost
	for _, req := range []*CreateLeadRequest{won, lost} {
		if _, err := repo.Create(context.Background(), req); err != nil {
			t.Fatalf("setup: %v", err)
		}
	}

	w := doJSON(t, router, http.MethodGet, "/leads?status=won", "")
	var resp ListLeadsResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Total != 1 || len(resp.Data) != 1 {
		t.Fatalf("expected exactly one won lead, got total=%d len=%d", resp.Total, len(resp.Data))
	}
	if resp.Data[0].Status != StatusWon {
		t.Errorf("expected status won, got %s", resp.Data[0].Status)
	}
}

func TestGetLead(t *testing.T) {
	repo := NewInMemoryRepository()
	router := newTestRouter(repo)

	created, err := repo.Create(context.Background(), validCreateReq("ava@acme.com"))
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	w := doJSON(t, router, http.MethodGet, "/leads/"+created.ID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/leads/nonexistent", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestUpdateLead(t *testing.T) {
	repo := NewInMemoryRepository()
	router := newTestRouter(repo)

	created, err := repo.Create(context.Background(), validCreateReq("ava@acme.com"))
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	t.Run("empty body rejected", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPatch, "/leads/"+created.ID, `{}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}
	})

	t.Run("only unknown fields rejected", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPatch, "/leads/"+created.ID, `{"unknown_field":"x"}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}
	})

	t.Run("known plus unknown updates the known field", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPatch, "/leads/"+created.ID, `{"status":"won","unknown_field":"x"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
		}
		var lead Lead
		if err := json.NewDecoder(w.Body).Decode(&lead); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if lead.Status != StatusWon {
			t.Errorf("expected status won, got %s", lead.Status)
		}
	})

	t.Run("not found", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPatch, "/leads/nonexistent", `{"status":"won"}`)
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected status %d, got %d", http.StatusNotFound, w.Code)
		}
	})
}

func TestDeleteLead(t *testing.T) {
	repo := NewInMemoryRepository()
	router := newTestRouter(repo)

	created, err := repo.Create(context.Background(), validCreateReq("ava@acme.com"))
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	w := doJSON(t, router, http.MethodDelete, "/leads/"+created.ID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	w = doJSON(t, router, http.MethodDelete, "/leads/"+created.ID, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

type failingRepository struct {
	Repository
}

func (failingRepository) Count(context.Context, Filter) (int, error) {
	return 0, errors.New("boom")
}

func TestListLeads_RepositoryError(t *testing.T) {
	router := newTestRouter(failingRepository{})

	w := doJSON(t, router, http.MethodGet, "/leads", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}
}
