package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/mavunohub/internal/apperr"
	"github.com/MikeMC777/mavunohub/internal/auth"
	prod "github.com/MikeMC777/mavunohub/internal/product"
)

//
// ===== in-memory stub (implements product.Repository) =====
//

type stubRepo struct {
	items      map[string]*prod.Product
	referenced map[string]bool
	lastQuery  prod.Query
}

func newStubRepo() *stubRepo {
	return &stubRepo{items: map[string]*prod.Product{}, referenced: map[string]bool{}}
}

func (s *stubRepo) List(_ context.Context, q prod.Query) ([]prod.Product, error) {
	s.lastQuery = q
	out := make([]prod.Product, 0, len(s.items))
	for _, v := range s.items {
		if q.Q != "" && !containsFold(v.Name, q.Q) && !containsFold(v.Description, q.Q) {
			continue
		}
		if q.SellerID != "" && v.SellerID != q.SellerID {
			continue
		}
		out = append(out, *v)
	}
	start := q.Offset
	if start > len(out) {
		return []prod.Product{}, nil
	}
	end := start + q.Limit
	if end > len(out) || q.Limit <= 0 {
		end = len(out)
	}
	return out[start:end], nil
}

func (s *stubRepo) GetByID(_ context.Context, id string) (*prod.Product, error) {
	p, ok := s.items[id]
	if !ok {
		return nil, prod.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *stubRepo) Create(_ context.Context, p *prod.Product) error {
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	s.items[p.ID] = &cp
	return nil
}

func (s *stubRepo) Update(_ context.Context, p *prod.Product) error {
	if _, ok := s.items[p.ID]; !ok {
		return prod.ErrNotFound
	}
	p.UpdatedAt = time.Now().UTC()
	cp := *p
	s.items[p.ID] = &cp
	return nil
}

func (s *stubRepo) Delete(_ context.Context, id string) (bool, error) {
	if _, ok := s.items[id]; !ok {
		return false, nil
	}
	if s.referenced[id] {
		return false, prod.ErrInUse
	}
	delete(s.items, id)
	return true, nil
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

type countingVersion struct{ bumps int }

func (v *countingVersion) Bump(context.Context) error {
	v.bumps++
	return nil
}

type fakeResolver map[string]auth.Identity

func (f fakeResolver) Resolve(_ context.Context, uid string) (auth.Identity, error) {
	id, ok := f[uid]
	if !ok {
		return auth.Identity{}, apperr.Unauthenticated("unknown user")
	}
	return id, nil
}

var (
	farmerID = uuid.NewString()
	otherID  = uuid.NewString()
	buyerID  = uuid.NewString()
)

func newRouter(repo prod.Repository) *gin.Engine {
	return newRouterWithCatalog(repo, prod.NopVersion{})
}

func newRouterWithCatalog(repo prod.Repository, catalog prod.Versioner) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	registerRoutes(r, repo, catalog, fakeResolver{
		farmerID: {UserID: farmerID, Role: auth.RoleFarmer},
		otherID:  {UserID: otherID, Role: auth.RoleFarmer},
		buyerID:  {UserID: buyerID, Role: auth.RoleConsumer},
	})
	return r
}

func send(r *gin.Engine, method, url, uid, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if uid != "" {
		req.Header.Set(auth.HeaderUserID, uid)
	}
	r.ServeHTTP(w, req)
	return w
}

func seed(repo *stubRepo, name, seller string) string {
	id := uuid.NewString()
	_ = repo.Create(context.Background(), &prod.Product{
		ID: id, SellerID: seller, Name: name, Description: "desc",
		Price: decimal.RequireFromString("10.00"), Stock: decimal.RequireFromString("5"),
		Unit: prod.UnitKilogram, MinOrder: 1,
	})
	return id
}

//
// ===== TESTS =====
//

func TestListProducts_PaginationAndSearch(t *testing.T) {
	repo := newStubRepo()
	seed(repo, "Maize flour", farmerID)
	seed(repo, "Sukuma wiki", farmerID)
	seed(repo, "Mangoes", otherID)
	r := newRouter(repo)

	w := send(r, http.MethodGet, "/api/products?limit=2&offset=1", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var got prod.ListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(got.Items) != 2 || got.Limit != 2 || got.Offset != 1 {
		t.Fatalf("unexpected page: %+v", got)
	}

	w = send(r, http.MethodGet, "/api/products?q=mai&seller="+farmerID, "", "")
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if len(got.Items) != 1 || got.Items[0].Name != "Maize flour" {
		t.Fatalf("unexpected search result: %+v", got.Items)
	}
	if repo.lastQuery.Q != "mai" || repo.lastQuery.Limit != 20 {
		t.Fatalf("query not forwarded: %+v", repo.lastQuery)
	}
}

func TestGetProduct_OK_And_NotFound(t *testing.T) {
	repo := newStubRepo()
	id := seed(repo, "Eggs", farmerID)
	r := newRouter(repo)

	w := send(r, http.MethodGet, "/api/products/"+id, "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var got prod.Response
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got.Price != "10.00" || got.Stock != "5.000" {
		t.Fatalf("decimals not fixed-point: %+v", got)
	}

	for _, missing := range []string{uuid.NewString(), "nope"} {
		if w := send(r, http.MethodGet, "/api/products/"+missing, "", ""); w.Code != http.StatusNotFound {
			t.Fatalf("want 404 for %s, got %d body=%s", missing, w.Code, w.Body.String())
		}
	}
}

func TestCreateProduct(t *testing.T) {
	repo := newStubRepo()
	r := newRouter(repo)

	valid := `{"name":"Sukuma wiki","description":"Fresh","price":"49.90","stock":"10.5"}`
	w := send(r, http.MethodPost, "/api/products", farmerID, valid)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var got prod.Response
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got.SellerID != farmerID || got.Unit != prod.UnitKilogram || got.MinOrder != 1 || got.Stock != "10.500" {
		t.Fatalf("defaults not applied: %+v", got)
	}

	if w := send(r, http.MethodPost, "/api/products", buyerID, valid); w.Code != http.StatusForbidden {
		t.Fatalf("want 403 for consumer, got %d", w.Code)
	}
	if w := send(r, http.MethodPost, "/api/products", "", valid); w.Code != http.StatusUnauthorized {
		t.Fatalf("want 401 without identity, got %d", w.Code)
	}

	for _, body := range []string{
		`{"description":"x","stock":"1"}`,
		`{"name":"Bad","description":"x","price":"1.00","stock":"-1"}`,
		`{"name":"Bad","description":"x","price":"0.00"}`,
		`{"name":"Bad","description":"x","price":"1.00","unit":"bushel"}`,
	} {
		if w := send(r, http.MethodPost, "/api/products", farmerID, body); w.Code != http.StatusBadRequest {
			t.Fatalf("want 400 for %s, got %d body=%s", body, w.Code, w.Body.String())
		}
	}
}

func TestUpdateProduct_OwnerOnly(t *testing.T) {
	repo := newStubRepo()
	id := seed(repo, "Mouse melon", farmerID)
	r := newRouter(repo)
	url := "/api/products/" + id

	if w := send(r, http.MethodPut, url, otherID, `{"name":"Stolen"}`); w.Code != http.StatusForbidden {
		t.Fatalf("want 403 for non-owner, got %d", w.Code)
	}

	w := send(r, http.MethodPut, url, farmerID, `{"name":"Melon","stock":"4"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	got, _ := repo.GetByID(context.Background(), id)
	if got.Name != "Melon" || !got.Price.Equal(decimal.RequireFromString("10")) || !got.Stock.Equal(decimal.NewFromInt(4)) {
		t.Fatalf("partial update not respected: %+v", got)
	}

	if w := send(r, http.MethodPut, url, farmerID, `{"stock":"-3"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("want 400 for negative stock, got %d body=%s", w.Code, w.Body.String())
	}
}

func TestUpdateProduct_RenameBumpsCatalogVersion(t *testing.T) {
	repo := newStubRepo()
	id := seed(repo, "Cassava", farmerID)
	catalog := &countingVersion{}
	r := newRouterWithCatalog(repo, catalog)
	url := "/api/products/" + id

	if w := send(r, http.MethodPut, url, farmerID, `{"stock":"7"}`); w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if catalog.bumps != 0 {
		t.Fatalf("stock change should not bump catalog version, got %d", catalog.bumps)
	}
	if w := send(r, http.MethodPut, url, farmerID, `{"name":"Cassava roots"}`); w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if catalog.bumps != 1 {
		t.Fatalf("rename should bump catalog version once, got %d", catalog.bumps)
	}
}

func TestDeleteProduct(t *testing.T) {
	repo := newStubRepo()
	id := seed(repo, "Tomatoes", farmerID)
	used := seed(repo, "Onions", farmerID)
	repo.referenced[used] = true
	r := newRouter(repo)

	if w := send(r, http.MethodDelete, "/api/products/"+used, farmerID, ""); w.Code != http.StatusConflict {
		t.Fatalf("want 409 for referenced product, got %d body=%s", w.Code, w.Body.String())
	}
	if w := send(r, http.MethodDelete, "/api/products/"+id, otherID, ""); w.Code != http.StatusForbidden {
		t.Fatalf("want 403 for non-owner, got %d", w.Code)
	}
	if w := send(r, http.MethodDelete, "/api/products/"+id, farmerID, ""); w.Code != http.StatusNoContent {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if w := send(r, http.MethodDelete, "/api/products/"+id, farmerID, ""); w.Code != http.StatusNotFound {
		t.Fatalf("want 404, got %d", w.Code)
	}
}
