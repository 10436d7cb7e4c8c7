package expense

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func newTestRouter(repo *memoryRepo) http.Handler {
	handler := NewHandler(testLogger(), NewService(testLogger(), repo, nil))
	r := chi.NewRouter()
	handler.MountRoutes(r)
	return r
}

func postJSON(t *testing.T, router http.Handler, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestHandleCreateSuccess(t *testing.T) {
	repo := newMemoryRepo()
	repo.addLot(1, "Office Chair", "5.00", 10, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	router := newTestRouter(repo)

	rr := postJSON(t, router, "/expense", map[string]any{
		"title":          "Office Chair",
		"qty":            4,
		"invoice_number": "EXP-2001",
		"customer_name":  "Northwind Ltd",
	})

	require.Equal(t, http.StatusCreated, rr.Code)
	var result Result
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	require.True(t, result.Success)
	require.Equal(t, "Created", result.Message)
}

func TestHandleCreateInsufficientStock(t *testing.T) {
	repo := newMemoryRepo()
	repo.addLot(1, "Office Chair", "5.00", 10, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	router := newTestRouter(repo)

	rr := postJSON(t, router, "/expense", map[string]any{
		"title":          "Office Chair",
		"qty":            11,
		"invoice_number": "EXP-2001",
		"customer_name":  "Northwind Ltd",
	})

	require.Equal(t, http.StatusConflict, rr.Code)
	var result Result
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	require.False(t, result.Success)
	require.Equal(t, "insufficient stock: available 10, requested 11", result.Message)
}

func TestHandleCreateUnknownTitle(t *testing.T) {
	router := newTestRouter(newMemoryRepo())

	rr := postJSON(t, router, "/expense", map[string]any{
		"title":          "Ghost Item",
		"qty":            1,
		"invoice_number": "EXP-2001",
		"customer_name":  "Northwind Ltd",
	})

	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandleCreateValidation(t *testing.T) {
	router := newTestRouter(newMemoryRepo())

	rr := postJSON(t, router, "/expense", map[string]any{"qty": 0})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Header().Get("Content-Type"), "application/json")
}

func TestHandleDeleteUnknown(t *testing.T) {
	router := newTestRouter(newMemoryRepo())

	req := httptest.NewRequest(http.MethodDelete, "/expense/99", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusNotFound, rr.Code)
	var result Result
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	require.False(t, result.Success)
}
