package devserver

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-key-for-unit-tests"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store := NewStore(bcrypt.MinCost)
	require.NoError(t, Seed(store))
	return New(Config{JWTSecret: testSecret}, store)
}

func doRequest(t *testing.T, s *Server, method, path, email, body string) (*http.Response, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if email != "" {
		tok, err := s.TokenFor(email)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp, out
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)
	resp, body := doRequest(t, s, http.MethodGet, "/users/", "", "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "Not authenticated", body["detail"])

	req := httptest.NewRequest(http.MethodGet, "/products/", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	r, err := s.App().Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, r.StatusCode)
}

func TestUsersAreAdminOnly(t *testing.T) {
	s := newTestServer(t)
	resp, body := doRequest(t, s, http.MethodGet, "/users/", "chidi@warehouse.test", "")
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.Equal(t, "Not enough permissions", body["detail"])

	resp, _ = doRequest(t, s, http.MethodGet, "/users/", "ada@warehouse.test", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doRequest(t, s, http.MethodGet, "/products/", "chidi@warehouse.test", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUpdateUserErrors(t *testing.T) {
	s := newTestServer(t)
	admin := "ada@warehouse.test"

	resp, body := doRequest(t, s, http.MethodPatch, "/users/99", admin, `{"role":"staff"}`)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "User not found", body["detail"])

	resp, body = doRequest(t, s, http.MethodPatch, "/users/3", admin, `{"email":"bola@warehouse.test"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "Email already registered", body["detail"])

	resp, body = doRequest(t, s, http.MethodPatch, "/users/3", admin, `{"role":"owner"}`)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	require.IsType(t, []any{}, body["detail"])

	resp, body = doRequest(t, s, http.MethodPatch, "/users/3", admin, `{"role":"manager"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "manager", body["role"])
}

func TestDeleteUser(t *testing.T) {
	s := newTestServer(t)
	resp, _ := doRequest(t, s, http.MethodDelete, "/users/4", "ada@warehouse.test", "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = doRequest(t, s, http.MethodDelete, "/users/4", "ada@warehouse.test", "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Len(t, s.Store().Users(), len(SeedUsers)-1)
}

func TestChangePassword(t *testing.T) {
	s := newTestServer(t)
	staff := "chidi@warehouse.test"

	resp, body := doRequest(t, s, http.MethodPatch, "/users/me/password", staff, `{"old_password":"nope","new_password":"Abcdefg1!"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "Old password is incorrect", body["detail"])

	resp, _ = doRequest(t, s, http.MethodPatch, "/users/me/password", staff, `{"old_password":"Staff#2024","new_password":"Abcdefg1!"}`)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	u, ok := s.Store().UserByEmail(staff)
	require.True(t, ok)
	require.True(t, s.Store().CheckPassword(u.ID, "Abcdefg1!"))
}

func TestCreateProduct(t *testing.T) {
	s := newTestServer(t)
	in := `{"sku":"NW-1","name":"New Widget","category":"Storage","current_stock":3,"reorder_level":1,"unit_price":"2.50"}`

	resp, _ := doRequest(t, s, http.MethodPost, "/products", "chidi@warehouse.test", in)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := doRequest(t, s, http.MethodPost, "/products", "bola@warehouse.test", in)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, "NW-1", body["sku"])

	resp, body = doRequest(t, s, http.MethodPost, "/products", "bola@warehouse.test", in)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "A product with this SKU already exists", body["detail"])
}
