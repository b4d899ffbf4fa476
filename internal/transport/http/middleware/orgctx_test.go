package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"hrcore/internal/domain/auth"
	"hrcore/internal/domain/org"
)

type stubResolver struct {
	primary string
	members map[string]bool
}

func (s stubResolver) ResolveOrg(context.Context, string) (string, error) {
	if s.primary == "" {
		return "", org.ErrNoOrganization
	}
	return s.primary, nil
}

func (s stubResolver) IsMember(_ context.Context, orgID, _ string) (bool, error) {
	return s.members[orgID], nil
}

func orgRequest(header string) *http.Request {
	ctx := context.WithValue(context.Background(), ctxKeyUser, auth.UserContext{UserID: "u1"})
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	if header != "" {
		req.Header.Set("X-Org-ID", header)
	}
	return req
}

func TestOrgContextResolvesPrimaryMembership(t *testing.T) {
	handler := OrgContext(stubResolver{primary: "org-1"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		orgID, ok := GetOrg(r.Context())
		if !ok || orgID != "org-1" {
			t.Fatalf("expected org-1 in context, got %q", orgID)
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, orgRequest(""))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected request to pass, got %d", rec.Code)
	}
}

func TestOrgContextHeaderSelectsMembership(t *testing.T) {
	resolver := stubResolver{primary: "org-1", members: map[string]bool{"org-2": true}}
	handler := OrgContext(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		orgID, _ := GetOrg(r.Context())
		if orgID != "org-2" {
			t.Fatalf("expected header org to win, got %q", orgID)
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, orgRequest("org-2"))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected member request to pass, got %d", rec.Code)
	}
}

func TestOrgContextRejectsForeignOrgHeader(t *testing.T) {
	resolver := stubResolver{primary: "org-1", members: map[string]bool{}}
	handler := OrgContext(resolver)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler should not run")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, orgRequest("org-9"))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-member org header, got %d", rec.Code)
	}
}

func TestOrgContextPassesThroughWithoutMembership(t *testing.T) {
	handler := OrgContext(stubResolver{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetOrg(r.Context()); ok {
			t.Fatal("did not expect org in context")
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, orgRequest(""))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected request to fall through without org, got %d", rec.Code)
	}
}
