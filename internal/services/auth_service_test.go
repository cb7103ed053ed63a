package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"interiorerp/internal/middleware"
	"interiorerp/internal/models"
)

const testSecret = "test-secret"

func newAuthSvc(m *memStore) AuthService {
	return NewAuthService(memUsers{m}, memTenants{m}, testSecret, time.Hour, quietLogger())
}

func withPassword(t *testing.T, m *memStore, id, password string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	u := m.users[id]
	u.PasswordHash = string(hash)
	m.users[id] = u
}

func TestLogin(t *testing.T) {
	m := seed()
	withPassword(t, m, "designer", "s3cret")
	svc := newAuthSvc(m)
	ctx := context.Background()

	cases := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"ok", "designer@studio.test", "s3cret", nil},
		{"padded email", "  designer@studio.test ", "s3cret", nil},
		{"wrong password", "designer@studio.test", "nope", ErrUnauthorized},
		{"no profile", "nobody@studio.test", "s3cret", ErrUnauthorized},
		{"empty hash", "client@studio.test", "", ErrUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := svc.Login(ctx, tc.email, tc.password)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err=%v, want %v", err, tc.wantErr)
			}
			if tc.wantErr != nil {
				return
			}
			claims, err := middleware.ParseAccessToken([]byte(testSecret), res.AccessToken)
			if err != nil {
				t.Fatalf("token: %v", err)
			}
			if claims.UserID != "designer" || claims.Role != models.RoleDesigner || claims.TenantID != "t1" {
				t.Fatalf("claims: %+v", claims)
			}
		})
	}
}

func TestLoginHealsEmptyTenant(t *testing.T) {
	m := seed()
	u := m.users["client"]
	u.TenantID = ""
	m.users["client"] = u
	withPassword(t, m, "client", "pw")

	res, err := newAuthSvc(m).Login(context.Background(), "client@studio.test", "pw")
	if err != nil {
		t.Fatal(err)
	}
	if res.User.TenantID != "client" || m.users["client"].TenantID != "client" {
		t.Fatalf("tenant not healed: %q / %q", res.User.TenantID, m.users["client"].TenantID)
	}
}

func TestSwitchTenant(t *testing.T) {
	m := seed()
	m.tenants["owned"] = models.Tenant{ID: "owned", Name: "Second studio", OwnerID: "admin"}
	m.tenants["foreign"] = models.Tenant{ID: "foreign", Name: "Other", OwnerID: "someone"}
	svc := newAuthSvc(m)
	ctx := context.Background()

	if _, err := svc.SwitchTenant(ctx, m.user("designer"), "owned"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("designer switch: err=%v", err)
	}
	if _, err := svc.SwitchTenant(ctx, m.user("admin"), "foreign"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign tenant: err=%v", err)
	}
	res, err := svc.SwitchTenant(ctx, m.user("admin"), "owned")
	if err != nil {
		t.Fatal(err)
	}
	if res.User.TenantID != "owned" || m.users["admin"].TenantID != "owned" {
		t.Fatal("active tenant not switched")
	}
}

func TestCreateUserAdminOnly(t *testing.T) {
	m := seed()
	svc := newAuthSvc(m)
	in := CreateUserInput{Name: "Ravi", Email: "ravi@studio.test", Password: "pw", Role: models.RoleVendor}

	if _, err := svc.CreateUser(context.Background(), m.user("designer"), in); !errors.Is(err, ErrForbidden) {
		t.Fatalf("designer: err=%v", err)
	}
	u, err := svc.CreateUser(context.Background(), m.user("admin"), in)
	if err != nil {
		t.Fatal(err)
	}
	if u.TenantID != "t1" || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("pw")) != nil {
		t.Fatalf("created user: %+v", u)
	}
}
