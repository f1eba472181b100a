package domain

import (
	"errors"
	"testing"
)

func TestParseTokenClass(t *testing.T) {
	tests := []struct {
		code       string
		want       TokenClass
		wantSecret SecretName
		wantErr    bool
	}{
		{code: "ACTIVETOKEN", want: TokenClassActive, wantSecret: AccessSecret},
		{code: "REFRESHTOKEN", want: TokenClassRefresh, wantSecret: RefreshSecret},
		{code: "", wantErr: true},
		{code: "activetoken", wantErr: true},
		{code: "ADMINTOKEN", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got, err := ParseTokenClass(tt.code)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownTokenClass) {
					t.Fatalf("ParseTokenClass(%q) error = %v, want ErrUnknownTokenClass", tt.code, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTokenClass(%q) unexpected error: %v", tt.code, err)
			}
			if got != tt.want {
				t.Errorf("ParseTokenClass(%q) = %q, want %q", tt.code, got, tt.want)
			}
			if got.Secret() != tt.wantSecret {
				t.Errorf("Secret() = %v, want %v", got.Secret(), tt.wantSecret)
			}
		})
	}
}

func TestClaimsDefaults(t *testing.T) {
	first, role := "Ada", "SUPPORT"

	admin := &AdminPrincipal{Email: "a@x.com", PasswordHash: "h"}
	claims := admin.Claims()
	if claims.FirstName != "admin" || claims.LastName != "Mr" {
		t.Errorf("admin default names = %q %q", claims.FirstName, claims.LastName)
	}
	if claims.Role == nil || *claims.Role != "ADMIN" {
		t.Errorf("admin default role = %v, want ADMIN", claims.Role)
	}

	admin = &AdminPrincipal{Email: "a@x.com", FirstName: &first, Role: &role}
	claims = admin.Claims()
	if claims.FirstName != "Ada" || *claims.Role != "SUPPORT" {
		t.Errorf("admin claims = %+v", claims)
	}

	user := &UserPrincipal{Email: "u@x.com", LastName: &first}
	uc := user.Claims()
	if uc.FirstName != "user" || uc.LastName != "Ada" || uc.Role != nil {
		t.Errorf("user claims = %+v", uc)
	}
}
