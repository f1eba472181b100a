package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptVerifier_Verify(t *testing.T) {
	hash, err := HashPassword("secret", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	tests := []struct {
		name      string
		plaintext string
		hash      string
		want      bool
		wantErr   bool
	}{
		{name: "Match", plaintext: "secret", hash: hash, want: true},
		{name: "Mismatch", plaintext: "wrong", hash: hash, want: false},
		{name: "Empty Plaintext", plaintext: "", hash: hash, want: false},
		{name: "Malformed Hash", plaintext: "secret", hash: "not-a-bcrypt-hash", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BcryptVerifier{}.Verify(tt.plaintext, tt.hash)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Verify() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Verify() = %v, want %v", got, tt.want)
			}
		})
	}
}
