package mdtransform

import (
	"strings"
	"testing"
	"time"
)

func TestNewToken(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 30, 0, 0, time.Local)
	token := NewToken(now)

	if !strings.HasPrefix(token, "20240615-") {
		t.Errorf("NewToken() = %q, want 20240615- prefix", token)
	}
	if !ValidToken(token) {
		t.Errorf("NewToken() produced invalid token %q", token)
	}
}

func TestNewTokenUnique(t *testing.T) {
	now := time.Now()
	a := NewToken(now)
	b := NewToken(now)
	if a == b {
		t.Errorf("two tokens from the same instant collided: %q", a)
	}
}

func TestValidToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{
			name:  "well formed",
			token: "20240615-0a1b2c3d-4e5f-6071-8293-a4b5c6d7e8f9",
			want:  true,
		},
		{
			name:  "short suffix",
			token: "20240615-x",
			want:  true,
		},
		{
			name:  "empty",
			token: "",
			want:  false,
		},
		{
			name:  "no date prefix",
			token: "abcdef-0a1b2c3d",
			want:  false,
		},
		{
			name:  "missing separator",
			token: "202406150a1b2c3d",
			want:  false,
		},
		{
			name:  "path traversal",
			token: "20240615-../../etc",
			want:  false,
		},
		{
			name:  "slash in suffix",
			token: "20240615-ab/cd",
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidToken(tt.token); got != tt.want {
				t.Errorf("ValidToken(%q) = %v, want %v", tt.token, got, tt.want)
			}
		})
	}
}

func TestTokenDate(t *testing.T) {
	got, err := TokenDate("20240615-abc")
	if err != nil {
		t.Fatalf("TokenDate() error: %v", err)
	}
	want := time.Date(2024, 6, 15, 0, 0, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Errorf("TokenDate() = %v, want %v", got, want)
	}

	if _, err := TokenDate("junk"); err == nil {
		t.Error("TokenDate(junk) expected error, got nil")
	}
}
