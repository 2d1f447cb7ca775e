package mdtransform

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestIsValidFormat(t *testing.T) {
	tests := []struct {
		format string
		want   bool
	}{
		{"pdf", true},
		{"html", true},
		{"docx", true},
		{"", false},
		{"PDF", false},
		{"txt", false},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			if got := IsValidFormat(tt.format); got != tt.want {
				t.Errorf("IsValidFormat(%q) = %v, want %v", tt.format, got, tt.want)
			}
		})
	}
}

func TestConvertParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		params  ConvertParams
		wantErr bool
	}{
		{
			name:   "zero value",
			params: ConvertParams{},
		},
		{
			name: "all fields within limits",
			params: ConvertParams{
				Title:       "Quarterly Report",
				Version:     "2.1",
				Statement:   "Internal use only.",
				LeftHeader:  "ACME Corp",
				RightHeader: "Confidential",
				CoverFooter: "2024",
				Date:        "2024-06-15",
			},
		},
		{
			name:    "title too long",
			params:  ConvertParams{Title: strings.Repeat("x", MaxTitleLength+1)},
			wantErr: true,
		},
		{
			name:    "statement too long",
			params:  ConvertParams{Statement: strings.Repeat("x", MaxStatementLength+1)},
			wantErr: true,
		},
		{
			name:    "header too long",
			params:  ConvertParams{LeftHeader: strings.Repeat("x", MaxHeaderLength+1)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrFieldTooLong) {
				t.Errorf("Validate() error = %v, want ErrFieldTooLong", err)
			}
		})
	}
}

func TestConvertParamsWithDefaults(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.Local)

	got, err := ConvertParams{}.withDefaults(now)
	if err != nil {
		t.Fatalf("withDefaults() error: %v", err)
	}

	if got.Title != DefaultTitle {
		t.Errorf("Title = %q, want %q", got.Title, DefaultTitle)
	}
	if got.Version != DefaultVersion {
		t.Errorf("Version = %q, want %q", got.Version, DefaultVersion)
	}
	if got.LeftHeader != DefaultLeftHeader {
		t.Errorf("LeftHeader = %q, want %q", got.LeftHeader, DefaultLeftHeader)
	}
	if got.RightHeader != DefaultRightHeader {
		t.Errorf("RightHeader = %q, want %q", got.RightHeader, DefaultRightHeader)
	}
	if got.CoverFooter != DefaultCoverFooter {
		t.Errorf("CoverFooter = %q, want %q", got.CoverFooter, DefaultCoverFooter)
	}
	if got.Date != "2024-06-15" {
		t.Errorf("Date = %q, want 2024-06-15", got.Date)
	}
	if got.Statement != "" {
		t.Errorf("Statement = %q, want empty", got.Statement)
	}
}

func TestConvertParamsWithDefaultsKeepsExplicit(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.Local)

	in := ConvertParams{
		Title:   "My Title",
		Version: "3.0",
		Date:    "2023-01-01",
	}
	got, err := in.withDefaults(now)
	if err != nil {
		t.Fatalf("withDefaults() error: %v", err)
	}
	if got.Title != "My Title" || got.Version != "3.0" || got.Date != "2023-01-01" {
		t.Errorf("withDefaults() overwrote explicit fields: %+v", got)
	}
}

func TestConvertParamsDateFormats(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.Local)

	tests := []struct {
		name    string
		date    string
		want    string
		wantErr bool
	}{
		{
			name: "auto resolves to today",
			date: "auto",
			want: "2024-06-15",
		},
		{
			name: "auto with custom format",
			date: "auto:YYYY/MM/DD",
			want: "2024/06/15",
		},
		{
			name: "literal passthrough",
			date: "June 2024",
			want: "June 2024",
		},
		{
			name: "non-token format chars kept literal",
			date: "auto:DD/MM/YYYY",
			want: "15/06/2024",
		},
		{
			name:    "auto with empty format",
			date:    "auto:",
			wantErr: true,
		},
		{
			name:    "auto prefix without separator",
			date:    "autofill",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ConvertParams{Date: tt.date}.withDefaults(now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("withDefaults() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrInvalidDate) {
					t.Errorf("error = %v, want ErrInvalidDate", err)
				}
				return
			}
			if got.Date != tt.want {
				t.Errorf("Date = %q, want %q", got.Date, tt.want)
			}
		})
	}
}

func TestVersionLabel(t *testing.T) {
	if got := versionLabel("1.0"); got != "版本号:1.0" {
		t.Errorf("versionLabel() = %q", got)
	}
}
