package extraction

import (
	"testing"

	"github.com/pasecure/idverify/constants"
)

const sampleSeniorCard = `Republic of the Philippines
Office of the Senior Citizens Affairs
Pasig City

ID No.: _22135
Narne: JUAN DELA CRUZ
Address: 123 Sample St.
Date of Birth: 01/01/1950`

func TestParseSeniorCard(t *testing.T) {
	f := Parse(sampleSeniorCard)

	if f.IDType == nil || *f.IDType != constants.IDTypeSeniorCitizen {
		t.Fatalf("id type = %v, want senior_citizen", f.IDType)
	}
	if f.IDNumber == nil || *f.IDNumber != "22135" {
		t.Fatalf("id number = %v, want 22135", f.IDNumber)
	}
	if f.HolderName == nil || *f.HolderName != "JUAN DELA CRUZ" {
		t.Fatalf("holder name = %v, want JUAN DELA CRUZ", f.HolderName)
	}
}

func TestNormalize(t *testing.T) {
	got := Normalize("Narne:   JUAN   DELA    CRUZ\r\nID No.: ___1234__")
	want := "Name: JUAN DELA CRUZ\nID No.: 1234"
	if got != want {
		t.Fatalf("normalize = %q, want %q", got, want)
	}
}

func TestDetectIDType(t *testing.T) {
	tests := []struct {
		name string
		text string
		want *constants.IDType
	}{
		{"osca marker", "OSCA\nPasig City", typePtr(constants.IDTypeSeniorCitizen)},
		{"senior citizen words", "SENIOR CITIZEN IDENTIFICATION CARD", typePtr(constants.IDTypeSeniorCitizen)},
		{"pwd marker", "Persons with Disability Affairs Office", typePtr(constants.IDTypePWD)},
		{"pwd acronym", "PWD ID CARD", typePtr(constants.IDTypePWD)},
		{"first match wins", "Senior Citizens Affairs / PWD desk", typePtr(constants.IDTypeSeniorCitizen)},
		{"no marker", "Driver License", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectIDType(tt.text)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("type = %v, want %v", got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Fatalf("type = %v, want %v", *got, *tt.want)
			}
		})
	}
}

func TestExtractIDNumber(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string // empty means nil expected
	}{
		{"labeled with underscore placeholder", "ID No.: _22135", "22135"},
		{"id number label", "ID Number: 2024-001234", "2024-001234"},
		{"bare id label", "ID: 99887766", "99887766"},
		{"standalone digits line", "Juan Dela Cruz\n445566\nPasig City", "445566"},
		{"too short after strip", "ID No.: A-1", ""},
		{"no digit run", "no usable identifiers here", ""},
		{"short digits ignored", "room 123", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractIDNumber(Normalize(tt.text))
			if tt.want == "" {
				if got != nil {
					t.Fatalf("id number = %q, want nil", *got)
				}
				return
			}
			if got == nil || *got != tt.want {
				t.Fatalf("id number = %v, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractHolderNameStages(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			"label anchored same line",
			"Name: JUAN DELA CRUZ\nAddress: somewhere",
			"JUAN DELA CRUZ",
		},
		{
			"label with misread and trailing dash",
			"Narne: MARIA SANTOS -",
			"MARIA SANTOS",
		},
		{
			"label anchored next line",
			"Name:\nJOSE P. REYES\nAddress: somewhere",
			"JOSE P. REYES",
		},
		{
			"label anchored two lines down",
			"Name:\n\nANA GARCIA LOPEZ",
			"ANA GARCIA LOPEZ",
		},
		{
			"unanchored fallback",
			"Republic of the Philippines\nPEDRO SAN JUAN\n445566",
			"PEDRO SAN JUAN",
		},
		{
			"denylisted line is never a name",
			"Pasig City",
			"",
		},
		{
			"denylist applies after label too",
			"Name:\nPasig City\nDate of Birth",
			"",
		},
		{
			"single token rejected in fallback",
			"Republic\nPHILIPPINES",
			"",
		},
		{
			"no candidate at all",
			"123456\n!!!",
			"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractHolderName(Normalize(tt.text))
			if tt.want == "" {
				if got != nil {
					t.Fatalf("holder name = %q, want nil", *got)
				}
				return
			}
			if got == nil || *got != tt.want {
				t.Fatalf("holder name = %v, want %q", got, tt.want)
			}
		})
	}
}

func TestParseNoMatchesIsNotAnError(t *testing.T) {
	f := Parse("completely unrelated text 12")
	if f.IDType != nil || f.IDNumber != nil || f.HolderName != nil {
		t.Fatalf("expected all-nil fields, got %+v", f)
	}
}

func typePtr(t constants.IDType) *constants.IDType { return &t }
