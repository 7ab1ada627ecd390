package id_test

import (
	"testing"

	"github.com/xraph/storefront/id"
)

func TestParseClientID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"Bare digits", "123456789", "123456789", false},
		{"Mention", "<@123456789>", "123456789", false},
		{"Nickname mention", "<@!123456789>", "123456789", false},
		{"Whitespace", "  123456789  ", "123456789", false},
		{"Empty", "", "", true},
		{"Empty mention", "<@>", "", true},
		{"Letters", "abc123", "", true},
		{"Mixed", "<@12a34>", "", true},
		{"Negative", "-123", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := id.ParseClientID(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q, got %q", tt.input, got.String())
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseClientID(%q): %v", tt.input, err)
			}
			if got.String() != tt.want {
				t.Errorf("got %q, want %q", got.String(), tt.want)
			}
		})
	}
}

func TestClientIDMention(t *testing.T) {
	c := id.MustParseClientID("<@!42>")
	if c.Mention() != "<@42>" {
		t.Errorf("Mention: got %q, want %q", c.Mention(), "<@42>")
	}
	if id.NilClientID.Mention() != "" {
		t.Error("nil ClientID should have empty mention")
	}
}

func TestClientIDEqual(t *testing.T) {
	a := id.MustParseClientID("42")
	b := id.MustParseClientID("<@42>")
	c := id.MustParseClientID("43")

	if !a.Equal(b) {
		t.Error("normalized mention should equal bare digits")
	}
	if a.Equal(c) {
		t.Error("different clients should not be equal")
	}
	if a.Equal(id.NilClientID) {
		t.Error("valid ClientID should not equal nil")
	}
}

func TestClientIDNil(t *testing.T) {
	var c id.ClientID
	if !c.IsNil() {
		t.Error("zero-value ClientID should be nil")
	}
	if c.String() != "" {
		t.Errorf("expected empty string, got %q", c.String())
	}
}

func TestClientIDTextRoundTrip(t *testing.T) {
	original := id.MustParseClientID("987654321")
	data, err := original.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText failed: %v", err)
	}

	var restored id.ClientID
	if err := restored.UnmarshalText(data); err != nil {
		t.Fatalf("UnmarshalText failed: %v", err)
	}
	if !restored.Equal(original) {
		t.Errorf("mismatch: %q != %q", restored.String(), original.String())
	}
}

func TestClientIDValueScan(t *testing.T) {
	original := id.MustParseClientID("555")
	val, err := original.Value()
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}

	var scanned id.ClientID
	if err := scanned.Scan(val); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if !scanned.Equal(original) {
		t.Errorf("mismatch: %q != %q", scanned.String(), original.String())
	}

	// Integer storage round-trip.
	var fromInt id.ClientID
	if err := fromInt.Scan(int64(555)); err != nil {
		t.Fatalf("Scan(int64) failed: %v", err)
	}
	if !fromInt.Equal(original) {
		t.Errorf("int64 scan mismatch: %q != %q", fromInt.String(), original.String())
	}

	var scannedNil id.ClientID
	if err := scannedNil.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) failed: %v", err)
	}
	if !scannedNil.IsNil() {
		t.Error("expected nil after scan of nil")
	}
}
