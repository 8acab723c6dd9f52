package transport

import (
	"encoding/json"
	"testing"
)

func TestChatIDUnmarshal(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		raw  string
		want ChatID
	}{
		{name: "number", raw: `123`, want: "123"},
		{name: "negative number", raw: `-1001234567890`, want: "-1001234567890"},
		{name: "numeric string", raw: `"456"`, want: "456"},
		{name: "username", raw: `" @channel "`, want: "@channel"},
		{name: "null", raw: `null`, want: ""},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			var got ChatID
			if err := json.Unmarshal([]byte(tt.raw), &got); err != nil {
				t.Fatalf("Unmarshal(%s) error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}

	var bad ChatID
	if err := json.Unmarshal([]byte(`1.5`), &bad); err == nil {
		t.Fatal("expected error for fractional chat id")
	}
}

func TestChatIDValid(t *testing.T) {
	t.Parallel()
	for _, ok := range []ChatID{"1", "-100", "@name"} {
		if !ok.Valid() {
			t.Fatalf("%q should be valid", ok)
		}
	}
	for _, bad := range []ChatID{"", "@", "name", "@a b"} {
		if bad.Valid() {
			t.Fatalf("%q should be invalid", bad)
		}
	}
}

func TestParseMediaKind(t *testing.T) {
	t.Parallel()
	tests := map[string]MediaKind{
		"":      MediaNone,
		"none":  MediaNone,
		"Image": MediaImage,
		"photo": MediaImage,
		"video": MediaVideo,
	}
	for raw, want := range tests {
		got, err := ParseMediaKind(raw)
		if err != nil {
			t.Fatalf("ParseMediaKind(%q) error: %v", raw, err)
		}
		if got != want {
			t.Fatalf("ParseMediaKind(%q) = %q, want %q", raw, got, want)
		}
	}
	if _, err := ParseMediaKind("file"); err == nil {
		t.Fatal("expected error for unsupported media kind")
	}
}
