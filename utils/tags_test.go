package utils

import (
	"reflect"
	"testing"
)

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"plain list", []string{"go", "web"}, []string{"go", "web"}},
		{"comma string", []string{"go, web ,api"}, []string{"go", "web", "api"}},
		{"dedupe keeps first", []string{"go", "web", "go"}, []string{"go", "web"}},
		{"mixed shapes", []string{"go,web", "api", "web"}, []string{"go", "web", "api"}},
		{"empties dropped", []string{" ", "", ",,", "go"}, []string{"go"}},
		{"nil in", nil, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeTags(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("NormalizeTags(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestStringListCodec(t *testing.T) {
	if got := EncodeStringList(nil); got != "[]" {
		t.Fatalf("EncodeStringList(nil) = %q, want []", got)
	}
	encoded := EncodeStringList([]string{"go", "web"})
	decoded := DecodeStringList(encoded)
	if !reflect.DeepEqual(decoded, []string{"go", "web"}) {
		t.Fatalf("round trip = %v", decoded)
	}
	if got := DecodeStringList("not json"); got != nil {
		t.Fatalf("malformed input should decode to nil, got %v", got)
	}
	if got := DecodeStringList(""); got != nil {
		t.Fatalf("empty input should decode to nil, got %v", got)
	}
}
