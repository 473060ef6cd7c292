package llm

import (
	"errors"
	"testing"
)

type answer struct {
	Value string `json:"value"`
}

func (a *answer) Validate() error {
	if a.Value == "" {
		return errors.New("value is required")
	}
	return nil
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"value":"x"}`, `{"value":"x"}`},
		{"json fence", "```json\n{\"value\":\"x\"}\n```", `{"value":"x"}`},
		{"bare fence", "```\n{\"value\":\"x\"}\n```", `{"value":"x"}`},
		{"surrounding whitespace", "  \n```json\n{}\n```\n ", `{}`},
		{"single line fence", "```{\"value\":\"x\"}```", `{"value":"x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripCodeFences(tt.in); got != tt.want {
				t.Errorf("StripCodeFences() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractJSONObject(t *testing.T) {
	got, err := ExtractJSONObject(`Here you go: {"value":{"nested":true}} hope it helps`)
	if err != nil {
		t.Fatalf("ExtractJSONObject() error = %v", err)
	}
	if want := `{"value":{"nested":true}}`; got != want {
		t.Errorf("ExtractJSONObject() = %q, want %q", got, want)
	}

	if _, err := ExtractJSONObject("no object here"); err == nil {
		t.Error("ExtractJSONObject() expected error for text without braces")
	}
	if _, err := ExtractJSONObject("} backwards {"); err == nil {
		t.Error("ExtractJSONObject() expected error for reversed braces")
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"valid", `{"value":"ok"}`, "ok", false},
		{"fenced", "```json\n{\"value\":\"ok\"}\n```", "ok", false},
		{"prose around", `Sure! {"value":"ok"}`, "ok", false},
		{"malformed", `{"value":`, "", true},
		{"not an object", `["value"]`, "", true},
		{"fails validation", `{"value":""}`, "", true},
		{"wrong type", `{"value":42}`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out answer
			err := Decode(tt.raw, &out)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Decode() expected error")
				}
				if !errors.Is(err, ErrValidation) {
					t.Errorf("Decode() error = %v, want validation class", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if out.Value != tt.want {
				t.Errorf("Value = %q, want %q", out.Value, tt.want)
			}
		})
	}
}
