package models

import (
	"encoding/json"
	"testing"
)

func TestFlag_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		input string
		want  Flag
	}{
		{input: `{"goods": true}`, want: FlagTrue},
		{input: `{"goods": false}`, want: FlagFalse},
		{input: `{"goods": null}`, want: FlagUnset},
		{input: `{}`, want: FlagUnset},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var body struct {
				Goods Flag `json:"goods"`
			}
			if err := json.Unmarshal([]byte(tt.input), &body); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if body.Goods != tt.want {
				t.Errorf("got %s, want %s", body.Goods, tt.want)
			}
		})
	}
}

func TestFlag_UnmarshalJSONRejectsNonBoolean(t *testing.T) {
	var body struct {
		Goods Flag `json:"goods"`
	}
	if err := json.Unmarshal([]byte(`{"goods": "yes"}`), &body); err == nil {
		t.Error("expected error for string flag value")
	}
}

func TestParseFlag(t *testing.T) {
	tests := []struct {
		input   string
		want    Flag
		wantErr bool
	}{
		{input: "", want: FlagUnset},
		{input: "TRUE", want: FlagTrue},
		{input: " false ", want: FlagFalse},
		{input: "maybe", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFlag(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFlag(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFlag(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestReverseCharge(t *testing.T) {
	if ReverseChargeFromFlag(FlagTrue).String() != "True" {
		t.Error("expected True for set flag")
	}
	if ReverseChargeFromFlag(FlagFalse).String() != "False" {
		t.Error("expected False for cleared flag")
	}
	if ReverseChargeFromFlag(FlagUnset).String() != "False" {
		t.Error("expected False for absent flag")
	}

	data, err := json.Marshal(ReverseChargeTrue)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `"True"` {
		t.Errorf("expected \"True\", got %s", data)
	}
}
