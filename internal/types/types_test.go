package types

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestTermRequest_Unmarshal(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantValue string
		wantBoost bool
	}{
		{"string value", `{"field":"f","type":"text","value":"test value"}`, `"test value"`, false},
		{"number value with boost", `{"field":"f","type":"int4","value":-5,"boost":42}`, `-5`, true},
		{"bool value", `{"field":"f","type":"bool","value":true}`, `true`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req TermRequest
			if err := json.Unmarshal([]byte(tt.body), &req); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if string(req.Value) != tt.wantValue {
				t.Errorf("Value = %s, want %s", req.Value, tt.wantValue)
			}
			if (req.Boost != nil) != tt.wantBoost {
				t.Errorf("Boost = %v, want present=%v", req.Boost, tt.wantBoost)
			}
		})
	}
}

func TestIndexListResponse_NilMarshalsAsEmptyArray(t *testing.T) {
	out, err := json.Marshal(IndexListResponse{})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(out), `"indexes":[]`) {
		t.Errorf("Marshal() = %s, want empty indexes array", out)
	}
}

func TestCreateIndexRequest_OmitsEmptyOptions(t *testing.T) {
	out, err := json.Marshal(CreateIndexRequest{Schema: "public", Table: "t", Name: "i", AccessMethod: "btree"})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if strings.Contains(string(out), "options") {
		t.Errorf("Marshal() = %s, want no options key", out)
	}
}
