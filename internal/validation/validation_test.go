package validation

import (
	"strings"
	"testing"
)

func TestValidateUTF8(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"ascii", "hello world", false},
		{"empty", "", false},
		{"unicode", "Hello, 世界", false},
		{"invalid", string([]byte{0xff, 0xfe}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUTF8("field", tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateUTF8(%q) = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestValidateNoNullBytes_WithNull(t *testing.T) {
	err := ValidateNoNullBytes("field", "hello\x00world")
	if err == nil {
		t.Fatal("ValidateNoNullBytes(with null) = nil, want error")
	}
	if err.Field != "field" {
		t.Errorf("error.Field = %q, want %q", err.Field, "field")
	}
}

func TestValidateMaxLength(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		max     int
		wantErr bool
	}{
		{"within", "hello", 10, false},
		{"at limit", "hello", 5, false},
		{"exceeds", "hello world", 5, true},
		{"multibyte runes count once", "世界世界世", 5, false},
		{"multibyte exceeds", "世界世界世界", 5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMaxLength("field", tt.value, tt.max)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateMaxLength(%q, %d) = %v, wantErr %v", tt.value, tt.max, err, tt.wantErr)
			}
		})
	}
}

func TestValidateRequired(t *testing.T) {
	if err := ValidateRequired("name", "x"); err != nil {
		t.Errorf("ValidateRequired(x) = %v, want nil", err)
	}
	for _, v := range []string{"", "   ", "\t\n"} {
		if err := ValidateRequired("name", v); err == nil {
			t.Errorf("ValidateRequired(%q) = nil, want error", v)
		}
	}
}

func TestValidateEnum(t *testing.T) {
	allowed := []string{"text", "int4"}
	if err := ValidateEnum("type", "int4", allowed); err != nil {
		t.Errorf("ValidateEnum(int4) = %v, want nil", err)
	}
	err := ValidateEnum("type", "INT4", allowed)
	if err == nil {
		t.Fatal("ValidateEnum is case-sensitive, want error for INT4")
	}
	if !strings.Contains(err.Message, "text, int4") {
		t.Errorf("error.Message = %q, want allowed list", err.Message)
	}
}

func TestValidateIdentifier(t *testing.T) {
	if err := ValidateIdentifier("name", "products_2"); err != nil {
		t.Errorf("ValidateIdentifier(products_2) = %v, want nil", err)
	}
	for _, v := range []string{"", "2abc", "Upper", "has-dash", strings.Repeat("a", 64)} {
		if err := ValidateIdentifier("name", v); err == nil {
			t.Errorf("ValidateIdentifier(%q) = nil, want error", v)
		}
	}
}

func TestValidateHTTPURL(t *testing.T) {
	for _, v := range []string{"http://es:9200", "https://search.example.com/"} {
		if err := ValidateHTTPURL("url", v); err != nil {
			t.Errorf("ValidateHTTPURL(%q) = %v, want nil", v, err)
		}
	}
	for _, v := range []string{"", "es:9200", "ftp://es", "http://", "::bad"} {
		if err := ValidateHTTPURL("url", v); err == nil {
			t.Errorf("ValidateHTTPURL(%q) = nil, want error", v)
		}
	}
}

func TestCollector(t *testing.T) {
	var c Collector
	if errs := c.Errors(); errs != nil {
		t.Fatalf("empty collector Errors() = %v, want nil", errs)
	}

	c.Add(nil)
	c.Add(&ValidationError{Field: "a", Message: "bad"}, nil, &ValidationError{Field: "b", Message: "worse"})

	errs := c.Errors()
	if len(errs) != 2 || errs[0].Field != "a" || errs[1].Field != "b" {
		t.Errorf("Errors() = %v, want a then b", errs)
	}
}
