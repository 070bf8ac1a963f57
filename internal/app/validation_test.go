package app

import "testing"

func TestIsStrongPassword(t *testing.T) {
	tests := []struct {
		password string
		want     bool
	}{
		{"Str0ng!pass", true},
		{"Str0ng pass", true},
		{"Aa1!aaaa", true},
		{"Aa1!aaa", false},
		{"str0ng!pass", false},
		{"STR0NG!PASS", false},
		{"Strong!pass", false},
		{"Str0ngpass", false},
	}

	for _, tt := range tests {
		if got := isStrongPassword(tt.password); got != tt.want {
			t.Errorf("isStrongPassword(%q) = %v, want %v", tt.password, got, tt.want)
		}
	}
}

func TestPhonePatterns(t *testing.T) {
	if !eventPhonePattern.MatchString("+1 (555) 010-0100") {
		t.Error("event phone rejected a formatted number")
	}
	if eventPhonePattern.MatchString("555\t0100") {
		t.Error("event phone accepted a tab")
	}
	if !vendorPhonePattern.MatchString("555\t0100") {
		t.Error("vendor phone rejected whitespace")
	}
	if vendorPhonePattern.MatchString("555-01") {
		t.Error("vendor phone accepted six characters")
	}
}
