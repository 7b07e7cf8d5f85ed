package services

import "testing"

func TestClassify(t *testing.T) {
	rules := DefaultDomainRules()

	tests := []struct {
		host string
		want HostClass
	}{
		{"cdn.shopify.com", HostDirect},
		{"www.senetic.it", HostDirect},
		{"images.senetic.com", HostDirect},
		{"download.senetic.com", HostRelay},
		{"DOWNLOAD.SENETIC.COM", HostRelay},
		{"  www.senetic.it  ", HostDirect},
		{"evil.example.com", HostBlocked},
		{"senetic.it", HostBlocked},
		{"", HostBlocked},
	}
	for _, tt := range tests {
		if got := rules.Classify(tt.host); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.host, got, tt.want)
		}
	}
}

func TestAllowed(t *testing.T) {
	rules := NewDomainRules([]string{"a.example.com"}, []string{"b.example.com"})

	if !rules.Allowed("a.example.com") {
		t.Error("direct host should be allowed")
	}
	if !rules.Allowed("b.example.com") {
		t.Error("relay host should be allowed")
	}
	if rules.Allowed("c.example.com") {
		t.Error("unlisted host should be blocked")
	}
}
