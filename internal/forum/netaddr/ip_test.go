package netaddr

import "testing"

func TestNormalizeIP(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"127.0.0.1", "127.0.0.1", true},
		{" 10.0.0.7 ", "10.0.0.7", true},
		{"::ffff:192.168.1.2", "192.168.1.2", true},
		{"2001:0DB8:0000:0000:0000:0000:0000:0001", "2001:db8::1", true},
		{"[2001:db8::1]:443", "2001:db8::1", true},
		{"192.168.1.2:8080", "192.168.1.2", true},
		{"fe80::1%eth0", "fe80::1", true},
		{"", "", false},
		{"not-an-ip", "", false},
	}
	for _, tc := range cases {
		got, ok := NormalizeIP(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("NormalizeIP(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
