package netinfo

import (
	"context"
	"net"
	"testing"

	"github.com/Jeropeesee-Bashan/pybar/internal/errors"
	"github.com/Jeropeesee-Bashan/pybar/internal/widget"
)

func addrs(cidrs ...string) AddrsFunc {
	return func(string) ([]net.Addr, error) {
		var out []net.Addr
		for _, c := range cidrs {
			ip, n, err := net.ParseCIDR(c)
			if err != nil {
				return nil, err
			}
			n.IP = ip
			out = append(out, n)
		}
		return out, nil
	}
}

func TestIPv4(t *testing.T) {
	tests := []struct {
		name    string
		addrs   AddrsFunc
		want    string
		wantErr bool
	}{
		{"v4 only", addrs("192.168.1.23/24"), "192.168.1.23", false},
		{"v6 first", addrs("fe80::1/64", "10.0.0.5/8"), "10.0.0.5", false},
		{"no v4", addrs("fe80::1/64"), "", true},
		{
			name:    "lookup failure",
			addrs:   func(string) ([]net.Addr, error) { return nil, errors.New("no such interface") },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IPv4("wlp1s0", tt.addrs)
			if (err != nil) != tt.wantErr {
				t.Fatalf("IPv4() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrSourceUnavailable) {
				t.Errorf("error %v does not wrap ErrSourceUnavailable", err)
			}
			if got != tt.want {
				t.Errorf("IPv4() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAddress(t *testing.T) {
	w, err := Address("eth0", addrs("172.16.0.9/16"))
	if err != nil {
		t.Fatalf("Address() error = %v", err)
	}
	if got, _ := widget.First(context.Background(), w); got != "172.16.0.9" {
		t.Errorf("value = %q, want %q", got, "172.16.0.9")
	}
}
