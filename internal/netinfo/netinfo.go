// Package netinfo looks up interface addresses for the bar.
package netinfo

import (
	"fmt"
	"net"

	"github.com/Jeropeesee-Bashan/pybar/internal/errors"
	"github.com/Jeropeesee-Bashan/pybar/internal/widget"
)

// AddrsFunc returns the addresses of the named interface.
type AddrsFunc func(name string) ([]net.Addr, error)

// InterfaceAddrs is the AddrsFunc backed by the operating system.
func InterfaceAddrs(name string) ([]net.Addr, error) {
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return nil, err
	}
	return iface.Addrs()
}

// IPv4 returns the first IPv4 address of the interface.
func IPv4(name string, addrs AddrsFunc) (string, error) {
	if addrs == nil {
		addrs = InterfaceAddrs
	}
	list, err := addrs(name)
	if err != nil {
		return "", errors.NewSourceError("netinfo", fmt.Sprintf("addresses of %s", name), err)
	}
	for _, a := range list {
		var ip net.IP
		switch v := a.(type) {
		case *net.IPNet:
			ip = v.IP
		case *net.IPAddr:
			ip = v.IP
		}
		if ip4 := ip.To4(); ip4 != nil {
			return ip4.String(), nil
		}
	}
	return "", errors.NewSourceError("netinfo", fmt.Sprintf("%s has no IPv4 address", name), nil)
}

// Address returns a text widget holding the interface's IPv4 address as it
// is when the bar is built.
func Address(name string, addrs AddrsFunc) (*widget.Text, error) {
	ip, err := IPv4(name, addrs)
	if err != nil {
		return nil, err
	}
	return widget.NewText(ip), nil
}
