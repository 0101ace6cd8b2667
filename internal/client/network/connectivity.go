// Package network watches connectivity and turns platform answers into a
// de-duplicated stream of online/offline transitions.
package network

import (
	"context"
	"net"
	"strings"
	"sync"
)

// Connectivity is the platform connectivity API. Either call may fail, in
// which case the monitor reports offline.
type Connectivity interface {
	IsConnected(ctx context.Context) (bool, error)
	IsWifiConnected(ctx context.Context) (bool, error)
}

// StaticConnectivity answers with values set by the caller. It backs forced
// offline mode and tests.
type StaticConnectivity struct {
	mu     sync.Mutex
	online bool
	wifi   bool
	err    error
}

func NewStaticConnectivity(online, wifi bool) *StaticConnectivity {
	return &StaticConnectivity{online: online, wifi: wifi}
}

func (s *StaticConnectivity) Set(online, wifi bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.online, s.wifi, s.err = online, wifi, nil
}

// Fail makes every following query return err until the next Set.
func (s *StaticConnectivity) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *StaticConnectivity) IsConnected(context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online, s.err
}

func (s *StaticConnectivity) IsWifiConnected(context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wifi, s.err
}

// driver-named interfaces only count when a unit number follows, as in ath0 or ra0
var (
	wirelessPrefixes = []string{"wl", "wifi"}
	wirelessDrivers  = []string{"ath", "ra"}
)

// InterfaceLister returns the host network interfaces.
type InterfaceLister func() ([]net.Interface, error)

// hasWirelessLink reports whether an active interface looks wireless.
func hasWirelessLink(list InterfaceLister) (bool, error) {
	ifaces, err := list()
	if err != nil {
		return false, err
	}
	for _, ifc := range ifaces {
		if ifc.Flags&net.FlagUp == 0 || ifc.Flags&net.FlagLoopback != 0 {
			continue
		}
		if isWirelessName(ifc.Name) {
			return true, nil
		}
	}
	return false, nil
}

func isWirelessName(name string) bool {
	name = strings.ToLower(name)
	for _, p := range wirelessPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	for _, d := range wirelessDrivers {
		if rest, ok := strings.CutPrefix(name, d); ok && rest != "" && rest[0] >= '0' && rest[0] <= '9' {
			return true
		}
	}
	return false
}
