package models

import "time"

// ConnectionType is the link kind derived from a NetworkStatus.
type ConnectionType string

const (
	ConnectionWifi     ConnectionType = "wifi"
	ConnectionCellular ConnectionType = "cellular"
	ConnectionNone     ConnectionType = "none"
)

// NetworkStatus is a point-in-time connectivity snapshot.
type NetworkStatus struct {
	IsOnline       bool           `json:"isOnline"`
	IsWifi         bool           `json:"isWifi"`
	IsCellular     bool           `json:"isCellular"`
	ConnectionType ConnectionType `json:"connectionType"`
	Timestamp      time.Time      `json:"timestamp"`
}

// NewNetworkStatus derives a consistent status from the two platform answers.
// Wifi without connectivity is reported as offline.
func NewNetworkStatus(online, wifi bool, at time.Time) NetworkStatus {
	s := NetworkStatus{IsOnline: online, Timestamp: at}
	switch {
	case !online:
		s.ConnectionType = ConnectionNone
	case wifi:
		s.IsWifi = true
		s.ConnectionType = ConnectionWifi
	default:
		s.IsCellular = true
		s.ConnectionType = ConnectionCellular
	}
	return s
}

// OfflineStatus is the fail-safe answer when the platform cannot be queried.
func OfflineStatus(at time.Time) NetworkStatus {
	return NewNetworkStatus(false, false, at)
}
