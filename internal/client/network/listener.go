package network

import "github.com/dmitrijs2005/tasksync/internal/client/models"

// Listener receives connectivity transitions. OnNetworkChange fires first,
// then exactly one of OnOnline or OnOffline.
type Listener interface {
	OnNetworkChange(status models.NetworkStatus)
	OnOnline(status models.NetworkStatus)
	OnOffline(status models.NetworkStatus)
}

// ListenerFuncs adapts optional callbacks to Listener.
type ListenerFuncs struct {
	Change  func(models.NetworkStatus)
	Online  func(models.NetworkStatus)
	Offline func(models.NetworkStatus)
}

func (f ListenerFuncs) OnNetworkChange(s models.NetworkStatus) {
	if f.Change != nil {
		f.Change(s)
	}
}

func (f ListenerFuncs) OnOnline(s models.NetworkStatus) {
	if f.Online != nil {
		f.Online(s)
	}
}

func (f ListenerFuncs) OnOffline(s models.NetworkStatus) {
	if f.Offline != nil {
		f.Offline(s)
	}
}

// ListenerID identifies a registration for removal.
type ListenerID uint64
