package route

import (
	"sync"

	"github.com/opd-ai/portalsend/file"
)

// recordingNavigator records every pushed route. If onNavigate is set it
// runs inside NavigateTo, which lets tests pull the payload the way a
// screen would.
type recordingNavigator struct {
	mu         sync.Mutex
	routes     []string
	onNavigate func(route string)
}

func (n *recordingNavigator) NavigateTo(route string) {
	n.mu.Lock()
	n.routes = append(n.routes, route)
	hook := n.onNavigate
	n.mu.Unlock()
	if hook != nil {
		hook(route)
	}
}

func (n *recordingNavigator) seen() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.routes...)
}

func testHandle(name string) *file.Handle {
	return &file.Handle{ID: "content://share/" + name, Name: name, Size: file.UnknownSize}
}
