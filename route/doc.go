// Package route hands launch and share events to the application layer.
//
// A Bridge is a single-slot mailbox sitting between the OS-facing entry
// points (a home-screen shortcut, a share action) and the running
// application. Each write is delivered exactly once: either pulled at
// startup with PullInitialRoute, or pushed to an attached Navigator. A
// newer write overwrites an unread older one.
//
//	bridge := route.NewBridge()
//	bridge.Share(handle)               // before the app is up
//
//	r := bridge.PullInitialRoute()     // "/share"
//	h, ok := bridge.PullSharedPayload() // handle, true
//
//	bridge.Attach(nav)                 // later writes go to nav.NavigateTo
package route
