// ABOUTME: Bridge request/response types for the host integration surface
// ABOUTME: JSON-serializable types mirroring the webview postMessage contract

package bridge

// Request represents a bridge request from the host client.
type Request struct {
	ID     string `json:"id"`
	Method string `json:"method"`
	Params any    `json:"params,omitempty"`
}

// Response represents a bridge response to the host client.
type Response struct {
	ID     string `json:"id"`
	Result any    `json:"result,omitempty"`
	Error  *Error `json:"error,omitempty"`
}

// Notification is a server-initiated message with no request id, used to
// stream subscribed events to the client.
type Notification struct {
	Method string `json:"method"`
	Params any    `json:"params,omitempty"`
}

// Error represents a bridge error.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Methods exposed on the bridge.
const (
	MethodAgentsDiscover    = "agents/discover"
	MethodAgentsKnownStatus = "agents/known/status"
	MethodAgentsKnownToggle = "agents/known/toggle"
	MethodAgentsSearch      = "agents/search"
	MethodHooksList         = "hooks/list"
	MethodHooksCreate       = "hooks/create"
	MethodHooksUpdate       = "hooks/update"
	MethodHooksDelete       = "hooks/delete"
	MethodHooksTrigger      = "hooks/trigger"
	MethodHooksLogs         = "hooks/logs"
	MethodEventsSubscribe   = "events/subscribe"

	// NotifyFileChange carries streamed file-change events to subscribers.
	NotifyFileChange = "events/file-change"
)
