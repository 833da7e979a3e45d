// ABOUTME: Method router for the bridge: registry keyed by method name
// ABOUTME: Handlers receive raw params and decode what they need themselves

package bridge

import "encoding/json"

// HandlerFunc processes a bridge request's params and returns a Response.
type HandlerFunc func(params json.RawMessage) Response

// Router dispatches bridge requests to registered handlers by method name.
type Router struct {
	handlers map[string]HandlerFunc
}

// NewRouter creates a Router with an empty handler registry.
func NewRouter() *Router {
	return &Router{handlers: make(map[string]HandlerFunc)}
}

// Register associates a method name with a handler function.
func (r *Router) Register(method string, handler HandlerFunc) {
	r.handlers[method] = handler
}

// Handle dispatches a request to the registered handler, or returns a
// method-not-found error if no handler is registered.
func (r *Router) Handle(req Request) Response {
	h, ok := r.handlers[req.Method]
	if !ok {
		return Response{
			ID:    req.ID,
			Error: NewMethodNotFoundError(req.Method),
		}
	}

	raw, err := marshalParams(req.Params)
	if err != nil {
		return Response{
			ID:    req.ID,
			Error: NewInvalidParamsError(err.Error()),
		}
	}

	resp := h(raw)
	resp.ID = req.ID
	return resp
}

// marshalParams converts the generic Params field into json.RawMessage so
// handlers can decode it themselves.
func marshalParams(params any) (json.RawMessage, error) {
	if params == nil {
		return nil, nil
	}
	if raw, ok := params.(json.RawMessage); ok {
		return raw, nil
	}
	return json.Marshal(params)
}
