package port

import "errors"

// Sentinel errors used across ports.
var (
	// ErrStoreUnavailable marks a transport or connection failure talking to the vector store.
	ErrStoreUnavailable = errors.New("vector store unavailable")
	// ErrEncoder marks a failure producing a query embedding.
	ErrEncoder = errors.New("text encoder failed")
	// ErrUnauthorized is the single outcome of every failed token verification.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrModuleLoad marks a live-introspection failure to load a module or resolve an attribute.
	ErrModuleLoad = errors.New("module load failed")
	// ErrIntrospectionDisabled is returned by inspectors configured off.
	ErrIntrospectionDisabled = errors.New("live introspection disabled")
	// ErrDuplicateTool is returned when two tools resolve to the same name.
	ErrDuplicateTool = errors.New("duplicate tool name")
	// ErrAlreadyStarted is returned when a transport is run twice.
	ErrAlreadyStarted = errors.New("transport already started")
	// ErrUnknownTransport is returned for an unsupported transport mode.
	ErrUnknownTransport = errors.New("unknown transport")
)
