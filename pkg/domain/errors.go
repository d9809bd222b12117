package domain

import "errors"

// ErrNodeExists is returned when a node of the requested type is already on the canvas.
var ErrNodeExists = errors.New("node already exists")

// ErrPermanentNode is returned when deleting a startup node.
var ErrPermanentNode = errors.New("node is permanent")

// ErrUnknownNodeType is returned for a node type outside the closed set.
var ErrUnknownNodeType = errors.New("unknown node type")

// ErrNoModelLoaded is returned when generating before a model is loaded.
var ErrNoModelLoaded = errors.New("no model loaded")

// ErrBusy is returned when a trigger fires while an operation is in flight.
var ErrBusy = errors.New("operation in progress")

// ErrSameConfiguration is returned when loading the configuration that is already loaded.
var ErrSameConfiguration = errors.New("configuration already loaded")

// ErrNotConnected is returned when an intent cannot be sent because the channel is down.
var ErrNotConnected = errors.New("not connected")

// ErrDuplicateTitle is returned when saving a prompt whose title is taken.
var ErrDuplicateTitle = errors.New("prompt title already exists")

// ErrPromptNotFound is returned when a prompt title does not exist.
var ErrPromptNotFound = errors.New("prompt not found")

// ErrLayoutNotFound is returned when a layout name cannot be found in the store.
var ErrLayoutNotFound = errors.New("layout not found")

// ErrViewerClosed is returned by lightbox operations while nothing is open.
var ErrViewerClosed = errors.New("viewer closed")

// ErrNoModelSelected is returned when loading with no model chosen.
var ErrNoModelSelected = errors.New("no model selected")

// ErrUnknownParam is returned when setting a key outside the parameter set.
var ErrUnknownParam = errors.New("unknown parameter")

// ErrInvalidParam is returned when a parameter value has the wrong type or is out of range.
var ErrInvalidParam = errors.New("invalid parameter")
