/*
Package canvas implements the node-graph canvas engine.

The engine owns node existence and spatial layout: a registry keyed by node
type (one live instance per type), the world-to-screen transform, and the
pointer gestures that move nodes, pan, zoom and drop new nodes from the dock.
Parameter values never live here; a node only carries its type and an opaque
view built by the configured factory.

Coordinates:

	world  = (screen - viewportOrigin - offset) / scale
	screen = world*scale + offset + viewportOrigin
*/
package canvas
