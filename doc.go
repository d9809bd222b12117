/*
Package arttic is a session orchestrator for a remote generative-image backend.

A Session ties together the parameter store, the live protocol channel, the
notice feed, the node canvas, the gallery and the settings panel. Front-ends
(the terminal UI, the introspection server, the MCP server) drive it through
intents and read it back through Status, node views and Subscribe.

# Concept

Users assemble configuration nodes on a canvas, trigger long-running remote
operations (model load, image generation) and watch progress stream back over a
persistent duplex channel. The channel reconnects on a fixed delay forever;
a lost connection only changes the indicator.

Every entry point (user intent, server event, reconnect callback) runs under one
lock, so one user action is one atomic mutation sequence.

# Usage

	api, err := backend.New("http://localhost:8000")
	if err != nil {
		log.Fatal(err)
	}
	s := arttic.New(websocket.NewDialer(), api.WebSocketURL(), api)
	defer s.Close()

	if err := s.Start(ctx); err != nil {
		log.Println(err)
	}
	if err := s.LoadModel(); err != nil {
		log.Println(err)
	}
*/
package arttic
