/*
Package ports defines the driven ports (interfaces) of the arttic client.

These interfaces decouple the session orchestrator from the concrete transport,
the backend HTTP API and the layout persistence, so each can be swapped for a
fake in tests.

# Key Interfaces

  - Dialer / Conn: the duplex message channel to the backend (websocket in production).
  - BackendAPI: one-shot request/response calls (config, status, gallery, prompts).
  - LayoutStore: persistence of named canvas layouts (memory, file or redis).
*/
package ports
