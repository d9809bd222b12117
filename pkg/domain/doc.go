/*
Package domain contains the core models shared by every arttic component.

It is kept free of I/O. Adapters, the protocol handler and the front-ends all
speak in these types.

# Key Entities

  - Key / Params: the flat session parameter mapping (prompt, steps, seed...).
  - NodeType: the closed set of canvas node kinds and their cardinality.
  - Event: the closed set of typed server events, dispatched through EventHandler.
  - Action: the outgoing user intents and their payloads.
  - Notice: an ephemeral, auto-expiring feed element.
  - Layout: a persisted canvas arrangement.
*/
package domain
