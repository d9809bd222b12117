/*
Package session holds the live generation parameters of one client session.

The Store is the single source of truth for parameter values. Node views
read Snapshots; only the orchestrator writes, and every write goes through
Update so readers never observe a half-applied change. Nothing here is
persisted.
*/
package session
