/*
Package observability provides monitoring for the kiteflow engine.

Metrics exposes Prometheus collectors fed by the engine lifecycle hooks and by
the response sink chain. LoggingHooks and Chain compose hook sets so that a
single engine can feed metrics and structured logs at once.
*/
package observability
