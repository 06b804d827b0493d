/*
Package ports defines the driven ports (interfaces) for the kiteflow engine.

These interfaces decouple the interpreter from the host it runs in, allowing the
same flow to be fed from files, redis, HTTP or MCP and to report through any
logging or response backend.

# Key Interfaces

  - FlowLoader: Retrieves the graph source document once at startup.
  - EventSource: Delivers one event per call, in arrival order.
  - LogSink: Receives (level, message) records emitted by log actions.
  - TextResponder: Receives text responses emitted by response actions.
  - ResponseSink: Receives exactly one EventResponse per dispatched event.
  - ConfigSource: Key-value plugin configuration, read once at startup.
  - DistributedLocker: Serializes dispatches across replicas.
*/
package ports
