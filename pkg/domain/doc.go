/*
Package domain contains the core domain models of the kiteflow engine.

It defines the declarative flow graph as authored (Nodes and Edges), the resolved
runtime tree the interpreter walks, and the records exchanged with the host
(Events, EventResponses and Effects). This package is kept pure and free of
external dependencies like I/O or persistence, following Hexagonal
Architecture principles.

# Key Entities

  - FlowData: the graph source document (nodes + edges).
  - Node / Edge: author-facing elements; an edge carries no role tag, the kind
    of the resolving node decides whether it is read as a successor or a child.
  - Tree / RuntimeNode: the arena of resolved nodes, one slot per node id.
  - Event / EventResponse: what the host delivers and what it gets back.
  - Effect: a side-effect emitted while walking the tree (log, text response).
*/
package domain
