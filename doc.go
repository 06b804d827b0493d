/*
Package kiteflow is a low-code automation engine for event-driven bots.

A flow author designs a directed graph of typed nodes (command entries, event
triggers, actions and conditional branches) connected by edges. kiteflow
compiles that graph once into a shared runtime tree and, for every incoming
event, walks the tree to produce side effects with a bounded recursion depth.

# Concept

The engine owns only the tree. Everything around it is a collaborator behind a
port: where the graph comes from (FlowLoader), where events come from
(EventSource), and where logs, text responses and per-event outcomes go
(LogSink, TextResponder, ResponseSink). This Hexagonal Architecture lets the
same flow run behind a CLI, an HTTP server, a redis queue or an MCP client.

# Key Features

  - Cycle-safe compilation: each node id resolves to exactly one runtime node,
    and cyclic graphs compile without recursing forever.
  - First-match and all-match conditions with an else fallback.
  - Bounded walks: a dispatch deeper than 100 nodes fails with a
    recursion_limit response while later events are still served.
  - Structured failures: unmatched events yield a no_handler response.

# Usage

	loader := memory.NewLoader(`{
		"nodes": [
			{"id": "e1", "type": "entry_event", "data": {"event_type": "INITIATE"}},
			{"id": "a1", "type": "action_log", "data": {"log_level": "info", "log_message": "hi"}}
		],
		"edges": [{"id": "x", "source": "e1", "target": "a1"}]
	}`)

	eng, err := kiteflow.New(loader)
	if err != nil {
		log.Fatal(err)
	}

	resp := eng.HandleEvent(ctx, domain.Event{Kind: "INITIATE"})
	fmt.Println(resp.Success)
*/
package kiteflow
