/*
Package dsl provides a fluent Go builder for kiteflow flows.

It produces the same nodes and edges a flow editor would, without writing
YAML or JSON by hand. This is mostly useful in tests and for flows generated
at runtime.

Example usage:

	b := dsl.New()

	b.Add("start").OnEvent("MESSAGE_CREATE").Go("check")
	b.Add("check").Condition("{{event.content}}")
	b.Add("is_ping").When(domain.CompareModeEqual, "ping").Of("check").Go("reply")
	b.Add("reply").Text("pong")

	loader, err := b.Build()
	// ... pass loader to kiteflow.New(...)
*/
package dsl
