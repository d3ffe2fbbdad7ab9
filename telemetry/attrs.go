package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

func scopeAttr(scope string) attribute.KeyValue {
	if scope == "" {
		scope = "application"
	}
	return attribute.String("scope", scope)
}

func decisionAttr(allowed bool) attribute.KeyValue {
	if allowed {
		return attribute.String("decision", "allow")
	}
	return attribute.String("decision", "deny")
}

func eventAttr(event string) attribute.KeyValue {
	return attribute.String("event", event)
}

func roleAttr(name string) attribute.KeyValue {
	return attribute.String("role", name)
}
