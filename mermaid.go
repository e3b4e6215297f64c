package flow

import (
	"fmt"
	"strings"
)

// Mermaid renders g as a Mermaid flowchart. Node shapes follow the type:
// trigger ((circle)), condition {rhombus}, delay [/parallelogram/] and
// action [rectangle]. Condition branches become edge labels.
func Mermaid(g Graph) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, n := range g.Nodes {
		opener, closer := "[", "]"
		switch n.Type {
		case NodeTrigger:
			opener, closer = "((", "))"
		case NodeCondition:
			opener, closer = "{", "}"
		case NodeDelay:
			opener, closer = "[/", "/]"
		}
		label := strings.ReplaceAll(n.Data.Label, "\"", "'")
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", sanitizeMermaidID(n.ID), opener, label, closer))
	}

	for _, e := range g.Edges {
		arrow := "-->"
		if e.SourceHandle != HandleNone {
			arrow = fmt.Sprintf("-- \"%s\" -->", e.SourceHandle)
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", sanitizeMermaidID(e.Source), arrow, sanitizeMermaidID(e.Target)))
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	return strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_").Replace(id)
}
