package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/fatefinder/pkg/domain"
)

// Overlay highlights session progress on the diagram.
type Overlay struct {
	Visited []domain.Screen
	Current domain.Screen
}

// GenerateMermaid renders the navigation state machine as a Mermaid state diagram.
// Automatic transitions (fetch outcomes) are drawn with their trigger in italics.
func GenerateMermaid(transitions []domain.Transition, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("stateDiagram-v2\n")
	fmt.Fprintf(&sb, "    [*] --> %s\n", domain.ScreenHome)

	for _, t := range transitions {
		label := string(t.Trigger)
		if t.Trigger == domain.TriggerFetchSuccess || t.Trigger == domain.TriggerFetchFailure {
			label = "<i>" + label + "</i>"
		}
		fmt.Fprintf(&sb, "    %s --> %s : %s\n", t.From, t.To, label)
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// black text stays readable on both themes
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000\n")

		seen := make(map[domain.Screen]bool)
		for _, s := range overlay.Visited {
			if s == "" || seen[s] || s == overlay.Current {
				continue
			}
			seen[s] = true
			fmt.Fprintf(&sb, "    class %s visited\n", s)
		}
		if overlay.Current != "" {
			fmt.Fprintf(&sb, "    class %s current\n", overlay.Current)
		}
	}

	return sb.String()
}
