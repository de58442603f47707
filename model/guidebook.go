package model

import (
	"fmt"
	"strings"

	"github.com/viant/guidebook/model/graph"
)

// Source identifies where a guidebook was loaded from.
type Source struct {
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
}

// Guidebook is a loaded procedure.
type Guidebook struct {
	Source      *Source `json:"source,omitempty" yaml:"source,omitempty"`
	Name        string  `json:"name" yaml:"name"`
	Title       string  `json:"title,omitempty" yaml:"title,omitempty"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	// Imports lists the URLs of every guidebook imported, directly or not.
	Imports []string   `json:"imports,omitempty" yaml:"imports,omitempty"`
	Graph   graph.Node `json:"-" yaml:"-"`
}

// Validate performs a structural check of the graph. The returned slice is
// empty when the guidebook is sound.
func (g *Guidebook) Validate() []error {
	var issues []error
	if graph.IsEmpty(g.Graph) {
		return append(issues, fmt.Errorf("guidebook %v has no steps", g.Name))
	}
	groups := map[string]string{}
	graph.Walk(g.Graph, func(node graph.Node) bool {
		switch actual := node.(type) {
		case *graph.Choice:
			if actual.GroupContext == "" {
				issues = append(issues, fmt.Errorf("choice %q has no group", actual.Title))
				break
			}
			if len(actual.Options) == 0 && !actual.IsForm() {
				issues = append(issues, fmt.Errorf("choice %v has no options", actual.GroupContext))
			}
			signature := strings.Join(actual.Titles(), "\x00")
			if prev, ok := groups[actual.GroupContext]; ok && prev != signature {
				issues = append(issues, fmt.Errorf("group %v is declared twice with different options", actual.GroupContext))
			}
			groups[actual.GroupContext] = signature
		case *graph.TitledSteps:
			for i, step := range actual.Steps {
				if step.Title == "" {
					issues = append(issues, fmt.Errorf("step %d of %q has no title", i+1, actual.Title))
				}
			}
		case *graph.Leaf:
			if strings.TrimSpace(actual.Body) == "" {
				issues = append(issues, fmt.Errorf("code block %q has an empty body", actual.Title))
			}
		}
		return true
	})
	return issues
}

// Questions returns the group contexts of every choice in declaration order.
func (g *Guidebook) Questions() []string {
	var ret []string
	seen := map[string]bool{}
	graph.Walk(g.Graph, func(node graph.Node) bool {
		if c, ok := node.(*graph.Choice); ok && !seen[c.GroupContext] {
			seen[c.GroupContext] = true
			ret = append(ret, c.GroupContext)
		}
		return true
	})
	return ret
}
