// Package guidebook loads guidebook documents into task graphs. A document
// is YAML; imports are loaded recursively and become sub-tasks whose nodes
// carry the import chain as provenance.
package guidebook

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/guidebook/internal/yml"
	"github.com/viant/guidebook/model"
	"github.com/viant/guidebook/model/graph"
	"github.com/viant/guidebook/service/meta"
	"gopkg.in/yaml.v3"
)

// Node keys recognised in a document.
const (
	keySequence = "sequence"
	keyParallel = "parallel"
	keyChoice   = "choice"
	keySteps    = "steps"
	keySubTask  = "subtask"
	keyImport   = "import"
	keyRun      = "run"
)

var nodeKeys = []string{keySequence, keyParallel, keyChoice, keySteps, keySubTask, keyImport, keyRun}

type Service struct {
	metaService *meta.Service
}

func New(opts ...Option) *Service {
	ret := &Service{}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.metaService == nil {
		ret.metaService = meta.New(afs.New(), "")
	}
	return ret
}

// Load loads the guidebook at URL, appending .yaml when the location has
// no extension.
func (s *Service) Load(ctx context.Context, URL string) (*model.Guidebook, error) {
	URL = s.metaService.URL("", withExt(URL))
	l := &loader{service: s, ctx: ctx, active: map[string]bool{}}
	book, err := l.load(URL, nil)
	if err != nil {
		return nil, err
	}
	book.Imports = l.imports
	if issues := book.Validate(); len(issues) > 0 {
		return nil, fmt.Errorf("invalid guidebook %v: %w", URL, errors.Join(issues...))
	}
	return book, nil
}

// DecodeYAML decodes a self-contained document; imports resolve against
// the meta service base URL.
func (s *Service) DecodeYAML(ctx context.Context, encoded []byte) (*model.Guidebook, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(encoded, &node); err != nil {
		return nil, err
	}
	l := &loader{service: s, ctx: ctx, active: map[string]bool{}}
	book, err := l.parseDocument("", (*yml.Node)(&node), nil)
	if err != nil {
		return nil, err
	}
	book.Imports = l.imports
	if issues := book.Validate(); len(issues) > 0 {
		return nil, errors.Join(issues...)
	}
	return book, nil
}

// loader holds the state of a single Load call.
type loader struct {
	service *Service
	ctx     context.Context
	active  map[string]bool
	imports []string
}

func (l *loader) load(URL string, chain []string) (*model.Guidebook, error) {
	if l.active[URL] {
		return nil, fmt.Errorf("import cycle detected at %v", URL)
	}
	l.active[URL] = true
	defer delete(l.active, URL)

	var node yaml.Node
	if err := l.service.metaService.Load(l.ctx, URL, &node); err != nil {
		return nil, fmt.Errorf("failed to load guidebook from %s: %w", URL, err)
	}
	book, err := l.parseDocument(URL, (*yml.Node)(&node), chain)
	if err != nil {
		return nil, fmt.Errorf("failed to parse guidebook from %s: %w", URL, err)
	}
	return book, nil
}

func (l *loader) parseDocument(URL string, node *yml.Node, chain []string) (*model.Guidebook, error) {
	root := node.Root()
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("guidebook should be a mapping")
	}
	book := &model.Guidebook{Source: &model.Source{URL: URL}, Name: nameFromURL(URL)}
	var err error
	if value := root.Lookup("title"); value != nil {
		if book.Title, err = value.String(); err != nil {
			return nil, err
		}
	}
	if value := root.Lookup("description"); value != nil {
		if book.Description, err = value.String(); err != nil {
			return nil, err
		}
	}
	if value := root.Lookup("name"); value != nil {
		if book.Name, err = value.String(); err != nil {
			return nil, err
		}
	}
	graphNode := root.Lookup("graph")
	if graphNode == nil {
		if nodeKey(root) == "" {
			return book, nil
		}
		graphNode = root
	}
	p := &parser{loader: l, URL: URL, chain: chain}
	if book.Graph, err = p.parse(graphNode); err != nil {
		return nil, err
	}
	return book, nil
}

// parser decodes nodes of one document.
type parser struct {
	loader *loader
	URL    string
	chain  []string
}

func (p *parser) parse(node *yml.Node) (graph.Node, error) {
	if node.Kind == yaml.ScalarNode {
		return &graph.Leaf{Meta: p.meta(), Body: node.Value}, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a node mapping", node.Line)
	}
	key := nodeKey(node)
	if key == "" {
		return nil, fmt.Errorf("line %d: expected one of %s", node.Line, strings.Join(nodeKeys, ", "))
	}
	meta, err := p.parseMeta(node)
	if err != nil {
		return nil, err
	}
	value := node.Lookup(key)
	title := p.optionalString(node, "title")

	switch key {
	case keySequence:
		children, err := p.parseList(value)
		if err != nil {
			return nil, err
		}
		return &graph.Sequence{Meta: meta, Children: children}, nil
	case keyParallel:
		children, err := p.parseList(value)
		if err != nil {
			return nil, err
		}
		return &graph.Parallel{Meta: meta, Children: children}, nil
	case keyChoice:
		return p.parseChoice(meta, value)
	case keySteps:
		steps, err := p.parseSteps(value)
		if err != nil {
			return nil, err
		}
		return &graph.TitledSteps{Meta: meta, Title: title, Description: p.optionalString(node, "description"), Steps: steps}, nil
	case keySubTask:
		nested := value.Lookup("graph")
		if nested == nil {
			return nil, fmt.Errorf("line %d: subtask requires a graph", value.Line)
		}
		child, err := p.parse(nested)
		if err != nil {
			return nil, err
		}
		return &graph.SubTask{Meta: meta, Title: p.optionalString(value, "title"), Graph: child}, nil
	case keyImport:
		return p.parseImport(meta, value)
	case keyRun:
		body, err := value.String()
		if err != nil {
			return nil, err
		}
		leaf := &graph.Leaf{Meta: meta, Title: title, Body: body, Language: p.optionalString(node, "language")}
		if leaf.Optional, err = p.optionalBool(node, "optional"); err != nil {
			return nil, err
		}
		if leaf.Memoize, err = p.optionalBool(node, "memoize"); err != nil {
			return nil, err
		}
		return leaf, nil
	}
	return nil, fmt.Errorf("unsupported node %v", key)
}

func (p *parser) parseList(node *yml.Node) ([]graph.Node, error) {
	var ret []graph.Node
	err := node.Items(func(_ int, item *yml.Node) error {
		child, err := p.parse(item)
		if err != nil {
			return err
		}
		ret = append(ret, child)
		return nil
	})
	return ret, err
}

func (p *parser) parseChoice(meta graph.Meta, node *yml.Node) (graph.Node, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: choice should be a mapping", node.Line)
	}
	choice := &graph.Choice{Meta: meta, Title: p.optionalString(node, "title")}
	choice.GroupContext = p.optionalString(node, "group")
	if choice.GroupContext == "" {
		choice.GroupContext = choice.Title
	}
	if options := node.Lookup("options"); options != nil {
		err := options.Items(func(_ int, item *yml.Node) error {
			title, description, nested, err := p.parseTitled(item)
			if err != nil {
				return err
			}
			choice.Options = append(choice.Options, &graph.Option{Title: title, Description: description, Graph: nested})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	if form := node.Lookup("form"); form != nil {
		choice.Form = &graph.Form{}
		if err := form.Decode(choice.Form); err != nil {
			return nil, fmt.Errorf("line %d: invalid form: %w", form.Line, err)
		}
	}
	return choice, nil
}

func (p *parser) parseSteps(node *yml.Node) ([]*graph.Step, error) {
	var ret []*graph.Step
	err := node.Items(func(_ int, item *yml.Node) error {
		title, description, nested, err := p.parseTitled(item)
		if err != nil {
			return err
		}
		ret = append(ret, &graph.Step{Title: title, Description: description, Graph: nested})
		return nil
	})
	return ret, err
}

// parseTitled decodes an option or a step: a title, an optional
// description and a graph given either under "graph" or inline.
func (p *parser) parseTitled(node *yml.Node) (string, string, graph.Node, error) {
	if node.Kind == yaml.ScalarNode {
		return node.Value, "", nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return "", "", nil, fmt.Errorf("line %d: expected a mapping", node.Line)
	}
	title := p.optionalString(node, "title")
	description := p.optionalString(node, "description")
	var nested graph.Node
	var err error
	if value := node.Lookup("graph"); value != nil {
		nested, err = p.parse(value)
	} else if nodeKey(node) != "" {
		nested, err = p.parse(node)
	}
	return title, description, nested, err
}

func (p *parser) parseImport(meta graph.Meta, node *yml.Node) (graph.Node, error) {
	location, err := node.String()
	if err != nil {
		return nil, err
	}
	chain := append(append([]string(nil), p.chain...), location)
	URL := p.loader.service.metaService.URL(p.URL, withExt(location))
	book, err := p.loader.load(URL, chain)
	if err != nil {
		return nil, err
	}
	p.loader.imports = append(p.loader.imports, URL)
	meta.Provenance = append(meta.Provenance, location)
	title := book.Title
	if title == "" {
		title = book.Name
	}
	return &graph.SubTask{Meta: meta, Title: title, Graph: book.Graph}, nil
}

// meta returns the provenance every node of this document starts with.
func (p *parser) meta() graph.Meta {
	return graph.Meta{Provenance: append([]string(nil), p.chain...)}
}

func (p *parser) parseMeta(node *yml.Node) (graph.Meta, error) {
	meta := p.meta()
	meta.Key = p.optionalString(node, "key")
	if value := node.Lookup("provenance"); value != nil {
		provenance, err := value.Strings()
		if err != nil {
			return meta, err
		}
		meta.Provenance = append(meta.Provenance, provenance...)
	}
	if len(meta.Provenance) == 0 {
		meta.Provenance = nil
	}
	if value := node.Lookup("validate"); value != nil {
		if value.Kind != yaml.ScalarNode {
			return meta, fmt.Errorf("line %d: validate should be a boolean or a command", value.Line)
		}
		if flag, ok := value.Interface().(bool); ok {
			if flag {
				meta.Validate = &graph.Validate{Always: true}
			}
		} else if command := strings.TrimSpace(value.Value); command != "" {
			meta.Validate = &graph.Validate{Command: command}
		}
	}
	return meta, nil
}

func (p *parser) optionalString(node *yml.Node, key string) string {
	if value := node.Lookup(key); value != nil && value.Kind == yaml.ScalarNode {
		return value.Value
	}
	return ""
}

func (p *parser) optionalBool(node *yml.Node, key string) (bool, error) {
	value := node.Lookup(key)
	if value == nil {
		return false, nil
	}
	return value.Bool()
}

// nodeKey returns the node kind key present in a mapping.
func nodeKey(node *yml.Node) string {
	for _, key := range nodeKeys {
		if node.Has(key) {
			return key
		}
	}
	return ""
}

func withExt(URL string) string {
	if filepath.Ext(URL) == "" {
		return URL + ".yaml"
	}
	return URL
}

func nameFromURL(URL string) string {
	if URL == "" {
		return "guidebook"
	}
	base := filepath.Base(URL)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
