package guidebook

import (
	"context"
	"embed"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	_ "github.com/viant/afs/embed"
	"github.com/viant/guidebook/model/graph"
	"github.com/viant/guidebook/service/meta"
)

//go:embed testdata/*
var testFS embed.FS

func newService() *Service {
	return New(WithMetaService(meta.New(afs.New(), "embed:///testdata", &testFS)))
}

func TestService_Load(t *testing.T) {
	ctx := context.Background()
	book, err := newService().Load(ctx, "install")
	require.NoError(t, err)

	assert.Equal(t, "install", book.Name)
	assert.Equal(t, "Install the CLI", book.Title)
	assert.Equal(t, "Installs the CLI and its runtime", book.Description)
	assert.Equal(t, []string{"embed://localhost/testdata/deps/node.yaml"}, book.Imports)

	imported := []string{"deps/node"}
	expect := &graph.TitledSteps{Steps: []*graph.Step{
		{Title: "Prerequisites", Graph: &graph.SubTask{
			Meta:  graph.Meta{Provenance: imported},
			Title: "Node.js",
			Graph: &graph.Sequence{Meta: graph.Meta{Provenance: imported}, Children: []graph.Node{
				&graph.Leaf{Meta: graph.Meta{Provenance: imported, Validate: &graph.Validate{Command: "which node"}}, Body: "brew install node"},
				&graph.Leaf{Meta: graph.Meta{Provenance: imported}, Body: "node --version", Memoize: true},
				&graph.Parallel{Meta: graph.Meta{Provenance: imported}, Children: []graph.Node{
					&graph.Leaf{Meta: graph.Meta{Provenance: imported, Validate: &graph.Validate{Always: true}}, Body: "npm config set fund false"},
				}},
			}},
		}},
		{Title: "Install", Graph: &graph.Choice{
			GroupContext: "installer",
			Title:        "How do you want to install?",
			Options: []*graph.Option{
				{Title: "brew", Graph: &graph.Leaf{Meta: graph.Meta{Key: "cli-brew", Validate: &graph.Validate{Command: "which cli"}}, Title: "brew", Body: "brew install cli"}},
				{Title: "curl", Graph: &graph.Sequence{Children: []graph.Node{
					&graph.Leaf{Body: "curl -fsSL https://example.com/install.sh -o /tmp/install.sh"},
					&graph.Leaf{Body: "sh /tmp/install.sh", Optional: true},
				}}},
			},
		}},
		{Title: "Configure", Graph: &graph.Choice{
			GroupContext: "account",
			Title:        "Account",
			Form: &graph.Form{Fields: []*graph.Field{
				{Name: "user", Label: "User name"},
				{Name: "region", Options: []string{"us", "eu"}, Default: "us"},
			}},
		}},
	}}
	assert.EqualValues(t, expect, book.Graph)
	assert.Equal(t, []string{"installer", "account"}, book.Questions())
}

func TestService_LoadErrors(t *testing.T) {
	testCases := []struct {
		description string
		URL         string
		expect      string
	}{
		{description: "import cycle", URL: "cycle/a.yaml", expect: "import cycle"},
		{description: "choice without options", URL: "invalid", expect: "has no options"},
		{description: "node without kind", URL: "malformed", expect: "expected one of"},
		{description: "missing document", URL: "missing", expect: "failed to load"},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			_, err := newService().Load(context.Background(), tc.URL)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.expect)
		})
	}
}

func TestService_DecodeYAML(t *testing.T) {
	book, err := newService().DecodeYAML(context.Background(), []byte(`
title: Quick
sequence:
  - run: echo hi
    key: hi
    provenance: [inline]
  - echo bye
`))
	require.NoError(t, err)
	assert.Equal(t, "Quick", book.Title)
	assert.EqualValues(t, &graph.Sequence{Children: []graph.Node{
		&graph.Leaf{Meta: graph.Meta{Key: "hi", Provenance: []string{"inline"}}, Body: "echo hi"},
		&graph.Leaf{Body: "echo bye"},
	}}, book.Graph)
}
