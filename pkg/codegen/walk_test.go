package codegen

import (
	"testing"

	"github.com/reshape/code-gen/pkg/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func text(s string) *ast.Text               { return &ast.Text{Content: s} }
func code(s string) *ast.Code               { return &ast.Code{Content: s} }
func attr(k string, v ...ast.Node) ast.Attr { return ast.Attr{Key: k, Value: v} }

func TestWalk(t *testing.T) {
	tests := []struct {
		name  string
		nodes []ast.Node
		opts  Options
		want  string
	}{
		{
			name:  "text",
			nodes: []ast.Node{text(`it's "quoted"`)},
			want:  `it's \"quoted\"`,
		},
		{
			name: "nested tags",
			nodes: []ast.Node{&ast.Tag{Name: "l1", Content: []ast.Node{
				&ast.Tag{Name: "l2", Content: []ast.Node{
					&ast.Tag{Name: "l3", Content: []ast.Node{text("l3 text")}},
					text("l2 text"),
				}},
			}}},
			want: "<l1><l2><l3>l3 text</l3>l2 text</l2></l1>",
		},
		{
			name: "attributes and code",
			nodes: []ast.Node{&ast.Tag{
				Name:  "p",
				Attrs: []ast.Attr{attr("foo", text("bar"))},
				Content: []ast.Node{
					text("hello "),
					code("planet"),
					text("!"),
				},
			}},
			want: `<p foo=\"bar\">hello " + str(locals.planet) + "!</p>`,
		},
		{
			name:  "comment",
			nodes: []ast.Node{&ast.Comment{Content: " test comment "}},
			want:  "<!-- test comment -->",
		},
		{
			name:  "conditional comment",
			nodes: []ast.Node{&ast.Comment{Content: "[if IE]> test ie content <![endif]"}},
			want:  "<!--[if IE]> test ie content <![endif]-->",
		},
		{
			name:  "comment with quotes",
			nodes: []ast.Node{&ast.Comment{Content: `say "hi"`}},
			want:  `<!-- say \"hi\" -->`,
		},
		{
			name:  "void element default",
			nodes: []ast.Node{&ast.Tag{Name: "br"}},
			want:  "<br>",
		},
		{
			name:  "void element slash",
			nodes: []ast.Node{&ast.Tag{Name: "br"}},
			opts:  Options{SelfClosing: SelfClosingSlash},
			want:  "<br />",
		},
		{
			name:  "void element tag",
			nodes: []ast.Node{&ast.Tag{Name: "br"}},
			opts:  Options{SelfClosing: SelfClosingTag},
			want:  "<br></br>",
		},
		{
			name:  "void element ignores content",
			nodes: []ast.Node{&ast.Tag{Name: "img", Content: []ast.Node{text("ignored")}}},
			want:  "<img>",
		},
		{
			name:  "non-void empty element",
			nodes: []ast.Node{&ast.Tag{Name: "div"}},
			opts:  Options{SelfClosing: SelfClosingSlash},
			want:  "<div></div>",
		},
		{
			name:  "empty",
			nodes: nil,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Walk(tt.nodes, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWalk_UnknownNode(t *testing.T) {
	nodes := []ast.Node{
		text("before"),
		&ast.Tag{Name: "div", Content: []ast.Node{
			&ast.Unknown{Type: "wow", Fields: map[string]any{"content": "x"}},
		}},
	}

	_, err := Walk(nodes, Options{})
	require.Error(t, err)

	var nodeErr *NodeError
	require.ErrorAs(t, err, &nodeErr)
	assert.Equal(t, ast.Kind("wow"), nodeErr.Kind)
	assert.Contains(t, nodeErr.Dump, `"wow"`)
	assert.Contains(t, err.Error(), "Unrecognized node type: wow\nNode: ")
}

func TestWalk_UnknownNodeLocation(t *testing.T) {
	n := &ast.Unknown{Type: "wow"}
	n.SetLoc(ast.Location{Line: 3, Column: 7})

	_, err := Walk([]ast.Node{n}, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3:7: Unrecognized node type: wow")
}

func TestAttributes(t *testing.T) {
	tests := []struct {
		name  string
		attrs []ast.Attr
		want  string
	}{
		{name: "none", attrs: nil, want: ""},
		{name: "single", attrs: []ast.Attr{attr("id", text("test"))}, want: ` id=\"test\"`},
		{
			name:  "order preserved",
			attrs: []ast.Attr{attr("id", text("test")), attr("foo", text("bar"))},
			want:  ` id=\"test\" foo=\"bar\"`,
		},
		{
			name:  "boolean",
			attrs: []ast.Attr{attr("type", text("checkbox")), attr("checked", text(""))},
			want:  ` type=\"checkbox\" checked`,
		},
		{
			name:  "no value",
			attrs: []ast.Attr{attr("disabled")},
			want:  ` disabled`,
		},
		{
			name:  "code and text",
			attrs: []ast.Attr{attr("class", text("class-"), code("foo"))},
			want:  ` class=\"class-" + str(locals.foo) + "\"`,
		},
		{
			name:  "tag value",
			attrs: []ast.Attr{attr("code", &ast.Tag{Name: "p"})},
			want:  ` code=\"<p></p>\"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Attributes(tt.attrs, Options{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWalk_InvalidOptions(t *testing.T) {
	nodes := []ast.Node{&ast.Tag{Name: "br", Attrs: []ast.Attr{attr("id", text("x"))}}}
	opts := Options{SelfClosing: "snargle"}

	_, err := Walk(nodes, opts)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "selfClosing", cfgErr.Option)

	_, err = Attributes(nodes[0].(*ast.Tag).Attrs, opts)
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "selfClosing", cfgErr.Option)
}

func TestIsSelfClosing(t *testing.T) {
	for _, name := range SelfClosingTags() {
		assert.True(t, IsSelfClosing(name), name)
	}
	assert.Len(t, SelfClosingTags(), 17)
	assert.False(t, IsSelfClosing("div"))
	assert.False(t, IsSelfClosing("BR"))
}
