package loader

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/flamekit/flamekit/internal/compiler/ast"
)

// snippet is a scalar holding TypeScript-like source, remembered with its
// position in the YAML document so parsed nodes point back into it
type snippet struct {
	Text string
	Loc  ast.SourceLocation
}

// UnmarshalYAML implements yaml.Unmarshaler
func (s *snippet) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a string, found %s", node.Line, kindName(node.Kind))
	}
	s.Text = node.Value
	s.Loc = ast.SourceLocation{Line: node.Line, Column: node.Column}
	if node.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) != 0 {
		s.Loc.Column++
	}
	return nil
}

func kindName(kind yaml.Kind) string {
	switch kind {
	case yaml.MappingNode:
		return "a mapping"
	case yaml.SequenceNode:
		return "a sequence"
	case yaml.AliasNode:
		return "an alias"
	default:
		return "a document"
	}
}

type programDoc struct {
	Files []fileDoc `yaml:"files"`
}

type fileDoc struct {
	Path        string          `yaml:"path"`
	External    bool            `yaml:"external"`
	Interfaces  []interfaceDoc  `yaml:"interfaces"`
	Types       []aliasDoc      `yaml:"types"`
	Annotations []annotationDoc `yaml:"annotations"`
	Classes     []classDoc      `yaml:"classes"`
}

type interfaceDoc struct {
	Name       snippet   `yaml:"name"`
	TypeParams []snippet `yaml:"type_params"`
	Extends    []snippet `yaml:"extends"`
	Fields     []snippet `yaml:"fields"`
	Methods    []snippet `yaml:"methods"`
}

type aliasDoc struct {
	Name       snippet   `yaml:"name"`
	TypeParams []snippet `yaml:"type_params"`
	Type       snippet   `yaml:"type"`
}

type annotationDoc struct {
	Name       snippet `yaml:"name"`
	Recognized bool    `yaml:"recognized"`
	Component  bool    `yaml:"component"`
	WithNodes  bool    `yaml:"with_nodes"`
}

type classDoc struct {
	Name        snippet            `yaml:"name"`
	TypeParams  []snippet          `yaml:"type_params"`
	Extends     *snippet           `yaml:"extends"`
	Implements  []snippet          `yaml:"implements"`
	Annotations []annotationUseDoc `yaml:"annotations"`
	Constructor *constructorDoc    `yaml:"constructor"`
	Members     []memberDoc        `yaml:"members"`
}

type annotationUseDoc struct {
	Name snippet   `yaml:"name"`
	Args []snippet `yaml:"args"`
}

type constructorDoc struct {
	Params []snippet `yaml:"params"`
	Body   []snippet `yaml:"body"`
}

type memberDoc struct {
	Field  *snippet  `yaml:"field"`
	Method *snippet  `yaml:"method"`
	Body   []snippet `yaml:"body"`
}
