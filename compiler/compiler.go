// Package compiler turns author-submitted component source into the
// executable artifact served to the renderer. Component sources are
// html/template documents; compilation parses the source, derives the input
// schema from the referenced fields, and re-renders the parse tree into its
// canonical form. The same source always compiles to byte-identical output.
package compiler

import (
	"encoding/json"
	"html/template"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"text/template/parse"
	"time"
)

const maxSourceBytes = 64 * 1024

// Artifact is the result of a successful compilation.
type Artifact struct {
	// Code is the canonical rendering of the parse tree.
	Code string
	// Schema is a JSON description of the input fields the component reads.
	Schema string
}

// Error reports a structural or syntactic problem in the submitted source.
// Line and Column are zero when the position is unknown.
type Error struct {
	Message string
	Line    int
	Column  int
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return "compile error at line " + strconv.Itoa(e.Line) + ": " + e.Message
	}
	return "compile error: " + e.Message
}

type Compiler struct {
	timeout time.Duration
}

// New returns a compiler whose runs are bounded by timeout. Source is
// author-supplied, so a run that exceeds the bound is reported as a compile
// error rather than left to block the request.
func New(timeout time.Duration) *Compiler {
	return &Compiler{timeout: timeout}
}

func (c *Compiler) Compile(source string) (*Artifact, error) {
	if strings.TrimSpace(source) == "" {
		return nil, &Error{Message: "source is empty"}
	}
	if len(source) > maxSourceBytes {
		return nil, &Error{Message: "source exceeds maximum size"}
	}

	type outcome struct {
		artifact *Artifact
		err      error
	}
	done := make(chan outcome, 1)
	go func() {
		artifact, err := compile(source)
		done <- outcome{artifact, err}
	}()

	select {
	case out := <-done:
		return out.artifact, out.err
	case <-time.After(c.timeout):
		return nil, &Error{Message: "compilation timed out"}
	}
}

// parse errors look like "template: component:LINE: message".
var errPosition = regexp.MustCompile(`^template: component:(\d+): (.*)$`)

func compile(source string) (*Artifact, error) {
	tmpl, err := template.New("component").Parse(source)
	if err != nil {
		return nil, asCompileError(err)
	}

	fields := map[string]struct{}{}
	collectFields(tmpl.Tree.Root, fields)

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	schema, err := json.Marshal(struct {
		Fields []string `json:"fields"`
	}{Fields: names})
	if err != nil {
		return nil, &Error{Message: err.Error()}
	}

	return &Artifact{
		Code:   tmpl.Tree.Root.String(),
		Schema: string(schema),
	}, nil
}

func asCompileError(err error) *Error {
	msg := err.Error()
	if m := errPosition.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return &Error{Message: m[2], Line: line}
	}
	return &Error{Message: msg}
}

// collectFields records the top-level field name of every {{.Field}} (and
// nested {{.Field.Sub}}) reference in the tree.
func collectFields(node parse.Node, fields map[string]struct{}) {
	switch n := node.(type) {
	case *parse.ListNode:
		if n == nil {
			return
		}
		for _, item := range n.Nodes {
			collectFields(item, fields)
		}
	case *parse.ActionNode:
		collectPipe(n.Pipe, fields)
	case *parse.IfNode:
		collectBranch(&n.BranchNode, fields)
	case *parse.RangeNode:
		collectBranch(&n.BranchNode, fields)
	case *parse.WithNode:
		collectBranch(&n.BranchNode, fields)
	case *parse.TemplateNode:
		collectPipe(n.Pipe, fields)
	}
}

func collectBranch(branch *parse.BranchNode, fields map[string]struct{}) {
	collectPipe(branch.Pipe, fields)
	collectFields(branch.List, fields)
	collectFields(branch.ElseList, fields)
}

func collectPipe(pipe *parse.PipeNode, fields map[string]struct{}) {
	if pipe == nil {
		return
	}
	for _, cmd := range pipe.Cmds {
		for _, arg := range cmd.Args {
			switch a := arg.(type) {
			case *parse.FieldNode:
				if len(a.Ident) > 0 {
					fields[a.Ident[0]] = struct{}{}
				}
			case *parse.ChainNode:
				if field, ok := a.Node.(*parse.FieldNode); ok && len(field.Ident) > 0 {
					fields[field.Ident[0]] = struct{}{}
				}
			case *parse.PipeNode:
				collectPipe(a, fields)
			}
		}
	}
}
