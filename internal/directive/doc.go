// Package directive implements the `{...}` directive language embedded in page bodies,
// templates and components.
//
// A Renderer scans mixed literal/directive text, evaluates every directive against an
// operation Table and splices the result back into the output. `{{` produces a literal `{`
// and, inside a directive, `}}` produces a literal `}`.
//
// Directive and header expressions use a deliberately small language: string, number,
// boolean, nil and symbol literals, arrays, maps, named calls (with optional trailing keyword
// arguments), a command form (`title "Home"`) and field access (`page.title`). There are no
// operators, no control flow and no method calls.
package directive
