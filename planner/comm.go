// Copyright 2024 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package planner

import (
	"github.com/dolthub/vegafusion-go/chartspec"
	"github.com/dolthub/vegafusion-go/compiler"
	"github.com/dolthub/vegafusion-go/compiler/ast"
	"github.com/dolthub/vegafusion-go/scope"
)

// CommPlan identifies the cut between tiers: every variable
// in ServerToClient is produced on the server and consumed by the client;
// every variable in ClientToServer is an input the server-side transforms
// depend on whose authoritative producer is the client.
// Both maps are keyed by ScopedVariable.Key(): ScopedVariable itself can't
// be a map key since its ScopePath is a slice.
type CommPlan struct {
	ServerToClient map[string]bool
	ClientToServer map[string]bool
}

func newCommPlan() *CommPlan {
	return &CommPlan{ServerToClient: map[string]bool{}, ClientToServer: map[string]bool{}}
}

// BuildCommPlan computes the comm plan from an already-split Extraction:
// data edges come straight from ex.ServerNameOf (every dataset the
// extractor moved, fully or partially, to the server); signal edges come
// from scanning the expressions left in each tier for free identifiers
// and classifying each one against the server scope's emitted-signal
// bookkeeping and the graph's declared-signal bookkeeping.
func BuildCommPlan(ex *Extraction, g *Graph) (*CommPlan, error) {
	cp := newCommPlan()

	for key, serverName := range ex.ServerNameOf {
		node, ok := g.byKey[key]
		if !ok {
			continue
		}
		sv := scope.ScopedVariable{
			Variable:  scope.Variable{Namespace: scope.Data, Name: serverName},
			ScopePath: node.Scoped.ScopePath,
		}
		cp.ServerToClient[sv.Key()] = true
	}

	if err := scanServerToClientSignals(ex.Client, nil, ex.ServerScope, cp); err != nil {
		return nil, err
	}
	if err := scanClientToServerSignals(ex.Server, nil, g.Root, ex.ServerScope, g, cp); err != nil {
		return nil, err
	}
	return cp, nil
}

// scanServerToClientSignals walks the client-spec's remaining data
// transforms and signal updates, classifying every free identifier that
// resolves to a signal the server scope recorded as transform-emitted.
func scanServerToClientSignals(spec *chartspec.ChartSpec, path []int, serverScope *scope.TaskScope, cp *CommPlan) error {
	for _, d := range spec.Data {
		for _, t := range d.Transform {
			for _, name := range identifiersIn(transformExpr(t)) {
				if res, ok := resolveEmittedSignal(name, serverScope); ok {
					sv := scope.ScopedVariable{Variable: res.Variable, ScopePath: res.Scope.Path}
					cp.ServerToClient[sv.Key()] = true
				}
			}
		}
	}
	for _, s := range spec.Signals {
		for _, name := range identifiersIn(s.Update) {
			if res, ok := resolveEmittedSignal(name, serverScope); ok {
				sv := scope.ScopedVariable{Variable: res.Variable, ScopePath: res.Scope.Path}
				cp.ServerToClient[sv.Key()] = true
			}
		}
	}
	for i, m := range spec.Marks {
		if !m.IsGroup() {
			continue
		}
		child, ok := childAt(serverScope, i, spec.Marks)
		if !ok {
			continue
		}
		if err := scanServerToClientSignals(&chartspec.ChartSpec{Data: m.Data, Signals: m.Signals, Marks: m.Marks}, append(path, i), child, cp); err != nil {
			return err
		}
	}
	return nil
}

// scanClientToServerSignals walks the server-spec's transforms looking
// for free identifiers that name a signal the chart-spec declares
// (reactive, client-authoritative per the graph's declaredSignal
// bookkeeping) rather than one emitted server-side.
func scanClientToServerSignals(spec *chartspec.ChartSpec, path []int, clientScope, serverScope *scope.TaskScope, g *Graph, cp *CommPlan) error {
	for _, d := range spec.Data {
		for _, t := range d.Transform {
			for _, name := range identifiersIn(transformExpr(t)) {
				if _, emitted := resolveEmittedSignal(name, serverScope); emitted {
					continue
				}
				res, err := scope.ResolveScope(scope.Variable{Namespace: scope.Signal, Name: name}, clientScope)
				if err != nil {
					continue
				}
				sv := scope.ScopedVariable{Variable: res.Variable, ScopePath: res.Scope.Path}
				if g.IsDeclaredSignal(sv) {
					cp.ClientToServer[sv.Key()] = true
				}
			}
		}
	}
	for i, m := range spec.Marks {
		if !m.IsGroup() {
			continue
		}
		childServer, ok := childAt(serverScope, i, spec.Marks)
		if !ok {
			continue
		}
		childClient, ok := childAt(clientScope, i, spec.Marks)
		if !ok {
			continue
		}
		if err := scanClientToServerSignals(&chartspec.ChartSpec{Data: m.Data, Marks: m.Marks}, append(path, i), childClient, childServer, g, cp); err != nil {
			return err
		}
	}
	return nil
}

// childAt returns the scope child mirroring the i-th group mark in marks,
// the same index arithmetic extract.go's indexOfChildGroup uses.
func childAt(s *scope.TaskScope, i int, marks []*chartspec.MarkSpec) (*scope.TaskScope, bool) {
	count := 0
	for j := 0; j < i; j++ {
		if marks[j].IsGroup() {
			count++
		}
	}
	if count >= len(s.Children) {
		return nil, false
	}
	return s.Children[count], true
}

// resolveEmittedSignal walks s and its ancestors looking for name among
// each scope's OutputSignal bookkeeping (signals a dataset at that scope
// emits), returning the nearest hit.
func resolveEmittedSignal(name string, s *scope.TaskScope) (scope.Resolution, bool) {
	for cur := s; cur != nil; cur = cur.Parent {
		for _, sigs := range cur.OutputSignal {
			for _, sig := range sigs {
				if sig == name {
					return scope.Resolution{Variable: scope.Variable{Namespace: scope.Signal, Name: name}, Scope: cur}, true
				}
			}
		}
	}
	return scope.Resolution{}, false
}

// transformExpr extracts the expression string from a transform, if it
// carries one (only Filter and Formula reference free signal identifiers
// directly; every other operator's parameters are field names, not
// expressions).
func transformExpr(t chartspec.TransformSpec) string {
	switch v := t.(type) {
	case chartspec.Filter:
		return v.Expr
	case chartspec.Formula:
		return v.Expr
	default:
		return ""
	}
}

// identifiersIn parses expr and collects every free Identifier it
// references, excluding the "datum" sentinel. A parse failure yields no
// identifiers rather than an error: the comm plan is a best-effort
// analysis over expressions the Transform Engine will itself validate (or
// reject) when it actually compiles them.
func identifiersIn(expr string) []string {
	if expr == "" {
		return nil
	}
	node, err := compiler.Parse(expr)
	if err != nil {
		return nil
	}
	var names []string
	collectIdentifiers(node, &names)
	return names
}

func collectIdentifiers(n ast.Node, out *[]string) {
	switch v := n.(type) {
	case *ast.Identifier:
		if v.Name != "datum" {
			*out = append(*out, v.Name)
		}
	case *ast.Member:
		collectIdentifiers(v.Object, out)
		if v.Computed {
			collectIdentifiers(v.Index, out)
		}
	case *ast.Call:
		for _, a := range v.Args {
			collectIdentifiers(a, out)
		}
	case *ast.Binary:
		collectIdentifiers(v.Left, out)
		collectIdentifiers(v.Right, out)
	case *ast.Unary:
		collectIdentifiers(v.Operand, out)
	case *ast.Conditional:
		collectIdentifiers(v.Test, out)
		collectIdentifiers(v.Consequent, out)
		collectIdentifiers(v.Alternate, out)
	case *ast.ArrayLiteral:
		for _, e := range v.Elements {
			collectIdentifiers(e, out)
		}
	}
}
