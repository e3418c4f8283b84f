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

// Package planner implements the planning pipeline: dependency
// analysis over a chart-spec's datasets, the server/client split that
// extracts pushable work into a server-spec, the
// datetime-stringification bridge, and the comm-plan that names the
// variables crossing the server/client boundary.
package planner

import (
	"github.com/dolthub/vegafusion-go/chartspec"
	"github.com/dolthub/vegafusion-go/scope"
	"github.com/dolthub/vegafusion-go/vferrors"
)

// DataSupported classifies how much of a dataset's transform pipeline can
// run on the server.
type DataSupported int

const (
	Unsupported DataSupported = iota
	PartiallySupported
	Supported
)

func (s DataSupported) String() string {
	switch s {
	case Supported:
		return "Supported"
	case PartiallySupported:
		return "PartiallySupported"
	default:
		return "Unsupported"
	}
}

// dataNode is one dataset's entry in the dependency graph: its spec, the
// TaskScope it is bound in, and the Planner's running classification of
// it.
type dataNode struct {
	Scoped      scope.ScopedVariable
	Spec        *chartspec.DataSpec
	Scope       *scope.TaskScope
	Status      DataSupported
	PrefixCount int // length of the maximal supported() prefix of Spec.Transform
}

// Graph is the dependency graph over a chart-spec's scoped dataset
// variables: the TaskScope tree mirroring its mark-group nesting, plus
// one dataNode per dataset keyed by its ScopedVariable.
type Graph struct {
	Root    *scope.TaskScope
	byKey   map[string]*dataNode
	ordered []*dataNode
	// declaredSignal marks a ScopedVariable.Key() as a SignalSpec the
	// chart-spec itself declares (reactive/UI-bound), as opposed to a
	// signal merely emitted by a transform (Bin/Extent's OutputSignals).
	// BuildCommPlan uses this to tell apart a client_to_server signal
	// (declared, authoritative on the client) from a server_to_client one
	// (emitted by a transform that ended up on the server).
	declaredSignal map[string]bool
}

// BuildGraph walks spec (mirroring scope.TaskScope construction to
// chartspec's own nested-group tree) and returns the dependency graph
// ready for Analyze.
func BuildGraph(spec *chartspec.ChartSpec) (*Graph, error) {
	g := &Graph{Root: scope.NewRoot(), byKey: map[string]*dataNode{}, declaredSignal: map[string]bool{}}
	if err := g.index(spec.Data, spec.Scales, spec.Signals, spec.Marks, g.Root); err != nil {
		return nil, err
	}
	return g, nil
}

// index populates one TaskScope level's bindings and dataNode entries,
// then recurses into nested group marks exactly the way chartspec.Walk
// computes its scope path, so a ScopedVariable built here and one built by
// a caller walking the same spec with chartspec.Walk agree.
func (g *Graph) index(data []*chartspec.DataSpec, scales []*chartspec.ScaleSpec, signals []*chartspec.SignalSpec, marks []*chartspec.MarkSpec, s *scope.TaskScope) error {
	for _, d := range data {
		if err := s.AddVariable(scope.Variable{Namespace: scope.Data, Name: d.Name}); err != nil {
			return err
		}
		sv := scope.ScopedVariable{Variable: scope.Variable{Namespace: scope.Data, Name: d.Name}, ScopePath: s.Path}
		g.byKey[sv.Key()] = &dataNode{Scoped: sv, Spec: d, Scope: s}
		g.ordered = append(g.ordered, g.byKey[sv.Key()])
		// A transform's output signals are bound at the dataset's
		// own scope the moment the dataset is declared: resolving them
		// doesn't require the transform to have run yet, since the
		// Planner only needs to know *that* a name is a signal produced
		// by this dataset, not its value.
		for _, t := range d.Transform {
			for _, sig := range t.OutputSignals() {
				_ = s.AddVariable(scope.Variable{Namespace: scope.Signal, Name: sig})
				s.AddDataSignal(d.Name, sig)
			}
		}
	}
	for _, sc := range scales {
		_ = s.AddVariable(scope.Variable{Namespace: scope.Scale, Name: sc.Name})
	}
	for _, sig := range signals {
		_ = s.AddVariable(scope.Variable{Namespace: scope.Signal, Name: sig.Name})
		sv := scope.ScopedVariable{Variable: scope.Variable{Namespace: scope.Signal, Name: sig.Name}, ScopePath: s.Path}
		g.declaredSignal[sv.Key()] = true
	}
	for _, m := range marks {
		if !m.IsGroup() {
			continue
		}
		child := s.AddChildGroup()
		if err := g.index(m.Data, m.Scales, m.Signals, m.Marks, child); err != nil {
			return err
		}
	}
	return nil
}

// IsDeclaredSignal reports whether sv names a signal the chart-spec
// itself declares (a SignalSpec), as opposed to one only emitted by a
// transform.
func (g *Graph) IsDeclaredSignal(sv scope.ScopedVariable) bool {
	return g.declaredSignal[sv.Key()]
}

// nodeAt looks up the dataNode for name resolved from scope s, following
// the same nearest-binding rule as scope.ResolveScope.
func (g *Graph) nodeAt(name string, s *scope.TaskScope) (*dataNode, bool) {
	res, err := scope.ResolveScope(scope.Variable{Namespace: scope.Data, Name: name}, s)
	if err != nil {
		return nil, false
	}
	sv := scope.ScopedVariable{Variable: res.Variable, ScopePath: res.Scope.Path}
	n, ok := g.byKey[sv.Key()]
	return n, ok
}

// Analyze runs the fixed-point supportability pass: a dataset's
// status depends on its source (or sibling datasets further up a Source
// chain), so the pass repeats until no dataNode's status changes.
func (g *Graph) Analyze() {
	for {
		changed := false
		for _, n := range g.ordered {
			status, prefix := g.classify(n)
			if status != n.Status || prefix != n.PrefixCount {
				changed = true
			}
			n.Status, n.PrefixCount = status, prefix
		}
		if !changed {
			return
		}
	}
}

func (g *Graph) classify(n *dataNode) (DataSupported, int) {
	baseAvailable := n.Spec.IsLeafSource()
	if !baseAvailable && n.Spec.Source != "" {
		if src, ok := g.nodeAt(n.Spec.Source, n.Scope); ok {
			baseAvailable = src.Status != Unsupported
		}
	}
	if !baseAvailable {
		return Unsupported, 0
	}
	prefix := 0
	for _, t := range n.Spec.Transform {
		if !t.Supported() {
			break
		}
		prefix++
	}
	switch {
	case prefix == len(n.Spec.Transform):
		return Supported, prefix
	case prefix > 0:
		return PartiallySupported, prefix
	default:
		return Unsupported, 0
	}
}

// VariableStatus pairs a dataset's ScopedVariable with its classification.
// ScopedVariable itself can't be a map key (its ScopePath is a slice), so
// GetSupportedDataVariables indexes by ScopedVariable.Key() instead and
// hands back the full ScopedVariable alongside the status.
type VariableStatus struct {
	Scoped scope.ScopedVariable
	Status DataSupported
}

// GetSupportedDataVariables runs the full dependency-graph build and
// fixed-point analysis over spec and returns each dataset's scoped
// classification.
func GetSupportedDataVariables(spec *chartspec.ChartSpec) (map[string]VariableStatus, *Graph, error) {
	g, err := BuildGraph(spec)
	if err != nil {
		return nil, nil, vferrors.Wrap(err, "planner: building dependency graph")
	}
	g.Analyze()
	out := make(map[string]VariableStatus, len(g.ordered))
	for key, n := range g.byKey {
		out[key] = VariableStatus{Scoped: n.Scoped, Status: n.Status}
	}
	return out, g, nil
}
