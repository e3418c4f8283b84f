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

// Package scope builds and resolves the TaskScope tree: the nested-group
// structure that mirrors a chart-spec's mark-group nesting and binds
// Data/Signal/Scale names to the position in that tree where they are
// declared. Each TaskScope node parent-chains to its enclosing mark
// group, so resolution walks outward the way a correlated subquery
// resolves against its outer query.
package scope

import (
	"strconv"
	"strings"

	"github.com/dolthub/vegafusion-go/vferrors"
)

// Namespace is one of the three kinds of name a Variable can identify.
type Namespace int

const (
	Data Namespace = iota
	Signal
	Scale
)

func (n Namespace) String() string {
	switch n {
	case Data:
		return "data"
	case Signal:
		return "signal"
	case Scale:
		return "scale"
	default:
		return "unknown"
	}
}

// Variable names a dataset, signal, or scale, independent of where in the
// scope tree it is bound.
type Variable struct {
	Namespace Namespace
	Name      string
}

// ScopedVariable pairs a Variable with the scope path at which it is
// bound. Two variables with the same name at different scope paths are
// distinct.
type ScopedVariable struct {
	Variable  Variable
	ScopePath []int
}

// Key returns a stable string identity for use as a map key, since
// []int is not itself comparable.
func (sv ScopedVariable) Key() string {
	parts := make([]string, len(sv.ScopePath))
	for i, p := range sv.ScopePath {
		parts[i] = strconv.Itoa(p)
	}
	return sv.Variable.Namespace.String() + ":" + sv.Variable.Name + "@" + strings.Join(parts, ".")
}

// TaskScope is one node in the tree mirroring the chart-spec's nested mark
// groups. Each node holds the names bound directly at that node, plus the
// per-dataset output-signal names transforms in that dataset emit.
type TaskScope struct {
	Path         []int
	Parent       *TaskScope
	Children     []*TaskScope
	Data         map[string]bool
	Signals      map[string]bool
	Scales       map[string]bool
	OutputSignal map[string][]string // dataset name -> signal names it emits
}

// NewRoot builds the root of a TaskScope tree.
func NewRoot() *TaskScope {
	return newNode(nil, nil)
}

func newNode(path []int, parent *TaskScope) *TaskScope {
	return &TaskScope{
		Path:         path,
		Parent:       parent,
		Data:         map[string]bool{},
		Signals:      map[string]bool{},
		Scales:       map[string]bool{},
		OutputSignal: map[string][]string{},
	}
}

// AddChildGroup appends a new nested mark-group scope under s and returns
// it, mirroring the chart-spec's nested-group tree one level deeper.
func (s *TaskScope) AddChildGroup() *TaskScope {
	childPath := append(append([]int{}, s.Path...), len(s.Children))
	child := newNode(childPath, s)
	s.Children = append(s.Children, child)
	return child
}

// GetNestedGroupMut walks path from the root and returns the TaskScope at
// that path, mutably. path is relative to s (normally the root).
func (s *TaskScope) GetNestedGroupMut(path []int) (*TaskScope, error) {
	cur := s
	for _, idx := range path {
		if idx < 0 || idx >= len(cur.Children) {
			return nil, vferrors.Internal("scope: path index %d out of range at depth %d", idx, len(cur.Path))
		}
		cur = cur.Children[idx]
	}
	return cur, nil
}

func (s *TaskScope) setFor(ns Namespace) map[string]bool {
	switch ns {
	case Data:
		return s.Data
	case Signal:
		return s.Signals
	case Scale:
		return s.Scales
	default:
		return nil
	}
}

// AddVariable binds v at scope s. Adding a Data variable already bound
// at s is an error; signal and scale names may rebind freely.
func (s *TaskScope) AddVariable(v Variable) error {
	set := s.setFor(v.Namespace)
	if set == nil {
		return vferrors.Internal("scope: unknown namespace %v", v.Namespace)
	}
	if v.Namespace == Data && set[v.Name] {
		return vferrors.Specification("scope: data variable %q already bound at this scope", v.Name)
	}
	set[v.Name] = true
	return nil
}

// AddDataSignal records that dataset name emits an additional output
// signal, e.g. an Extent transform's computed min/max.
func (s *TaskScope) AddDataSignal(dataset, signal string) {
	s.OutputSignal[dataset] = append(s.OutputSignal[dataset], signal)
}

// RemoveDataSignal removes a previously-added output signal for dataset.
// Removing a signal that does not exist is an error.
func (s *TaskScope) RemoveDataSignal(dataset, signal string) error {
	sigs := s.OutputSignal[dataset]
	for i, name := range sigs {
		if name == signal {
			s.OutputSignal[dataset] = append(sigs[:i], sigs[i+1:]...)
			return nil
		}
	}
	return vferrors.Internal("scope: data signal %q not present on dataset %q", signal, dataset)
}

// Resolution is the result of resolving a Variable from a starting scope:
// the ScopedVariable it actually binds to.
type Resolution struct {
	Variable Variable
	Scope    *TaskScope
}

// ResolveScope walks outward from s (s itself, then each ancestor)
// looking for v, returning the nearest binding.
func ResolveScope(v Variable, s *TaskScope) (Resolution, error) {
	for cur := s; cur != nil; cur = cur.Parent {
		if cur.setFor(v.Namespace)[v.Name] {
			return Resolution{Variable: v, Scope: cur}, nil
		}
	}
	return Resolution{}, vferrors.Specification("scope: unresolved reference to %s %q", v.Namespace, v.Name)
}
