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
	"github.com/dolthub/vegafusion-go/scope"
)

// ServerDataPrefix names the synthetic server dataset extracted from a
// PartiallySupported dataset's supported transform prefix.
const ServerDataPrefix = "_server_"

// Extraction is the result of ExtractServerData: the server-spec and the
// rewritten client-spec, plus the TaskScope mirroring the server-spec's
// own dataset/signal bindings (needed by the datetime-stringification
// pass and the comm-plan builder to resolve server-side names).
type Extraction struct {
	Server      *chartspec.ChartSpec
	Client      *chartspec.ChartSpec
	ServerScope *scope.TaskScope
	// ServerNameOf maps the *original* dataset's ScopedVariable key
	// (ScopedVariable isn't itself comparable, so every lookup here goes
	// through Key()) to the name it was extracted under on the server
	// (itself, for a fully Supported dataset; "_server_<name>" for a
	// PartiallySupported one).
	ServerNameOf map[string]string
	// ServerDataSpec/ClientDataSpec index the server-spec/client-spec
	// DataSpec pointers by the original dataset's ScopedVariable key, so a
	// later pass (the datetime-stringification bridge) can append
	// transforms to the right tier without re-walking the tree.
	ServerDataSpec map[string]*chartspec.DataSpec
	ClientDataSpec map[string]*chartspec.DataSpec
}

// ExtractServerData applies the extractor rules to spec, using g's
// supportability classification (already run through Analyze),
// producing the server-spec/client-spec split.
func ExtractServerData(spec *chartspec.ChartSpec, g *Graph) (*Extraction, error) {
	ex := &Extraction{
		Server:         &chartspec.ChartSpec{},
		Client:         &chartspec.ChartSpec{},
		ServerScope:    scope.NewRoot(),
		ServerNameOf:   map[string]string{},
		ServerDataSpec: map[string]*chartspec.DataSpec{},
		ClientDataSpec: map[string]*chartspec.DataSpec{},
	}
	clientData, serverData, err := ex.extractDataLevel(spec.Data, g.Root, ex.ServerScope, g)
	if err != nil {
		return nil, err
	}
	ex.Client.Data = clientData
	ex.Server.Data = serverData
	ex.Client.Scales = spec.Scales
	ex.Client.Signals = spec.Signals

	clientMarks, serverMarks, err := ex.extractMarksLevel(spec.Marks, g.Root, ex.ServerScope, g)
	if err != nil {
		return nil, err
	}
	ex.Client.Marks = clientMarks
	ex.Server.Marks = serverMarks
	return ex, nil
}

// extractDataLevel implements the per-dataset extractor rule for
// one scope level: Supported clones the full dataset to the server and
// stubs the client; PartiallySupported splits at the supported prefix
// boundary; Unsupported leaves the client dataset untouched and adds
// nothing server-side.
func (ex *Extraction) extractDataLevel(data []*chartspec.DataSpec, clientScope, serverScope *scope.TaskScope, g *Graph) (clientData, serverData []*chartspec.DataSpec, err error) {
	for _, d := range data {
		sv := scope.ScopedVariable{Variable: scope.Variable{Namespace: scope.Data, Name: d.Name}, ScopePath: clientScope.Path}
		n := g.byKey[sv.Key()]

		switch n.Status {
		case Supported:
			stub := d.ClientStub()
			serverClone := d.Clone()
			clientData = append(clientData, stub)
			serverData = append(serverData, serverClone)
			ex.ServerNameOf[sv.Key()] = d.Name
			ex.ServerDataSpec[sv.Key()] = serverClone
			ex.ClientDataSpec[sv.Key()] = stub
			_ = serverScope.AddVariable(scope.Variable{Namespace: scope.Data, Name: d.Name})
			for _, t := range d.Transform {
				for _, sig := range t.OutputSignals() {
					serverScope.AddDataSignal(d.Name, sig)
				}
			}

		case PartiallySupported:
			serverName := ServerDataPrefix + d.Name
			serverDS := &chartspec.DataSpec{
				Name:      serverName,
				Source:    d.Source,
				URL:       d.URL,
				Values:    d.Values,
				Format:    d.Format,
				On:        d.On,
				Transform: append([]chartspec.TransformSpec{}, d.Transform[:n.PrefixCount]...),
			}
			serverData = append(serverData, serverDS)
			_ = serverScope.AddVariable(scope.Variable{Namespace: scope.Data, Name: serverName})

			clientDS := &chartspec.DataSpec{
				Name:      d.Name,
				Source:    serverName,
				Transform: append([]chartspec.TransformSpec{}, d.Transform[n.PrefixCount:]...),
			}
			clientData = append(clientData, clientDS)
			ex.ServerNameOf[sv.Key()] = serverName
			ex.ServerDataSpec[sv.Key()] = serverDS
			ex.ClientDataSpec[sv.Key()] = clientDS

			// Migrate the output signals of the transforms that moved
			// into the server prefix: the client scope no longer
			// produces them, the server scope now does.
			for _, t := range serverDS.Transform {
				for _, sig := range t.OutputSignals() {
					_ = clientScope.RemoveDataSignal(d.Name, sig)
					serverScope.AddDataSignal(serverName, sig)
				}
			}

		case Unsupported:
			clientData = append(clientData, d)
			ex.ClientDataSpec[sv.Key()] = d
		}
	}
	return clientData, serverData, nil
}

// extractMarksLevel walks marks, passing non-group marks through to the
// client spec unchanged (marks are presentation, never part of the
// relational plan) and mirroring every group mark's scope into the
// server-spec as an empty group, so the two scope trees align even when
// the group's own data all stays client-side.
func (ex *Extraction) extractMarksLevel(marks []*chartspec.MarkSpec, clientScope, serverScope *scope.TaskScope, g *Graph) (clientMarks, serverMarks []*chartspec.MarkSpec, err error) {
	for i, m := range marks {
		if !m.IsGroup() {
			clientMarks = append(clientMarks, m)
			continue
		}
		childClientScope := clientScope.Children[indexOfChildGroup(clientScope, i, marks)]
		childServerScope := serverScope.AddChildGroup()

		childClientData, childServerData, err := ex.extractDataLevel(m.Data, childClientScope, childServerScope, g)
		if err != nil {
			return nil, nil, err
		}
		childClientMarks, childServerMarks, err := ex.extractMarksLevel(m.Marks, childClientScope, childServerScope, g)
		if err != nil {
			return nil, nil, err
		}

		clientMark := *m
		clientMark.Data = childClientData
		clientMark.Marks = childClientMarks
		clientMarks = append(clientMarks, &clientMark)

		serverMarks = append(serverMarks, &chartspec.MarkSpec{
			Type:  "group",
			Data:  childServerData,
			Marks: childServerMarks,
		})
	}
	return clientMarks, serverMarks, nil
}

// indexOfChildGroup returns the position among clientScope.Children that
// corresponds to the i-th mark in marks, i.e. the count of group marks at
// indices < i (scope.TaskScope.AddChildGroup is called once per group
// mark encountered, in mark order, the same numbering chartspec.Walk
// uses for its visitor paths).
func indexOfChildGroup(clientScope *scope.TaskScope, i int, marks []*chartspec.MarkSpec) int {
	count := 0
	for j := 0; j < i; j++ {
		if marks[j].IsGroup() {
			count++
		}
	}
	return count
}
