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
	"fmt"
	"sort"

	"github.com/dolthub/vegafusion-go/chartspec"
	"github.com/dolthub/vegafusion-go/scope"
)

// timeFormatPattern is the datetime bridge's wire format: millisecond
// precision, sortable, and unambiguous across the dialects this system
// targets.
const timeFormatPattern = "%Y-%m-%d %H:%M:%S.%L"

// StringifyLocalDatetimes implements the datetime-stringification
// bridge: for every mark whose encoding channel binds a field through a
// local (non-UTC) time scale, and whose bound dataset is server-to-client,
// it appends a timeFormat formula on the server-side dataset and prepends
// a matching toDate formula on the client-side dataset (and on any other
// server dataset sourcing from the now-stringified one), so the field
// reaches the client as a string and is reparsed into a local-timezone
// date rather than silently reinterpreted in the browser's own timezone.
//
// This pass runs last because it mutates both sides, and it is
// best-effort: a scale or dataset reference it cannot resolve is simply
// skipped rather than failing the whole plan.
func StringifyLocalDatetimes(ex *Extraction, g *Graph) error {
	localTimeScales := map[string]bool{}
	collectLocalTimeScales(ex.Client.Scales, g.Root, localTimeScales)
	collectLocalTimeScalesMarks(ex.Client.Marks, g.Root, localTimeScales)

	fieldsByKey := map[string]map[string]bool{}
	svByKey := map[string]scope.ScopedVariable{}
	collectBridgeFields(ex.Client.Marks, g.Root, ex, localTimeScales, fieldsByKey, svByKey)

	if len(fieldsByKey) == 0 {
		return nil
	}

	stringifiedServerNames := map[string][]string{}

	keys := make([]string, 0, len(fieldsByKey))
	for k := range fieldsByKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		sv := svByKey[key]
		serverDS, ok := ex.ServerDataSpec[sv.Key()]
		if !ok {
			continue
		}
		clientDS, ok := ex.ClientDataSpec[sv.Key()]
		if !ok {
			continue
		}

		fieldSet := fieldsByKey[key]
		fields := make([]string, 0, len(fieldSet))
		for f := range fieldSet {
			fields = append(fields, f)
		}
		sort.Strings(fields)

		for _, f := range fields {
			serverDS.Transform = append(serverDS.Transform, chartspec.Formula{
				Expr: fmt.Sprintf("timeFormat(datum[%q], %q)", f, timeFormatPattern),
				As:   f,
			})
		}
		prependToDate(clientDS, fields)
		stringifiedServerNames[serverDS.Name] = fields
	}

	for _, d := range collectAllData(ex.Server) {
		if fields, ok := stringifiedServerNames[d.Source]; ok {
			prependToDate(d, fields)
		}
	}
	return nil
}

func prependToDate(d *chartspec.DataSpec, fields []string) {
	bridge := make([]chartspec.TransformSpec, len(fields))
	for i, f := range fields {
		bridge[i] = chartspec.Formula{Expr: fmt.Sprintf("toDate(datum[%q])", f), As: f}
	}
	d.Transform = append(bridge, d.Transform...)
}

// collectLocalTimeScales indexes every scale at this scope level whose
// Type is "time" (not "utc") by its ScopedVariable key.
func collectLocalTimeScales(scales []*chartspec.ScaleSpec, s *scope.TaskScope, out map[string]bool) {
	for _, sc := range scales {
		if sc.IsLocalTimeScale() {
			sv := scope.ScopedVariable{Variable: scope.Variable{Namespace: scope.Scale, Name: sc.Name}, ScopePath: s.Path}
			out[sv.Key()] = true
		}
	}
}

func collectLocalTimeScalesMarks(marks []*chartspec.MarkSpec, s *scope.TaskScope, out map[string]bool) {
	for i, m := range marks {
		if !m.IsGroup() {
			continue
		}
		child, ok := childAt(s, i, marks)
		if !ok {
			continue
		}
		collectLocalTimeScales(m.Scales, child, out)
		collectLocalTimeScalesMarks(m.Marks, child, out)
	}
}

// collectBridgeFields walks marks, recording (scopedDataset, field) pairs
// for every non-group mark's encoding channel bound to both a local time
// scale and a server-to-client dataset.
func collectBridgeFields(marks []*chartspec.MarkSpec, s *scope.TaskScope, ex *Extraction, localTimeScales map[string]bool, fieldsByKey map[string]map[string]bool, svByKey map[string]scope.ScopedVariable) {
	for i, m := range marks {
		if m.IsGroup() {
			child, ok := childAt(s, i, marks)
			if !ok {
				continue
			}
			collectBridgeFields(m.Marks, child, ex, localTimeScales, fieldsByKey, svByKey)
			continue
		}
		if m.From == nil || m.From.Data == "" {
			continue
		}
		dataRes, err := scope.ResolveScope(scope.Variable{Namespace: scope.Data, Name: m.From.Data}, s)
		if err != nil {
			continue
		}
		sv := scope.ScopedVariable{Variable: dataRes.Variable, ScopePath: dataRes.Scope.Path}
		if _, candidate := ex.ServerNameOf[sv.Key()]; !candidate {
			continue
		}
		for _, encSet := range m.Encode {
			for _, ch := range encSet {
				if ch.Scale == "" || ch.Field == "" {
					continue
				}
				scaleRes, err := scope.ResolveScope(scope.Variable{Namespace: scope.Scale, Name: ch.Scale}, s)
				if err != nil {
					continue
				}
				scaleSV := scope.ScopedVariable{Variable: scaleRes.Variable, ScopePath: scaleRes.Scope.Path}
				if !localTimeScales[scaleSV.Key()] {
					continue
				}
				if fieldsByKey[sv.Key()] == nil {
					fieldsByKey[sv.Key()] = map[string]bool{}
				}
				fieldsByKey[sv.Key()][ch.Field] = true
				svByKey[sv.Key()] = sv
			}
		}
	}
}

// collectAllData flattens every DataSpec reachable from spec, including
// nested group marks' own data, for the "any server dataset sourcing from
// a stringified one" scan.
func collectAllData(spec *chartspec.ChartSpec) []*chartspec.DataSpec {
	var out []*chartspec.DataSpec
	out = append(out, spec.Data...)
	var walkMarks func(marks []*chartspec.MarkSpec)
	walkMarks = func(marks []*chartspec.MarkSpec) {
		for _, m := range marks {
			out = append(out, m.Data...)
			walkMarks(m.Marks)
		}
	}
	walkMarks(spec.Marks)
	return out
}
