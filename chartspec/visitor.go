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

package chartspec

// ChartVisitor observes a ChartSpec tree read-only. Path is the scope path
// (nested mark-group indices) of the group the visited node belongs to,
// matching scope.TaskScope's Path convention so a caller can correlate a
// visited node with its TaskScope directly.
type ChartVisitor interface {
	VisitData(path []int, d *DataSpec)
	VisitMark(path []int, m *MarkSpec)
	VisitScale(path []int, s *ScaleSpec)
	VisitSignal(path []int, s *SignalSpec)
}

// MutChartVisitor is ChartVisitor's mutable counterpart, for passes that
// rewrite data/mark/scale/signal nodes in place while splitting the spec
// into server/client tiers.
type MutChartVisitor interface {
	VisitDataMut(path []int, d *DataSpec) *DataSpec
	VisitMarkMut(path []int, m *MarkSpec) *MarkSpec
	VisitScaleMut(path []int, s *ScaleSpec) *ScaleSpec
	VisitSignalMut(path []int, s *SignalSpec) *SignalSpec
}

// Walk drives v depth-first over spec: root-level data/scales/signals
// first, then each mark (recursing into nested group marks with their own
// data/scales/signals). path extends by the group's index among its
// parent's *group* marks — non-group siblings don't consume an index —
// matching scope.TaskScope.AddChildGroup's child numbering, so a path
// handed to a visitor resolves directly against the TaskScope tree the
// planner builds for the same spec.
func Walk(spec *ChartSpec, v ChartVisitor) {
	walkScope(nil, spec.Data, spec.Scales, spec.Signals, spec.Marks, v)
}

func walkScope(path []int, data []*DataSpec, scales []*ScaleSpec, signals []*SignalSpec, marks []*MarkSpec, v ChartVisitor) {
	for _, d := range data {
		v.VisitData(path, d)
	}
	for _, s := range scales {
		v.VisitScale(path, s)
	}
	for _, s := range signals {
		v.VisitSignal(path, s)
	}
	groupIdx := 0
	for _, m := range marks {
		v.VisitMark(path, m)
		if m.IsGroup() {
			childPath := append(append([]int{}, path...), groupIdx)
			groupIdx++
			walkScope(childPath, m.Data, m.Scales, m.Signals, m.Marks, v)
		}
	}
}

// WalkMut drives v depth-first over spec exactly like Walk, replacing each
// node with whatever VisitDataMut/VisitMarkMut/VisitScaleMut/
// VisitSignalMut returns (nil removes the node), so the Planner's
// extractor can prune and rewrite while building the server-spec and
// client-spec in a single pass.
func WalkMut(spec *ChartSpec, v MutChartVisitor) {
	spec.Data, spec.Scales, spec.Signals, spec.Marks = walkScopeMut(nil, spec.Data, spec.Scales, spec.Signals, spec.Marks, v)
}

func walkScopeMut(path []int, data []*DataSpec, scales []*ScaleSpec, signals []*SignalSpec, marks []*MarkSpec, v MutChartVisitor) ([]*DataSpec, []*ScaleSpec, []*SignalSpec, []*MarkSpec) {
	newData := make([]*DataSpec, 0, len(data))
	for _, d := range data {
		if r := v.VisitDataMut(path, d); r != nil {
			newData = append(newData, r)
		}
	}
	newScales := make([]*ScaleSpec, 0, len(scales))
	for _, s := range scales {
		if r := v.VisitScaleMut(path, s); r != nil {
			newScales = append(newScales, r)
		}
	}
	newSignals := make([]*SignalSpec, 0, len(signals))
	for _, s := range signals {
		if r := v.VisitSignalMut(path, s); r != nil {
			newSignals = append(newSignals, r)
		}
	}
	newMarks := make([]*MarkSpec, 0, len(marks))
	groupIdx := 0
	for _, m := range marks {
		r := v.VisitMarkMut(path, m)
		if r == nil {
			continue
		}
		if r.IsGroup() {
			childPath := append(append([]int{}, path...), groupIdx)
			groupIdx++
			r.Data, r.Scales, r.Signals, r.Marks = walkScopeMut(childPath, r.Data, r.Scales, r.Signals, r.Marks, v)
		}
		newMarks = append(newMarks, r)
	}
	return newData, newScales, newSignals, newMarks
}
