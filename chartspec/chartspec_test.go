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

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsLeafSource(t *testing.T) {
	require.True(t, (&DataSpec{Name: "a", URL: "http://x"}).IsLeafSource())
	require.True(t, (&DataSpec{Name: "a", Values: []map[string]any{{"x": 1}}}).IsLeafSource())
	require.False(t, (&DataSpec{Name: "a", Source: "b"}).IsLeafSource())
	require.False(t, (&DataSpec{Name: "a"}).IsLeafSource())
}

func TestClientStubClearsInputFields(t *testing.T) {
	d := &DataSpec{Name: "source", URL: "http://x", Transform: []TransformSpec{Filter{Expr: "datum.x > 0"}}}
	stub := d.ClientStub()
	require.Equal(t, "source", stub.Name)
	require.Empty(t, stub.URL)
	require.Nil(t, stub.Transform)
}

func TestCloneIsIndependentOfOriginalTransformSlice(t *testing.T) {
	d := &DataSpec{Name: "a", Transform: []TransformSpec{Filter{Expr: "true"}}}
	clone := d.Clone()
	clone.Transform = append(clone.Transform, Filter{Expr: "false"})
	require.Len(t, d.Transform, 1)
	require.Len(t, clone.Transform, 2)
}

func TestIsLocalTimeScale(t *testing.T) {
	require.True(t, (&ScaleSpec{Type: "time"}).IsLocalTimeScale())
	require.False(t, (&ScaleSpec{Type: "utc"}).IsLocalTimeScale())
	require.False(t, (&ScaleSpec{Type: "linear"}).IsLocalTimeScale())
}

func TestBinOutputSignalsEmptyWithoutSignalName(t *testing.T) {
	require.Nil(t, Bin{Field: "x"}.OutputSignals())
	require.Equal(t, []string{"bin_x"}, Bin{Field: "x", Signal: "bin_x"}.OutputSignals())
}

func TestExtentAlwaysEmitsItsSignal(t *testing.T) {
	require.Equal(t, []string{"x_extent"}, Extent{Field: "x", Signal: "x_extent"}.OutputSignals())
}

func TestFilterSupportedRejectsTypeCheckingBuiltins(t *testing.T) {
	require.True(t, Filter{Expr: "datum.x > 0"}.Supported())
	require.False(t, Filter{Expr: "isValid(datum.x) && isNumber(datum.y)"}.Supported())
}

func TestFormulaSupportedRejectsTypeCheckingBuiltins(t *testing.T) {
	require.True(t, Formula{Expr: "datum.x * 2", As: "y"}.Supported())
	require.False(t, Formula{Expr: "isDate(datum.x)", As: "y"}.Supported())
}

func TestImputeSupportedRejectsMultipleGroupby(t *testing.T) {
	require.True(t, Impute{Field: "y", Key: "x", Groupby: []string{"series"}}.Supported())
	require.True(t, Impute{Field: "y", Key: "x"}.Supported())
	require.False(t, Impute{Field: "y", Key: "x", Groupby: []string{"a", "b"}}.Supported())
}

func TestUnknownAlwaysUnsupported(t *testing.T) {
	require.False(t, Unknown{Kind: "lookup"}.Supported())
}

func TestPivotAlwaysUnsupported(t *testing.T) {
	require.False(t, Pivot{Field: "cat", Value: "a"}.Supported())
}

type recordingVisitor struct {
	dataNames []string
	markTypes []string
	paths     [][]int
}

func (r *recordingVisitor) VisitData(path []int, d *DataSpec) {
	r.dataNames = append(r.dataNames, d.Name)
	r.paths = append(r.paths, path)
}
func (r *recordingVisitor) VisitMark(path []int, m *MarkSpec) { r.markTypes = append(r.markTypes, m.Type) }
func (r *recordingVisitor) VisitScale(path []int, s *ScaleSpec)   {}
func (r *recordingVisitor) VisitSignal(path []int, s *SignalSpec) {}

func TestWalkVisitsNestedGroups(t *testing.T) {
	spec := &ChartSpec{
		Data: []*DataSpec{{Name: "root_data"}},
		Marks: []*MarkSpec{
			{
				Type: "group",
				Data: []*DataSpec{{Name: "nested_data"}},
				Marks: []*MarkSpec{
					{Type: "rect"},
				},
			},
			{Type: "symbol"},
		},
	}
	v := &recordingVisitor{}
	Walk(spec, v)
	require.ElementsMatch(t, []string{"root_data", "nested_data"}, v.dataNames)
	require.ElementsMatch(t, []string{"group", "rect", "symbol"}, v.markTypes)
}

type pruningVisitor struct {
	drop string
}

func (p *pruningVisitor) VisitDataMut(path []int, d *DataSpec) *DataSpec {
	if d.Name == p.drop {
		return nil
	}
	return d
}
func (p *pruningVisitor) VisitMarkMut(path []int, m *MarkSpec) *MarkSpec     { return m }
func (p *pruningVisitor) VisitScaleMut(path []int, s *ScaleSpec) *ScaleSpec  { return s }
func (p *pruningVisitor) VisitSignalMut(path []int, s *SignalSpec) *SignalSpec {
	return s
}

func TestWalkMutCanPruneNodes(t *testing.T) {
	spec := &ChartSpec{Data: []*DataSpec{{Name: "keep"}, {Name: "drop_me"}}}
	WalkMut(spec, &pruningVisitor{drop: "drop_me"})
	require.Len(t, spec.Data, 1)
	require.Equal(t, "keep", spec.Data[0].Name)
}
