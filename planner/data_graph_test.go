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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolthub/vegafusion-go/chartspec"
)

func TestLeafSourceWithNoTransformsIsSupported(t *testing.T) {
	spec := &chartspec.ChartSpec{
		Data: []*chartspec.DataSpec{{Name: "source", Values: []map[string]any{{"a": 1.0}}}},
	}
	supported, _, err := GetSupportedDataVariables(spec)
	require.NoError(t, err)
	require.Len(t, supported, 1)
	for _, vs := range supported {
		require.Equal(t, Supported, vs.Status)
	}
}

// A dataset with transforms
// [filter, aggregate, formula_with_unsupported_fn, project] is
// PartiallySupported with a two-transform server prefix.
func TestPartiallySupportedPrefixBoundary(t *testing.T) {
	spec := &chartspec.ChartSpec{
		Data: []*chartspec.DataSpec{{
			Name:   "source",
			Values: []map[string]any{{"a": 1.0}},
			Transform: []chartspec.TransformSpec{
				chartspec.Filter{Expr: "datum.a > 0"},
				chartspec.Aggregate{Groupby: []string{"a"}, Fields: []string{"a"}, Ops: []string{"sum"}, As: []string{"total"}},
				chartspec.Formula{Expr: "isNumber(datum.a) ? 1 : 0", As: "valid"},
				chartspec.Project{Fields: []string{"a", "total"}},
			},
		}},
	}
	supported, g, err := GetSupportedDataVariables(spec)
	require.NoError(t, err)
	for _, vs := range supported {
		require.Equal(t, "source", vs.Scoped.Variable.Name)
		require.Equal(t, PartiallySupported, vs.Status)
	}
	node := g.ordered[0]
	require.Equal(t, 2, node.PrefixCount)
}

func TestUnsupportedFirstTransformYieldsUnsupported(t *testing.T) {
	spec := &chartspec.ChartSpec{
		Data: []*chartspec.DataSpec{{
			Name:   "source",
			Values: []map[string]any{{"a": 1.0}},
			Transform: []chartspec.TransformSpec{
				chartspec.Formula{Expr: "isNumber(datum.a) ? 1 : 0", As: "valid"},
				chartspec.Project{Fields: []string{"a"}},
			},
		}},
	}
	supported, _, err := GetSupportedDataVariables(spec)
	require.NoError(t, err)
	for _, vs := range supported {
		require.Equal(t, Unsupported, vs.Status)
	}
}

func TestDatasetSourcedFromUnsupportedIsUnsupported(t *testing.T) {
	spec := &chartspec.ChartSpec{
		Data: []*chartspec.DataSpec{
			{
				Name:   "base",
				Values: []map[string]any{{"a": 1.0}},
				Transform: []chartspec.TransformSpec{
					chartspec.Formula{Expr: "isNumber(datum.a) ? 1 : 0", As: "valid"},
				},
			},
			{
				Name:   "derived",
				Source: "base",
				Transform: []chartspec.TransformSpec{
					chartspec.Filter{Expr: "datum.a > 0"},
				},
			},
		},
	}
	supported, _, err := GetSupportedDataVariables(spec)
	require.NoError(t, err)
	for _, vs := range supported {
		if vs.Scoped.Variable.Name == "derived" {
			require.Equal(t, Unsupported, vs.Status)
		}
	}
}

func TestDatasetSourcedFromPartiallySupportedCanStillRunItsOwnPrefix(t *testing.T) {
	spec := &chartspec.ChartSpec{
		Data: []*chartspec.DataSpec{
			{
				Name:   "base",
				Values: []map[string]any{{"a": 1.0}},
				Transform: []chartspec.TransformSpec{
					chartspec.Filter{Expr: "datum.a > 0"},
					chartspec.Formula{Expr: "isNumber(datum.a) ? 1 : 0", As: "valid"},
				},
			},
			{
				Name:   "derived",
				Source: "base",
				Transform: []chartspec.TransformSpec{
					chartspec.Project{Fields: []string{"a"}},
				},
			},
		},
	}
	supported, _, err := GetSupportedDataVariables(spec)
	require.NoError(t, err)
	require.Equal(t, Supported, supported[findKeyByName(supported, "derived")].Status)
}

func findKeyByName(m map[string]VariableStatus, name string) string {
	for key, vs := range m {
		if vs.Scoped.Variable.Name == name {
			return key
		}
	}
	return ""
}
