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

func TestPlanEndToEnd(t *testing.T) {
	spec := &chartspec.ChartSpec{
		Data: []*chartspec.DataSpec{{
			Name:   "source",
			Values: []map[string]any{{"a": 1.0, "date": 0.0}},
			Transform: []chartspec.TransformSpec{
				chartspec.Filter{Expr: "datum.a > 0"},
				chartspec.Aggregate{Groupby: []string{"a"}, Fields: []string{"a"}, Ops: []string{"sum"}, As: []string{"total"}},
			},
		}},
		Signals: []*chartspec.SignalSpec{{Name: "threshold", Value: 0.0}},
		Scales:  []*chartspec.ScaleSpec{{Name: "xscale", Type: "time"}},
		Marks: []*chartspec.MarkSpec{{
			Type: "symbol",
			From: &chartspec.MarkFrom{Data: "source"},
			Encode: map[string]chartspec.Encode{
				"update": {"x": {Scale: "xscale", Field: "total"}},
			},
		}},
	}

	result, err := Plan(spec, nil)
	require.NoError(t, err)
	require.NotNil(t, result.ServerSpec)
	require.NotNil(t, result.ClientSpec)
	require.NotNil(t, result.CommPlan)
	require.Len(t, result.ServerSpec.Data, 1)
	require.Equal(t, "source", result.ServerSpec.Data[0].Name)
	require.NotEmpty(t, result.CommPlan.ServerToClient)
}

func TestPlanDemotesDatasetWithUnsupportedTransformToClient(t *testing.T) {
	spec := &chartspec.ChartSpec{
		Data: []*chartspec.DataSpec{{
			Name:   "source",
			Values: []map[string]any{{"a": 1.0}},
			Transform: []chartspec.TransformSpec{
				chartspec.Formula{Expr: "isNumber(datum.a) ? 1 : 0", As: "valid"},
			},
		}},
	}
	result, err := Plan(spec, nil)
	require.NoError(t, err)
	require.Empty(t, result.ServerSpec.Data)
	require.Len(t, result.ClientSpec.Data, 1)
	require.Equal(t, spec.Data[0].Transform, result.ClientSpec.Data[0].Transform)
}
