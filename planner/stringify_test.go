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

// A time-scaled field "date" in dataset "source" scaled in the root
// scope: server-spec appends
// timeFormat(datum["date"], "%Y-%m-%d %H:%M:%S.%L"); client-spec prepends
// toDate(datum["date"]).
func TestStringifyLocalDatetimesAppendsAndPrepends(t *testing.T) {
	spec := &chartspec.ChartSpec{
		Data: []*chartspec.DataSpec{{
			Name:   "source",
			Values: []map[string]any{{"date": 0.0}},
		}},
		Scales: []*chartspec.ScaleSpec{{Name: "xscale", Type: "time"}},
		Marks: []*chartspec.MarkSpec{{
			Type: "symbol",
			From: &chartspec.MarkFrom{Data: "source"},
			Encode: map[string]chartspec.Encode{
				"update": {
					"x": {Scale: "xscale", Field: "date"},
				},
			},
		}},
	}

	_, g, err := GetSupportedDataVariables(spec)
	require.NoError(t, err)
	ex, err := ExtractServerData(spec, g)
	require.NoError(t, err)
	require.NoError(t, StringifyLocalDatetimes(ex, g))

	require.Len(t, ex.Server.Data, 1)
	serverTransforms := ex.Server.Data[0].Transform
	require.Len(t, serverTransforms, 1)
	formula := serverTransforms[0].(chartspec.Formula)
	require.Equal(t, "date", formula.As)
	require.Equal(t, `timeFormat(datum["date"], "%Y-%m-%d %H:%M:%S.%L")`, formula.Expr)

	require.Len(t, ex.Client.Data, 1)
	clientTransforms := ex.Client.Data[0].Transform
	require.Len(t, clientTransforms, 1)
	bridge := clientTransforms[0].(chartspec.Formula)
	require.Equal(t, "date", bridge.As)
	require.Equal(t, `toDate(datum["date"])`, bridge.Expr)
}

func TestStringifyUTCScaleIsNotBridged(t *testing.T) {
	spec := &chartspec.ChartSpec{
		Data: []*chartspec.DataSpec{{
			Name:   "source",
			Values: []map[string]any{{"date": 0.0}},
		}},
		Scales: []*chartspec.ScaleSpec{{Name: "xscale", Type: "utc"}},
		Marks: []*chartspec.MarkSpec{{
			Type: "symbol",
			From: &chartspec.MarkFrom{Data: "source"},
			Encode: map[string]chartspec.Encode{
				"update": {"x": {Scale: "xscale", Field: "date"}},
			},
		}},
	}
	_, g, err := GetSupportedDataVariables(spec)
	require.NoError(t, err)
	ex, err := ExtractServerData(spec, g)
	require.NoError(t, err)
	require.NoError(t, StringifyLocalDatetimes(ex, g))

	require.Empty(t, ex.Server.Data[0].Transform)
	require.Empty(t, ex.Client.Data[0].Transform)
}

func TestStringifyPropagatesToDateToDownstreamSourcingDataset(t *testing.T) {
	spec := &chartspec.ChartSpec{
		Data: []*chartspec.DataSpec{
			{Name: "source", Values: []map[string]any{{"date": 0.0}}},
			{Name: "derived", Source: "source", Transform: []chartspec.TransformSpec{
				chartspec.Project{Fields: []string{"date"}},
			}},
		},
		Scales: []*chartspec.ScaleSpec{{Name: "xscale", Type: "time"}},
		Marks: []*chartspec.MarkSpec{{
			Type: "symbol",
			From: &chartspec.MarkFrom{Data: "source"},
			Encode: map[string]chartspec.Encode{
				"update": {"x": {Scale: "xscale", Field: "date"}},
			},
		}},
	}
	_, g, err := GetSupportedDataVariables(spec)
	require.NoError(t, err)
	ex, err := ExtractServerData(spec, g)
	require.NoError(t, err)
	require.NoError(t, StringifyLocalDatetimes(ex, g))

	var derivedServer *chartspec.DataSpec
	for _, d := range ex.Server.Data {
		if d.Source == "source" {
			derivedServer = d
		}
	}
	require.NotNil(t, derivedServer)
	require.IsType(t, chartspec.Formula{}, derivedServer.Transform[0])
	prepended := derivedServer.Transform[0].(chartspec.Formula)
	require.Equal(t, `toDate(datum["date"])`, prepended.Expr)
}
