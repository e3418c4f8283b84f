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

package plannertest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolthub/vegafusion-go/chartspec"
	"github.com/dolthub/vegafusion-go/planner"
)

// Fixtures is the scripted suite exercising every Planner stage:
// supportability classification, the server/client split (full clone,
// prefix split, unchanged), comm-plan derivation in both signal
// directions, and the datetime-stringification bridge. One entry per
// scenario, asserted against the pipeline's real output rather than
// unit-testing each planner function in isolation — that isolated
// coverage already lives in planner/*_test.go.
func Fixtures() []Script {
	return []Script{
		{
			Name: "fully_supported_dataset_moves_entirely_server_side",
			Spec: &chartspec.ChartSpec{
				Data: []*chartspec.DataSpec{{
					Name:   "source",
					Values: []map[string]any{{"a": 1.0}},
					Transform: []chartspec.TransformSpec{
						chartspec.Filter{Expr: "datum.a > 0"},
						chartspec.Aggregate{Groupby: []string{"a"}, Fields: []string{"a"}, Ops: []string{"sum"}, As: []string{"total"}},
					},
				}},
			},
			Assert: func(t *testing.T, result *planner.Result) {
				require.Len(t, result.ServerSpec.Data, 1)
				require.Equal(t, "source", result.ServerSpec.Data[0].Name)
				require.Len(t, result.ClientSpec.Data, 1)
				require.Empty(t, result.ClientSpec.Data[0].Transform, "a fully supported dataset's client stub recomputes nothing")
				require.Empty(t, result.ClientSpec.Data[0].Source, "the client stub is fed by the server's output under its own name, not chained via Source")
			},
		},
		{
			Name: "unsupported_transform_keeps_dataset_entirely_client_side",
			Spec: &chartspec.ChartSpec{
				Data: []*chartspec.DataSpec{{
					Name:   "source",
					Values: []map[string]any{{"a": 1.0}},
					Transform: []chartspec.TransformSpec{
						chartspec.Formula{Expr: "isNumber(datum.a) ? 1 : 0", As: "valid"},
					},
				}},
			},
			Assert: func(t *testing.T, result *planner.Result) {
				require.Empty(t, result.ServerSpec.Data)
				require.Len(t, result.ClientSpec.Data, 1)
				require.Equal(t, "source", result.ClientSpec.Data[0].Name)
			},
		},
		{
			Name: "partially_supported_dataset_splits_at_the_unsupported_prefix_boundary",
			Spec: &chartspec.ChartSpec{
				Data: []*chartspec.DataSpec{{
					Name:   "source",
					Values: []map[string]any{{"a": 1.0}},
					Transform: []chartspec.TransformSpec{
						chartspec.Filter{Expr: "datum.a > 0"},
						chartspec.Formula{Expr: "isNumber(datum.a) ? 1 : 0", As: "valid"},
					},
				}},
			},
			Assert: func(t *testing.T, result *planner.Result) {
				require.Len(t, result.ServerSpec.Data, 1)
				require.Len(t, result.ServerSpec.Data[0].Transform, 1, "only the supported prefix is pushed")
				require.Len(t, result.ClientSpec.Data, 1)
				require.Len(t, result.ClientSpec.Data[0].Transform, 1, "the unsupported suffix stays client-side")
			},
		},
		{
			Name: "signal_emitted_by_a_pushed_transform_crosses_server_to_client",
			Spec: &chartspec.ChartSpec{
				Data: []*chartspec.DataSpec{{
					Name:   "source",
					Values: []map[string]any{{"a": 1.0}},
					Transform: []chartspec.TransformSpec{
						chartspec.Extent{Field: "a", Signal: "xext"},
					},
				}},
				Signals: []*chartspec.SignalSpec{
					{Name: "clamped", Update: "xext[0]"},
				},
			},
			Assert: func(t *testing.T, result *planner.Result) {
				require.NotEmpty(t, result.CommPlan.ServerToClient)
				var sawXext bool
				for key := range result.CommPlan.ServerToClient {
					if key == "signal:xext@" {
						sawXext = true
					}
				}
				require.True(t, sawXext, "xext, emitted server-side by Extent, must be named in the comm plan")
			},
		},
		{
			Name: "signal_the_chart_spec_declares_feeds_a_pushed_filter_client_to_server",
			Spec: &chartspec.ChartSpec{
				Data: []*chartspec.DataSpec{{
					Name:   "source",
					Values: []map[string]any{{"a": 1.0}},
					Transform: []chartspec.TransformSpec{
						chartspec.Filter{Expr: "datum.a > threshold"},
					},
				}},
				Signals: []*chartspec.SignalSpec{
					{Name: "threshold", Value: 0.0},
				},
			},
			Assert: func(t *testing.T, result *planner.Result) {
				require.Len(t, result.ServerSpec.Data, 1, "the filter is supported once threshold resolves at runtime")
				require.NotEmpty(t, result.CommPlan.ClientToServer)
				var sawThreshold bool
				for key := range result.CommPlan.ClientToServer {
					if key == "signal:threshold@" {
						sawThreshold = true
					}
				}
				require.True(t, sawThreshold, "threshold, declared client-side, must be named in the comm plan")
			},
		},
		{
			Name: "local_time_scale_binding_stringifies_the_bridging_field",
			Spec: &chartspec.ChartSpec{
				Data: []*chartspec.DataSpec{{
					Name:   "source",
					Values: []map[string]any{{"a": 1.0, "when": 0.0}},
					Transform: []chartspec.TransformSpec{
						chartspec.Aggregate{Groupby: []string{"when"}, Fields: []string{"a"}, Ops: []string{"sum"}, As: []string{"total"}},
					},
				}},
				Scales: []*chartspec.ScaleSpec{
					{Name: "xscale", Type: "time"},
				},
				Marks: []*chartspec.MarkSpec{{
					Type: "symbol",
					From: &chartspec.MarkFrom{Data: "source"},
					Encode: map[string]chartspec.Encode{
						"update": {"x": {Scale: "xscale", Field: "when"}},
					},
				}},
			},
			Assert: func(t *testing.T, result *planner.Result) {
				require.Len(t, result.ServerSpec.Data, 1)
				found := false
				for _, tr := range result.ServerSpec.Data[0].Transform {
					if f, ok := tr.(chartspec.Formula); ok && f.As == "when" {
						found = true
					}
				}
				require.True(t, found, "a timeFormat Formula must be appended server-side for the local-time-scale-bound field")
			},
		},
		{
			Name: "nested_group_mark_dataset_scopes_independently_of_its_parent",
			Spec: &chartspec.ChartSpec{
				Marks: []*chartspec.MarkSpec{{
					Type: "group",
					Data: []*chartspec.DataSpec{{
						Name:   "inner",
						Values: []map[string]any{{"a": 1.0}},
						Transform: []chartspec.TransformSpec{
							chartspec.Filter{Expr: "datum.a > 0"},
						},
					}},
				}},
			},
			Assert: func(t *testing.T, result *planner.Result) {
				require.Len(t, result.ServerSpec.Marks, 1)
				require.Len(t, result.ServerSpec.Marks[0].Data, 1)
				require.Equal(t, "inner", result.ServerSpec.Marks[0].Data[0].Name)
			},
		},
	}
}
