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

// Package plannertest is the scripted end-to-end harness for the
// Planner: chart-spec in, server-spec/client-spec/comm-plan out.
// Fixtures are expressed as Go literals rather than line-oriented
// script files, since chartspec.TransformSpec is a Go-interface tagged
// union (chartspec/transform.go) with no JSON unmarshaling support —
// the same reason planner/planner_test.go already builds its fixtures
// as literal *chartspec.ChartSpec values instead of parsing them from
// text.
package plannertest

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/dolthub/vegafusion-go/chartspec"
	"github.com/dolthub/vegafusion-go/planner"
)

// Script is one scripted Planner fixture: a chart-spec input and an
// assertion run against the resulting planner.Result — a single Go
// value plus a callback, since the Planner's output is a tree of
// structs rather than a single result string.
type Script struct {
	Name string
	Spec *chartspec.ChartSpec
	// Log, if set, receives the Planner's structured log output for this
	// script. Most scripts leave it nil, matching Plan's own "nil
	// disables logging" contract.
	Log *logrus.Entry
	// Assert inspects the Planner's result. It receives the same *testing.T
	// subtest RunScripts created for this script, so it can use
	// require/assert directly instead of returning an error.
	Assert func(t *testing.T, result *planner.Result)
}

// RunScripts runs every script as its own subtest, named after
// Script.Name.
func RunScripts(t *testing.T, scripts []Script) {
	for _, s := range scripts {
		s := s
		t.Run(s.Name, func(t *testing.T) {
			result, err := planner.Plan(s.Spec, s.Log)
			require.NoError(t, err)
			s.Assert(t, result)
		})
	}
}
