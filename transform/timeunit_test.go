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

package transform

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolthub/vegafusion-go/chartspec"
)

func TestTimeUnitSQLGrainPicksFinestNamedComponent(t *testing.T) {
	grain, err := timeUnitSQLGrain("yearmonthdate")
	require.NoError(t, err)
	require.Equal(t, "day", grain)
}

func TestTimeUnitSQLGrainYear(t *testing.T) {
	grain, err := timeUnitSQLGrain("year")
	require.NoError(t, err)
	require.Equal(t, "year", grain)
}

func TestTimeUnitSQLGrainUnrecognized(t *testing.T) {
	_, err := timeUnitSQLGrain("fortnight")
	require.Error(t, err)
}

func TestTimeUnitDefaultAs(t *testing.T) {
	spec := chartspec.TimeUnit{Field: "t", Units: "year"}
	out, signals, err := TimeUnit(spec, testInput(), testConfig())
	require.NoError(t, err)
	require.Nil(t, signals)
	require.Contains(t, schemaNames(out.Schema()), "t_year")
}

func TestTimeUnitExplicitAs(t *testing.T) {
	spec := chartspec.TimeUnit{Field: "t", Units: "yearmonth", As: "ym"}
	out, _, err := TimeUnit(spec, testInput(), testConfig())
	require.NoError(t, err)
	require.Contains(t, schemaNames(out.Schema()), "ym")
}

func TestTimeUnitUnknownFieldFails(t *testing.T) {
	spec := chartspec.TimeUnit{Field: "missing", Units: "year"}
	_, _, err := TimeUnit(spec, testInput(), testConfig())
	require.Error(t, err)
}
