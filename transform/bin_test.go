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

func TestBinParamsNiceExample(t *testing.T) {
	start, stop, step, err := binParams(chartspec.Bin{
		Extent:  []float64{0, 100},
		Maxbins: 10,
		Base:    10,
		Nice:    true,
	})
	require.NoError(t, err)
	require.Equal(t, 0.0, start)
	require.Equal(t, 100.0, stop)
	require.Equal(t, 10.0, step)
}

func TestBinParamsExplicitStep(t *testing.T) {
	_, _, step, err := binParams(chartspec.Bin{Extent: []float64{0, 37}, Step: 5})
	require.NoError(t, err)
	require.Equal(t, 5.0, step)
}

func TestBinParamsRequiresTwoExtentElements(t *testing.T) {
	_, _, _, err := binParams(chartspec.Bin{Extent: []float64{0}})
	require.Error(t, err)
}

func TestBinAppendsDefaultNamedColumns(t *testing.T) {
	spec := chartspec.Bin{Field: "a", Extent: []float64{0, 100}, Maxbins: 10, Nice: true}
	out, signals, err := Bin(spec, testInput(), testConfig())
	require.NoError(t, err)
	require.Nil(t, signals)
	require.Equal(t, []string{"a", "b", "cat", "t", "a_bin0", "a_bin1"}, schemaNames(out.Schema()))
}

func TestBinRespectsExplicitAsNames(t *testing.T) {
	spec := chartspec.Bin{Field: "a", Extent: []float64{0, 100}, Maxbins: 10, As: []string{"lo", "hi"}}
	out, _, err := Bin(spec, testInput(), testConfig())
	require.NoError(t, err)
	require.Contains(t, schemaNames(out.Schema()), "lo")
	require.Contains(t, schemaNames(out.Schema()), "hi")
}

func TestBinEmitsSignalWhenNamed(t *testing.T) {
	spec := chartspec.Bin{Field: "a", Extent: []float64{0, 100}, Maxbins: 10, Nice: true, Signal: "bin_a"}
	_, signals, err := Bin(spec, testInput(), testConfig())
	require.NoError(t, err)
	require.Len(t, signals, 1)
	require.Equal(t, "bin_a", signals[0].Name)
	require.NotNil(t, signals[0].Value)
	require.Equal(t, "bin_a", signals[0].Value.Struct["fname"].Str)
	require.Equal(t, 0.0, signals[0].Value.Struct["start"].Float)
	require.Equal(t, 10.0, signals[0].Value.Struct["step"].Float)
}

func TestBinUnknownFieldFails(t *testing.T) {
	spec := chartspec.Bin{Field: "missing", Extent: []float64{0, 1}}
	_, _, err := Bin(spec, testInput(), testConfig())
	require.Error(t, err)
}
