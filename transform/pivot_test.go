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
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolthub/vegafusion-go/chartspec"
	"github.com/dolthub/vegafusion-go/vferrors"
)

func TestPivotAlwaysReportsUnsupported(t *testing.T) {
	spec := chartspec.Pivot{Field: "cat", Value: "a"}
	_, _, err := Pivot(spec, testInput(), testConfig())
	require.Error(t, err)
	require.True(t, errors.Is(err, vferrors.UnsupportedForDialect("")))
}

func TestPivotValidatesFieldsFirst(t *testing.T) {
	spec := chartspec.Pivot{Field: "missing", Value: "a"}
	_, _, err := Pivot(spec, testInput(), testConfig())
	require.Error(t, err)
	require.False(t, errors.Is(err, vferrors.UnsupportedForDialect("")))
}
