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
	"github.com/dolthub/vegafusion-go/chartspec"
	"github.com/dolthub/vegafusion-go/qplan"
	"github.com/dolthub/vegafusion-go/vferrors"
)

// Pivot reshapes long Field/Value pairs into one wide column per distinct
// value of Field. Unlike every other operator
// here, the output schema is not knowable from the spec alone: the set
// of pivoted columns is exactly the set of distinct values Field takes
// on in the data, which this engine cannot see at plan-construction
// time. Resolving it would take a two-phase plan — fetch distinct
// Field values, then build the column-per-value SQL once they're
// known — which needs a second round trip through
// Connection.FetchQuery between "what are the columns" and "compute
// them"; this package's Eval contract (one synchronous
// TransformSpec -> (Node, []EmittedSignal) call) has no slot for that
// second phase, so Pivot reports the gap explicitly rather than
// fabricating a fixed column set.
func Pivot(t chartspec.Pivot, input qplan.Node, cfg Config) (qplan.Node, []EmittedSignal, error) {
	if _, err := columnOf(input.Schema(), t.Field); err != nil {
		return nil, nil, err
	}
	if _, err := columnOf(input.Schema(), t.Value); err != nil {
		return nil, nil, err
	}
	return nil, nil, vferrors.UnsupportedForDialect(
		"pivot: column set depends on distinct values of %q, which requires a second fetch_query round trip this planner does not yet perform", t.Field)
}
