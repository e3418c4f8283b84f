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
	"github.com/dolthub/vegafusion-go/compiler"
	"github.com/dolthub/vegafusion-go/qplan"
)

// Filter removes rows where Expr evaluates to a falsy value, compiling
// the expression against the input's schema and wrapping it in a
// qplan.Filter node.
func Filter(t chartspec.Filter, input qplan.Node, cfg Config) (qplan.Node, []EmittedSignal, error) {
	pred, err := compiler.Compile(t.Expr, input.Schema(), cfg.CompilationConfig)
	if err != nil {
		return nil, nil, err
	}
	name := cfg.NextName("filter")
	return qplan.NewFilter(name, input, pred), nil, nil
}
