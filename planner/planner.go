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
	"github.com/sirupsen/logrus"

	"github.com/dolthub/vegafusion-go/chartspec"
)

// Result is the Planner's complete output for one chart-spec: the
// relational server-spec, the rewritten client-spec, and the comm plan
// identifying the variables crossing the tier boundary.
type Result struct {
	ServerSpec *chartspec.ChartSpec
	ClientSpec *chartspec.ChartSpec
	CommPlan   *CommPlan
	Graph      *Graph
}

// Plan runs the full planning pipeline over spec: supportability
// analysis, server/client extraction, comm-plan derivation, then the
// datetime-stringification bridge last, since it mutates both tiers.
//
// log receives a *logrus.Entry injected by the caller — a package-level
// logger is never used; every call site threads its own Entry with
// whatever fields it wants attached. A nil log disables logging.
func Plan(spec *chartspec.ChartSpec, log *logrus.Entry) (*Result, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.New())
		log.Logger.SetOutput(discardWriter{})
	}

	supported, g, err := GetSupportedDataVariables(spec)
	if err != nil {
		return nil, err
	}
	for _, vs := range supported {
		entry := log.WithFields(logrus.Fields{
			"dataset": vs.Scoped.Variable.Name,
			"scope":   vs.Scoped.ScopePath,
			"status":  vs.Status.String(),
		})
		if vs.Status == Unsupported {
			entry.Warn("dataset demoted to client-side")
		} else {
			entry.Debug("dataset classified")
		}
	}

	ex, err := ExtractServerData(spec, g)
	if err != nil {
		return nil, err
	}
	log.WithField("extracted", len(ex.ServerNameOf)).Debug("server/client split complete")

	cp, err := BuildCommPlan(ex, g)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"server_to_client": len(cp.ServerToClient),
		"client_to_server": len(cp.ClientToServer),
	}).Debug("comm plan built")

	if err := StringifyLocalDatetimes(ex, g); err != nil {
		log.WithError(err).Warn("datetime stringification bridge skipped")
	}

	return &Result{ServerSpec: ex.Server, ClientSpec: ex.Client, CommPlan: cp, Graph: g}, nil
}

// discardWriter is a no-op io.Writer, used so a nil-log caller gets a
// real (but silent) logrus.Entry instead of a guarded nil check at every
// call site.
type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
