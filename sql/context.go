// Copyright 2024 The YachtSQL Authors.
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

package sql

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"
)

// Context carries everything a single statement's execution needs:
// cancellation, the active Session (and through it, the active
// Transaction), a logger, and a tracer — the same role the teacher's
// sql.Context plays, generalized to our columnar pipeline.
type Context struct {
	context.Context
	Session   *Session
	logger    *logrus.Entry
	tracer    opentracing.Tracer
	batchSize int
}

// NewContext wraps a context.Context and Session for use by the engine.
func NewContext(parent context.Context, session *Session) *Context {
	return &Context{
		Context:   parent,
		Session:   session,
		logger:    logrus.WithField("query", ""),
		tracer:    opentracing.NoopTracer{},
		batchSize: DefaultBatchSize,
	}
}

// NewEmptyContext builds a Context suitable for tests and one-off
// internal evaluation with no real session behind it.
func NewEmptyContext() *Context {
	return NewContext(context.Background(), NewSession())
}

func (c *Context) GetLogger() *logrus.Entry { return c.logger }

func (c *Context) WithLogger(l *logrus.Entry) *Context {
	cp := *c
	cp.logger = l
	return &cp
}

func (c *Context) Tracer() opentracing.Tracer { return c.tracer }

func (c *Context) BatchSize() int {
	if c.batchSize <= 0 {
		return DefaultBatchSize
	}
	return c.batchSize
}

func (c *Context) WithBatchSize(n int) *Context {
	cp := *c
	cp.batchSize = n
	return &cp
}

// Span starts an opentracing span for the named pipeline stage (parser,
// analyzer pass, physical operator) the way the teacher instruments
// Engine.Query. Callers must call Finish() on the returned span.
func (c *Context) Span(name string) opentracing.Span {
	span, _ := opentracing.StartSpanFromContextWithTracer(c.Context, c.tracer, name)
	return span
}
