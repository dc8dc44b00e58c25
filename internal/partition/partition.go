// Copyright 2026 The Ofisi Authors
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

// Package partition carries the active data partition (a Postgres schema)
// through the request context. The partition is bound once, by the tenant
// resolver, and read by every partition-scoped repository call. There is no
// global default: a context without a partition fails closed.
package partition

import (
	"context"
	"errors"
)

// PublicSchema is the shared partition used for registry data and for
// public paths (signup, login) that run before any tenant is resolved.
const PublicSchema = "public"

// ErrNotBound is returned when a partition-scoped operation runs on a
// context that never passed through the tenant resolver.
var ErrNotBound = errors.New("no partition bound to request context")

type ctxKey struct{}

// Bind returns a context carrying the given partition schema.
func Bind(ctx context.Context, schema string) context.Context {
	return context.WithValue(ctx, ctxKey{}, schema)
}

// BindPublic pins the context to the shared public partition.
func BindPublic(ctx context.Context) context.Context {
	return Bind(ctx, PublicSchema)
}

// FromContext returns the partition schema bound to ctx, or ErrNotBound.
func FromContext(ctx context.Context) (string, error) {
	schema, ok := ctx.Value(ctxKey{}).(string)
	if !ok || schema == "" {
		return "", ErrNotBound
	}
	return schema, nil
}

// IsPublic reports whether ctx is pinned to the shared partition.
func IsPublic(ctx context.Context) bool {
	schema, err := FromContext(ctx)
	return err == nil && schema == PublicSchema
}
