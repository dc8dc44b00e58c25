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

package partition

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestPurpose: Validates that a context without a bound partition fails closed.
// Scope: Unit Test
// Security: Multi-tenant boundary enforcement
// Expected: FromContext returns ErrNotBound; no default schema is assumed.
func TestPartition_FromContext_Unbound_FailsClosed(t *testing.T) {
	_, err := FromContext(context.Background())
	assert.ErrorIs(t, err, ErrNotBound)
}

func TestPartition_Bind_RoundTrip(t *testing.T) {
	ctx := Bind(context.Background(), "acmeschool")
	schema, err := FromContext(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "acmeschool", schema)
	assert.False(t, IsPublic(ctx))
}

func TestPartition_BindPublic(t *testing.T) {
	ctx := BindPublic(context.Background())
	schema, err := FromContext(ctx)
	assert.NoError(t, err)
	assert.Equal(t, PublicSchema, schema)
	assert.True(t, IsPublic(ctx))
}

// TestPurpose: Validates that a child binding shadows the parent and that
// the parent context is untouched, so sequential requests built from the
// same base context can never observe each other's partition.
func TestPartition_Rebind_DoesNotLeakAcrossContexts(t *testing.T) {
	base := context.Background()

	first := Bind(base, "tenant_a")
	second := Bind(base, "tenant_b")

	s1, err := FromContext(first)
	assert.NoError(t, err)
	s2, err := FromContext(second)
	assert.NoError(t, err)

	assert.Equal(t, "tenant_a", s1)
	assert.Equal(t, "tenant_b", s2)

	_, err = FromContext(base)
	assert.ErrorIs(t, err, ErrNotBound)
}
