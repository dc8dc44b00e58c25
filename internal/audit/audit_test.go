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

package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureAudit(t *testing.T, event Event) map[string]any {
	t.Helper()

	var buf bytes.Buffer
	old := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	defer slog.SetDefault(old)

	NewSlogLogger().Log(context.Background(), event)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	return record
}

func TestAudit_Log_EmitsEventFields(t *testing.T) {
	record := captureAudit(t, Event{
		Type:     TypeTenantCreated,
		TenantID: "t-1",
		ActorID:  "u-1",
		Resource: "tenant",
		Metadata: map[string]any{"schema": "acmeschool"},
	})

	assert.Equal(t, "AUDIT_EVENT", record["msg"])
	assert.Equal(t, TypeTenantCreated, record["audit_type"])
	assert.Equal(t, "t-1", record["tenant_id"])
	assert.Equal(t, "audit", record["component"])

	metadata, ok := record["metadata"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "acmeschool", metadata["schema"])
}

// TestPurpose: Validates secret-looking metadata keys never reach the log.
func TestAudit_Log_RedactsSecrets(t *testing.T) {
	record := captureAudit(t, Event{
		Type:     TypeLoginFailed,
		TenantID: "t-1",
		Metadata: map[string]any{"password": "hunter2", AttrReason: "invalid_credentials"},
	})

	metadata, ok := record["metadata"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "[REDACTED]", metadata["password"])
	assert.Equal(t, "invalid_credentials", metadata[AttrReason])
}
