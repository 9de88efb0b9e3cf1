package internal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formic-dev/formic"
)

func deliverySessionSchema() *formic.JSONSchema {
	return &formic.JSONSchema{
		Type:     formic.TypeObject,
		Required: []string{"method"},
		Properties: map[string]*formic.SchemaField{
			"method": {Type: formic.TypeString, Enum: []any{"delivery", "pickup"}},
		},
		If: &formic.SchemaField{
			Properties: map[string]*formic.SchemaField{"method": {Const: "delivery"}},
		},
		Then: &formic.SchemaField{
			Required: []string{"address"},
			Properties: map[string]*formic.SchemaField{
				"address": {Type: formic.TypeString},
			},
		},
		Else: &formic.SchemaField{
			Properties: map[string]*formic.SchemaField{
				"pickupPoint": {Type: formic.TypeString},
			},
		},
	}
}

func TestSession_InitialSnapshot(t *testing.T) {
	session := NewSession(deliverySessionSchema(), 0)
	defer session.Close()

	snap := session.Snapshot()
	assert.Equal(t, formic.MsgRequired, snap.Errors["method"])
	assert.Contains(t, snap.Data, "method")
}

func TestSession_ConditionalFlow(t *testing.T) {
	session := NewSession(deliverySessionSchema(), 0)
	defer session.Close()

	require.NoError(t, session.SetField("method", "delivery"))
	snap := session.Snapshot()
	assert.Equal(t, formic.MsgRequired, snap.Errors["address"])
	assert.Contains(t, snap.Effective.Required, "address")

	require.NoError(t, session.SetField("address", "1 Main St"))
	snap = session.Snapshot()
	assert.Empty(t, snap.Errors)
	assert.Equal(t, "1 Main St", snap.Data["address"])

	// Switching branches drops the stale address from the data.
	require.NoError(t, session.SetField("method", "pickup"))
	snap = session.Snapshot()
	assert.Empty(t, snap.Errors)
	assert.NotContains(t, snap.Data, "address")
	assert.Contains(t, snap.Data, "pickupPoint")
}

func TestSession_SetFieldArrayPath(t *testing.T) {
	schema := &formic.JSONSchema{
		Type: formic.TypeObject,
		Properties: map[string]*formic.SchemaField{
			"lines": {
				Type: formic.TypeArray,
				Items: &formic.SchemaField{
					Type:     formic.TypeObject,
					Required: []string{"sku"},
					Properties: map[string]*formic.SchemaField{
						"sku": {Type: formic.TypeString},
					},
				},
			},
		},
	}
	session := NewSession(schema, 0)
	defer session.Close()

	require.NoError(t, session.SetField("lines.1.sku", "B-2"))
	snap := session.Snapshot()

	lines, ok := snap.Data["lines"].([]any)
	require.True(t, ok)
	require.Len(t, lines, 2)
	assert.Equal(t, formic.MsgRequired, snap.Errors["lines.0.sku"])
}

func TestSession_SetFieldRejectsBadPaths(t *testing.T) {
	session := NewSession(deliverySessionSchema(), 0)
	defer session.Close()

	assert.Error(t, session.SetField("", "x"))
	assert.Error(t, session.SetField("0.method", "x"))
}

func TestSession_DebounceCoalescesEdits(t *testing.T) {
	session := NewSession(deliverySessionSchema(), 20*time.Millisecond)
	defer session.Close()

	require.NoError(t, session.SetField("method", "delivery"))
	require.NoError(t, session.SetField("address", "1 Main St"))

	assert.Eventually(t, func() bool {
		snap := session.Snapshot()
		return len(snap.Errors) == 0 && snap.Data["address"] == "1 Main St"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSession_SnapshotIsolation(t *testing.T) {
	session := NewSession(deliverySessionSchema(), 0)
	defer session.Close()
	require.NoError(t, session.SetField("method", "pickup"))

	snap := session.Snapshot()
	snap.Data["method"] = "mutated"
	snap.Effective.Required = nil
	snap.Errors["method"] = "mutated"

	again := session.Snapshot()
	assert.Equal(t, "pickup", again.Data["method"])
	assert.Equal(t, []string{"method"}, again.Effective.Required)
	assert.Empty(t, again.Errors)
}

func TestSetValueAtPath_NestedObjects(t *testing.T) {
	target := map[string]any{}
	require.NoError(t, setValueAtPath(target, []string{"details", "engine", "fuel"}, "ev"))

	details := target["details"].(map[string]any)
	engine := details["engine"].(map[string]any)
	assert.Equal(t, "ev", engine["fuel"])
}

func TestSetValueAtPath_PrimitiveArray(t *testing.T) {
	target := map[string]any{}
	require.NoError(t, setValueAtPath(target, []string{"tags", "2"}, "x"))

	tags := target["tags"].([]any)
	assert.Equal(t, []any{nil, nil, "x"}, tags)
}
