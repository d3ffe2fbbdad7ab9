package sqlite

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/azguard/id"
	"github.com/xraph/azguard/store"
	"github.com/xraph/azguard/task"
)

func TestTaskModelJSONColumns(t *testing.T) {
	in := &task.Task{
		ID:         id.NewTaskID(),
		AppID:      id.NewApplicationID(),
		Name:       "Approve",
		Operations: []string{"ApproveInvoice", "ViewInvoice"},
		Metadata:   map[string]any{"owner": "finance"},
	}
	m, err := taskToModel(in)
	require.NoError(t, err)
	assert.Equal(t, `["ApproveInvoice","ViewInvoice"]`, m.Operations)
	assert.Equal(t, `[]`, m.Tasks)

	out, err := taskFromModel(m)
	require.NoError(t, err)
	assert.Equal(t, in.ID, out.ID)
	assert.Equal(t, in.Operations, out.Operations)
	assert.Empty(t, out.Tasks)
	assert.Equal(t, "finance", out.Metadata["owner"])
}

func TestFromJSONToleratesEmpty(t *testing.T) {
	var ops []string
	require.NoError(t, fromJSON("", &ops))
	require.NoError(t, fromJSON("null", &ops))
	assert.Nil(t, ops)
	assert.Error(t, fromJSON("{", &ops))
}

func TestMapWriteErr(t *testing.T) {
	err := mapWriteErr("create role", errors.New("UNIQUE constraint failed: azguard_roles.app_id, azguard_roles.scope, azguard_roles.name"))
	assert.ErrorIs(t, err, store.ErrDuplicate)

	err = mapWriteErr("create role", errors.New("disk I/O error"))
	assert.NotErrorIs(t, err, store.ErrDuplicate)
	assert.Contains(t, err.Error(), "disk I/O error")
}
