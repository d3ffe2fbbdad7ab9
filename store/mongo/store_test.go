package mongo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	mongod "go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/xraph/azguard/checklog"
	"github.com/xraph/azguard/id"
	"github.com/xraph/azguard/store"
	"github.com/xraph/azguard/task"
)

func TestMapWriteErr(t *testing.T) {
	dup := mongod.WriteException{WriteErrors: []mongod.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}
	assert.ErrorIs(t, mapWriteErr("create role", dup), store.ErrDuplicate)

	denied := mongod.CommandError{Code: 13, Message: "not authorized"}
	var se *store.Error
	require.ErrorAs(t, mapWriteErr("create role", denied), &se)
	assert.Equal(t, "13", se.Code)
	assert.Contains(t, se.Error(), "not authorized")

	invalid := mongod.WriteException{WriteErrors: []mongod.WriteError{{Code: 121, Message: "document failed validation"}}}
	require.ErrorAs(t, mapWriteErr("create task", invalid), &se)
	assert.Equal(t, "121", se.Code)
}

func TestTaskFilter(t *testing.T) {
	appID := id.NewApplicationID()
	scope := "EMEA"
	isDef := false

	f := taskFilter(&task.ListFilter{AppID: appID, Scope: &scope, IsRoleDefinition: &isDef, Search: "a.b"})
	assert.Equal(t, appID.String(), f["app_id"])
	assert.Equal(t, "EMEA", f["scope"])
	assert.Equal(t, false, f["is_role_definition"])
	assert.Equal(t, bson.M{"$regex": `a\.b`, "$options": "i"}, f["name"])

	assert.Empty(t, taskFilter(nil))
}

func TestCheckLogFilterIsExclusive(t *testing.T) {
	after := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	before := after.Add(time.Hour)
	allowed := true

	f := checkLogFilter(&checklog.QueryFilter{UserName: "alice", Allowed: &allowed, After: &after, Before: &before})
	assert.Equal(t, "alice", f["user_name"])
	assert.Equal(t, true, f["allowed"])
	assert.Equal(t, bson.M{"$gt": after, "$lt": before}, f["created_at"])
	assert.NotContains(t, f, "app_id")
}

func TestMigrationIndexesAreUnique(t *testing.T) {
	idx := migrationIndexes()
	for _, col := range []string{colApplications, colScopes, colOperations, colTasks, colRoles, colAssignments} {
		require.NotEmpty(t, idx[col], col)
		assert.NotNil(t, idx[col][0].Options, col)
	}
	assert.Len(t, idx[colOperations], 2)
}
