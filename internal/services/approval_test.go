package services

import (
	"testing"

	"riveredge/internal/models"
	"riveredge/pkg/queue"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestParseNodes(t *testing.T) {
	process := &models.ApprovalProcess{
		Nodes: datatypes.JSON(`{"nodes":[
			{"id":"start","type":"start"},
			{"id":"n1","type":"approval","data":{"label":"部门审批","approval_type":"AND","user_ids":[1,2]}},
			{"id":"end","type":"end"}
		]}`),
	}

	nodes, err := parseNodes(process)
	require.NoError(t, err)
	require.Len(t, nodes, 3)
	assert.Equal(t, "start", nodes[0].ID)
	assert.Equal(t, "approval", nodes[1].Type)
	assert.Equal(t, "AND", nodes[1].Data.ApprovalType)
	assert.Equal(t, []uint{1, 2}, nodes[1].Data.UserIDs)
}

func TestParseNodesEmpty(t *testing.T) {
	process := &models.ApprovalProcess{Nodes: datatypes.JSON(`{"nodes":[]}`)}
	_, err := parseNodes(process)
	assert.Error(t, err)

	process = &models.ApprovalProcess{Nodes: datatypes.JSON(`not json`)}
	_, err = parseNodes(process)
	assert.Error(t, err)
}

func TestFindNode(t *testing.T) {
	nodes := []models.ProcessNode{
		{ID: "start", Type: "start"},
		{ID: "n1", Type: "approval"},
	}

	node := findNode(nodes, "n1")
	require.NotNil(t, node)
	assert.Equal(t, "approval", node.Type)

	assert.Nil(t, findNode(nodes, "missing"))
}

func TestDerefNode(t *testing.T) {
	assert.Equal(t, "", derefNode(nil))
	name := "n1"
	assert.Equal(t, "n1", derefNode(&name))
}

const andNodesJSON = `{"nodes":[
	{"id":"n1","type":"approval","data":{"approval_type":"AND","user_ids":[2,4],"edges":[{"target":"n2"}]}},
	{"id":"n2","type":"approval","data":{"user_ids":[6]}}
]}`

func instanceRows(status, currentNode string) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "tenant_id", "process_id", "title", "status", "current_node", "submitter_id"})
	if currentNode == "" {
		return rows.AddRow(9, 1, 2, "物料审批", status, nil, 3)
	}
	return rows.AddRow(9, 1, 2, "物料审批", status, currentNode, 3)
}

// 会签节点任一驳回：实例进终态，同节点其余待办一并取消
func TestRejectCancelsSiblingTasks(t *testing.T) {
	db, mock := newMockGorm(t)
	s := NewApprovalServiceWith(db, nil, nil)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "core_approval_tasks" WHERE \(tenant_id = \$1 AND uuid = \$2\)`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "instance_id", "node_id", "approver_id", "status"}).
			AddRow(5, 1, 9, "n1", 2, "pending"))
	mock.ExpectQuery(`SELECT \* FROM "core_approval_instances" .* FOR UPDATE`).
		WillReturnRows(instanceRows("pending", "n1"))
	mock.ExpectQuery(`SELECT \* FROM "core_approval_processes"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "nodes"}).AddRow(2, andNodesJSON))
	// 驳回任务落库
	mock.ExpectExec(`UPDATE "core_approval_tasks" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "core_approval_histories"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	// Save 实例时级联 upsert 预加载的流程
	mock.ExpectQuery(`INSERT INTO "core_approval_processes"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
	// 实例进终态
	mock.ExpectExec(`UPDATE "core_approval_instances" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// 另一会签人的待办被取消
	mock.ExpectExec(`UPDATE "core_approval_tasks" SET`).
		WithArgs("cancelled", sqlmock.AnyArg(), 9, "pending").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// 终态回调再取实例，data为空则直接返回
	mock.ExpectQuery(`SELECT \* FROM "core_approval_instances"`).
		WillReturnRows(instanceRows("rejected", ""))
	// 事后通知前的实例重取
	mock.ExpectQuery(`SELECT \* FROM "core_approval_instances"`).
		WillReturnRows(instanceRows("rejected", ""))

	err := s.Reject(1, "task-uuid", 2, "物料信息不完整")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// 节点通过推进到下一节点：新审批人建待办并收到站内消息
func TestApproveAdvanceNotifiesNextApprovers(t *testing.T) {
	db, mock := newMockGorm(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	q := queue.NewRedisQueueWithClient(client, "test:queue")
	s := NewApprovalServiceWith(db, q, NewMessageServiceWith(db, q))

	orNodesJSON := `{"nodes":[
		{"id":"n1","type":"approval","data":{"user_ids":[2],"edges":[{"target":"n2"}]}},
		{"id":"n2","type":"approval","data":{"user_ids":[4]}}
	]}`

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "core_approval_tasks" WHERE \(tenant_id = \$1 AND uuid = \$2\)`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "instance_id", "node_id", "approver_id", "status"}).
			AddRow(5, 1, 9, "n1", 2, "pending"))
	mock.ExpectQuery(`SELECT \* FROM "core_approval_instances" .* FOR UPDATE`).
		WillReturnRows(instanceRows("pending", "n1"))
	mock.ExpectQuery(`SELECT \* FROM "core_approval_processes"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "nodes"}).AddRow(2, orNodesJSON))
	// 通过任务落库
	mock.ExpectExec(`UPDATE "core_approval_tasks" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "core_approval_histories"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	// 节点任务全部通过
	mock.ExpectQuery(`SELECT \* FROM "core_approval_tasks" WHERE \(instance_id = \$1 AND node_id = \$2\)`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow(5, "approved"))
	// 上一节点剩余待办取消
	mock.ExpectExec(`UPDATE "core_approval_tasks" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	// Save 实例时级联 upsert 预加载的流程
	mock.ExpectQuery(`INSERT INTO "core_approval_processes"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
	mock.ExpectExec(`UPDATE "core_approval_instances" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// 下一节点新建待办
	mock.ExpectQuery(`INSERT INTO "core_approval_tasks"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(6))
	mock.ExpectQuery(`INSERT INTO "core_approval_histories"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
	mock.ExpectCommit()

	// 事后通知前的实例重取
	mock.ExpectQuery(`SELECT \* FROM "core_approval_instances"`).
		WillReturnRows(instanceRows("pending", "n2"))
	// 提交人收到进展通知
	mock.ExpectQuery(`SELECT \* FROM "core_users" WHERE \(tenant_id = \$1 AND id = \$2\)`).
		WithArgs(1, 3, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "username"}).AddRow(3, 1, "zhangsan"))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "core_message_logs"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectCommit()
	// 新节点审批人收到待办通知
	mock.ExpectQuery(`SELECT \* FROM "core_users" WHERE \(tenant_id = \$1 AND id = \$2\)`).
		WithArgs(1, 4, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "username"}).AddRow(4, 1, "lisi"))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "core_message_logs"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(12))
	mock.ExpectCommit()

	err := s.Approve(1, "task-uuid", 2, "同意")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTerminalNotice(t *testing.T) {
	assert.Equal(t, "审批 物料审批 已通过", terminalNotice(models.ApprovalStatusApproved, "物料审批"))
	assert.Equal(t, "审批 物料审批 已驳回", terminalNotice(models.ApprovalStatusRejected, "物料审批"))
	assert.Equal(t, "审批 物料审批 已结束", terminalNotice(models.ApprovalStatusCancelled, "物料审批"))
}
