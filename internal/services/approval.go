package services

import (
	"encoding/json"
	"fmt"
	"time"

	"riveredge/internal/database"
	"riveredge/internal/models"
	"riveredge/pkg/logger"
	"riveredge/pkg/queue"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ApprovalService struct {
	db      *gorm.DB
	queue   *queue.RedisQueue
	message *MessageService
}

func NewApprovalService() *ApprovalService {
	return &ApprovalService{
		db:      database.GetDB(),
		queue:   database.GetRedisQueue(),
		message: NewMessageService(),
	}
}

// NewApprovalServiceWith 注入依赖的构造方式（测试用）
func NewApprovalServiceWith(db *gorm.DB, q *queue.RedisQueue, m *MessageService) *ApprovalService {
	return &ApprovalService{db: db, queue: q, message: m}
}

// ========== 流程模板 ==========

// CreateProcess 创建审批流程模板
func (s *ApprovalService) CreateProcess(tenantID uint, code, name, description string, nodes []models.ProcessNode) (*models.ApprovalProcess, error) {
	if code == "" || name == "" {
		return nil, fmt.Errorf("流程代码和名称不能为空")
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("流程至少需要一个节点")
	}

	var count int64
	s.db.Model(&models.ApprovalProcess{}).Where("tenant_id = ? AND code = ?", tenantID, code).Count(&count)
	if count > 0 {
		return nil, fmt.Errorf("流程代码已存在")
	}

	nodesJSON, err := json.Marshal(map[string]interface{}{"nodes": nodes})
	if err != nil {
		return nil, err
	}

	process := &models.ApprovalProcess{
		TenantID:    tenantID,
		Code:        code,
		Name:        name,
		Description: description,
		Nodes:       nodesJSON,
		IsActive:    true,
	}
	err = s.db.Create(process).Error
	return process, err
}

// GetProcessByCode 根据代码获取启用的流程
func (s *ApprovalService) GetProcessByCode(tenantID uint, code string) (*models.ApprovalProcess, error) {
	var process models.ApprovalProcess
	err := s.db.Where("tenant_id = ? AND code = ? AND is_active = ?", tenantID, code, true).
		First(&process).Error
	if err != nil {
		return nil, err
	}
	return &process, nil
}

// GetProcesses 获取租户的流程列表
func (s *ApprovalService) GetProcesses(tenantID uint) ([]models.ApprovalProcess, error) {
	var processes []models.ApprovalProcess
	err := s.db.Where("tenant_id = ?", tenantID).Order("created_at DESC").Find(&processes).Error
	return processes, err
}

// parseNodes 解析流程节点列表
func parseNodes(process *models.ApprovalProcess) ([]models.ProcessNode, error) {
	var wrapper struct {
		Nodes []models.ProcessNode `json:"nodes"`
	}
	if err := json.Unmarshal(process.Nodes, &wrapper); err != nil {
		return nil, fmt.Errorf("解析流程节点失败: %v", err)
	}
	if len(wrapper.Nodes) == 0 {
		return nil, fmt.Errorf("流程没有节点")
	}
	return wrapper.Nodes, nil
}

func findNode(nodes []models.ProcessNode, id string) *models.ProcessNode {
	for i := range nodes {
		if nodes[i].ID == id {
			return &nodes[i]
		}
	}
	return nil
}

// ========== 统一入口 ==========

// StartApproval 对业务实体发起审批
// 找不到对应流程时返回nil实例，调用方退回自身的简单审批
func (s *ApprovalService) StartApproval(tenantID, userID uint, processCode, entityType string, entityID uint, entityUUID, title, content string) (*models.ApprovalInstance, error) {
	process, err := s.GetProcessByCode(tenantID, processCode)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	nodes, err := parseNodes(process)
	if err != nil {
		return nil, err
	}
	firstNode := &nodes[0]

	data := datatypes.JSONMap{
		"entity_type": entityType,
		"entity_id":   float64(entityID),
		"entity_uuid": entityUUID,
	}
	if content != "" {
		data["content"] = content
	}

	instance := &models.ApprovalInstance{
		TenantID:    tenantID,
		ProcessID:   process.ID,
		Title:       title,
		Data:        data,
		Status:      models.ApprovalStatusPending,
		CurrentNode: &firstNode.ID,
		SubmitterID: userID,
		SubmittedAt: time.Now(),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(instance).Error; err != nil {
			return err
		}
		if err := s.createNodeTasks(tx, instance, firstNode); err != nil {
			return err
		}
		return s.writeHistory(tx, instance, models.ApprovalActionSubmit, userID, "", "", firstNode.ID, nil, nil)
	})
	if err != nil {
		return nil, err
	}

	s.notify(instance, []uint{userID}, "您提交的审批已发起: "+title)
	s.notify(instance, firstNode.Data.UserIDs, "您有新的审批待处理: "+title)
	s.publishEvent(instance, models.ApprovalActionSubmit, userID)
	return instance, nil
}

// GetApprovalStatus 查询实体的审批状态
// 取data中entity_type/entity_id匹配的最新实例
func (s *ApprovalService) GetApprovalStatus(tenantID uint, entityType string, entityID uint) (map[string]interface{}, error) {
	instance, err := s.findLatestInstance(tenantID, entityType, entityID)
	if err != nil {
		return nil, err
	}
	if instance == nil {
		return map[string]interface{}{"has_flow": false}, nil
	}

	var tasks []models.ApprovalTask
	if err := s.db.Where("instance_id = ?", instance.ID).Order("created_at").
		Preload("Approver").Find(&tasks).Error; err != nil {
		return nil, err
	}
	var history []models.ApprovalHistory
	if err := s.db.Where("instance_id = ?", instance.ID).Order("action_at").
		Find(&history).Error; err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"has_flow":     true,
		"status":       instance.Status,
		"current_node": instance.CurrentNode,
		"tasks":        tasks,
		"history":      history,
	}, nil
}

// ExecuteApproval 对实体执行审批：定位审批人在最新实例上的待办任务
func (s *ApprovalService) ExecuteApproval(tenantID uint, entityType string, entityID, approverID uint, approved bool, comment string) error {
	instance, err := s.findLatestInstance(tenantID, entityType, entityID)
	if err != nil {
		return err
	}
	if instance == nil {
		return fmt.Errorf("未找到审批实例")
	}

	var task models.ApprovalTask
	err = s.db.Where("instance_id = ? AND approver_id = ? AND status = ?",
		instance.ID, approverID, models.ApprovalStatusPending).First(&task).Error
	if err != nil {
		return fmt.Errorf("没有待处理的审批任务")
	}

	if approved {
		return s.Approve(tenantID, task.UUID, approverID, comment)
	}
	return s.Reject(tenantID, task.UUID, approverID, comment)
}

// CancelApproval 撤销实体的进行中审批
func (s *ApprovalService) CancelApproval(tenantID uint, entityType string, entityID, operatorID uint) error {
	instance, err := s.findLatestInstance(tenantID, entityType, entityID)
	if err != nil {
		return err
	}
	if instance == nil || instance.Status != models.ApprovalStatusPending {
		return fmt.Errorf("没有进行中的审批")
	}
	return s.cancelInstance(instance.ID, operatorID, "")
}

// findLatestInstance 在最近100个实例里找entity匹配的最新一条
func (s *ApprovalService) findLatestInstance(tenantID uint, entityType string, entityID uint) (*models.ApprovalInstance, error) {
	var instances []models.ApprovalInstance
	err := s.db.Where("tenant_id = ?", tenantID).
		Order("created_at DESC").Limit(100).Find(&instances).Error
	if err != nil {
		return nil, err
	}
	for i := range instances {
		data := instances[i].Data
		if data == nil {
			continue
		}
		t, _ := data["entity_type"].(string)
		id, _ := data["entity_id"].(float64)
		if t == entityType && uint(id) == entityID {
			return &instances[i], nil
		}
	}
	return nil, nil
}

// ========== 任务操作 ==========

// Approve 通过任务
func (s *ApprovalService) Approve(tenantID uint, taskUUID string, approverID uint, comment string) error {
	return s.actOnTask(tenantID, taskUUID, approverID, comment, true)
}

// Reject 驳回任务，实例立即终止
func (s *ApprovalService) Reject(tenantID uint, taskUUID string, approverID uint, comment string) error {
	return s.actOnTask(tenantID, taskUUID, approverID, comment, false)
}

func (s *ApprovalService) actOnTask(tenantID uint, taskUUID string, approverID uint, comment string, approved bool) error {
	var terminal string
	var instanceID uint
	var nextNode *models.ProcessNode

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var task models.ApprovalTask
		err := tx.Where("tenant_id = ? AND uuid = ?", tenantID, taskUUID).First(&task).Error
		if err != nil {
			return fmt.Errorf("审批任务不存在")
		}
		if task.ApproverID != approverID {
			return fmt.Errorf("只有指派的审批人可以处理该任务")
		}
		if task.Status != models.ApprovalStatusPending {
			return fmt.Errorf("任务已处理")
		}

		// 实例加行锁，串行化并发审批
		var instance models.ApprovalInstance
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("Process").First(&instance, task.InstanceID).Error
		if err != nil {
			return err
		}
		if instance.Status != models.ApprovalStatusPending {
			return fmt.Errorf("审批已结束")
		}
		instanceID = instance.ID

		now := time.Now()
		task.ActionAt = &now
		task.Comment = comment

		if !approved {
			task.Status = models.ApprovalStatusRejected
			if err := tx.Save(&task).Error; err != nil {
				return err
			}
			if err := s.writeHistory(tx, &instance, models.ApprovalActionReject, approverID, comment, derefNode(instance.CurrentNode), "", &approverID, nil); err != nil {
				return err
			}
			// 任一驳回即整单驳回
			if err := s.finishInstance(tx, &instance, models.ApprovalStatusRejected); err != nil {
				return err
			}
			terminal = models.ApprovalStatusRejected
			return nil
		}

		task.Status = models.ApprovalStatusApproved
		if err := tx.Save(&task).Error; err != nil {
			return err
		}
		if err := s.writeHistory(tx, &instance, models.ApprovalActionApprove, approverID, comment, derefNode(instance.CurrentNode), "", &approverID, nil); err != nil {
			return err
		}

		nodes, err := parseNodes(instance.Process)
		if err != nil {
			return err
		}
		node := findNode(nodes, task.NodeID)
		if node == nil {
			return fmt.Errorf("流程节点 %s 不存在", task.NodeID)
		}

		passed, err := s.nodeComplete(tx, &instance, node)
		if err != nil {
			return err
		}
		if !passed {
			return nil
		}

		// 节点通过：取第一条出边
		if len(node.Data.Edges) > 0 {
			next := findNode(nodes, node.Data.Edges[0].Target)
			if next != nil {
				nextNode = next
				return s.advanceToNode(tx, &instance, node, next)
			}
		}
		if err := s.finishInstance(tx, &instance, models.ApprovalStatusApproved); err != nil {
			return err
		}
		terminal = models.ApprovalStatusApproved
		return nil
	})
	if err != nil {
		return err
	}

	// 终态回调与通知，失败只记日志
	if terminal != "" {
		s.onTerminal(instanceID, terminal, approverID)
	}
	action := models.ApprovalActionApprove
	if !approved {
		action = models.ApprovalActionReject
	}
	var instance models.ApprovalInstance
	if err := s.db.First(&instance, instanceID).Error; err == nil {
		s.publishEvent(&instance, action, approverID)
		if terminal != "" {
			s.notify(&instance, []uint{instance.SubmitterID}, terminalNotice(terminal, instance.Title))
		} else {
			s.notify(&instance, []uint{instance.SubmitterID}, fmt.Sprintf("审批 %s 有新的进展", instance.Title))
		}
		if nextNode != nil {
			s.notify(&instance, nextNode.Data.UserIDs, "您有新的审批待处理: "+instance.Title)
		}
	}
	return nil
}

// nodeComplete 判断节点是否通过：OR任一通过，AND全部通过
func (s *ApprovalService) nodeComplete(tx *gorm.DB, instance *models.ApprovalInstance, node *models.ProcessNode) (bool, error) {
	var tasks []models.ApprovalTask
	err := tx.Where("instance_id = ? AND node_id = ?", instance.ID, node.ID).Find(&tasks).Error
	if err != nil {
		return false, err
	}

	if node.Data.ApprovalType == models.ApprovalTypeOr {
		for _, t := range tasks {
			if t.Status == models.ApprovalStatusApproved {
				return true, nil
			}
		}
		return false, nil
	}

	// 默认会签
	for _, t := range tasks {
		if t.Status == models.ApprovalStatusPending || t.Status == models.ApprovalStatusRejected {
			return false, nil
		}
	}
	return len(tasks) > 0, nil
}

// advanceToNode 推进到下一节点：建新任务、取消上一节点剩余待办
func (s *ApprovalService) advanceToNode(tx *gorm.DB, instance *models.ApprovalInstance, from, to *models.ProcessNode) error {
	if err := tx.Model(&models.ApprovalTask{}).
		Where("instance_id = ? AND node_id = ? AND status = ?",
			instance.ID, from.ID, models.ApprovalStatusPending).
		Update("status", models.ApprovalStatusCancelled).Error; err != nil {
		return err
	}

	instance.CurrentNode = &to.ID
	if len(to.Data.UserIDs) > 0 {
		instance.CurrentApproverID = &to.Data.UserIDs[0]
	}
	if err := tx.Save(instance).Error; err != nil {
		return err
	}
	if err := s.createNodeTasks(tx, instance, to); err != nil {
		return err
	}
	return s.writeHistory(tx, instance, models.ApprovalActionApprove, instance.SubmitterID, "", from.ID, to.ID, nil, nil)
}

func (s *ApprovalService) createNodeTasks(tx *gorm.DB, instance *models.ApprovalInstance, node *models.ProcessNode) error {
	if len(node.Data.UserIDs) == 0 {
		return fmt.Errorf("节点 %s 没有审批人", node.ID)
	}
	for _, userID := range node.Data.UserIDs {
		task := models.ApprovalTask{
			TenantID:   instance.TenantID,
			InstanceID: instance.ID,
			NodeID:     node.ID,
			ApproverID: userID,
			Status:     models.ApprovalStatusPending,
		}
		if err := tx.Create(&task).Error; err != nil {
			return err
		}
	}
	return nil
}

// finishInstance 实例进入终态：清空当前节点，取消全部剩余待办
func (s *ApprovalService) finishInstance(tx *gorm.DB, instance *models.ApprovalInstance, status string) error {
	now := time.Now()
	instance.Status = status
	instance.CurrentNode = nil
	instance.CurrentApproverID = nil
	instance.CompletedAt = &now
	if err := tx.Save(instance).Error; err != nil {
		return err
	}
	return tx.Model(&models.ApprovalTask{}).
		Where("instance_id = ? AND status = ?", instance.ID, models.ApprovalStatusPending).
		Update("status", models.ApprovalStatusCancelled).Error
}

// Transfer 转办任务
func (s *ApprovalService) Transfer(tenantID uint, taskUUID string, approverID, transferToUserID uint, comment string) error {
	if transferToUserID == 0 {
		return fmt.Errorf("转办目标用户不能为空")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var task models.ApprovalTask
		err := tx.Where("tenant_id = ? AND uuid = ?", tenantID, taskUUID).First(&task).Error
		if err != nil {
			return fmt.Errorf("审批任务不存在")
		}
		if task.ApproverID != approverID {
			return fmt.Errorf("只有指派的审批人可以转办该任务")
		}
		if task.Status != models.ApprovalStatusPending {
			return fmt.Errorf("任务已处理")
		}

		var target models.User
		if err := tx.Where("tenant_id = ? AND id = ?", tenantID, transferToUserID).First(&target).Error; err != nil {
			return fmt.Errorf("转办目标用户不存在")
		}

		from := task.ApproverID
		task.ApproverID = transferToUserID
		if err := tx.Save(&task).Error; err != nil {
			return err
		}

		var instance models.ApprovalInstance
		if err := tx.First(&instance, task.InstanceID).Error; err != nil {
			return err
		}
		return s.writeHistory(tx, &instance, models.ApprovalActionTransfer, approverID, comment,
			derefNode(instance.CurrentNode), "", &from, &transferToUserID)
	})
}

// Cancel 提交人撤销实例
func (s *ApprovalService) Cancel(tenantID uint, instanceUUID string, operatorID uint, comment string) error {
	var instance models.ApprovalInstance
	err := s.db.Where("tenant_id = ? AND uuid = ?", tenantID, instanceUUID).First(&instance).Error
	if err != nil {
		return fmt.Errorf("审批实例不存在")
	}
	if instance.SubmitterID != operatorID {
		return fmt.Errorf("只有提交人可以撤销审批")
	}
	if instance.Status != models.ApprovalStatusPending {
		return fmt.Errorf("审批已结束")
	}
	return s.cancelInstance(instance.ID, operatorID, comment)
}

func (s *ApprovalService) cancelInstance(instanceID, operatorID uint, comment string) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var instance models.ApprovalInstance
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&instance, instanceID).Error
		if err != nil {
			return err
		}
		if instance.Status != models.ApprovalStatusPending {
			return fmt.Errorf("审批已结束")
		}
		if err := s.writeHistory(tx, &instance, models.ApprovalActionCancel, operatorID, comment, derefNode(instance.CurrentNode), "", nil, nil); err != nil {
			return err
		}
		return s.finishInstance(tx, &instance, models.ApprovalStatusCancelled)
	})
	if err != nil {
		return err
	}

	var instance models.ApprovalInstance
	if err := s.db.First(&instance, instanceID).Error; err == nil {
		s.publishEvent(&instance, models.ApprovalActionCancel, operatorID)
	}
	return nil
}

// ========== 查询 ==========

// GetPendingTasks 查询审批人的待办任务
func (s *ApprovalService) GetPendingTasks(tenantID, approverID uint) ([]models.ApprovalTask, error) {
	var tasks []models.ApprovalTask
	err := s.db.Where("tenant_id = ? AND approver_id = ? AND status = ?",
		tenantID, approverID, models.ApprovalStatusPending).
		Preload("Instance").Order("created_at DESC").Find(&tasks).Error
	return tasks, err
}

// GetInstanceByUUID 根据UUID获取实例
func (s *ApprovalService) GetInstanceByUUID(tenantID uint, uuid string) (*models.ApprovalInstance, error) {
	var instance models.ApprovalInstance
	err := s.db.Where("tenant_id = ? AND uuid = ?", tenantID, uuid).
		Preload("Process").Preload("Tasks").First(&instance).Error
	if err != nil {
		return nil, err
	}
	return &instance, nil
}

// ========== 历史、回调、通知 ==========

func (s *ApprovalService) writeHistory(tx *gorm.DB, instance *models.ApprovalInstance, action string, actionBy uint, comment, fromNode, toNode string, fromApprover, toApprover *uint) error {
	history := models.ApprovalHistory{
		TenantID:     instance.TenantID,
		InstanceID:   instance.ID,
		Action:       action,
		ActionBy:     actionBy,
		ActionAt:     time.Now(),
		Comment:      comment,
		FromNode:     fromNode,
		ToNode:       toNode,
		FromApprover: fromApprover,
		ToApprover:   toApprover,
	}
	return tx.Create(&history).Error
}

func derefNode(node *string) string {
	if node == nil {
		return ""
	}
	return *node
}

// onTerminal 终态回调：按entity_type分发到注册的实体适配器
func (s *ApprovalService) onTerminal(instanceID uint, status string, reviewerID uint) {
	var instance models.ApprovalInstance
	if err := s.db.First(&instance, instanceID).Error; err != nil {
		return
	}
	entityType, _ := instance.Data["entity_type"].(string)
	entityID, _ := instance.Data["entity_id"].(float64)
	if entityType == "" {
		return
	}

	adapter, ok := approvalAdapters[entityType]
	if !ok {
		return
	}
	if err := adapter(s.db, instance.TenantID, uint(entityID), status, reviewerID); err != nil {
		logger.GetLogger().Errorf("审批回调 %s 失败: %v", entityType, err)
	}
}

// publishEvent 发送审批动作事件，失败只记日志
func (s *ApprovalService) publishEvent(instance *models.ApprovalInstance, action string, userID uint) {
	if s.queue == nil {
		return
	}
	_, err := s.queue.Publish(queue.EventApprovalAction, instance.TenantID, userID, "", map[string]interface{}{
		"instance_uuid": instance.UUID,
		"action":        action,
		"status":        instance.Status,
		"title":         instance.Title,
	})
	if err != nil {
		logger.GetLogger().Warnf("发送审批事件失败: %v", err)
	}
}

// notify 给一组用户发站内消息通知，失败只记日志
func (s *ApprovalService) notify(instance *models.ApprovalInstance, userIDs []uint, content string) {
	if s.message == nil {
		return
	}
	for _, userID := range userIDs {
		if err := s.message.SendInApp(instance.TenantID, userID, instance.Title, content); err != nil {
			logger.GetLogger().Warnf("发送审批通知失败: %v", err)
		}
	}
}

// terminalNotice 终态时给提交人的结果通知文案
func terminalNotice(status, title string) string {
	switch status {
	case models.ApprovalStatusApproved:
		return fmt.Sprintf("审批 %s 已通过", title)
	case models.ApprovalStatusRejected:
		return fmt.Sprintf("审批 %s 已驳回", title)
	}
	return fmt.Sprintf("审批 %s 已结束", title)
}
