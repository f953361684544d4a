package services

import (
	"fmt"
	"net"
	"net/smtp"
	"time"

	"riveredge/internal/database"
	"riveredge/internal/models"
	"riveredge/pkg/logger"
	"riveredge/pkg/pagination"
	"riveredge/pkg/queue"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type MessageService struct {
	db    *gorm.DB
	queue *queue.RedisQueue
}

func NewMessageService() *MessageService {
	return &MessageService{
		db:    database.GetDB(),
		queue: database.GetRedisQueue(),
	}
}

// NewMessageServiceWith 注入依赖的构造方式（测试用）
func NewMessageServiceWith(db *gorm.DB, q *queue.RedisQueue) *MessageService {
	return &MessageService{db: db, queue: q}
}

// Send 发送消息：先落MessageLog，再投递message/send事件给外部执行器
// 事件投递失败时记录置为failed，不做本地重试
func (s *MessageService) Send(tenantID uint, channel, recipient string, recipientID *uint, subject, content string, extra map[string]interface{}) (*models.MessageLog, error) {
	if channel != models.MessageChannelEmail && channel != models.MessageChannelSMS && channel != models.MessageChannelInApp {
		return nil, fmt.Errorf("无效的消息通道")
	}

	log := &models.MessageLog{
		TenantID:    tenantID,
		Channel:     channel,
		Recipient:   recipient,
		RecipientID: recipientID,
		Subject:     subject,
		Content:     content,
		Extra:       datatypes.JSONMap(extra),
		Status:      models.MessageStatusPending,
	}
	if err := s.db.Create(log).Error; err != nil {
		return nil, err
	}

	_, err := s.queue.Publish(queue.EventMessageSend, tenantID, 0, "", map[string]interface{}{
		"message_uuid": log.UUID,
		"channel":      channel,
		"recipient":    recipient,
		"subject":      subject,
	})
	if err != nil {
		logger.GetLogger().Warnf("投递消息事件失败: %v", err)
		s.db.Model(log).Updates(map[string]interface{}{
			"status": models.MessageStatusFailed,
			"error":  err.Error(),
		})
		return log, nil
	}

	// 站内消息额外走Pub/Sub实时推送，在线用户的WebSocket立即收到
	if channel == models.MessageChannelInApp && recipientID != nil {
		if err := s.queue.PublishNotification(tenantID, *recipientID, map[string]interface{}{
			"message_uuid": log.UUID,
			"subject":      subject,
			"created_at":   log.CreatedAt,
		}); err != nil {
			logger.GetLogger().Warnf("推送站内消息通知失败: %v", err)
		}
	}

	return log, nil
}

// SendInApp 发送站内消息
func (s *MessageService) SendInApp(tenantID, userID uint, subject, content string) error {
	var user models.User
	if err := s.db.Where("tenant_id = ? AND id = ?", tenantID, userID).First(&user).Error; err != nil {
		return fmt.Errorf("接收人不存在")
	}
	_, err := s.Send(tenantID, models.MessageChannelInApp, user.Username, &userID, subject, content, nil)
	return err
}

// MarkSent 外部执行器回写发送结果
func (s *MessageService) MarkSent(tenantID uint, messageUUID string, success bool, errMsg string) error {
	var log models.MessageLog
	if err := s.db.Where("tenant_id = ? AND uuid = ?", tenantID, messageUUID).First(&log).Error; err != nil {
		return err
	}
	updates := map[string]interface{}{}
	if success {
		now := time.Now()
		updates["status"] = models.MessageStatusSent
		updates["sent_at"] = now
	} else {
		updates["status"] = models.MessageStatusFailed
		updates["error"] = errMsg
	}
	return s.db.Model(&log).Updates(updates).Error
}

// ListInApp 查询用户的站内消息
func (s *MessageService) ListInApp(tenantID, userID uint, params *pagination.PageParams, unreadOnly bool) ([]models.MessageLog, int64, error) {
	query := s.db.Model(&models.MessageLog{}).
		Where("tenant_id = ? AND channel = ? AND recipient_id = ?", tenantID, models.MessageChannelInApp, userID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var messages []models.MessageLog
	err := query.Order("created_at DESC").
		Offset(params.GetOffset()).Limit(params.GetLimit()).
		Find(&messages).Error
	return messages, total, err
}

// MarkRead 标记站内消息已读
func (s *MessageService) MarkRead(tenantID, userID uint, messageUUID string) error {
	return s.db.Model(&models.MessageLog{}).
		Where("tenant_id = ? AND uuid = ? AND recipient_id = ?", tenantID, messageUUID, userID).
		Update("is_read", true).Error
}

// TestSMTP 探测SMTP服务连通性
func (s *MessageService) TestSMTP(host string, port int, username, password string) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return fmt.Errorf("连接SMTP服务失败: %v", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return fmt.Errorf("SMTP握手失败: %v", err)
	}
	defer client.Close()

	if username != "" {
		auth := smtp.PlainAuth("", username, password, host)
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return fmt.Errorf("SMTP认证失败: %v", err)
			}
		}
	}
	return nil
}
