// Package notification 提供邮件通知边界
package notification

import (
	"fmt"
	"log"
	"net/smtp"

	"github.com/dyohan9/bothub-engine/internal/config"
)

// Kind 通知模板类别
type Kind string

const (
	KindPasswordReset Kind = "password_reset" // 密码重置
	KindRoleChanged   Kind = "role_changed"   // 仓库角色变更
)

// Message 一封待发送的通知
type Message struct {
	Recipient string
	Kind      Kind
	Subject   string
	Body      string
}

// Mailer 邮件通知接口
type Mailer interface {
	Send(msg *Message) error
}

// SMTPMailer 基于 SMTP 的邮件实现
type SMTPMailer struct {
	cfg *config.SMTPConfig
}

// NewSMTPMailer 创建 SMTP 邮件实现
func NewSMTPMailer(cfg *config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

// Send 发送邮件
func (m *SMTPMailer) Send(msg *Message) error {
	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	}

	content := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		m.cfg.From, msg.Recipient, msg.Subject, msg.Body,
	)
	if err := smtp.SendMail(m.cfg.GetAddr(), auth, m.cfg.From, []string{msg.Recipient}, []byte(content)); err != nil {
		return fmt.Errorf("failed to send %s mail: %w", msg.Kind, err)
	}
	return nil
}

// LogMailer 只记录日志的邮件实现，用于开发与测试
type LogMailer struct{}

// NewLogMailer 创建日志邮件实现
func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

// Send 记录邮件内容
func (m *LogMailer) Send(msg *Message) error {
	log.Printf("mail [%s] to %s: %s", msg.Kind, msg.Recipient, msg.Subject)
	return nil
}

// New 根据配置选择邮件实现
func New(cfg *config.SMTPConfig) Mailer {
	if cfg.Enabled {
		return NewSMTPMailer(cfg)
	}
	return NewLogMailer()
}
