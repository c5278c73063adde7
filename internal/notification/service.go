package notification

import (
	"log"

	"fulqrun-crm/internal/config"
	"fulqrun-crm/internal/models"
	"fulqrun-crm/internal/pipeline"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Service шле Telegram-алерти по угодах під ризиком
type Service struct {
	bot         *tgbotapi.BotAPI
	alertChatID int64
	filter      *Filter
	formatter   *Formatter
	enabled     bool
}

// NewService створює новий notification Service. При вимкненому Telegram
// сервіс працює як no-op.
func NewService(cfg config.TelegramConfig) (*Service, error) {
	s := &Service{
		alertChatID: cfg.AlertChatID,
		filter:      NewFilter(),
		formatter:   NewFormatter(),
		enabled:     cfg.Enabled,
	}

	if !cfg.Enabled {
		return s, nil
	}

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}
	s.bot = bot

	log.Printf("✅ Telegram notifications enabled (bot: %s)", bot.Self.UserName)
	return s, nil
}

// NotifyDealHealth алертить власника угоди якщо health критичний
func (s *Service) NotifyDealHealth(opp *models.Opportunity, analysis pipeline.AnalyticsResult) {
	if !s.enabled || s.bot == nil {
		return
	}

	if !s.filter.ShouldNotify(opp, analysis) {
		return
	}

	chatID := opp.OwnerChatID
	if chatID == 0 {
		chatID = s.alertChatID
	}
	if chatID == 0 {
		return
	}

	text := s.formatter.FormatCriticalDeal(opp, analysis)
	s.send(chatID, text)
}

// NotifySweepSummary шле підсумок нічного sweep у загальний чат
func (s *Service) NotifySweepSummary(snapshot *models.PipelineSnapshot) {
	if !s.enabled || s.bot == nil || s.alertChatID == 0 {
		return
	}

	s.send(s.alertChatID, s.formatter.FormatSweepSummary(snapshot))
}

// ResetDeal скидає алерт-cooldown угоди (викликається після зміни стадії)
func (s *Service) ResetDeal(dealID uint) {
	s.filter.Reset(dealID)
}

func (s *Service) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	if _, err := s.bot.Send(msg); err != nil {
		log.Printf("❌ Failed to send Telegram alert: %v", err)
	}
}
