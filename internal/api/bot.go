package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	app "agar-mic/internal/application"
	"agar-mic/internal/domain/entity"
	"agar-mic/internal/infrastructure/imagefs"
)

// Bot представляет Telegram-бота
type Bot struct {
	api      *tgbotapi.BotAPI
	sessions *app.SessionService
	mic      *app.SusceptibilityService
	wg       sync.WaitGroup
}

// NewBot создаёт нового бота
func NewBot(token string, sessions *app.SessionService, mic *app.SusceptibilityService) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.Printf("Authorized on account %s", api.Self.UserName)

	return &Bot{
		api:      api,
		sessions: sessions,
		mic:      mic,
	}, nil
}

// Run запускает основной цикл обработки сообщений
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.wg.Wait()
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}

	// Обработка команд
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	// Обработка фото: сжатое фото или изображение, отправленное файлом.
	// Оценка идёт в фоне, чтобы не задерживать другие чаты.
	if fileID, ok := photoFileID(msg); ok {
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			b.handlePhoto(ctx, msg, fileID)
		}()
		return
	}

	session, err := b.sessions.Get(ctx, msg.From.ID, msg.Chat.ID)
	if err != nil {
		log.Printf("Error getting session: %v", err)
		return
	}
	if session.State == entity.StateCollectingPlates {
		b.sendMessage(msg.Chat.ID, fmt.Sprintf(msgSendPlate, session.Drug))
		return
	}
	b.sendMessage(msg.Chat.ID, msgStartSeries)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	userID, chatID := msg.From.ID, msg.Chat.ID

	switch msg.Command() {
	case "start":
		if _, err := b.mic.CancelSeries(ctx, userID, chatID); err != nil {
			log.Printf("Error resetting session: %v", err)
		}
		b.sendMessage(chatID, msgStart)

	case "help":
		b.sendMessage(chatID, msgHelp)

	case "mic":
		drug := strings.TrimSpace(msg.CommandArguments())
		session, err := b.mic.BeginSeries(ctx, userID, chatID, drug)
		if err != nil {
			if errors.Is(err, entity.ErrInvalidInput) {
				b.sendMessage(chatID, msgDrugRequired)
				return
			}
			log.Printf("Error starting series: %v", err)
			b.sendMessage(chatID, msgInternalError)
			return
		}
		b.sendMessage(chatID, fmt.Sprintf(msgSeriesStarted, session.Drug))

	case "result":
		b.sendMessage(chatID, msgResolving)
		out, err := b.mic.Resolve(ctx, userID, chatID)
		if err != nil {
			log.Printf("Error resolving series: %v", err)
			b.sendMessage(chatID, errorMessage(err))
			return
		}
		b.sendMessage(chatID, formatSeries(out))

	case "cancel":
		if _, err := b.mic.CancelSeries(ctx, userID, chatID); err != nil {
			log.Printf("Error cancelling session: %v", err)
		}
		b.sendMessage(chatID, msgCancelled)

	default:
		b.sendMessage(chatID, msgUnknownCommand)
	}
}

// handlePhoto оценивает снимок планшета; концентрация берётся из подписи
func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message, fileID string) {
	chatID := msg.Chat.ID

	concentration, err := imagefs.ParseConcentration(msg.Caption)
	if err != nil {
		b.sendMessage(chatID, msgCaptionRequired)
		return
	}

	b.sendMessage(chatID, msgProcessing)

	imageData, err := b.downloadFile(fileID)
	if err != nil {
		log.Printf("Error downloading photo: %v", err)
		b.sendMessage(chatID, msgProcessingError)
		return
	}

	log.Printf("Received plate %v from chat %d: %d bytes", concentration, chatID, len(imageData))

	out, err := b.mic.ProcessPlatePhoto(ctx, msg.From.ID, chatID, concentration, imageData)
	if err != nil {
		log.Printf("Error processing plate: %v", err)
		b.sendMessage(chatID, errorMessage(err))
		return
	}

	if out.HighlightErr != nil {
		log.Printf("Error highlighting plate %v from chat %d: %v", concentration, chatID, out.HighlightErr)
	}

	text := formatPlate(out.Plate)
	if len(out.Highlighted) == 0 {
		b.sendMessage(chatID, text)
		return
	}
	b.sendPhoto(chatID, out.Highlighted, text)
}

func photoFileID(msg *tgbotapi.Message) (string, bool) {
	if len(msg.Photo) > 0 {
		// Файл с максимальным разрешением
		return msg.Photo[len(msg.Photo)-1].FileID, true
	}
	if msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/") {
		return msg.Document.FileID, true
	}
	return "", false
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	fileURL := file.Link(b.api.Token)

	resp, err := http.Get(fileURL)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Error sending message: %v", err)
	}
}

// sendPhoto отправляет снимок с подсветкой областей и подписью
func (b *Bot) sendPhoto(chatID int64, data []byte, caption string) {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "plate.jpg", Bytes: data})
	photo.Caption = caption
	if _, err := b.api.Send(photo); err != nil {
		log.Printf("Error sending photo: %v", err)
		b.sendMessage(chatID, caption)
	}
}
