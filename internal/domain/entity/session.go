package entity

// SessionState состояние пользователя в диалоге
type SessionState string

const (
	StateMainMenu         SessionState = "main_menu"         // В главном меню
	StateCollectingPlates SessionState = "collecting_plates" // Ожидание фото планшетов серии
	StateProcessing       SessionState = "processing"        // Обработка изображения
)

// Session диалог пользователя бота с накопленной серией планшетов
type Session struct {
	ID      int64         // Telegram User ID
	ChatID  int64         // Telegram Chat ID
	State   SessionState  // Текущее состояние
	Drug    string        // Препарат текущей серии
	Entries []SeriesEntry // Оценённые планшеты серии
	Series  uint64        // Номер серии; растёт при каждом начале и сбросе
}

// NewSession создаёт сессию с начальным состоянием
func NewSession(userID, chatID int64) *Session {
	return &Session{
		ID:     userID,
		ChatID: chatID,
		State:  StateMainMenu,
	}
}

// SetState обновляет состояние сессии
func (s *Session) SetState(state SessionState) {
	s.State = state
}

// Begin начинает новую серию для препарата
func (s *Session) Begin(drug string) {
	s.Drug = drug
	s.Entries = nil
	s.State = StateCollectingPlates
	s.Series++
}

// AddEntry добавляет планшет; повторный снимок той же концентрации заменяет прежний.
func (s *Session) AddEntry(entry SeriesEntry) {
	for i, e := range s.Entries {
		if e.Concentration == entry.Concentration {
			s.Entries[i] = entry
			return
		}
	}
	s.Entries = append(s.Entries, entry)
}

// Reset возвращает сессию в главное меню и забывает серию
func (s *Session) Reset() {
	s.Drug = ""
	s.Entries = nil
	s.State = StateMainMenu
	s.Series++
}
