package telegram

import (
	"errors"
	"fmt"
	"strings"

	app "agar-mic/internal/application"
	"agar-mic/internal/domain/entity"
)

const (
	msgStart = `👋 Привет! Я бот для чтения МПК методом разведений в агаре.

🧫 Начните серию командой /mic <препарат>, затем отправьте фото планшетов.
В подписи к каждому фото укажите концентрацию, например «0.5» или «2 mg/L».

📋 Команды:
/mic <препарат> — начать серию
/result — рассчитать МПК
/help — справка
/cancel — отменить серию`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ /mic ciprofloxacin — начните серию для препарата
2️⃣ Отправьте фото каждого планшета, в подписи — концентрация
3️⃣ Бот ответит вердиктом по планшету и фото с подсветкой колоний
4️⃣ /result — МПК по всей серии

💡 Рекомендации:
• Снимайте планшет целиком, сверху, при ровном освещении
• Повторное фото той же концентрации заменяет прежнее
• Добавьте контроль без препарата (концентрация 0)

📋 Команды:
/mic <препарат> — начать серию
/result — рассчитать МПК
/cancel — отменить серию`

	msgSeriesStarted   = "🧫 Серия для %s начата. Отправьте фото планшетов, в подписи — концентрация."
	msgDrugRequired    = "❓ Укажите препарат: /mic <препарат>"
	msgSendPlate       = "📸 Отправьте фото планшета для %s, в подписи — концентрация."
	msgStartSeries     = "🧫 Начните серию командой /mic <препарат>."
	msgCaptionRequired = "✏️ Укажите концентрацию в подписи к фото, например «0.5» или «2 mg/L»."
	msgCancelled       = "❌ Серия отменена. Отправьте /mic <препарат> для новой."
	msgUnknownCommand  = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing      = "⏳ Обрабатываю планшет..."
	msgResolving       = "⏳ Считаю МПК..."
	msgProcessingError = "⚠️ Не удалось обработать изображение. Попробуйте сделать другое фото."
	msgPoorPhoto       = "⚠️ Фото плохого качества (мелкое, смазанное, пересвеченное или с бликами). Переснимите планшет."
	msgBusy            = "⏳ Предыдущий планшет ещё обрабатывается, подождите."
	msgSeriesChanged   = "🗑 Серия была отменена или начата заново, этот планшет в неё не добавлен."
	msgNoSeries        = "🧫 Нет активной серии. Начните её командой /mic <препарат>."
	msgEmptySeries     = "📭 В серии ещё нет планшетов."
	msgIncomplete      = "⚠️ Не все планшеты серии оценены, МПК не определена. Переснимите недостающие."
	msgInternalError   = "⚠️ Внутренняя ошибка. Попробуйте позже."
)

var labelNames = map[entity.GrowthLabel]string{
	entity.NoGrowth:   "нет роста",
	entity.PoorGrowth: "слабый рост",
	entity.GoodGrowth: "хороший рост",
}

// errorMessage переводит ошибку сервиса в ответ пользователю.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, app.ErrBusy):
		return msgBusy
	case errors.Is(err, app.ErrSeriesChanged):
		return msgSeriesChanged
	case errors.Is(err, app.ErrNoActiveSeries):
		return msgNoSeries
	case errors.Is(err, entity.ErrPoorPhoto):
		return msgPoorPhoto
	case errors.Is(err, entity.ErrDecode):
		return msgProcessingError
	case errors.Is(err, entity.ErrEmptySeries):
		return msgEmptySeries
	case errors.Is(err, entity.ErrIncompleteSeries):
		return msgIncomplete
	default:
		return msgInternalError
	}
}

func formatPlate(p *entity.Plate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🧫 %s, %s: %s", p.Drug(), formatConcentration(p.Concentration()), labelNames[p.Verdict()])
	if p.EmptyPlate() {
		b.WriteString("\nОбласти не найдены, вердикт по умолчанию.")
		return b.String()
	}

	counts := p.Counts()
	fmt.Fprintf(&b, "\nОбластей: %d", p.RegionCount())
	for _, l := range entity.GrowthLabels {
		if n := counts[l]; n > 0 {
			fmt.Fprintf(&b, "\n• %s: %d", labelNames[l], n)
		}
	}
	fmt.Fprintf(&b, "\nСредняя уверенность: %.0f%%", p.MeanConfidence()*100)
	return b.String()
}

func formatSeries(out *app.SeriesOutput) string {
	var b strings.Builder
	r := out.Result
	fmt.Fprintf(&b, "💊 %s\n", out.Series.Drug())
	for _, e := range out.Series.Entries() {
		fmt.Fprintf(&b, "%s — %s\n", formatConcentration(e.Concentration), labelNames[e.Plate.Verdict()])
	}

	switch r.Outcome {
	case entity.MICBelowRange:
		fmt.Fprintf(&b, "\n✅ МПК %s mg/L: роста нет уже на минимальной концентрации.", r.String())
	case entity.MICAboveRange:
		fmt.Fprintf(&b, "\n✅ МПК %s mg/L: рост есть на максимальной концентрации.", r.String())
	default:
		fmt.Fprintf(&b, "\n✅ МПК %s mg/L", r.String())
	}

	switch r.QC {
	case entity.QCWarning:
		b.WriteString("\n⚠️ Рост возвращается выше точки перелома, проверьте планшеты.")
	case entity.QCFail:
		b.WriteString("\n❌ Нет роста на контроле без препарата, результат недостоверен.")
	}

	if len(out.Positions) > 0 {
		determined := 0
		for _, p := range out.Positions {
			if p.Determined() {
				determined++
			}
		}
		fmt.Fprintf(&b, "\nПо позициям: %d из %d в диапазоне.", determined, len(out.Positions))
	}
	return b.String()
}

func formatConcentration(v float64) string {
	return fmt.Sprintf("%g mg/L", v)
}
