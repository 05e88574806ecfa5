package bot

const startGreeting = "Привет! Я бот для учёта расходов.\n\n"

const helpText = `Формат сообщения:
<pre>расход сумма
расход сумма
...</pre>
Сумма: целое или вещественное (разделитель . или ,) число.
Может быть отрицательным (для корректировки).

Примеры:
- Продукты 100
- вода из Лавки 123.56
- морковь 123,00
- заказ из Озона №12345 234
- корректировка расхода -500.24`

const (
	msgParseError   = "😕 Не удалось распознать сообщение."
	msgDBError      = "⚠️ Ошибка базы данных. Ничего не сохранено, попробуйте ещё раз."
	msgAccessDenied = "⛔ У вас нет доступа к этому боту."

	msgMessageTooLong = "⚠️ Сообщение слишком длинное. Разбейте его на несколько."
	msgTooManyLines   = "⚠️ Слишком много строк в сообщении. Разбейте его на несколько."

	msgCancelled      = "🚫 Сохранение отменено."
	msgNothingToUndo  = "Нечего отменять: записи уже удалены."
	msgPastDisabled   = "📅 Режим прошлого месяца отключён. Новые расходы записываются текущей датой."
	msgChooseMonth    = "📅 Выберите месяц, в который записывать расходы:"
	msgImportIntro    = "<b>Импорт расходов из ВкусВилл</b>\n\nНажмите кнопку ниже для загрузки:"
	msgNoCostsOwn     = "📭 У вас пока нет записанных расходов."
	msgReportBuilding = "⏳ Формирую отчёт за текущий месяц..."
)

var monthNames = map[int]string{
	1:  "Январь",
	2:  "Февраль",
	3:  "Март",
	4:  "Апрель",
	5:  "Май",
	6:  "Июнь",
	7:  "Июль",
	8:  "Август",
	9:  "Сентябрь",
	10: "Октябрь",
	11: "Ноябрь",
	12: "Декабрь",
}
