package menu

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

// Main — клавиатура авторизованного пользователя.
func Main() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("📋 Посещаемость"),
			tgbotapi.NewKeyboardButton("👥 Ученики"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("📊 Отчёты"),
			tgbotapi.NewKeyboardButton("🚪 Выйти"),
		),
	)
}

// Auth — inline-кнопки для неавторизованного чата.
func Auth() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔑 Войти", "auth_login"),
			tgbotapi.NewInlineKeyboardButtonData("📝 Регистрация", "auth_register"),
		),
	)
}
