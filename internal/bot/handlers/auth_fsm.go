package handlers

import (
	"context"
	"strings"

	"github.com/Spok95/telegram-attendance-bot/internal/bot/menu"
	"github.com/Spok95/telegram-attendance-bot/internal/bot/shared/fsmutil"
	"github.com/Spok95/telegram-attendance-bot/internal/db"
	"github.com/Spok95/telegram-attendance-bot/internal/models"
	"github.com/Spok95/telegram-attendance-bot/internal/tg"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type AuthStep int

const (
	AuthLoginUsername AuthStep = iota + 1
	AuthLoginPassword
	AuthRegUsername
	AuthRegEmail
	AuthRegPassword
	AuthRegConfirm
)

type AuthFSMState struct {
	Step     AuthStep
	Username string
	Email    string
	Password string
}

var authStates = newFSMStates[AuthFSMState]()

func GetAuthState(chatID int64) *AuthFSMState { return authStates.get(chatID) }

// SendAuthPrompt — стартовый экран неавторизованного чата.
func SendAuthPrompt(d *Deps, chatID int64) {
	msg := tgbotapi.NewMessage(chatID, "👋 Это журнал посещаемости. Войдите или зарегистрируйтесь:")
	msg.ReplyMarkup = menu.Auth()
	_, _ = tg.Send(d.Bot, msg)
}

func StartLogin(d *Deps, chatID int64) {
	authStates.set(chatID, &AuthFSMState{Step: AuthLoginUsername})
	_, _ = tg.Send(d.Bot, tgbotapi.NewMessage(chatID, "Введите имя пользователя:"))
}

func StartRegister(d *Deps, chatID int64) {
	authStates.set(chatID, &AuthFSMState{Step: AuthRegUsername})
	_, _ = tg.Send(d.Bot, tgbotapi.NewMessage(chatID, "Придумайте имя пользователя:"))
}

// HandleAuthText ведёт оба сценария — вход и регистрацию с автовходом.
func HandleAuthText(ctx context.Context, d *Deps, m *tgbotapi.Message) {
	chatID := m.Chat.ID
	state := authStates.get(chatID)
	if state == nil {
		return
	}
	if fsmutil.IsCancelText(m.Text) {
		authStates.remove(chatID)
		SendAuthPrompt(d, chatID)
		return
	}
	text := strings.TrimSpace(m.Text)
	if text == "" {
		_, _ = tg.Send(d.Bot, tgbotapi.NewMessage(chatID, "⚠️ Поле не может быть пустым."))
		return
	}

	switch state.Step {
	case AuthLoginUsername:
		state.Username = text
		state.Step = AuthLoginPassword
		_, _ = tg.Send(d.Bot, tgbotapi.NewMessage(chatID, "Введите пароль:"))
	case AuthLoginPassword:
		state.Password = text
		finishLogin(ctx, d, chatID, state)
	case AuthRegUsername:
		state.Username = text
		state.Step = AuthRegEmail
		_, _ = tg.Send(d.Bot, tgbotapi.NewMessage(chatID, "Введите e-mail:"))
	case AuthRegEmail:
		state.Email = text
		state.Step = AuthRegPassword
		_, _ = tg.Send(d.Bot, tgbotapi.NewMessage(chatID, "Придумайте пароль (не короче 6 символов):"))
	case AuthRegPassword:
		if len([]rune(text)) < 6 {
			_, _ = tg.Send(d.Bot, tgbotapi.NewMessage(chatID, "⚠️ Пароль короче 6 символов. Попробуйте ещё раз:"))
			return
		}
		state.Password = text
		state.Step = AuthRegConfirm
		_, _ = tg.Send(d.Bot, tgbotapi.NewMessage(chatID, "Повторите пароль:"))
	case AuthRegConfirm:
		if text != state.Password {
			state.Step = AuthRegPassword
			_, _ = tg.Send(d.Bot, tgbotapi.NewMessage(chatID, "⚠️ Пароли не совпадают. Придумайте пароль заново:"))
			return
		}
		finishRegister(ctx, d, chatID, state)
	}
}

// HandleAuthCallback — кнопки «Войти» / «Регистрация».
func HandleAuthCallback(d *Deps, cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID
	_, _ = tg.Request(d.Bot, tgbotapi.NewCallback(cb.ID, ""))
	switch cb.Data {
	case "auth_login":
		StartLogin(d, chatID)
	case "auth_register":
		StartRegister(d, chatID)
	}
}

func finishLogin(ctx context.Context, d *Deps, chatID int64, state *AuthFSMState) {
	token, err := d.API.Login(ctx, models.Credentials{Username: state.Username, Password: state.Password})
	if err != nil {
		authStates.remove(chatID)
		d.FailAPI(ctx, chatID, err)
		return
	}
	if err := db.SaveSession(ctx, d.DB, chatID, state.Username, token.AccessToken); err != nil {
		authStates.remove(chatID)
		d.FailAPI(ctx, chatID, err)
		return
	}
	authStates.remove(chatID)
	msg := tgbotapi.NewMessage(chatID, "✅ Добро пожаловать, "+state.Username+"!")
	msg.ReplyMarkup = menu.Main()
	_, _ = tg.Send(d.Bot, msg)
}

// finishRegister: регистрация и сразу вход — отдельного состояния
// «зарегистрирован, но не вошёл» у бота нет.
func finishRegister(ctx context.Context, d *Deps, chatID int64, state *AuthFSMState) {
	_, err := d.API.Register(ctx, models.Registration{
		Username: state.Username,
		Email:    state.Email,
		Password: state.Password,
	})
	if err != nil {
		authStates.remove(chatID)
		d.FailAPI(ctx, chatID, err)
		return
	}
	finishLogin(ctx, d, chatID, state)
}

// HandleLogout всегда сбрасывает сессию и состояния, независимо от того,
// была ли сессия.
func HandleLogout(ctx context.Context, d *Deps, chatID int64) {
	_ = db.DeleteSession(ctx, d.DB, chatID)
	ClearChatState(chatID)
	msg := tgbotapi.NewMessage(chatID, "🚪 Вы вышли из аккаунта.")
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	_, _ = tg.Send(d.Bot, msg)
	SendAuthPrompt(d, chatID)
}
