package i18n

import "fmt"

// MessageKey identifies a localized string.
type MessageKey string

const (
	MsgVerifySubject    MessageKey = "verify.subject"
	MsgVerifyBody       MessageKey = "verify.body"
	MsgResetSubject     MessageKey = "reset.subject"
	MsgResetBody        MessageKey = "reset.body"
	MsgCompletedSubject MessageKey = "completed.subject"
	MsgCompletedBody    MessageKey = "completed.body"
)

var catalog = map[string]map[MessageKey]string{
	"pl": {
		MsgVerifySubject:    "Potwierdź swój adres e-mail",
		MsgVerifyBody:       "Cześć %s,\n\nkliknij poniższy link, aby potwierdzić adres e-mail (ważny 24 godziny):\n%s\n",
		MsgResetSubject:     "Resetowanie hasła",
		MsgResetBody:        "Cześć %s,\n\naby ustawić nowe hasło, otwórz link (ważny 1 godzinę):\n%s\n\nJeśli to nie Ty, zignoruj tę wiadomość.\n",
		MsgCompletedSubject: "Analiza zamówienia \"%s\" zakończona",
		MsgCompletedBody:    "Cześć %s,\n\nanaliza zamówienia \"%s\" została zakończona (udane: %d, nieudane: %d).\nWyniki: %s\n",
	},
	"en": {
		MsgVerifySubject:    "Verify your email address",
		MsgVerifyBody:       "Hi %s,\n\nplease confirm your email address by opening this link (valid for 24 hours):\n%s\n",
		MsgResetSubject:     "Reset your password",
		MsgResetBody:        "Hi %s,\n\nopen this link to choose a new password (valid for 1 hour):\n%s\n\nIf you did not request this, ignore this email.\n",
		MsgCompletedSubject: "Analysis of \"%s\" is complete",
		MsgCompletedBody:    "Hi %s,\n\nthe analysis of order \"%s\" has finished (succeeded: %d, failed: %d).\nResults: %s\n",
	},
	"de": {
		MsgVerifySubject:    "Bestätigen Sie Ihre E-Mail-Adresse",
		MsgVerifyBody:       "Hallo %s,\n\nbitte bestätigen Sie Ihre E-Mail-Adresse über diesen Link (24 Stunden gültig):\n%s\n",
		MsgResetSubject:     "Passwort zurücksetzen",
		MsgResetBody:        "Hallo %s,\n\nüber diesen Link können Sie ein neues Passwort festlegen (1 Stunde gültig):\n%s\n\nFalls Sie das nicht angefordert haben, ignorieren Sie diese E-Mail.\n",
		MsgCompletedSubject: "Analyse von \"%s\" abgeschlossen",
		MsgCompletedBody:    "Hallo %s,\n\ndie Analyse des Auftrags \"%s\" ist abgeschlossen (erfolgreich: %d, fehlgeschlagen: %d).\nErgebnisse: %s\n",
	},
	"uk": {
		MsgVerifySubject:    "Підтвердьте свою електронну адресу",
		MsgVerifyBody:       "Вітаємо, %s!\n\nПідтвердьте електронну адресу за посиланням (дійсне 24 години):\n%s\n",
		MsgResetSubject:     "Скидання пароля",
		MsgResetBody:        "Вітаємо, %s!\n\nЩоб встановити новий пароль, перейдіть за посиланням (дійсне 1 годину):\n%s\n\nЯкщо це були не ви, проігноруйте цей лист.\n",
		MsgCompletedSubject: "Аналіз замовлення \"%s\" завершено",
		MsgCompletedBody:    "Вітаємо, %s!\n\nАналіз замовлення \"%s\" завершено (успішно: %d, з помилками: %d).\nРезультати: %s\n",
	},
	"es": {
		MsgVerifySubject:    "Verifica tu correo electrónico",
		MsgVerifyBody:       "Hola %s,\n\nconfirma tu correo electrónico con este enlace (válido durante 24 horas):\n%s\n",
		MsgResetSubject:     "Restablece tu contraseña",
		MsgResetBody:        "Hola %s,\n\nabre este enlace para elegir una nueva contraseña (válido durante 1 hora):\n%s\n\nSi no lo solicitaste, ignora este correo.\n",
		MsgCompletedSubject: "El análisis de \"%s\" ha finalizado",
		MsgCompletedBody:    "Hola %s,\n\nel análisis del pedido \"%s\" ha finalizado (correctos: %d, fallidos: %d).\nResultados: %s\n",
	},
}

// T formats the message for key in lang, falling back to the default language.
func T(lang string, key MessageKey, args ...interface{}) string {
	msgs, ok := catalog[lang]
	if !ok {
		msgs = catalog[Default]
	}
	format, ok := msgs[key]
	if !ok {
		format = catalog[Default][key]
	}
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}
