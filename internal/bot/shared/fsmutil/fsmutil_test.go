package fsmutil

import "testing"

func TestPendingGuard(t *testing.T) {
	const chat = int64(77)

	if !SetPending(chat, "att:save") {
		t.Fatal("первый SetPending должен пройти")
	}
	if SetPending(chat, "att:save") {
		t.Error("повторный SetPending на том же чате должен блокироваться")
	}
	if SetPending(chat, "report:excel") {
		t.Error("другой ключ на занятом чате тоже должен блокироваться")
	}

	// чужой ключ не снимает флаг
	ClearPending(chat, "report:excel")
	if SetPending(chat, "att:save") {
		t.Error("ClearPending с чужим ключом не должен снимать блокировку")
	}

	ClearPending(chat, "att:save")
	if !SetPending(chat, "report:excel") {
		t.Error("после снятия флага чат должен освободиться")
	}
	ClearPending(chat, "report:excel")
}

func TestIsCancelText(t *testing.T) {
	for _, s := range []string{"отмена", "Отмена", "  ОТМЕНА  ", "/cancel", "cancel"} {
		if !IsCancelText(s) {
			t.Errorf("%q должно считаться отменой", s)
		}
	}
	for _, s := range []string{"", "отменить", "стоп", "/start"} {
		if IsCancelText(s) {
			t.Errorf("%q не должно считаться отменой", s)
		}
	}
}

func TestBackCancelRow(t *testing.T) {
	row := BackCancelRow("st_back", "st_close")
	if len(row) != 2 {
		t.Fatalf("ожидали две кнопки, получили %d", len(row))
	}
	if row[0].CallbackData == nil || *row[0].CallbackData != "st_back" {
		t.Errorf("кнопка назад: неверный callback %v", row[0].CallbackData)
	}
	if row[1].CallbackData == nil || *row[1].CallbackData != "st_close" {
		t.Errorf("кнопка отмены: неверный callback %v", row[1].CallbackData)
	}
}
