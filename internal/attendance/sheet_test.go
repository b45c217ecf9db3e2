package attendance

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Spok95/telegram-attendance-bot/internal/api"
	"github.com/Spok95/telegram-attendance-bot/internal/models"
)

func roster3() []models.Student {
	return []models.Student{
		{ID: 1, Name: "Иванов Иван"},
		{ID: 2, Name: "Петров Пётр"},
		{ID: 3, Name: "Сидорова Анна"},
	}
}

func TestDerive_DefaultsToPresent(t *testing.T) {
	records := []models.AttendanceRecord{
		{ID: 10, StudentID: 2, Date: "2026-09-01", Status: models.StatusAbsent},
	}
	m := Derive(roster3(), records)

	if len(m) != 3 {
		t.Fatalf("ожидали 3 записи, получили %d", len(m))
	}
	if m[1] != models.StatusPresent {
		t.Errorf("без серверной записи ожидали present, получили %q", m[1])
	}
	if m[2] != models.StatusAbsent {
		t.Errorf("ожидали absent из записи, получили %q", m[2])
	}
	if m[3] != models.StatusPresent {
		t.Errorf("без серверной записи ожидали present, получили %q", m[3])
	}
}

func TestDerive_IgnoresRecordsOutsideRoster(t *testing.T) {
	records := []models.AttendanceRecord{
		{StudentID: 99, Status: models.StatusLate},
	}
	m := Derive(roster3(), records)
	if _, ok := m[99]; ok {
		t.Fatal("запись чужого ученика не должна попасть в карту")
	}
	if len(m) != 3 {
		t.Fatalf("ожидали ровно |roster| записей, получили %d", len(m))
	}
}

func TestDerive_Idempotent(t *testing.T) {
	records := []models.AttendanceRecord{
		{StudentID: 1, Status: models.StatusLate},
		{StudentID: 3, Status: models.StatusAbsent},
	}
	a := Derive(roster3(), records)
	b := Derive(roster3(), records)
	if len(a) != len(b) {
		t.Fatalf("размеры карт различаются: %d и %d", len(a), len(b))
	}
	for id, st := range a {
		if b[id] != st {
			t.Errorf("student %d: %q != %q", id, st, b[id])
		}
	}
}

func TestSetStatus_EditIsolation(t *testing.T) {
	sheet := NewSheet("2026-09-01", roster3(), nil)
	before := make(map[int64]models.Status, len(sheet.Statuses))
	for id, st := range sheet.Statuses {
		before[id] = st
	}

	if err := sheet.SetStatus(2, models.StatusLate); err != nil {
		t.Fatal(err)
	}
	if sheet.Statuses[2] != models.StatusLate {
		t.Fatalf("статус ученика 2 не изменился")
	}
	for id, st := range before {
		if id == 2 {
			continue
		}
		if sheet.Statuses[id] != st {
			t.Errorf("правка ученика 2 затронула ученика %d", id)
		}
	}
	if !sheet.Dirty() {
		t.Error("после правки лист должен быть dirty")
	}
}

func TestSetStatus_RejectsUnknownStatus(t *testing.T) {
	sheet := NewSheet("2026-09-01", roster3(), nil)
	if err := sheet.SetStatus(1, models.Status("sick")); err == nil {
		t.Fatal("статус вне present/absent/late должен отклоняться")
	}
	if err := sheet.SetStatus(42, models.StatusAbsent); err == nil {
		t.Fatal("ученик вне листа должен отклоняться")
	}
	if sheet.Dirty() {
		t.Error("неудачная правка не должна делать лист dirty")
	}
}

func TestCycle(t *testing.T) {
	sheet := NewSheet("2026-09-01", roster3(), nil)
	want := []models.Status{models.StatusAbsent, models.StatusLate, models.StatusPresent}
	for _, expect := range want {
		got, err := sheet.Cycle(1)
		if err != nil {
			t.Fatal(err)
		}
		if got != expect {
			t.Fatalf("ожидали %q, получили %q", expect, got)
		}
	}
}

type manualCall struct {
	StudentID int64  `json:"student_id"`
	Status    string `json:"status"`
	Date      string `json:"date"`
}

// attendanceServer имитирует POST /attendance/manual/: пишет вызовы в
// журнал, для id из failIDs отвечает 500.
func attendanceServer(t *testing.T, calls *[]manualCall, failIDs map[int64]bool) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/attendance/manual/" || r.Method != http.MethodPost {
			t.Errorf("неожиданный запрос: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var c manualCall
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			t.Fatal(err)
		}
		*calls = append(*calls, c)
		if failIDs[c.StudentID] {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"detail":"база недоступна"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":1,"student_id":1,"date":"2026-09-01","status":"` + c.Status + `"}`))
	}))
}

func TestSave_SequentialOrderAndPayloads(t *testing.T) {
	var calls []manualCall
	srv := attendanceServer(t, &calls, nil)
	defer srv.Close()

	sheet := NewSheet("2026-09-01", roster3(), nil)
	_ = sheet.SetStatus(2, models.StatusAbsent)
	_ = sheet.SetStatus(3, models.StatusLate)

	results := sheet.Save(context.Background(), api.New(srv.URL), "tok")

	if len(calls) != 3 {
		t.Fatalf("ожидали 3 запроса, получили %d", len(calls))
	}
	want := []manualCall{
		{StudentID: 1, Status: "present", Date: "2026-09-01"},
		{StudentID: 2, Status: "absent", Date: "2026-09-01"},
		{StudentID: 3, Status: "late", Date: "2026-09-01"},
	}
	for i, c := range calls {
		if c != want[i] {
			t.Errorf("запрос %d: ожидали %+v, получили %+v", i, want[i], c)
		}
	}
	if len(Failed(results)) != 0 {
		t.Fatalf("неожиданные ошибки: %+v", Failed(results))
	}
	if sheet.Dirty() {
		t.Error("после полного сохранения лист должен быть чистым")
	}
}

func TestSave_CollectsFailuresWithoutRollback(t *testing.T) {
	var calls []manualCall
	srv := attendanceServer(t, &calls, map[int64]bool{2: true})
	defer srv.Close()

	sheet := NewSheet("2026-09-01", roster3(), nil)
	_ = sheet.SetStatus(2, models.StatusAbsent)
	results := sheet.Save(context.Background(), api.New(srv.URL), "tok")

	// ошибка второго не прерывает цикл и не откатывает первого
	if len(calls) != 3 {
		t.Fatalf("ожидали 3 запроса (без прерывания), получили %d", len(calls))
	}
	perStudent := map[int64]int{}
	for _, c := range calls {
		perStudent[c.StudentID]++
	}
	if perStudent[1] != 1 {
		t.Errorf("ученик 1 не должен повторяться или откатываться, запросов: %d", perStudent[1])
	}

	failed := Failed(results)
	if len(failed) != 1 || failed[0].StudentID != 2 {
		t.Fatalf("ожидали ровно одну ошибку по ученику 2, получили %+v", failed)
	}
	if failed[0].Err == nil {
		t.Fatal("ошибка ученика 2 должна быть заполнена")
	}
	if sheet.Dirty() != true {
		t.Error("после частичного сохранения лист остаётся dirty")
	}
}

func TestRefresh_RebuildsFromRecords(t *testing.T) {
	sheet := NewSheet("2026-09-01", roster3(), nil)
	_ = sheet.SetStatus(1, models.StatusAbsent)

	sheet.Refresh([]models.AttendanceRecord{
		{StudentID: 3, Status: models.StatusLate},
	})

	if sheet.Statuses[1] != models.StatusPresent {
		t.Error("локальная правка должна быть сброшена свежими записями")
	}
	if sheet.Statuses[3] != models.StatusLate {
		t.Error("статус из свежей записи не попал в карту")
	}
	if sheet.Dirty() {
		t.Error("после пересборки лист должен быть чистым")
	}
}
