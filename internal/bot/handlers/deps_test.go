package handlers

import "testing"

func TestParseCustomDate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		for _, s := range []string{"2026-09-01", "  2026-09-01  ", "2024-02-29"} {
			got, ok := parseCustomDate(s)
			if !ok {
				t.Errorf("%q должна приниматься", s)
				continue
			}
			if got != "2026-09-01" && got != "2024-02-29" {
				t.Errorf("дата должна возвращаться без пробелов, получили %q", got)
			}
		}
	})

	t.Run("invalid", func(t *testing.T) {
		for _, s := range []string{"", "сегодня", "01.09.2026", "2026-13-01", "2026-02-30", "2026-9-1"} {
			if _, ok := parseCustomDate(s); ok {
				t.Errorf("%q не должна приниматься", s)
			}
		}
	})
}
