package utils

import (
	"testing"

	"golang.org/x/text/language"
)

func TestMatchLocale(t *testing.T) {
	tests := []struct {
		header   string
		fallback string
		want     language.Tag
	}{
		{"zh-CN,zh;q=0.9,en;q=0.8", "en", language.Chinese},
		{"en-US", "zh", language.English},
		{"", "zh", language.Chinese},
		{"fr-FR", "en", language.English},
		{"not a header;;", "en", language.English},
	}
	for _, tt := range tests {
		if got := MatchLocale(tt.header, tt.fallback); got != tt.want {
			t.Errorf("MatchLocale(%q, %q) = %v, want %v", tt.header, tt.fallback, got, tt.want)
		}
	}
}

func TestTranslate(t *testing.T) {
	if got := Translate(language.English, "checkin.success", 15); got != "Checked in, +15 points" {
		t.Fatalf("english = %q", got)
	}
	if got := Translate(language.Chinese, "error.already_checked_in"); got != "今天已经签到过了" {
		t.Fatalf("chinese = %q", got)
	}
	if got := Translate(language.English, "no.such.key"); got != "no.such.key" {
		t.Fatalf("unknown key = %q", got)
	}
}

func TestEveryMessageHasBothLocales(t *testing.T) {
	for key, texts := range messages {
		if texts[0] == "" || texts[1] == "" {
			t.Errorf("message %q is missing a translation", key)
		}
	}
}
