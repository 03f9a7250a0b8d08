package models

import "testing"

func TestParseListType(t *testing.T) {
	tests := []struct {
		in      string
		want    ListType
		wantErr bool
	}{
		{"", ListTodo, false},
		{"todo", ListTodo, false},
		{"wish", ListWish, false},
		{" wish ", ListWish, false},
		{"Wish", "", true},
		{"done", "", true},
	}
	for _, tt := range tests {
		got, err := ParseListType(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseListType(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestParsePriority(t *testing.T) {
	for _, v := range []int{0, 1, 2} {
		if p, err := ParsePriority(v); err != nil || int(p) != v {
			t.Errorf("ParsePriority(%d) = %d, %v", v, p, err)
		}
	}
	for _, v := range []int{-1, 3, 100} {
		if _, err := ParsePriority(v); err == nil {
			t.Errorf("ParsePriority(%d) accepted", v)
		}
	}
}
