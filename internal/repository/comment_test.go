package repository

import (
	"testing"
	"time"
)

func TestCommentCursorRoundTrip(t *testing.T) {
	created := time.Date(2026, 6, 20, 12, 34, 56, 789, time.UTC)
	cursor := formatCommentCursor(created, 42)

	ts, id, err := parseCommentCursor(cursor)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if id != 42 {
		t.Errorf("id = %d, want 42", id)
	}
	if !ts.Equal(created) {
		t.Errorf("timestamp = %v, want %v", ts, created)
	}
}

func TestParseCommentCursor_Malformed(t *testing.T) {
	for _, cursor := range []string{"", "42", "a:b", "42:notanumber", "1:2:3", "42abc:99", "1:2x"} {
		if _, _, err := parseCommentCursor(cursor); err == nil {
			t.Errorf("parseCommentCursor(%q) accepted a malformed cursor", cursor)
		}
	}
}
