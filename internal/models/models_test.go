package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPostStringTruncates(t *testing.T) {
	tests := []struct {
		text, want string
	}{
		{"short", "short"},
		{"exactly 15 char", "exactly 15 char"},
		{"Тестовый пост длиннее пятнадцати", "Тестовый пост д"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Post{Text: tt.text}.String())
	}
}

func TestStringers(t *testing.T) {
	assert.Equal(t, "Test group", Group{Title: "Test group"}.String())
	assert.Equal(t, "leo", User{Username: "leo"}.String())
}
