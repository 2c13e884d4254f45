package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildCommand(t *testing.T) {
	cases := []struct {
		name        string
		template    string
		placeholder string
		token       string
		quote       bool
		expected    string
	}{
		{
			name:        "quoted substitution",
			template:    "echo {}",
			placeholder: "{}",
			token:       "a b",
			quote:       true,
			expected:    "echo 'a b'",
		},
		{
			name:        "every occurrence replaced",
			template:    "cp {} {}.bak",
			placeholder: "{}",
			token:       "a b",
			quote:       true,
			expected:    "cp 'a b' 'a b'.bak",
		},
		{
			name:        "custom placeholder",
			template:    "wc -l {FILE}",
			placeholder: "{FILE}",
			token:       "notes.txt",
			quote:       true,
			expected:    "wc -l notes.txt",
		},
		{
			name:        "quoting disabled keeps token verbatim",
			template:    "echo {}",
			placeholder: "{}",
			token:       "a b",
			quote:       false,
			expected:    "echo a b",
		},
		{
			name:        "empty token quotes to empty word",
			template:    "echo {}",
			placeholder: "{}",
			token:       "",
			quote:       true,
			expected:    "echo ''",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, BuildCommand(tc.template, tc.placeholder, tc.token, tc.quote))
		})
	}
}
