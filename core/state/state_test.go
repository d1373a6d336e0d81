package state

import (
	"strconv"
	"testing"

	"github.com/josephlewis42/rush/core/syntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_Param(t *testing.T) {
	s := New("rush", []string{"HOME=/home/user", "X=1"})
	s.Positional = []string{"a", "b c"}
	s.LastStatus = 3
	s.Pid = 42

	cases := map[string]string{
		"?":    "3",
		"$":    "42",
		"#":    "2",
		"@":    "a b c",
		"*":    "a b c",
		"0":    "rush",
		"1":    "a",
		"2":    "b c",
		"3":    "",
		"X":    "1",
		"HOME": "/home/user",
		"NOPE": "",
	}

	for name, expected := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, expected, s.Param(name))
		})
	}
}

func TestState_expandsWords(t *testing.T) {
	s := New("rush", []string{"HOME=/home/user", "X=1"})

	cmd, err := syntax.Parse(`echo ~/dir "$X-$?" '$X'`, nil)
	require.NoError(t, err)

	var got []string
	for _, w := range cmd.(*syntax.SimpleCommand).Args {
		got = append(got, w.Fields(s)...)
	}
	assert.Equal(t, []string{"echo", "/home/user/dir", "1-0", "$X"}, got)
}

func TestState_aliases(t *testing.T) {
	s := New("rush", nil)

	_, ok := s.LookupAlias("ll")
	assert.False(t, ok)

	cmd, err := syntax.Parse("ls -l", nil)
	require.NoError(t, err)
	s.SetAlias("ll", cmd)
	s.SetAlias("empty", nil)

	got, ok := s.LookupAlias("ll")
	assert.True(t, ok)
	assert.Equal(t, "ls -l", got.String())

	got, ok = s.LookupAlias("empty")
	assert.True(t, ok)
	assert.Nil(t, got)

	assert.Equal(t, []string{"empty", "ll"}, s.AliasNames())

	assert.True(t, s.Unalias("ll"))
	assert.False(t, s.Unalias("ll"))
	_, ok = s.LookupAlias("ll")
	assert.False(t, ok)

	s.ClearAliases()
	assert.Empty(t, s.AliasNames())
	_, ok = s.LookupAlias("empty")
	assert.False(t, ok)
}

func TestState_AddHistory(t *testing.T) {
	s := New("rush", nil)
	for i := 0; i < 5; i++ {
		s.AddHistory(strconv.Itoa(i), 3)
	}
	assert.Equal(t, []string{"2", "3", "4"}, s.History)

	s.AddHistory("5", 0)
	assert.Len(t, s.History, 4)

	s.ClearHistory()
	assert.Empty(t, s.History)
}
