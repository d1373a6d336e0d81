package core

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Example_unescape() {
	fmt.Printf("%q\n", unescape(`tab\there`))
	fmt.Printf("%q\n", unescape(`\e[01;32mgreen\033[00m`))
	fmt.Printf("%q\n", unescape(`\x41\\`))

	// Output: "tab\there"
	// "\x1b[01;32mgreen\x1b[00m"
	// "A\\"
}

func TestExpandPrompt(t *testing.T) {
	info := promptInfo{
		User: "ada",
		Host: "engine",
		Dir:  "/home/ada/src",
		Home: "/home/ada",
	}

	cases := map[string]struct {
		prompt string
		info   func(i promptInfo) promptInfo
		want   string
	}{
		"default": {
			prompt: DefaultPrompt,
			want:   "ada@engine:~/src$ ",
		},
		"root": {
			prompt: DefaultPrompt,
			info:   func(i promptInfo) promptInfo { i.Root = true; return i },
			want:   "ada@engine:~/src# ",
		},
		"home-itself": {
			prompt: `\w`,
			info:   func(i promptInfo) promptInfo { i.Dir = "/home/ada"; return i },
			want:   "~",
		},
		"similar-prefix": {
			prompt: `\w`,
			info:   func(i promptInfo) promptInfo { i.Dir = "/home/adam"; return i },
			want:   "/home/adam",
		},
		"no-home": {
			prompt: `\w`,
			info:   func(i promptInfo) promptInfo { i.Home = ""; return i },
			want:   "/home/ada/src",
		},
		"colors": {
			prompt: `\033[01;32m\u\033[00m> `,
			want:   "\033[01;32mada\033[00m> ",
		},
		"plain": {
			prompt: "> ",
			want:   "> ",
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			i := info
			if tc.info != nil {
				i = tc.info(i)
			}
			assert.Equal(t, tc.want, expandPrompt(tc.prompt, i))
		})
	}
}

func TestShell_Prompt(t *testing.T) {
	sh, err := NewShell(Options{
		Environ: []string{"USER=ada", "PS1=[\\u]\\$ "},
		Config:  testConfig(),
		Input:   NewLineReader(nil),
	})
	assert.NoError(t, err)

	assert.Regexp(t, `^\[ada\][$#] $`, sh.Prompt())

	sh.State.Vars.Unset("PS1")
	sh.Config.Prompt = `\u> `
	assert.Equal(t, "ada> ", sh.Prompt())
}
